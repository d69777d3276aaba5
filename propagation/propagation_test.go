// Copyright The OpenTelemetry Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package propagation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBlanch/otelcore/baggage"
	"github.com/CodeBlanch/otelcore/propagation"
	sdktrace "github.com/CodeBlanch/otelcore/sdk/trace"
)

func TestTraceContextRoundTrip(t *testing.T) {
	var tid sdktrace.TraceID
	tid[0] = 0xAB
	var sid sdktrace.SpanID
	sid[0] = 0xCD
	sc := sdktrace.NewSpanContext(tid, sid, sdktrace.FlagsSampled, "vendor=value", false)
	ctx := sdktrace.ContextWithSpanContext(context.Background(), sc)

	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)

	extracted := propagation.TraceContext{}.Extract(context.Background(), carrier)
	got := sdktrace.SpanContextFromContext(extracted)

	assert.Equal(t, sc.TraceID(), got.TraceID())
	assert.Equal(t, sc.SpanID(), got.SpanID())
	assert.True(t, got.IsSampled())
	assert.True(t, got.IsRemote())
	assert.Equal(t, "vendor=value", got.TraceState())
}

func TestTraceContextExtractIgnoresMalformedHeader(t *testing.T) {
	carrier := propagation.MapCarrier{"traceparent": "garbage"}
	ctx := propagation.TraceContext{}.Extract(context.Background(), carrier)
	assert.False(t, sdktrace.SpanContextFromContext(ctx).IsValid())
}

func TestBaggagePropagatorRoundTrip(t *testing.T) {
	b, err := baggage.New()
	require.NoError(t, err)
	b, err = b.SetMember("user.id", "1")
	require.NoError(t, err)
	b, err = b.SetMember("user.plan", "pro plan")
	require.NoError(t, err)

	ctx := propagation.ContextWithBaggage(context.Background(), b)
	carrier := propagation.MapCarrier{}
	propagation.Baggage{}.Inject(ctx, carrier)
	require.NotEmpty(t, carrier["baggage"])

	extracted := propagation.Baggage{}.Extract(context.Background(), carrier)
	got := propagation.BaggageFromContext(extracted)

	v, ok := got.Member("user.id")
	require.True(t, ok)
	assert.Equal(t, "1", v.Value())
	v, ok = got.Member("user.plan")
	require.True(t, ok)
	assert.Equal(t, "pro plan", v.Value())
}

func TestAttachDetachRestoresPriorContext(t *testing.T) {
	base := context.Background()
	b, err := baggage.New()
	require.NoError(t, err)
	b, _ = b.SetMember("k", "v")

	attached, tok := propagation.Attach(base, b)
	assert.Equal(t, 1, propagation.BaggageFromContext(attached).Len())

	restored := propagation.Detach(tok)
	assert.Equal(t, base, restored)
	assert.Equal(t, 0, propagation.BaggageFromContext(restored).Len())
}

func TestCompositePropagatorRunsBoth(t *testing.T) {
	composite := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, composite.Fields())
}
