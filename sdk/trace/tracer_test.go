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

package trace_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBlanch/otelcore/attribute"
	sdktrace "github.com/CodeBlanch/otelcore/sdk/trace"
)

var errBoom = errors.New("boom")

type recordingSpanExporter struct {
	mu    sync.Mutex
	spans []sdktrace.ReadOnlySpan
}

func (e *recordingSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = append(e.spans, spans...)
	return nil
}

func (e *recordingSpanExporter) Shutdown(context.Context) error { return nil }

func (e *recordingSpanExporter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.spans)
}

func TestSpanLifecycleRecordsAttributesStatusAndEvents(t *testing.T) {
	exp := &recordingSpanExporter{}
	bsp := sdktrace.NewBatchSpanProcessor(exp, sdktrace.WithBatchTimeout(time.Hour))
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bsp))
	tracer := provider.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	span.SetAttributes(attribute.String("k", "v"))
	span.SetStatus(sdktrace.StatusError, "boom")
	span.AddEvent("checkpoint")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bsp.ForceFlush(ctx))

	require.Equal(t, 1, exp.count())
	got := exp.spans[0]
	assert.True(t, got.Ended())
	assert.Equal(t, sdktrace.StatusError, got.Status().Code)
	assert.Len(t, got.Events(), 1)
	assert.Equal(t, "checkpoint", got.Events()[0].Name)

	attrs := got.Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("k"), attrs[0].Key)
}

func TestChildSpanInheritsTraceID(t *testing.T) {
	exp := &recordingSpanExporter{}
	bsp := sdktrace.NewBatchSpanProcessor(exp, sdktrace.WithBatchTimeout(time.Hour))
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bsp))
	tracer := provider.Tracer("test")

	ctx, parent := tracer.Start(context.Background(), "parent")
	ctx, child := tracer.Start(ctx, "child")

	assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	assert.NotEqual(t, parent.SpanContext().SpanID(), child.SpanContext().SpanID())
	assert.Equal(t, parent.SpanContext().SpanID(), child.Parent().SpanID())

	child.End()
	parent.End()
	_ = ctx
}

func TestRecordErrorAddsExceptionEventWithConventionalAttributes(t *testing.T) {
	exp := &recordingSpanExporter{}
	bsp := sdktrace.NewBatchSpanProcessor(exp, sdktrace.WithBatchTimeout(time.Hour))
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bsp))
	tracer := provider.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	span.RecordError(errBoom, attribute.Bool("retried", true))
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bsp.ForceFlush(ctx))

	require.Equal(t, 1, exp.count())
	events := exp.spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "exception", events[0].Name)

	byKey := make(map[attribute.Key]attribute.Value, len(events[0].Attributes))
	for _, kv := range events[0].Attributes {
		byKey[kv.Key] = kv.Value
	}
	assert.Equal(t, "boom", byKey["exception.message"].AsString())
	assert.Contains(t, byKey["exception.type"].AsString(), "errorString")
	assert.True(t, byKey["retried"].AsBool())
}

func TestNeverSampleProducesUnrecordedSpan(t *testing.T) {
	exp := &recordingSpanExporter{}
	bsp := sdktrace.NewBatchSpanProcessor(exp, sdktrace.WithBatchTimeout(time.Hour))
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.NeverSample()),
		sdktrace.WithSpanProcessor(bsp),
	)
	tracer := provider.Tracer("test")

	_, span := tracer.Start(context.Background(), "op")
	assert.False(t, span.IsRecording())
	span.SetAttributes(attribute.Bool("ignored", true))
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bsp.ForceFlush(ctx))
	assert.Equal(t, 0, exp.count())
}

func TestTracerProviderShutdownIsIdempotentAndRejectsNothingTwice(t *testing.T) {
	exp := &recordingSpanExporter{}
	bsp := sdktrace.NewBatchSpanProcessor(exp)
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bsp))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, provider.Shutdown(ctx))
	require.NoError(t, provider.Shutdown(ctx))
}
