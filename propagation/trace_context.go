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

package propagation // import "github.com/CodeBlanch/otelcore/propagation"

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	sdktrace "github.com/CodeBlanch/otelcore/sdk/trace"
)

const (
	traceParentHeader = "traceparent"
	traceStateHeader  = "tracestate"
)

// TraceContext implements the W3C Trace Context propagation format.
type TraceContext struct{}

func (TraceContext) Fields() []string { return []string{traceParentHeader, traceStateHeader} }

// Inject writes the active SpanContext from ctx into carrier as a
// traceparent (and tracestate, if present) header. A ctx carrying no
// valid SpanContext is a silent no-op.
func (TraceContext) Inject(ctx context.Context, carrier TextMapCarrier) {
	sc := sdktrace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return
	}

	flags := "00"
	if sc.IsSampled() {
		flags = "01"
	}
	carrier.Set(traceParentHeader, fmt.Sprintf("00-%s-%s-%s", sc.TraceID(), sc.SpanID(), flags))
	if ts := sc.TraceState(); ts != "" {
		carrier.Set(traceStateHeader, ts)
	}
}

// Extract parses a traceparent/tracestate header pair out of carrier and
// returns a context carrying the resulting (remote) SpanContext. An
// absent or malformed traceparent leaves ctx unchanged.
func (TraceContext) Extract(ctx context.Context, carrier TextMapCarrier) context.Context {
	sc, ok := parseTraceParent(carrier.Get(traceParentHeader))
	if !ok {
		return ctx
	}
	sc = sc.WithRemote(true)
	if ts := carrier.Get(traceStateHeader); ts != "" {
		sc = sdktrace.NewSpanContext(sc.TraceID(), sc.SpanID(), sc.TraceFlags(), ts, true)
	}
	return sdktrace.ContextWithSpanContext(ctx, sc)
}

func parseTraceParent(h string) (sdktrace.SpanContext, bool) {
	parts := strings.Split(h, "-")
	if len(parts) != 4 {
		return sdktrace.SpanContext{}, false
	}
	version, traceIDHex, spanIDHex, flagsHex := parts[0], parts[1], parts[2], parts[3]
	if version != "00" || len(traceIDHex) != 32 || len(spanIDHex) != 16 || len(flagsHex) != 2 {
		return sdktrace.SpanContext{}, false
	}

	var traceID sdktrace.TraceID
	if _, err := hex.Decode(traceID[:], []byte(traceIDHex)); err != nil {
		return sdktrace.SpanContext{}, false
	}
	var spanID sdktrace.SpanID
	if _, err := hex.Decode(spanID[:], []byte(spanIDHex)); err != nil {
		return sdktrace.SpanContext{}, false
	}
	flagsByte, err := hex.DecodeString(flagsHex)
	if err != nil {
		return sdktrace.SpanContext{}, false
	}

	sc := sdktrace.NewSpanContext(traceID, spanID, sdktrace.TraceFlags(flagsByte[0]), "", true)
	if !sc.IsValid() {
		return sdktrace.SpanContext{}, false
	}
	return sc, true
}
