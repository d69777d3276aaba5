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

// Package trace implements the span half of the telemetry SDK: spans,
// samplers, and the batch/simple processors that hand finished spans to
// an Exporter.
package trace // import "github.com/CodeBlanch/otelcore/sdk/trace"

import "encoding/hex"

// TraceID uniquely identifies a trace.
type TraceID [16]byte

// IsValid reports whether id is not the all-zero TraceID.
func (id TraceID) IsValid() bool { return id != [16]byte{} }

func (id TraceID) String() string { return hex.EncodeToString(id[:]) }

// SpanID uniquely identifies a span within a trace.
type SpanID [8]byte

// IsValid reports whether id is not the all-zero SpanID.
func (id SpanID) IsValid() bool { return id != [8]byte{} }

func (id SpanID) String() string { return hex.EncodeToString(id[:]) }

// TraceFlags carries per-trace flags (currently only sampled).
type TraceFlags byte

const FlagsSampled = TraceFlags(0x01)

func (f TraceFlags) IsSampled() bool { return f&FlagsSampled == FlagsSampled }

// SpanContext is the immutable identity propagated for a span: its
// trace/span IDs, sampling decision, and trace state.
type SpanContext struct {
	traceID    TraceID
	spanID     SpanID
	traceFlags TraceFlags
	traceState string
	remote     bool
}

// NewSpanContext builds a SpanContext from its fields.
func NewSpanContext(traceID TraceID, spanID SpanID, flags TraceFlags, traceState string, remote bool) SpanContext {
	return SpanContext{traceID: traceID, spanID: spanID, traceFlags: flags, traceState: traceState, remote: remote}
}

func (sc SpanContext) TraceID() TraceID      { return sc.traceID }
func (sc SpanContext) SpanID() SpanID        { return sc.spanID }
func (sc SpanContext) TraceFlags() TraceFlags { return sc.traceFlags }
func (sc SpanContext) TraceState() string    { return sc.traceState }
func (sc SpanContext) IsRemote() bool        { return sc.remote }
func (sc SpanContext) IsSampled() bool       { return sc.traceFlags.IsSampled() }
func (sc SpanContext) IsValid() bool         { return sc.traceID.IsValid() && sc.spanID.IsValid() }

// WithSpanID returns a copy of sc with spanID replaced.
func (sc SpanContext) WithSpanID(spanID SpanID) SpanContext {
	sc.spanID = spanID
	return sc
}

// WithTraceFlags returns a copy of sc with its flags replaced.
func (sc SpanContext) WithTraceFlags(flags TraceFlags) SpanContext {
	sc.traceFlags = flags
	return sc
}

// WithRemote returns a copy of sc with its remote bit set to remote.
func (sc SpanContext) WithRemote(remote bool) SpanContext {
	sc.remote = remote
	return sc
}
