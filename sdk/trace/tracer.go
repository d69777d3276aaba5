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

package trace // import "github.com/CodeBlanch/otelcore/sdk/trace"

import (
	"context"
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
)

type contextKey struct{}

var activeSpanKey contextKey

// ContextWithSpanContext returns a copy of ctx carrying sc as the active
// span context for any child spans started from it.
func ContextWithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, activeSpanKey, sc)
}

// SpanContextFromContext extracts the active SpanContext from ctx, or
// the zero value if none is set.
func SpanContextFromContext(ctx context.Context) SpanContext {
	sc, _ := ctx.Value(activeSpanKey).(SpanContext)
	return sc
}

// StartOption configures a single Start call.
type StartOption func(*startConfig)

type startConfig struct {
	kind       SpanKind
	attrs      []attribute.KeyValue
	links      []Link
	newRoot    bool
	timestamp  time.Time
}

func WithSpanKind(kind SpanKind) StartOption { return func(c *startConfig) { c.kind = kind } }

func WithAttributes(attrs ...attribute.KeyValue) StartOption {
	return func(c *startConfig) { c.attrs = append(c.attrs, attrs...) }
}

func WithLinks(links ...Link) StartOption {
	return func(c *startConfig) { c.links = append(c.links, links...) }
}

// WithNewRoot forces the new span to ignore any parent found in ctx and
// begin a new trace.
func WithNewRoot() StartOption { return func(c *startConfig) { c.newRoot = true } }

func WithTimestamp(t time.Time) StartOption { return func(c *startConfig) { c.timestamp = t } }

// tracer is the SDK's Tracer implementation, scoped to one instrumentation
// library and backed by a shared TracerProvider.
type tracer struct {
	scope    instrumentation.Scope
	provider *TracerProvider
}

// Start begins a new span, consults the provider's Sampler, and returns
// a context carrying the new span alongside the Span itself.
func (t *tracer) Start(ctx context.Context, name string, opts ...StartOption) (context.Context, *span) {
	cfg := startConfig{kind: SpanKindInternal}
	for _, opt := range opts {
		opt(&cfg)
	}

	var parent SpanContext
	if !cfg.newRoot {
		parent = SpanContextFromContext(ctx)
	}

	var traceID TraceID
	var spanID SpanID
	if parent.IsValid() {
		traceID = parent.TraceID()
		spanID = t.provider.idGenerator.NewSpanID(ctx, traceID)
	} else {
		traceID, spanID = t.provider.idGenerator.NewIDs(ctx)
	}

	result := t.provider.sampler.ShouldSample(SamplingParameters{
		ParentContext: parent,
		TraceID:       traceID,
		Name:          name,
		Attributes:    cfg.attrs,
	})

	flags := TraceFlags(0)
	if result.Decision == RecordAndSample {
		flags = FlagsSampled
	}
	sc := NewSpanContext(traceID, spanID, flags, result.TraceState, false)

	startTime := cfg.timestamp
	if startTime.IsZero() {
		startTime = time.Now()
	}

	s := &span{
		name:      name,
		sc:        sc,
		parent:    parent,
		kind:      cfg.kind,
		startTime: startTime,
		attrs:     append([]attribute.KeyValue(nil), cfg.attrs...),
		links:     append([]Link(nil), cfg.links...),
		scope:     t.scope,
		res:       t.provider.resource,
		recorded:  result.Decision != Drop,
		sampled:   result.Decision == RecordAndSample,
		tracer:    t,
	}

	if s.recorded {
		for _, p := range t.provider.processors {
			p.OnStart(parent, s)
		}
	}

	return ContextWithSpanContext(ctx, sc), s
}

func (t *tracer) onEnd(s *span) {
	for _, p := range t.provider.processors {
		p.OnEnd(s)
	}
}
