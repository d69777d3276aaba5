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
	"sync"

	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/resource"
)

// TracerProvider owns the resource, sampler, ID generator, and span
// processors shared by every Tracer it hands out.
type TracerProvider struct {
	resource    *resource.Resource
	sampler     Sampler
	idGenerator IDGenerator

	mu         sync.Mutex
	processors []SpanProcessor
	tracers    map[instrumentation.Scope]*tracer
	stopped    bool
}

// Option configures a TracerProvider.
type Option func(*TracerProvider)

func WithResource(res *resource.Resource) Option {
	return func(p *TracerProvider) { p.resource = res }
}

func WithSampler(s Sampler) Option { return func(p *TracerProvider) { p.sampler = s } }

func WithIDGenerator(g IDGenerator) Option { return func(p *TracerProvider) { p.idGenerator = g } }

func WithSpanProcessor(sp SpanProcessor) Option {
	return func(p *TracerProvider) { p.processors = append(p.processors, sp) }
}

// NewTracerProvider constructs a TracerProvider; defaults are
// AlwaysSample, a crypto/rand-backed IDGenerator, and an empty Resource.
func NewTracerProvider(opts ...Option) *TracerProvider {
	p := &TracerProvider{
		resource:    resource.Empty(),
		sampler:     AlwaysSample(),
		idGenerator: NewRandomIDGenerator(),
		tracers:     make(map[instrumentation.Scope]*tracer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TracerOption configures the instrumentation.Scope of a Tracer.
type TracerOption func(*instrumentation.Scope)

func WithInstrumentationVersion(v string) TracerOption {
	return func(s *instrumentation.Scope) { s.Version = v }
}

func WithSchemaURL(url string) TracerOption {
	return func(s *instrumentation.Scope) { s.SchemaURL = url }
}

// Tracer returns a memoized Tracer for the named instrumentation scope.
func (p *TracerProvider) Tracer(name string, opts ...TracerOption) *tracer {
	scope := instrumentation.Scope{Name: name}
	for _, opt := range opts {
		opt(&scope)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.tracers[scope]; ok {
		return t
	}
	t := &tracer{scope: scope, provider: p}
	p.tracers[scope] = t
	return t
}

// ForceFlush flushes every registered SpanProcessor.
func (p *TracerProvider) ForceFlush(ctx context.Context) error {
	p.mu.Lock()
	processors := append([]SpanProcessor(nil), p.processors...)
	p.mu.Unlock()

	var firstErr error
	for _, sp := range processors {
		if err := sp.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown shuts down every registered SpanProcessor; idempotent.
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	processors := append([]SpanProcessor(nil), p.processors...)
	p.mu.Unlock()

	var firstErr error
	for _, sp := range processors {
		if err := sp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
