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

// Package metric provides the metric aggregation engine's public
// surface: MeterProvider, Meter, and the typed instruments recorded
// against them.
package metric // import "github.com/CodeBlanch/otelcore/sdk/metric"

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/metric/view"
	"github.com/CodeBlanch/otelcore/sdk/resource"
)

// MeterProvider is the entry point for obtaining a Meter. A Reader
// passed to NewMeterProvider receives every measurement recorded
// through any Meter this provider creates.
type MeterProvider struct {
	res   *resource.Resource
	views []view.View

	mu        sync.Mutex
	pipelines []*pipeline
	readers   []Reader
	meters    map[instrumentation.Scope]*Meter
	stopped   atomic.Bool
}

// Option configures a MeterProvider.
type Option func(*MeterProvider)

// WithResource sets the Resource describing the entity producing
// metrics. Defaults to resource.Empty().
func WithResource(res *resource.Resource) Option {
	return func(p *MeterProvider) { p.res = res }
}

// WithReader adds a Reader the provider will deliver measurements to.
func WithReader(r Reader) Option {
	return func(p *MeterProvider) { p.readers = append(p.readers, r) }
}

// WithView registers a View consulted, in registration order, when an
// instrument is first created; the first View that matches wins.
func WithView(v view.View) Option {
	return func(p *MeterProvider) { p.views = append(p.views, v) }
}

// NewMeterProvider constructs a MeterProvider with the given options.
func NewMeterProvider(opts ...Option) *MeterProvider {
	p := &MeterProvider{res: resource.Empty(), meters: make(map[instrumentation.Scope]*Meter)}
	for _, opt := range opts {
		opt(p)
	}

	for _, r := range p.readers {
		delta := false
		pl := newPipeline(p.res, delta)
		p.pipelines = append(p.pipelines, pl)
		r.register(pl)
	}

	return p
}

// pipelineFor returns the pipeline backing r, relying on readers and
// pipelines having been built in lockstep by NewMeterProvider and never
// mutated afterward.
func (p *MeterProvider) pipelineFor(r Reader) *pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, reader := range p.readers {
		if reader == r {
			return p.pipelines[i]
		}
	}
	return nil
}

// Meter returns a Meter scoped to name, creating it if this is the
// first call for that scope.
func (p *MeterProvider) Meter(name string, opts ...MeterOption) *Meter {
	scope := instrumentation.Scope{Name: name}
	for _, opt := range opts {
		opt(&scope)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.meters[scope]; ok {
		return m
	}
	m := &Meter{scope: scope, provider: p}
	p.meters[scope] = m
	return m
}

// MeterOption configures a Meter's instrumentation.Scope.
type MeterOption func(*instrumentation.Scope)

// WithInstrumentationVersion sets the Meter's reported version.
func WithInstrumentationVersion(v string) MeterOption {
	return func(s *instrumentation.Scope) { s.Version = v }
}

// WithSchemaURL sets the Meter's reported schema URL.
func WithSchemaURL(url string) MeterOption {
	return func(s *instrumentation.Scope) { s.SchemaURL = url }
}

// ForceFlush flushes every Reader registered with the provider.
func (p *MeterProvider) ForceFlush(ctx context.Context) error {
	p.mu.Lock()
	readers := make([]Reader, len(p.readers))
	copy(readers, p.readers)
	p.mu.Unlock()

	var firstErr error
	for _, r := range readers {
		if err := r.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown shuts down every Reader registered with the provider.
// Subsequent measurements recorded through Meters from this provider
// become silent no-ops.
func (p *MeterProvider) Shutdown(ctx context.Context) error {
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}

	p.mu.Lock()
	readers := make([]Reader, len(p.readers))
	copy(readers, p.readers)
	p.mu.Unlock()

	var firstErr error
	for _, r := range readers {
		if err := r.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
