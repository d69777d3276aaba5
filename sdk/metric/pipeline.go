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

package metric // import "github.com/CodeBlanch/otelcore/sdk/metric"

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/CodeBlanch/otelcore"
	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
	"github.com/CodeBlanch/otelcore/sdk/resource"
)

// instrumentKey identifies one instrument's identity within a scope, for
// duplicate-instrument detection.
type instrumentKey struct {
	Name        string
	Description string
	Unit        string
}

// aggregator is the type-erased view of an aggregate.Compiled[N] that a
// pipeline needs: produce this instrument's current Aggregation.
type aggregator interface {
	collect(now time.Time, delta bool) metricdata.Aggregation
}

// pipeline owns every instrument bound to one Reader and assembles their
// snapshots into a ResourceMetrics batch on each Collect.
type pipeline struct {
	resource *resource.Resource
	delta    bool

	mu        sync.Mutex
	scopes    map[instrumentation.Scope]map[instrumentKey]*metricEntry
	callbacks []func(context.Context) error
}

type metricEntry struct {
	name, description, unit string
	agg                     aggregator
}

func newPipeline(res *resource.Resource, delta bool) *pipeline {
	return &pipeline{resource: res, delta: delta, scopes: make(map[instrumentation.Scope]map[instrumentKey]*metricEntry)}
}

// addAggregator registers agg under scope/key. If an instrument with the
// same name but a conflicting description or unit already exists in this
// scope, the registration still succeeds (measurements are independent)
// but a DuplicateInstrument warning is logged, matching spec.md §6's
// "warning, non-fatal" error kind.
func (p *pipeline) addAggregator(scope instrumentation.Scope, name, description, unit string, agg aggregator) {
	p.mu.Lock()
	defer p.mu.Unlock()

	byKey, ok := p.scopes[scope]
	if !ok {
		byKey = make(map[instrumentKey]*metricEntry)
		p.scopes[scope] = byKey
	}

	key := instrumentKey{Name: name, Description: description, Unit: unit}
	if _, exists := byKey[key]; exists {
		return
	}

	for k := range byKey {
		if strings.EqualFold(k.Name, name) && (k.Description != description || k.Unit != unit) {
			otelcore.Handle(fmt.Errorf("otelcore/metric: duplicate instrument name %q in scope %q with differing description/unit", name, scope.Name))
			break
		}
	}

	byKey[key] = &metricEntry{name: name, description: description, unit: unit, agg: agg}
}

func (p *pipeline) addCallback(cb func(context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, cb)
}

// produce runs every registered callback, then snapshots every
// instrument into a ResourceMetrics batch.
func (p *pipeline) produce(ctx context.Context) (metricdata.ResourceMetrics, error) {
	p.mu.Lock()
	callbacks := make([]func(context.Context) error, len(p.callbacks))
	copy(callbacks, p.callbacks)
	p.mu.Unlock()

	var errs []error
	for _, cb := range callbacks {
		if err := cb(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	out := metricdata.ResourceMetrics{Resource: p.resource}
	for scope, byKey := range p.scopes {
		sm := metricdata.ScopeMetrics{Scope: scope}
		for _, entry := range byKey {
			sm.Metrics = append(sm.Metrics, metricdata.Metrics{
				Name:        entry.name,
				Description: entry.description,
				Unit:        entry.unit,
				Data:        entry.agg.collect(now, p.delta),
			})
		}
		out.ScopeMetrics = append(out.ScopeMetrics, sm)
	}

	if len(errs) > 0 {
		return out, fmt.Errorf("otelcore/metric: %d callback(s) failed: %w", len(errs), errs[0])
	}
	return out, nil
}
