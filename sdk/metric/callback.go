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

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/internal/aggregate"
	"github.com/CodeBlanch/otelcore/sdk/metric/view"
)

// Int64Observable is an asynchronous instrument observed only from
// within a registered callback.
type Int64Observable struct{ compiled []*aggregate.Compiled[int64] }

// Observe records value for attrs each time it is called; it does not
// check whether a callback for this instrument is running, so a call
// made outside a callback is recorded as well. Observations are never tied
// to a caller's span, since a callback runs at collection time rather
// than at any particular traced call site.
func (o Int64Observable) Observe(value int64, attrs ...attribute.KeyValue) {
	set, err := attribute.NewSet(attrs...)
	if err != nil {
		return
	}
	for _, c := range o.compiled {
		c.Record(context.Background(), value, set)
	}
}

// Float64Observable is an asynchronous instrument observed only from
// within a registered callback.
type Float64Observable struct{ compiled []*aggregate.Compiled[float64] }

func (o Float64Observable) Observe(value float64, attrs ...attribute.KeyValue) {
	set, err := attribute.NewSet(attrs...)
	if err != nil {
		return
	}
	for _, c := range o.compiled {
		c.Record(context.Background(), value, set)
	}
}

func (m *Meter) Int64ObservableCounter(name string, opts ...InstrumentOption) Int64Observable {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindObservableCounter)
	return Int64Observable{compiled: m.buildInt64(inst)}
}

func (m *Meter) Int64ObservableUpDownCounter(name string, opts ...InstrumentOption) Int64Observable {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindObservableUpDownCounter)
	return Int64Observable{compiled: m.buildInt64(inst)}
}

func (m *Meter) Int64ObservableGauge(name string, opts ...InstrumentOption) Int64Observable {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindObservableGauge)
	return Int64Observable{compiled: m.buildInt64(inst)}
}

func (m *Meter) Float64ObservableCounter(name string, opts ...InstrumentOption) Float64Observable {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindObservableCounter)
	return Float64Observable{compiled: m.buildFloat64(inst)}
}

func (m *Meter) Float64ObservableUpDownCounter(name string, opts ...InstrumentOption) Float64Observable {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindObservableUpDownCounter)
	return Float64Observable{compiled: m.buildFloat64(inst)}
}

func (m *Meter) Float64ObservableGauge(name string, opts ...InstrumentOption) Float64Observable {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindObservableGauge)
	return Float64Observable{compiled: m.buildFloat64(inst)}
}

// Callback is invoked once per collection to let asynchronous
// instruments report their current values via Observe.
type Callback func(ctx context.Context) error

// RegisterCallback registers cb to run on every collection of every
// Reader attached to the Meter's provider. Registration applies process
// -wide for this provider; there is no per-Reader callback scoping.
func (m *Meter) RegisterCallback(cb Callback, instruments ...any) {
	_ = instruments // reserved: a future version may use this to skip unrelated collections.

	p := m.provider
	p.mu.Lock()
	pipelines := make([]*pipeline, len(p.pipelines))
	copy(pipelines, p.pipelines)
	p.mu.Unlock()

	for _, pl := range pipelines {
		pl.addCallback(func(ctx context.Context) error {
			if err := cb(ctx); err != nil {
				return fmt.Errorf("otelcore/metric: callback for scope %q failed: %w", m.scope.Name, err)
			}
			return nil
		})
	}
}
