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
	"sync/atomic"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/internal/aggregate"
	"github.com/CodeBlanch/otelcore/sdk/metric/view"
)

// InstrumentOption configures an instrument's description and unit.
type InstrumentOption func(*instrumentConfig)

type instrumentConfig struct {
	description string
	unit        string
}

// WithDescription sets an instrument's human-readable description.
func WithDescription(desc string) InstrumentOption {
	return func(c *instrumentConfig) { c.description = desc }
}

// WithUnit sets an instrument's unit of measurement.
func WithUnit(unit string) InstrumentOption {
	return func(c *instrumentConfig) { c.unit = unit }
}

func resolveConfig(opts []InstrumentOption) instrumentConfig {
	var c instrumentConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Int64Counter records monotonically increasing int64 measurements.
type Int64Counter struct {
	compiled []*aggregate.Compiled[int64]
	stopped  *atomic.Bool
}

// Int64Counter creates a new counter instrument.
func (m *Meter) Int64Counter(name string, opts ...InstrumentOption) Int64Counter {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindCounter)
	return Int64Counter{compiled: m.buildInt64(inst), stopped: &m.provider.stopped}
}

// Add records value, which must be non-negative.
func (c Int64Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	recordInt64(ctx, c.stopped, c.compiled, value, attrs)
}

// Float64Counter records monotonically increasing float64 measurements.
type Float64Counter struct {
	compiled []*aggregate.Compiled[float64]
	stopped  *atomic.Bool
}

func (m *Meter) Float64Counter(name string, opts ...InstrumentOption) Float64Counter {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindCounter)
	return Float64Counter{compiled: m.buildFloat64(inst), stopped: &m.provider.stopped}
}

func (c Float64Counter) Add(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	recordFloat64(ctx, c.stopped, c.compiled, value, attrs)
}

// Int64UpDownCounter records int64 measurements that may increase or
// decrease.
type Int64UpDownCounter struct {
	compiled []*aggregate.Compiled[int64]
	stopped  *atomic.Bool
}

func (m *Meter) Int64UpDownCounter(name string, opts ...InstrumentOption) Int64UpDownCounter {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindUpDownCounter)
	return Int64UpDownCounter{compiled: m.buildInt64(inst), stopped: &m.provider.stopped}
}

func (c Int64UpDownCounter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	recordInt64(ctx, c.stopped, c.compiled, value, attrs)
}

// Float64UpDownCounter records float64 measurements that may increase
// or decrease.
type Float64UpDownCounter struct {
	compiled []*aggregate.Compiled[float64]
	stopped  *atomic.Bool
}

func (m *Meter) Float64UpDownCounter(name string, opts ...InstrumentOption) Float64UpDownCounter {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindUpDownCounter)
	return Float64UpDownCounter{compiled: m.buildFloat64(inst), stopped: &m.provider.stopped}
}

func (c Float64UpDownCounter) Add(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	recordFloat64(ctx, c.stopped, c.compiled, value, attrs)
}

// Int64Histogram records a distribution of int64 measurements.
type Int64Histogram struct {
	compiled []*aggregate.Compiled[int64]
	stopped  *atomic.Bool
}

func (m *Meter) Int64Histogram(name string, opts ...InstrumentOption) Int64Histogram {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindHistogram)
	return Int64Histogram{compiled: m.buildInt64(inst), stopped: &m.provider.stopped}
}

func (h Int64Histogram) Record(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	recordInt64(ctx, h.stopped, h.compiled, value, attrs)
}

// Float64Histogram records a distribution of float64 measurements.
type Float64Histogram struct {
	compiled []*aggregate.Compiled[float64]
	stopped  *atomic.Bool
}

func (m *Meter) Float64Histogram(name string, opts ...InstrumentOption) Float64Histogram {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindHistogram)
	return Float64Histogram{compiled: m.buildFloat64(inst), stopped: &m.provider.stopped}
}

func (h Float64Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	recordFloat64(ctx, h.stopped, h.compiled, value, attrs)
}

// Int64Gauge records a non-additive current value synchronously.
type Int64Gauge struct {
	compiled []*aggregate.Compiled[int64]
	stopped  *atomic.Bool
}

func (m *Meter) Int64Gauge(name string, opts ...InstrumentOption) Int64Gauge {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindGauge)
	return Int64Gauge{compiled: m.buildInt64(inst), stopped: &m.provider.stopped}
}

func (g Int64Gauge) Record(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	recordInt64(ctx, g.stopped, g.compiled, value, attrs)
}

// Float64Gauge records a non-additive current value synchronously.
type Float64Gauge struct {
	compiled []*aggregate.Compiled[float64]
	stopped  *atomic.Bool
}

func (m *Meter) Float64Gauge(name string, opts ...InstrumentOption) Float64Gauge {
	cfg := resolveConfig(opts)
	inst := m.newInstrument(name, cfg.description, cfg.unit, view.InstrumentKindGauge)
	return Float64Gauge{compiled: m.buildFloat64(inst), stopped: &m.provider.stopped}
}

func (g Float64Gauge) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	recordFloat64(ctx, g.stopped, g.compiled, value, attrs)
}

// recordInt64 drops the measurement, without touching any aggregator, if
// ctx has already been canceled or the owning MeterProvider has been shut
// down; a shut-down provider's instruments become permanent no-ops rather
// than erroring.
func recordInt64(ctx context.Context, stopped *atomic.Bool, compiled []*aggregate.Compiled[int64], value int64, attrs []attribute.KeyValue) {
	if ctx.Err() != nil || stopped.Load() || len(compiled) == 0 {
		return
	}
	set, err := attribute.NewSet(attrs...)
	if err != nil {
		return
	}
	for _, c := range compiled {
		c.Record(ctx, value, set)
	}
}

func recordFloat64(ctx context.Context, stopped *atomic.Bool, compiled []*aggregate.Compiled[float64], value float64, attrs []attribute.KeyValue) {
	if ctx.Err() != nil || stopped.Load() || len(compiled) == 0 {
		return
	}
	set, err := attribute.NewSet(attrs...)
	if err != nil {
		return
	}
	for _, c := range compiled {
		c.Record(ctx, value, set)
	}
}
