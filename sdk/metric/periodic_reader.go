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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CodeBlanch/otelcore"
	"github.com/CodeBlanch/otelcore/sdk/metric/aggregation"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
	"github.com/CodeBlanch/otelcore/sdk/metric/view"
)

const (
	defaultPeriodicInterval = 60 * time.Second
	defaultPeriodicTimeout  = 30 * time.Second
)

// PeriodicReader collects and exports metrics on a fixed interval, plus
// on explicit ForceFlush/Shutdown.
type PeriodicReader struct {
	exporter Exporter
	interval time.Duration
	timeout  time.Duration

	mu       sync.Mutex
	pipeline *pipeline
	done     chan struct{}
	stopped  bool
}

// PeriodicReaderOption configures a PeriodicReader.
type PeriodicReaderOption func(*PeriodicReader)

// WithInterval overrides the default 60s collection interval.
func WithInterval(d time.Duration) PeriodicReaderOption {
	return func(r *PeriodicReader) { r.interval = d }
}

// WithTimeout overrides the default 30s per-export timeout.
func WithTimeout(d time.Duration) PeriodicReaderOption {
	return func(r *PeriodicReader) { r.timeout = d }
}

// NewPeriodicReader constructs a PeriodicReader exporting through exp.
func NewPeriodicReader(exp Exporter, opts ...PeriodicReaderOption) *PeriodicReader {
	r := &PeriodicReader{exporter: exp, interval: defaultPeriodicInterval, timeout: defaultPeriodicTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *PeriodicReader) register(p *pipeline) {
	r.mu.Lock()
	r.pipeline = p
	r.done = make(chan struct{})
	r.mu.Unlock()
	go r.run()
}

func (r *PeriodicReader) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			if err := r.collectAndExport(ctx); err != nil {
				otelcore.Handle(err)
			}
			cancel()
		case <-r.done:
			return
		}
	}
}

func (r *PeriodicReader) collectAndExport(ctx context.Context) error {
	data, err := r.Collect(ctx)
	if err != nil {
		return err
	}
	if err := r.exporter.Export(ctx, &data); err != nil {
		return fmt.Errorf("%w: %v", otelcore.ErrExporterFailure, err)
	}
	return nil
}

func (r *PeriodicReader) Temporality(kind view.InstrumentKind) metricdata.Temporality {
	return r.exporter.Temporality(kind)
}

func (r *PeriodicReader) Aggregation(kind view.InstrumentKind) aggregation.Aggregation {
	return r.exporter.Aggregation(kind)
}

func (r *PeriodicReader) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	r.mu.Lock()
	p := r.pipeline
	stopped := r.stopped
	r.mu.Unlock()
	if p == nil {
		return metricdata.ResourceMetrics{}, errors.New("otelcore/metric: reader not registered with a MeterProvider")
	}
	if stopped {
		return metricdata.ResourceMetrics{}, nil
	}
	return p.produce(ctx)
}

func (r *PeriodicReader) ForceFlush(ctx context.Context) error {
	if err := r.collectAndExport(ctx); err != nil {
		return err
	}
	return r.exporter.ForceFlush(ctx)
}

func (r *PeriodicReader) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	done := r.done
	p := r.pipeline
	r.mu.Unlock()

	if done != nil {
		close(done)
	}

	// Collect reports nothing once stopped is set, so the final flush
	// reads the pipeline directly.
	var err error
	if p != nil {
		data, produceErr := p.produce(ctx)
		err = produceErr
		if err == nil {
			if exportErr := r.exporter.Export(ctx, &data); exportErr != nil {
				err = fmt.Errorf("%w: %v", otelcore.ErrExporterFailure, exportErr)
			}
		}
	}
	if shutdownErr := r.exporter.Shutdown(ctx); err == nil {
		err = shutdownErr
	}
	return err
}

// ManualReader only collects when Collect or ForceFlush is called
// explicitly; it never runs a background goroutine. Useful for tests
// and pull-based exposition (e.g. a scrape endpoint).
type ManualReader struct {
	temporality func(view.InstrumentKind) metricdata.Temporality
	aggregation func(view.InstrumentKind) aggregation.Aggregation

	mu       sync.Mutex
	pipeline *pipeline
	stopped  bool
}

// NewManualReader constructs a ManualReader that uses DefaultTemporality
// and DefaultAggregation.
func NewManualReader() *ManualReader {
	return &ManualReader{temporality: DefaultTemporality, aggregation: DefaultAggregation}
}

func (r *ManualReader) register(p *pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipeline = p
}

func (r *ManualReader) Temporality(kind view.InstrumentKind) metricdata.Temporality {
	return r.temporality(kind)
}

func (r *ManualReader) Aggregation(kind view.InstrumentKind) aggregation.Aggregation {
	return r.aggregation(kind)
}

func (r *ManualReader) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	r.mu.Lock()
	p := r.pipeline
	stopped := r.stopped
	r.mu.Unlock()
	if p == nil {
		return metricdata.ResourceMetrics{}, errors.New("otelcore/metric: reader not registered with a MeterProvider")
	}
	if stopped {
		return metricdata.ResourceMetrics{}, nil
	}
	return p.produce(ctx)
}

func (r *ManualReader) ForceFlush(ctx context.Context) error {
	_, err := r.Collect(ctx)
	return err
}

func (r *ManualReader) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	return nil
}
