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

	"github.com/CodeBlanch/otelcore/sdk/metric/aggregation"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
	"github.com/CodeBlanch/otelcore/sdk/metric/view"
)

// Reader collects metrics from a MeterProvider and hands them to an
// Exporter, either on a schedule (PeriodicReader) or only when asked
// (ManualReader).
type Reader interface {
	// register binds the Reader to the pipeline it will collect from.
	// Called exactly once, by the MeterProvider that owns this Reader.
	register(p *pipeline)

	// Temporality reports which temporality new instruments of kind
	// should aggregate in.
	Temporality(kind view.InstrumentKind) metricdata.Temporality

	// Aggregation reports the default aggregation new instruments of
	// kind should use, absent a View overriding it.
	Aggregation(kind view.InstrumentKind) aggregation.Aggregation

	// Collect gathers the current state of every instrument bound to
	// this Reader's pipeline.
	Collect(ctx context.Context) (metricdata.ResourceMetrics, error)

	// ForceFlush collects and exports immediately, bypassing the
	// Reader's normal schedule.
	ForceFlush(ctx context.Context) error

	// Shutdown exports one final collection through the Reader's
	// Exporter, if it has one, and then disables further collection.
	// ManualReader has no Exporter and only disables collection.
	Shutdown(ctx context.Context) error
}

// DefaultTemporality is the temporality selector ManualReader uses:
// cumulative for every instrument kind.
func DefaultTemporality(view.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

// DefaultAggregation is the fallback aggregation selector: sums for
// counters, last-value for gauges, explicit-bucket histograms for
// Histogram instruments.
func DefaultAggregation(kind view.InstrumentKind) aggregation.Aggregation {
	switch kind {
	case view.InstrumentKindCounter, view.InstrumentKindObservableCounter:
		return aggregation.Sum{Monotonic: true}
	case view.InstrumentKindUpDownCounter, view.InstrumentKindObservableUpDownCounter:
		return aggregation.Sum{Monotonic: false}
	case view.InstrumentKindGauge, view.InstrumentKindObservableGauge:
		return aggregation.LastValue{}
	case view.InstrumentKindHistogram:
		return aggregation.ExplicitBucketHistogram{
			Boundaries: []float64{0, 5, 10, 25, 50, 75, 100, 250, 500, 750, 1000, 2500, 5000, 7500, 10000},
		}
	default:
		return aggregation.Drop{}
	}
}
