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

// Package metricdata defines the output shapes produced by a collection
// cycle: the immutable snapshots handed to an Exporter. Nothing in this
// package is mutated after it is produced; a reader takes a new snapshot
// every cycle instead of reusing and mutating the previous one.
package metricdata // import "github.com/CodeBlanch/otelcore/sdk/metric/metricdata"

import (
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/resource"
)

// Temporality defines the window an aggregation covers.
type Temporality int

const (
	// CumulativeTemporality aggregates values from the start of the
	// process (or instrument registration) through the current
	// collection.
	CumulativeTemporality Temporality = iota + 1
	// DeltaTemporality aggregates values since the previous collection
	// only; the aggregator resets its running state after each
	// snapshot.
	DeltaTemporality
)

func (t Temporality) String() string {
	switch t {
	case CumulativeTemporality:
		return "Cumulative"
	case DeltaTemporality:
		return "Delta"
	default:
		return "unknown"
	}
}

// ResourceMetrics is the complete output of a single collection cycle
// for one Reader.
type ResourceMetrics struct {
	Resource      *resource.Resource
	ScopeMetrics  []ScopeMetrics
}

// ScopeMetrics groups Metrics produced by a single instrumentation Scope.
type ScopeMetrics struct {
	Scope   instrumentation.Scope
	Metrics []Metrics
}

// Metrics is a single instrument's aggregated data, named and described
// as it was registered.
type Metrics struct {
	Name        string
	Description string
	Unit        string
	Data        Aggregation
}

// Aggregation is implemented by Sum[N], Gauge[N], Histogram[N], and
// ExponentialHistogram[N]. It is a marker interface: callers type-switch
// on the concrete type to interpret Data.
type Aggregation interface {
	privateAggregation()
}

// Extrema holds an optional min or max value; Valid is false when the
// underlying aggregation was configured not to track it.
type Extrema[N int64 | float64] struct {
	value N
	valid bool
}

// NewExtrema returns a valid Extrema wrapping v.
func NewExtrema[N int64 | float64](v N) Extrema[N] {
	return Extrema[N]{value: v, valid: true}
}

// Value returns the wrapped value and whether it is valid.
func (e Extrema[N]) Value() (N, bool) { return e.value, e.valid }

// DataPoint is one attribute-set's value over [StartTime, Time].
type DataPoint[N int64 | float64] struct {
	Attributes attribute.Set
	StartTime  time.Time
	Time       time.Time
	Value      N

	// Exemplars are optional sampled raw measurements that contributed
	// to Value.
	Exemplars []Exemplar[N]
}

// Sum is the aggregation produced by a SumKernel.
type Sum[N int64 | float64] struct {
	DataPoints  []DataPoint[N]
	Temporality Temporality
	IsMonotonic bool
}

func (Sum[N]) privateAggregation() {}

// Gauge is the aggregation produced by a LastValue kernel.
type Gauge[N int64 | float64] struct {
	DataPoints []DataPoint[N]
}

func (Gauge[N]) privateAggregation() {}

// HistogramDataPoint is one attribute-set's explicit-bucket histogram
// over [StartTime, Time].
type HistogramDataPoint[N int64 | float64] struct {
	Attributes   attribute.Set
	StartTime    time.Time
	Time         time.Time
	Count        uint64
	Sum          N
	Bounds       []float64
	BucketCounts []uint64
	Min          Extrema[N]
	Max          Extrema[N]
	Exemplars    []Exemplar[N]
}

// Histogram is the aggregation produced by an ExplicitBucketHistogram
// kernel.
type Histogram[N int64 | float64] struct {
	DataPoints  []HistogramDataPoint[N]
	Temporality Temporality
}

func (Histogram[N]) privateAggregation() {}

// ExponentialBucket is a contiguous run of bucket counts starting at
// base-2 index Offset.
type ExponentialBucket struct {
	Offset int32
	Counts []uint64
}

// ExponentialHistogramDataPoint is one attribute-set's base-2
// exponential histogram over [StartTime, Time].
type ExponentialHistogramDataPoint[N int64 | float64] struct {
	Attributes    attribute.Set
	StartTime     time.Time
	Time          time.Time
	Count         uint64
	Sum           N
	Scale         int32
	ZeroCount     uint64
	ZeroThreshold float64
	PositiveBucket ExponentialBucket
	NegativeBucket ExponentialBucket
	Min           Extrema[N]
	Max           Extrema[N]
	Exemplars     []Exemplar[N]
}

// ExponentialHistogram is the aggregation produced by a
// Base2ExponentialHistogram kernel.
type ExponentialHistogram[N int64 | float64] struct {
	DataPoints  []ExponentialHistogramDataPoint[N]
	Temporality Temporality
}

func (ExponentialHistogram[N]) privateAggregation() {}

// Exemplar is a raw measurement recorded alongside an aggregate value,
// kept to let a backend tie an aggregate back to one contributing
// trace.
type Exemplar[N int64 | float64] struct {
	FilteredAttributes []attribute.KeyValue
	Time               time.Time
	Value              N
	SpanID             []byte
	TraceID            []byte
}
