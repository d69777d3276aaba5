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

// Package aggregation holds the configuration types a View or a Reader's
// default uses to select which aggregation kernel an instrument gets.
// These are declarative: the actual kernels live in
// sdk/metric/internal/aggregate.
package aggregation // import "github.com/CodeBlanch/otelcore/sdk/metric/aggregation"

import (
	"errors"
	"fmt"
)

// ErrInvalidAggregation is returned by Aggregation.err() style validation
// helpers; kept comparable so callers can errors.Is against it.
var ErrInvalidAggregation = errors.New("aggregation: invalid aggregation")

// Aggregation configures how measurements are combined into a metric
// output. A nil Aggregation, or Default, means "use the reader's default
// for the instrument kind"; every other concrete type, zero value
// included, selects its own aggregation.
type Aggregation interface {
	// copy returns a deep copy, so a mutable Boundaries slice can't be
	// mutated out from under a compiled view.
	copy() Aggregation
	// err reports whether the Aggregation's configuration is valid.
	err() error
}

// Drop suppresses an instrument's output entirely.
type Drop struct{}

func (Drop) copy() Aggregation { return Drop{} }
func (Drop) err() error        { return nil }

// Default defers to the Reader's default aggregation for the
// instrument's kind.
type Default struct{}

func (Default) copy() Aggregation { return Default{} }
func (Default) err() error        { return nil }

// Sum aggregates measurements by addition.
type Sum struct {
	// Monotonic reports whether negative increments are rejected.
	Monotonic bool
}

func (s Sum) copy() Aggregation { return s }
func (Sum) err() error          { return nil }

// LastValue aggregates by keeping only the most recently reported
// measurement per attribute set within a collection window.
type LastValue struct{}

func (LastValue) copy() Aggregation { return LastValue{} }
func (LastValue) err() error        { return nil }

// ExplicitBucketHistogram aggregates measurements into a fixed set of
// buckets bounded by Boundaries.
type ExplicitBucketHistogram struct {
	// Boundaries are the upper bounds of the histogram's non-last
	// buckets, in increasing order.
	Boundaries []float64
	// NoMinMax disables min/max tracking.
	NoMinMax bool
}

func (h ExplicitBucketHistogram) copy() Aggregation {
	b := make([]float64, len(h.Boundaries))
	copy(b, h.Boundaries)
	return ExplicitBucketHistogram{Boundaries: b, NoMinMax: h.NoMinMax}
}

func (h ExplicitBucketHistogram) err() error {
	for i := 1; i < len(h.Boundaries); i++ {
		if h.Boundaries[i-1] >= h.Boundaries[i] {
			return fmt.Errorf("%w: histogram boundaries not strictly increasing", ErrInvalidAggregation)
		}
	}
	return nil
}

// ExponentialHistogram aggregates measurements into an automatically
// rescaled set of base-2 exponential buckets.
type ExponentialHistogram struct {
	// MaxSize is the maximum number of buckets per sign (positive and
	// negative are each bounded independently). Zero means "use the
	// kernel's default."
	MaxSize int32
	// MaxScale is the starting (highest-resolution) scale the kernel
	// may use before it must rescale down. Zero means "use the
	// kernel's default."
	MaxScale int32
	// NoMinMax disables min/max tracking.
	NoMinMax bool
}

func (h ExponentialHistogram) copy() Aggregation { return h }
func (ExponentialHistogram) err() error          { return nil }
