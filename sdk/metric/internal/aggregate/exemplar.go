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

package aggregate // import "github.com/CodeBlanch/otelcore/sdk/metric/internal/aggregate"

import (
	"fmt"
	"sync"

	"github.com/CodeBlanch/otelcore"
	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
)

func defaultReservoirPanicHandler(err error) { otelcore.Handle(err) }

// Reservoir samples raw measurements to keep alongside an aggregate
// value. Offer is called on the update path and must never panic into
// the caller; a reservoir that does is recovered and logged by
// offerSafely, matching spec.md's "a reservoir exception must never
// propagate into the update path" requirement.
type Reservoir[N Number] interface {
	Offer(value N, attrs []attribute.KeyValue, spanID, traceID []byte)
	Collect(dest *[]metricdata.Exemplar[N])
}

// offerSafely calls r.Offer, recovering and logging any panic so a
// malfunctioning reservoir can never take down a recorder's call stack.
func offerSafely[N Number](r Reservoir[N], value N, attrs []attribute.KeyValue, spanID, traceID []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			handleReservoirPanic(rec)
		}
	}()
	r.Offer(value, attrs, spanID, traceID)
}

func handleReservoirPanic(rec any) {
	reservoirPanicHandler(fmt.Errorf("otelcore/metric: exemplar reservoir panicked: %v", rec))
}

// reservoirPanicHandler is a package variable so tests can substitute a
// observable stub instead of reaching for the process-global logger.
var reservoirPanicHandler = defaultReservoirPanicHandler

// FixedSizeReservoir implements simple reservoir sampling with a fixed
// capacity: the first k offers are kept; subsequent offers replace a
// uniformly-random existing slot with decreasing probability, giving
// every offered measurement an equal chance of surviving to Collect.
type FixedSizeReservoir[N Number] struct {
	mu    sync.Mutex
	cap   int
	seen  int64
	slots []metricdata.Exemplar[N]
	rng   func(n int64) int64
}

// NewFixedSizeReservoir constructs a reservoir that keeps at most
// capacity samples.
func NewFixedSizeReservoir[N Number](capacity int, rng func(n int64) int64) *FixedSizeReservoir[N] {
	return &FixedSizeReservoir[N]{cap: capacity, rng: rng}
}

func (r *FixedSizeReservoir[N]) Offer(value N, attrs []attribute.KeyValue, spanID, traceID []byte) {
	if r.cap <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ex := metricdata.Exemplar[N]{FilteredAttributes: attrs, Value: value, SpanID: spanID, TraceID: traceID}
	r.seen++
	if len(r.slots) < r.cap {
		r.slots = append(r.slots, ex)
		return
	}
	j := r.rng(r.seen)
	if j < int64(r.cap) {
		r.slots[j] = ex
	}
}

func (r *FixedSizeReservoir[N]) Collect(dest *[]metricdata.Exemplar[N]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*dest = append(*dest, r.slots...)
	r.slots = nil
	r.seen = 0
}

// AlignedHistogramReservoir keeps at most one exemplar per explicit
// histogram bucket, overwriting the existing sample for a bucket with
// the most recently offered measurement that landed in it.
type AlignedHistogramReservoir[N Number] struct {
	mu      sync.Mutex
	bounds  []float64
	buckets []metricdata.Exemplar[N]
	has     []bool
}

// NewAlignedHistogramReservoir constructs a reservoir with one slot per
// bucket implied by bounds (len(bounds)+1 buckets).
func NewAlignedHistogramReservoir[N Number](bounds []float64) *AlignedHistogramReservoir[N] {
	n := len(bounds) + 1
	return &AlignedHistogramReservoir[N]{
		bounds:  bounds,
		buckets: make([]metricdata.Exemplar[N], n),
		has:     make([]bool, n),
	}
}

func (r *AlignedHistogramReservoir[N]) bucketFor(value N) int {
	v := float64(value)
	for i, b := range r.bounds {
		if v <= b {
			return i
		}
	}
	return len(r.bounds)
}

func (r *AlignedHistogramReservoir[N]) Offer(value N, attrs []attribute.KeyValue, spanID, traceID []byte) {
	idx := r.bucketFor(value)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets[idx] = metricdata.Exemplar[N]{FilteredAttributes: attrs, Value: value, SpanID: spanID, TraceID: traceID}
	r.has[idx] = true
}

func (r *AlignedHistogramReservoir[N]) Collect(dest *[]metricdata.Exemplar[N]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ok := range r.has {
		if ok {
			*dest = append(*dest, r.buckets[i])
			r.has[i] = false
		}
	}
}
