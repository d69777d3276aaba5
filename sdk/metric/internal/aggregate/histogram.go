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
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
)

// spinlock is a single-byte CAS lock. A histogram update touches
// count/sum/bucket/min/max together and must observe a consistent
// combination, but contention on one attribute set's cell is expected to
// be low, so a spinlock is cheaper here than a full mutex.
type spinlock struct {
	state atomic.Bool
}

func (s *spinlock) Lock() {
	for !s.state.CompareAndSwap(false, true) {
		yieldToContender()
	}
}

func (s *spinlock) Unlock() { s.state.Store(false) }

type histogramCell[N Number] struct {
	mu        spinlock
	count     uint64
	sum       N
	min       N
	max       N
	hasMin    bool
	hasMax    bool
	counts    []uint64
	reservoir Reservoir[N]
}

// ExplicitBucketHistogramKernel buckets values into the fixed boundary
// set Bounds. N <= 49 boundaries use a linear scan; beyond that a binary
// search, per spec.md §4.2's stated crossover.
type ExplicitBucketHistogramKernel[N Number] struct {
	Bounds      []float64
	NoMinMax    bool
	Temporality metricdata.Temporality

	// Reservoir, when non-nil, is called once per Point to build that
	// Point's exemplar reservoir.
	Reservoir func() Reservoir[N]
}

func NewExplicitBucketHistogramKernel[N Number](bounds []float64, noMinMax bool, temporality metricdata.Temporality) *ExplicitBucketHistogramKernel[N] {
	b := make([]float64, len(bounds))
	copy(b, bounds)
	return &ExplicitBucketHistogramKernel[N]{Bounds: b, NoMinMax: noMinMax, Temporality: temporality}
}

func (k *ExplicitBucketHistogramKernel[N]) NewState() any {
	cell := &histogramCell[N]{counts: make([]uint64, len(k.Bounds)+1)}
	if k.Reservoir != nil {
		cell.reservoir = k.Reservoir()
	}
	return cell
}

func (k *ExplicitBucketHistogramKernel[N]) bucketIndex(v float64) int {
	n := len(k.Bounds)
	if n <= 49 {
		for i, b := range k.Bounds {
			if v <= b {
				return i
			}
		}
		return n
	}
	idx := sort.SearchFloat64s(k.Bounds, v)
	// SearchFloat64s finds the first index whose value is >= v, which is
	// already v's bucket since each boundary is an inclusive upper bound
	// (v <= b); for sorted Bounds the check below leaves idx unchanged.
	if idx < n && k.Bounds[idx] < v {
		idx++
	}
	return idx
}

func (k *ExplicitBucketHistogramKernel[N]) Update(state any, value N, attrs []attribute.KeyValue, spanID, traceID []byte) {
	cell := state.(*histogramCell[N])
	v := float64(value)

	cell.mu.Lock()

	cell.count++
	// NaN/±Inf: sum still accumulates (visibly poisoning the running
	// total is preferable to silently discarding the measurement), but
	// bucket and min/max tracking is skipped since there is no finite
	// bucket or ordering for it.
	cell.sum += value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		cell.mu.Unlock()
		return
	}

	idx := k.bucketIndex(v)
	cell.counts[idx]++

	if !k.NoMinMax {
		if !cell.hasMin || value < cell.min {
			cell.min = value
			cell.hasMin = true
		}
		if !cell.hasMax || value > cell.max {
			cell.max = value
			cell.hasMax = true
		}
	}
	cell.mu.Unlock()

	if cell.reservoir != nil {
		offerSafely(cell.reservoir, value, attrs, spanID, traceID)
	}
}

func (k *ExplicitBucketHistogramKernel[N]) Collect(store *Store, start, now time.Time) metricdata.Aggregation {
	delta := k.Temporality == metricdata.DeltaTemporality
	var dps []metricdata.HistogramDataPoint[N]

	store.ForEach(func(p *Point) {
		pending := p.TakePending()
		if delta && pending != CollectPending {
			return
		}
		cell := p.State.(*histogramCell[N])

		cell.mu.Lock()
		dp := metricdata.HistogramDataPoint[N]{
			Attributes:   p.Attrs,
			StartTime:    start,
			Time:         now,
			Count:        cell.count,
			Sum:          cell.sum,
			Bounds:       k.Bounds,
			BucketCounts: append([]uint64(nil), cell.counts...),
		}
		if !k.NoMinMax && cell.hasMin {
			dp.Min = metricdata.NewExtrema(cell.min)
		}
		if !k.NoMinMax && cell.hasMax {
			dp.Max = metricdata.NewExtrema(cell.max)
		}
		if delta {
			cell.count = 0
			cell.sum = 0
			cell.hasMin = false
			cell.hasMax = false
			for i := range cell.counts {
				cell.counts[i] = 0
			}
		}
		cell.mu.Unlock()

		if cell.reservoir != nil {
			cell.reservoir.Collect(&dp.Exemplars)
		}

		dps = append(dps, dp)
	})

	return metricdata.Histogram[N]{DataPoints: dps, Temporality: k.Temporality}
}
