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
	"sync/atomic"
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
)

// SumKernel implements addition aggregation. Monotonic rejects negative
// increments (dropping them and counting each in
// GlobalDiagnostics.NonMonotonicRejected, per spec.md §7's "negative
// value into a monotonic counter is rejected with a diagnostic").
type SumKernel[N Number] struct {
	Monotonic   bool
	Temporality metricdata.Temporality

	// Reservoir, when non-nil, is called once per Point to build that
	// Point's exemplar reservoir.
	Reservoir func() Reservoir[N]
}

func NewSumKernel[N Number](monotonic bool, temporality metricdata.Temporality) *SumKernel[N] {
	return &SumKernel[N]{Monotonic: monotonic, Temporality: temporality}
}

func (k *SumKernel[N]) NewState() any {
	cell := &sumCell[N]{}
	if k.Reservoir != nil {
		cell.reservoir = k.Reservoir()
	}
	return cell
}

type sumCell[N Number] struct {
	// intBits holds an int64 value directly for N=int64, or the raw
	// IEEE-754 bits of a float64 accumulator for N=float64. Which
	// interpretation applies is fixed at construction time by the
	// instrument's numeric type, never mixed within one cell.
	intBits   atomic.Int64
	reservoir Reservoir[N]
}

func (k *SumKernel[N]) Update(state any, value N, attrs []attribute.KeyValue, spanID, traceID []byte) {
	cell := state.(*sumCell[N])
	if k.Monotonic && float64(value) < 0 {
		GlobalDiagnostics.NonMonotonicRejected.Add(1)
		return
	}

	switch any(value).(type) {
	case int64:
		cell.intBits.Add(int64(value))
	case float64:
		for {
			old := cell.intBits.Load()
			oldF := math.Float64frombits(uint64(old))
			newF := oldF + float64(value)
			newBits := int64(math.Float64bits(newF))
			if cell.intBits.CompareAndSwap(old, newBits) {
				break
			}
		}
	}

	if cell.reservoir != nil {
		offerSafely(cell.reservoir, value, attrs, spanID, traceID)
	}
}

func (k *SumKernel[N]) read(cell *sumCell[N]) N {
	var zero N
	switch any(zero).(type) {
	case int64:
		return N(cell.intBits.Load())
	case float64:
		return N(math.Float64frombits(uint64(cell.intBits.Load())))
	}
	return zero
}

// readAndReset atomically reads the cell's current value and clears it
// to zero in one step. Using a plain Load followed by a separate
// Store(0) would let a concurrent Update's Add/CAS land in between and
// be silently wiped; Swap folds the two into a single atomic op so every
// Update that happened-before the swap is reflected in the returned
// value and nothing lands in the gap. Zero's bit pattern is 0 for both
// int64 and float64, so one Swap(0) serves both interpretations.
func (k *SumKernel[N]) readAndReset(cell *sumCell[N]) N {
	old := cell.intBits.Swap(0)
	var zero N
	switch any(zero).(type) {
	case int64:
		return N(old)
	case float64:
		return N(math.Float64frombits(uint64(old)))
	}
	return zero
}

func (k *SumKernel[N]) Collect(store *Store, start, now time.Time) metricdata.Aggregation {
	delta := k.Temporality == metricdata.DeltaTemporality
	var dps []metricdata.DataPoint[N]

	store.ForEach(func(p *Point) {
		pending := p.TakePending()
		if delta && pending != CollectPending {
			return
		}
		cell := p.State.(*sumCell[N])
		var v N
		if delta {
			v = k.readAndReset(cell)
		} else {
			v = k.read(cell)
		}
		dp := metricdata.DataPoint[N]{
			Attributes: p.Attrs,
			StartTime:  start,
			Time:       now,
			Value:      v,
		}
		if cell.reservoir != nil {
			cell.reservoir.Collect(&dp.Exemplars)
		}
		dps = append(dps, dp)
	})

	return metricdata.Sum[N]{
		DataPoints:  dps,
		Temporality: k.Temporality,
		IsMonotonic: k.Monotonic,
	}
}
