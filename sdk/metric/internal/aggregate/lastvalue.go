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

// LastValueKernel keeps only the most recently recorded measurement per
// Point. Under delta temporality a Point that receives no update in a
// window disappears from that window's output and reappears only once a
// new value is recorded, matching a gauge's "observe, then vanish"
// behavior. Under cumulative temporality the last-known value is
// reported every cycle regardless of whether it changed.
type LastValueKernel[N Number] struct {
	Temporality metricdata.Temporality

	// Reservoir, when non-nil, is called once per Point to build that
	// Point's exemplar reservoir.
	Reservoir func() Reservoir[N]
}

func NewLastValueKernel[N Number](temporality metricdata.Temporality) *LastValueKernel[N] {
	return &LastValueKernel[N]{Temporality: temporality}
}

type lastValueCell[N Number] struct {
	bits      atomic.Int64
	reservoir Reservoir[N]
}

func (k *LastValueKernel[N]) NewState() any {
	cell := &lastValueCell[N]{}
	if k.Reservoir != nil {
		cell.reservoir = k.Reservoir()
	}
	return cell
}

func (k *LastValueKernel[N]) Update(state any, value N, attrs []attribute.KeyValue, spanID, traceID []byte) {
	cell := state.(*lastValueCell[N])
	switch v := any(value).(type) {
	case int64:
		cell.bits.Store(v)
	case float64:
		cell.bits.Store(int64(math.Float64bits(v)))
	}
	if cell.reservoir != nil {
		offerSafely(cell.reservoir, value, attrs, spanID, traceID)
	}
}

func (k *LastValueKernel[N]) read(cell *lastValueCell[N]) N {
	var zero N
	switch any(zero).(type) {
	case int64:
		return N(cell.bits.Load())
	case float64:
		return N(math.Float64frombits(uint64(cell.bits.Load())))
	}
	return zero
}

func (k *LastValueKernel[N]) Collect(store *Store, start, now time.Time) metricdata.Aggregation {
	var dps []metricdata.DataPoint[N]

	delta := k.Temporality == metricdata.DeltaTemporality

	store.ForEach(func(p *Point) {
		pending := p.TakePending()
		if delta && pending != CollectPending {
			return
		}
		cell := p.State.(*lastValueCell[N])
		dp := metricdata.DataPoint[N]{
			Attributes: p.Attrs,
			StartTime:  start,
			Time:       now,
			Value:      k.read(cell),
		}
		if cell.reservoir != nil {
			cell.reservoir.Collect(&dp.Exemplars)
		}
		dps = append(dps, dp)
	})

	return metricdata.Gauge[N]{DataPoints: dps}
}
