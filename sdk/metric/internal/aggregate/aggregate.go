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
	"context"
	"math/rand"
	"runtime"
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
	"github.com/CodeBlanch/otelcore/sdk/trace"
)

// maxExemplarReservoirSize bounds the default fixed-size exemplar
// reservoir's capacity; upstream sizes it to the host's parallelism so a
// burst of concurrent recorders doesn't all compete for the same slots.
const maxExemplarReservoirSize = 20

func defaultReservoirSize() int {
	n := runtime.NumCPU()
	if n > maxExemplarReservoirSize {
		n = maxExemplarReservoirSize
	}
	if n < 1 {
		n = 1
	}
	return n
}

func reservoirRand(n int64) int64 { return rand.Int63n(n) }

// Builder wires an instrument's configured aggregation into a Kernel and
// the Store backing it. One Builder is constructed per InstrumentStream.
type Builder[N Number] struct {
	// Temporality is the temporality the kernel snapshots in, taken from
	// the Reader's temporality for the instrument kind. The kernel only
	// ever runs in that one mode; the pipeline converts nothing afterward.
	Temporality metricdata.Temporality

	// Filter optionally restricts which attribute keys reach the
	// Store; attributes it drops are still recorded, merged onto
	// whichever Point survives the filter.
	Filter attribute.Filter

	// CardinalityLimit bounds the Store's live, non-overflow Point
	// count. Zero means DefaultCardinalityLimit.
	CardinalityLimit int
	EmitOverflow     bool
	Reclaim          bool

	// NoExemplars disables the per-Point exemplar reservoir, matching
	// spec.md §4.3's requirement that exemplar offering be an optional,
	// independently switchable behavior.
	NoExemplars bool
}

func (b Builder[N]) filterAttrs(attrs attribute.Set) (attribute.Set, []attribute.KeyValue) {
	if b.Filter == nil {
		return attrs, nil
	}
	return attrs.Filter(b.Filter)
}

// Compiled pairs a Kernel with the Store that owns its Points, plus the
// registration-time start used as the first window's StartTime.
type Compiled[N Number] struct {
	kernel Kernel[N]
	store  *Store
	start  time.Time
	filter func(attribute.Set) (attribute.Set, []attribute.KeyValue)
}

// Record folds one measurement into the Store, after applying the
// configured attribute Filter. Attributes the filter drops, plus the
// span context (if any) ambient in ctx, are offered to the Point's
// exemplar reservoir alongside the value.
func (c *Compiled[N]) Record(ctx context.Context, value N, attrs attribute.Set) {
	kept, dropped := c.filter(attrs)

	var spanID, traceID []byte
	if sc := trace.SpanContextFromContext(ctx); sc.SpanID().IsValid() {
		sid := sc.SpanID()
		tid := sc.TraceID()
		spanID = sid[:]
		traceID = tid[:]
	}

	c.store.Record(kept, func(state any) {
		c.kernel.Update(state, value, dropped, spanID, traceID)
	})
}

// Collect snapshots every live Point and returns the resulting
// Aggregation. delta tells Collect whether to advance the window's
// start time to now (each delta window starts where the previous one
// ended) or leave it at registration time (cumulative).
func (c *Compiled[N]) Collect(now time.Time, delta bool) metricdata.Aggregation {
	agg := c.kernel.Collect(c.store, c.start, now)
	c.store.Reclaim()
	if delta {
		c.start = now
	}
	return agg
}

// LastValue compiles a gauge aggregation.
func (b Builder[N]) LastValue() *Compiled[N] {
	k := NewLastValueKernel[N](b.Temporality)
	if !b.NoExemplars {
		k.Reservoir = func() Reservoir[N] { return NewFixedSizeReservoir[N](defaultReservoirSize(), reservoirRand) }
	}
	store := NewStore(k.NewState, b.CardinalityLimit, b.EmitOverflow, b.Reclaim)
	return &Compiled[N]{kernel: k, store: store, start: nowFunc(), filter: b.filterAttrs}
}

// Sum compiles an additive aggregation.
func (b Builder[N]) Sum(monotonic bool) *Compiled[N] {
	k := NewSumKernel[N](monotonic, b.Temporality)
	if !b.NoExemplars {
		k.Reservoir = func() Reservoir[N] { return NewFixedSizeReservoir[N](defaultReservoirSize(), reservoirRand) }
	}
	store := NewStore(k.NewState, b.CardinalityLimit, b.EmitOverflow, b.Reclaim)
	return &Compiled[N]{kernel: k, store: store, start: nowFunc(), filter: b.filterAttrs}
}

// ExplicitBucketHistogram compiles a fixed-boundary histogram
// aggregation.
func (b Builder[N]) ExplicitBucketHistogram(bounds []float64, noMinMax bool) *Compiled[N] {
	k := NewExplicitBucketHistogramKernel[N](bounds, noMinMax, b.Temporality)
	if !b.NoExemplars {
		boundsCopy := append([]float64(nil), k.Bounds...)
		k.Reservoir = func() Reservoir[N] { return NewAlignedHistogramReservoir[N](boundsCopy) }
	}
	store := NewStore(k.NewState, b.CardinalityLimit, b.EmitOverflow, b.Reclaim)
	return &Compiled[N]{kernel: k, store: store, start: nowFunc(), filter: b.filterAttrs}
}

// ExponentialHistogram compiles a base-2 exponential histogram
// aggregation.
func (b Builder[N]) ExponentialHistogram(maxSize, maxScale int32, noMinMax bool) *Compiled[N] {
	k := NewBase2ExponentialHistogramKernel[N](maxSize, maxScale, noMinMax, b.Temporality)
	if !b.NoExemplars {
		k.Reservoir = func() Reservoir[N] { return NewFixedSizeReservoir[N](defaultReservoirSize(), reservoirRand) }
	}
	store := NewStore(k.NewState, b.CardinalityLimit, b.EmitOverflow, b.Reclaim)
	return &Compiled[N]{kernel: k, store: store, start: nowFunc(), filter: b.filterAttrs}
}

// nowFunc is overridable in tests that need deterministic timestamps.
var nowFunc = time.Now
