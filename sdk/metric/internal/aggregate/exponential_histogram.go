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
	"errors"
	"math"
	"time"

	"github.com/CodeBlanch/otelcore"
	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
)

const (
	expoMaxScale = 20
	expoMinScale = -10

	mantissaWidth = 52
	exponentWidth = 11

	mantissaMask = 1<<mantissaWidth - 1
	exponentBias = 1<<(exponentWidth-1) - 1
	exponentMask = (1<<exponentWidth - 1) << mantissaWidth

	defaultExpoMaxSize = 160
)

// scaleFactors precomputes log2(e) * 2^scale for each scale in
// [0, expoMaxScale], so getLogIndex avoids recomputing the multiplier on
// every call.
var scaleFactors = func() [expoMaxScale + 1]float64 {
	var f [expoMaxScale + 1]float64
	for i := range f {
		f[i] = math.Ldexp(math.Log2E, i)
	}
	return f
}()

// getNormalBase2 returns a float64's unbiased base-2 exponent, read
// directly from its IEEE-754 bit pattern.
func getNormalBase2(v float64) int32 {
	bits := math.Float64bits(v)
	exp := (bits & exponentMask) >> mantissaWidth
	return int32(exp) - exponentBias
}

// getSignificand returns the 52 mantissa bits of a float64's bit
// pattern; it is zero exactly when v is a power of two.
func getSignificand(v float64) uint64 {
	return math.Float64bits(v) & mantissaMask
}

// getLogIndex computes the exponential-histogram bucket index for
// positive scales, where per-bucket resolution is finer than one power
// of two and a logarithm is the simplest exact-enough approach.
func getLogIndex(v float64, scale int32) int32 {
	return int32(math.Floor(math.Log(v) * scaleFactors[scale]))
}

// getExpoIndex computes the bucket index for scale <= 0 directly from
// the IEEE-754 exponent, avoiding floating point error entirely:
// buckets are whole powers of two (or groups of them), so the exponent
// alone determines the index. A value that is an exact power of two
// sits on its bucket's upper boundary, so it belongs to the bucket
// below (buckets are (lower, upper]).
func getExpoIndex(v float64, scale int32) int32 {
	exp := getNormalBase2(v)
	if getSignificand(v) == 0 {
		exp--
	}
	return exp >> uint(-scale)
}

func getIndex(v float64, scale int32) int32 {
	v = math.Abs(v)
	if scale <= 0 {
		return getExpoIndex(v, scale)
	}
	return getLogIndex(v, scale)
}

// expoBucket is a contiguous, densely-packed run of bucket counts
// starting at base-2 index startIndex. Growth reallocates; this trades
// the original's negative-offset backing array for a simpler, still
// correct, implementation.
type expoBucket struct {
	startIndex int32
	counts     []uint64
}

func (b *expoBucket) record(index int32) {
	if len(b.counts) == 0 {
		b.startIndex = index
		b.counts = []uint64{1}
		return
	}
	if index < b.startIndex {
		grow := b.startIndex - index
		next := make([]uint64, int32(len(b.counts))+grow)
		copy(next[grow:], b.counts)
		b.counts = next
		b.startIndex = index
	} else if end := b.startIndex + int32(len(b.counts)) - 1; index > end {
		grow := index - end
		next := make([]uint64, int32(len(b.counts))+grow)
		copy(next, b.counts)
		b.counts = next
	}
	b.counts[index-b.startIndex]++
}

// downscale merges every 2^by adjacent buckets into one, lowering the
// resolution by `by` scale steps.
func (b *expoBucket) downscale(by int32) {
	if by <= 0 || len(b.counts) == 0 {
		return
	}
	if len(b.counts) == 1 {
		b.startIndex >>= by
		return
	}
	newStart := b.startIndex >> by
	newEnd := (b.startIndex + int32(len(b.counts)) - 1) >> by
	next := make([]uint64, newEnd-newStart+1)
	for i, c := range b.counts {
		if c == 0 {
			continue
		}
		oldIndex := b.startIndex + int32(i)
		next[(oldIndex>>by)-newStart] += c
	}
	b.startIndex = newStart
	b.counts = next
}

// scaleChange returns the number of additional downscale steps needed
// so that the union of the bucket's occupied range and newIndex fits
// within maxSize buckets.
func scaleChange(newIndex, startIndex, length, maxSize int32) int32 {
	low, high := startIndex, startIndex+length-1
	if length == 0 {
		low, high = newIndex, newIndex
	} else {
		if newIndex < low {
			low = newIndex
		}
		if newIndex > high {
			high = newIndex
		}
	}
	var change int32
	for high-low+1 > maxSize {
		low >>= 1
		high >>= 1
		change++
	}
	return change
}

func needRescale(newIndex, startIndex, length, maxSize int32) bool {
	return scaleChange(newIndex, startIndex, length, maxSize) > 0
}

var errScaleUnderflow = errors.New("otelcore/metric: exponential histogram scale underflowed minimum; buckets may exceed configured size")

// expoHistogramCell is one attribute set's running exponential
// histogram state.
type expoHistogramCell[N Number] struct {
	mu spinlock

	maxSize       int32
	zeroThreshold float64

	count  uint64
	sum    N
	min    N
	max    N
	hasMin bool
	hasMax bool

	scale      int32
	zeroCount  uint64
	posBuckets expoBucket
	negBuckets expoBucket

	reservoir Reservoir[N]
}

func (c *expoHistogramCell[N]) record(value N, attrs []attribute.KeyValue, spanID, traceID []byte) {
	v := float64(value)

	c.mu.Lock()

	c.count++
	c.sum += value

	if !math.IsNaN(v) && (!c.hasMin || value < c.min) {
		c.min, c.hasMin = value, true
	}
	if !math.IsNaN(v) && (!c.hasMax || value > c.max) {
		c.max, c.hasMax = value, true
	}

	abs := math.Abs(v)
	switch {
	case abs <= c.zeroThreshold || abs == 0:
		c.zeroCount++
	case math.IsInf(abs, 0) || math.IsNaN(abs):
		// no finite bucket for this value
	default:
		bucket := &c.posBuckets
		if v < 0 {
			bucket = &c.negBuckets
		}

		idx := getIndex(v, c.scale)
		if needRescale(idx, bucket.startIndex, int32(len(bucket.counts)), c.maxSize) {
			change := scaleChange(idx, bucket.startIndex, int32(len(bucket.counts)), c.maxSize)
			newScale := c.scale - change
			if newScale < expoMinScale {
				otelcore.Handle(errScaleUnderflow)
				newScale = expoMinScale
				change = c.scale - newScale
			}
			c.posBuckets.downscale(change)
			c.negBuckets.downscale(change)
			c.scale = newScale
			idx = getIndex(v, c.scale)
		}
		bucket.record(idx)
	}
	c.mu.Unlock()

	if c.reservoir != nil {
		offerSafely(c.reservoir, value, attrs, spanID, traceID)
	}
}

// Base2ExponentialHistogramKernel aggregates measurements into
// automatically rescaled base-2 exponential buckets.
type Base2ExponentialHistogramKernel[N Number] struct {
	MaxSize     int32
	MaxScale    int32
	NoMinMax    bool
	Temporality metricdata.Temporality

	// Reservoir, when non-nil, is called once per Point to build that
	// Point's exemplar reservoir.
	Reservoir func() Reservoir[N]
}

func NewBase2ExponentialHistogramKernel[N Number](maxSize, maxScale int32, noMinMax bool, temporality metricdata.Temporality) *Base2ExponentialHistogramKernel[N] {
	if maxSize <= 0 {
		maxSize = defaultExpoMaxSize
	}
	if maxScale > expoMaxScale {
		maxScale = expoMaxScale
	}
	if maxScale == 0 || maxScale < expoMinScale {
		maxScale = expoMaxScale
	}
	return &Base2ExponentialHistogramKernel[N]{MaxSize: maxSize, MaxScale: maxScale, NoMinMax: noMinMax, Temporality: temporality}
}

func (k *Base2ExponentialHistogramKernel[N]) NewState() any {
	cell := &expoHistogramCell[N]{maxSize: k.MaxSize, scale: k.MaxScale}
	if k.Reservoir != nil {
		cell.reservoir = k.Reservoir()
	}
	return cell
}

func (k *Base2ExponentialHistogramKernel[N]) Update(state any, value N, attrs []attribute.KeyValue, spanID, traceID []byte) {
	state.(*expoHistogramCell[N]).record(value, attrs, spanID, traceID)
}

func (k *Base2ExponentialHistogramKernel[N]) Collect(store *Store, start, now time.Time) metricdata.Aggregation {
	delta := k.Temporality == metricdata.DeltaTemporality
	var dps []metricdata.ExponentialHistogramDataPoint[N]

	store.ForEach(func(p *Point) {
		pending := p.TakePending()
		if delta && pending != CollectPending {
			return
		}
		cell := p.State.(*expoHistogramCell[N])

		cell.mu.Lock()
		dp := metricdata.ExponentialHistogramDataPoint[N]{
			Attributes: p.Attrs,
			StartTime:  start,
			Time:       now,
			Count:      cell.count,
			Sum:        cell.sum,
			Scale:      cell.scale,
			ZeroCount:  cell.zeroCount,
			PositiveBucket: metricdata.ExponentialBucket{
				Offset: cell.posBuckets.startIndex,
				Counts: append([]uint64(nil), cell.posBuckets.counts...),
			},
			NegativeBucket: metricdata.ExponentialBucket{
				Offset: cell.negBuckets.startIndex,
				Counts: append([]uint64(nil), cell.negBuckets.counts...),
			},
		}
		if !k.NoMinMax && cell.hasMin {
			dp.Min = metricdata.NewExtrema(cell.min)
		}
		if !k.NoMinMax && cell.hasMax {
			dp.Max = metricdata.NewExtrema(cell.max)
		}
		if delta {
			cell.count, cell.sum, cell.zeroCount = 0, 0, 0
			cell.hasMin, cell.hasMax = false, false
			cell.scale = k.MaxScale
			cell.posBuckets = expoBucket{}
			cell.negBuckets = expoBucket{}
		}
		cell.mu.Unlock()

		if cell.reservoir != nil {
			cell.reservoir.Collect(&dp.Exemplars)
		}

		dps = append(dps, dp)
	})

	return metricdata.ExponentialHistogram[N]{DataPoints: dps, Temporality: k.Temporality}
}
