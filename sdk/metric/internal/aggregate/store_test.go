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

package aggregate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/internal/aggregate"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
)

func attrs(t *testing.T, k, v string) attribute.Set {
	t.Helper()
	s, err := attribute.NewSet(attribute.Key(k).String(v))
	require.NoError(t, err)
	return s
}

func TestSumCardinalityCap(t *testing.T) {
	b := aggregate.Builder[int64]{Temporality: metricdata.CumulativeTemporality, CardinalityLimit: 2, EmitOverflow: true}
	c := b.Sum(true)

	c.Record(context.Background(), 1, attrs(t, "k", "a"))
	c.Record(context.Background(), 1, attrs(t, "k", "b"))
	c.Record(context.Background(), 1, attrs(t, "k", "c"))

	agg := c.Collect(time.Now(), false).(metricdata.Sum[int64])
	require.Len(t, agg.DataPoints, 3)

	var overflow, normal int
	for _, dp := range agg.DataPoints {
		if v, ok := dp.Attributes.Value("otel.metric.overflow"); ok && v.AsBool() {
			overflow++
			assert.EqualValues(t, 1, dp.Value)
		} else {
			normal++
		}
	}
	assert.Equal(t, 1, overflow)
	assert.Equal(t, 2, normal)
}

func TestSumRejectsNegativeMonotonic(t *testing.T) {
	b := aggregate.Builder[int64]{Temporality: metricdata.CumulativeTemporality, EmitOverflow: true}
	c := b.Sum(true)

	c.Record(context.Background(), 5, attrs(t, "k", "a"))
	c.Record(context.Background(), -1, attrs(t, "k", "a"))

	agg := c.Collect(time.Now(), false).(metricdata.Sum[int64])
	require.Len(t, agg.DataPoints, 1)
	assert.EqualValues(t, 5, agg.DataPoints[0].Value)
}

func TestSumConcurrentUpdates(t *testing.T) {
	b := aggregate.Builder[int64]{Temporality: metricdata.CumulativeTemporality, EmitOverflow: true}
	c := b.Sum(true)

	const goroutines = 10
	const perGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			a := attrs(t, "k", "shared")
			for i := 0; i < perGoroutine; i++ {
				c.Record(context.Background(), 1, a)
			}
		}()
	}
	wg.Wait()

	agg := c.Collect(time.Now(), false).(metricdata.Sum[int64])
	require.Len(t, agg.DataPoints, 1)
	assert.EqualValues(t, goroutines*perGoroutine, agg.DataPoints[0].Value)
}

func TestDeltaGaugeVanishesWithoutUpdate(t *testing.T) {
	b := aggregate.Builder[int64]{Temporality: metricdata.DeltaTemporality, EmitOverflow: true}
	c := b.LastValue()

	c.Record(context.Background(), 42, attrs(t, "k", "a"))
	first := c.Collect(time.Now(), true).(metricdata.Gauge[int64])
	require.Len(t, first.DataPoints, 1)
	assert.EqualValues(t, 42, first.DataPoints[0].Value)

	second := c.Collect(time.Now(), true).(metricdata.Gauge[int64])
	assert.Empty(t, second.DataPoints)

	c.Record(context.Background(), 7, attrs(t, "k", "a"))
	third := c.Collect(time.Now(), true).(metricdata.Gauge[int64])
	require.Len(t, third.DataPoints, 1)
	assert.EqualValues(t, 7, third.DataPoints[0].Value)
}

func TestReclaimAfterIdleAllowsNewSeries(t *testing.T) {
	b := aggregate.Builder[int64]{Temporality: metricdata.DeltaTemporality, CardinalityLimit: 1, EmitOverflow: true, Reclaim: true}
	c := b.Sum(true)

	c.Record(context.Background(), 1, attrs(t, "k", "a"))
	c.Collect(time.Now(), true)
	// Idle cycle: nothing recorded, the point should be reclaimed.
	c.Collect(time.Now(), true)

	c.Record(context.Background(), 1, attrs(t, "k", "b"))
	agg := c.Collect(time.Now(), true).(metricdata.Sum[int64])

	require.Len(t, agg.DataPoints, 1)
	v, ok := agg.DataPoints[0].Attributes.Value("k")
	require.True(t, ok)
	assert.Equal(t, "b", v.AsString())
}

func TestExplicitBucketHistogram(t *testing.T) {
	b := aggregate.Builder[float64]{Temporality: metricdata.CumulativeTemporality, EmitOverflow: true}
	c := b.ExplicitBucketHistogram([]float64{1, 5, 10}, false)

	a := attrs(t, "k", "a")
	for _, v := range []float64{0.5, 3, 7, 20} {
		c.Record(context.Background(), v, a)
	}

	agg := c.Collect(time.Now(), false).(metricdata.Histogram[float64])
	require.Len(t, agg.DataPoints, 1)
	dp := agg.DataPoints[0]
	assert.EqualValues(t, 4, dp.Count)
	assert.Equal(t, []uint64{1, 1, 1, 1}, dp.BucketCounts)
	min, _ := dp.Min.Value()
	max, _ := dp.Max.Value()
	assert.Equal(t, 0.5, min)
	assert.Equal(t, 20.0, max)
}

func TestExponentialHistogramRescalesOnOverflow(t *testing.T) {
	b := aggregate.Builder[float64]{Temporality: metricdata.CumulativeTemporality, EmitOverflow: true}
	c := b.ExponentialHistogram(4, 20, false)

	a := attrs(t, "k", "a")
	for i := 0; i < 200; i++ {
		c.Record(context.Background(), float64(i+1), a)
	}

	agg := c.Collect(time.Now(), false).(metricdata.ExponentialHistogram[float64])
	require.Len(t, agg.DataPoints, 1)
	dp := agg.DataPoints[0]
	assert.EqualValues(t, 200, dp.Count)
	assert.LessOrEqual(t, len(dp.PositiveBucket.Counts), 4)
	assert.Less(t, dp.Scale, int32(20))
}
