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
	"time"

	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/metric/aggregation"
	"github.com/CodeBlanch/otelcore/sdk/metric/internal/aggregate"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
	"github.com/CodeBlanch/otelcore/sdk/metric/view"
)

// Meter creates instruments bound to one instrumentation.Scope. Obtain
// one from MeterProvider.Meter.
type Meter struct {
	scope    instrumentation.Scope
	provider *MeterProvider
}

// resolvedStream is one reader's compiled view of an instrument.
type resolvedStream struct {
	reader Reader
	stream view.Stream
}

func (m *Meter) resolve(inst view.Instrument) []resolvedStream {
	p := m.provider
	p.mu.Lock()
	readers := make([]Reader, len(p.readers))
	copy(readers, p.readers)
	views := make([]view.View, len(p.views))
	copy(views, p.views)
	p.mu.Unlock()

	var out []resolvedStream
	for _, r := range readers {
		stream := view.Stream{Name: inst.Name, Description: inst.Description, Unit: inst.Unit}
		matched := false
		for _, v := range views {
			if s, ok := v(inst); ok {
				stream = s
				matched = true
				break
			}
		}
		if matched {
			if _, isDrop := stream.Aggregation.(aggregation.Drop); isDrop {
				continue
			}
		}
		if _, isDefault := stream.Aggregation.(aggregation.Default); isDefault || stream.Aggregation == nil {
			stream.Aggregation = r.Aggregation(inst.Kind)
		}
		if _, isDrop := stream.Aggregation.(aggregation.Drop); isDrop {
			continue
		}
		out = append(out, resolvedStream{reader: r, stream: stream})
	}
	return out
}

func (m *Meter) buildInt64(inst view.Instrument) []*aggregate.Compiled[int64] {
	var out []*aggregate.Compiled[int64]
	for _, rs := range m.resolve(inst) {
		pl := m.provider.pipelineFor(rs.reader)
		if pl == nil {
			continue
		}
		b := aggregate.Builder[int64]{
			Temporality:      rs.reader.Temporality(inst.Kind),
			Filter:           rs.stream.AttributeFilter,
			CardinalityLimit: aggregate.DefaultCardinalityLimit,
			EmitOverflow:     true,
		}
		c := compileInt64(b, rs.stream.Aggregation)
		pl.addAggregator(inst.Scope, rs.stream.Name, rs.stream.Description, rs.stream.Unit, compiledAdapter[int64]{c})
		out = append(out, c)
	}
	return out
}

func (m *Meter) buildFloat64(inst view.Instrument) []*aggregate.Compiled[float64] {
	var out []*aggregate.Compiled[float64]
	for _, rs := range m.resolve(inst) {
		pl := m.provider.pipelineFor(rs.reader)
		if pl == nil {
			continue
		}
		b := aggregate.Builder[float64]{
			Temporality:      rs.reader.Temporality(inst.Kind),
			Filter:           rs.stream.AttributeFilter,
			CardinalityLimit: aggregate.DefaultCardinalityLimit,
			EmitOverflow:     true,
		}
		c := compileFloat64(b, rs.stream.Aggregation)
		pl.addAggregator(inst.Scope, rs.stream.Name, rs.stream.Description, rs.stream.Unit, compiledAdapter[float64]{c})
		out = append(out, c)
	}
	return out
}

func compileInt64(b aggregate.Builder[int64], agg aggregation.Aggregation) *aggregate.Compiled[int64] {
	switch a := agg.(type) {
	case aggregation.Sum:
		return b.Sum(a.Monotonic)
	case aggregation.LastValue:
		return b.LastValue()
	case aggregation.ExplicitBucketHistogram:
		return b.ExplicitBucketHistogram(a.Boundaries, a.NoMinMax)
	case aggregation.ExponentialHistogram:
		return b.ExponentialHistogram(a.MaxSize, a.MaxScale, a.NoMinMax)
	default:
		return b.Sum(true)
	}
}

func compileFloat64(b aggregate.Builder[float64], agg aggregation.Aggregation) *aggregate.Compiled[float64] {
	switch a := agg.(type) {
	case aggregation.Sum:
		return b.Sum(a.Monotonic)
	case aggregation.LastValue:
		return b.LastValue()
	case aggregation.ExplicitBucketHistogram:
		return b.ExplicitBucketHistogram(a.Boundaries, a.NoMinMax)
	case aggregation.ExponentialHistogram:
		return b.ExponentialHistogram(a.MaxSize, a.MaxScale, a.NoMinMax)
	default:
		return b.Sum(true)
	}
}

// compiledAdapter erases aggregate.Compiled[N]'s type parameter so
// pipeline can hold heterogeneous instruments in one map.
type compiledAdapter[N aggregate.Number] struct {
	c *aggregate.Compiled[N]
}

func (a compiledAdapter[N]) collect(now time.Time, delta bool) metricdata.Aggregation {
	return a.c.Collect(now, delta)
}

func (m *Meter) newInstrument(name, description, unit string, kind view.InstrumentKind) view.Instrument {
	return view.Instrument{Name: name, Description: description, Unit: unit, Kind: kind, Scope: m.scope}
}
