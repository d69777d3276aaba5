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

package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sdktrace "github.com/CodeBlanch/otelcore/sdk/trace"
)

func TestAlwaysNeverSample(t *testing.T) {
	var tid sdktrace.TraceID
	tid[0] = 1

	on := sdktrace.AlwaysSample().ShouldSample(sdktrace.SamplingParameters{TraceID: tid})
	assert.Equal(t, sdktrace.RecordAndSample, on.Decision)

	off := sdktrace.NeverSample().ShouldSample(sdktrace.SamplingParameters{TraceID: tid})
	assert.Equal(t, sdktrace.Drop, off.Decision)
}

func TestTraceIDRatioBasedIsDeterministic(t *testing.T) {
	s := sdktrace.TraceIDRatioBased(0.5)

	var tid sdktrace.TraceID
	tid[15] = 7

	first := s.ShouldSample(sdktrace.SamplingParameters{TraceID: tid})
	second := s.ShouldSample(sdktrace.SamplingParameters{TraceID: tid})
	assert.Equal(t, first.Decision, second.Decision)
}

func TestTraceIDRatioBasedBounds(t *testing.T) {
	zero := sdktrace.TraceIDRatioBased(0)
	one := sdktrace.TraceIDRatioBased(1)

	var tid sdktrace.TraceID
	tid[0] = 0xFF

	assert.Equal(t, sdktrace.Drop, zero.ShouldSample(sdktrace.SamplingParameters{TraceID: tid}).Decision)
	assert.Equal(t, sdktrace.RecordAndSample, one.ShouldSample(sdktrace.SamplingParameters{TraceID: tid}).Decision)
}

func TestParentBasedRespectsParentDecision(t *testing.T) {
	s := sdktrace.ParentBased(sdktrace.NeverSample())

	var tid sdktrace.TraceID
	tid[0] = 1
	var sid sdktrace.SpanID
	sid[0] = 1

	sampledParent := sdktrace.NewSpanContext(tid, sid, sdktrace.FlagsSampled, "", false)
	result := s.ShouldSample(sdktrace.SamplingParameters{ParentContext: sampledParent, TraceID: tid})
	assert.Equal(t, sdktrace.RecordAndSample, result.Decision)

	notSampledParent := sdktrace.NewSpanContext(tid, sid, 0, "", false)
	result = s.ShouldSample(sdktrace.SamplingParameters{ParentContext: notSampledParent, TraceID: tid})
	assert.Equal(t, sdktrace.Drop, result.Decision)
}

func TestParentBasedFallsBackToRootForNoParent(t *testing.T) {
	s := sdktrace.ParentBased(sdktrace.AlwaysSample())

	var tid sdktrace.TraceID
	tid[0] = 1

	result := s.ShouldSample(sdktrace.SamplingParameters{TraceID: tid})
	assert.Equal(t, sdktrace.RecordAndSample, result.Decision)
}
