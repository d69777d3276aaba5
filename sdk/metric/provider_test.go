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

package metric_test

import (
	"context"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkmetric "github.com/CodeBlanch/otelcore"
	"github.com/CodeBlanch/otelcore/sdk/metric"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
)

// recordingSink is a minimal logr.LogSink that captures every error
// message handed to it, used here to observe otelcore.Handle calls
// without depending on any particular logging backend.
type recordingSink struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSink) Init(logr.RuntimeInfo)                 {}
func (s *recordingSink) Enabled(int) bool                      { return true }
func (s *recordingSink) Info(int, string, ...interface{})      {}
func (s *recordingSink) WithValues(...interface{}) logr.LogSink { return s }
func (s *recordingSink) WithName(string) logr.LogSink          { return s }
func (s *recordingSink) Error(_ error, msg string, _ ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *recordingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

func TestMeterProviderShutdownSilencesSubsequentRecordings(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter("test")

	counter := meter.Int64Counter("requests")
	counter.Add(context.Background(), 1)

	before, err := reader.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, before.ScopeMetrics, 1)
	sum := before.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.EqualValues(t, 1, sum.DataPoints[0].Value)

	require.NoError(t, provider.Shutdown(context.Background()))

	// A counter obtained before Shutdown keeps its Int64Counter value;
	// recording through it after Shutdown must be a silent no-op.
	counter.Add(context.Background(), 100)

	after, err := reader.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, after.ScopeMetrics)
}

func TestMeterProviderShutdownIsIdempotent(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))

	require.NoError(t, provider.Shutdown(context.Background()))
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestDuplicateInstrumentNameWarningIsCaseInsensitive(t *testing.T) {
	sink := &recordingSink{}
	previous := sdkmetric.GetLogger()
	sdkmetric.SetLogger(logr.New(sink))
	defer sdkmetric.SetLogger(previous)

	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter("test")

	meter.Int64Counter("Requests.Count", metric.WithUnit("1"))
	meter.Int64Counter("requests.count", metric.WithUnit("ms"))

	assert.Len(t, sink.snapshot(), 1)
}
