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

package log_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBlanch/otelcore/attribute"
	sdklog "github.com/CodeBlanch/otelcore/sdk/log"
)

type recordingExporter struct {
	mu       sync.Mutex
	records  []sdklog.Record
	shutdown bool
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = append(e.records, records...)
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}

func (e *recordingExporter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}

func TestLoggerEmitDeliversRecordFields(t *testing.T) {
	exp := &recordingExporter{}
	proc := sdklog.NewSimpleProcessor(exp)
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(proc))
	logger := provider.Logger("test")

	logger.Emit(context.Background(),
		sdklog.WithSeverity(sdklog.SeverityError),
		sdklog.WithBody(attribute.StringValue("something broke")),
		sdklog.WithRecordAttributes(attribute.String("component", "ingest")),
	)

	require.Equal(t, 1, exp.count())
	got := exp.records[0]
	assert.Equal(t, sdklog.SeverityError, got.Severity())
	assert.Equal(t, "something broke", got.Body().AsString())
	require.Len(t, got.Attributes(), 1)
	assert.Equal(t, attribute.Key("component"), got.Attributes()[0].Key)
}

func TestBatchProcessorForceFlushDeliversQueuedRecords(t *testing.T) {
	exp := &recordingExporter{}
	bp := sdklog.NewBatchProcessor(exp, sdklog.WithExportInterval(time.Hour))
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(bp))
	logger := provider.Logger("test")

	for i := 0; i < 5; i++ {
		logger.Emit(context.Background(), sdklog.WithSeverity(sdklog.SeverityInfo))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, provider.ForceFlush(ctx))
	assert.Equal(t, 5, exp.count())
}

func TestLoggerProviderShutdownStopsEmission(t *testing.T) {
	exp := &recordingExporter{}
	proc := sdklog.NewSimpleProcessor(exp)
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(proc))
	logger := provider.Logger("test")

	logger.Emit(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, provider.Shutdown(ctx))
	assert.True(t, exp.shutdown)

	logger.Emit(context.Background())
	assert.Equal(t, 1, exp.count())
}
