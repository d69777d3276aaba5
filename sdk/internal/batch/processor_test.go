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

package batch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeBlanch/otelcore/sdk/internal/batch"
)

type recordingExporter struct {
	mu       sync.Mutex
	batches  [][]int
	shutdown bool
}

func (e *recordingExporter) Export(_ context.Context, items []int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]int, len(items))
	copy(cp, items)
	e.batches = append(e.batches, cp)
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}

func (e *recordingExporter) total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, b := range e.batches {
		n += len(b)
	}
	return n
}

func TestForceFlushDeliversEnqueuedItems(t *testing.T) {
	exp := &recordingExporter{}
	p := batch.NewProcessor[int](exp, batch.WithScheduledDelay[int](time.Hour))

	for i := 0; i < 5; i++ {
		p.Enqueue(i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.ForceFlush(ctx))

	assert.Equal(t, 5, exp.total())
}

func TestEagerExportAtHalfFull(t *testing.T) {
	exp := &recordingExporter{}
	p := batch.NewProcessor[int](exp,
		batch.WithMaxQueueSize[int](10),
		batch.WithMaxExportBatchSize[int](100),
		batch.WithScheduledDelay[int](time.Hour),
	)

	for i := 0; i < 6; i++ {
		p.Enqueue(i)
	}

	require.Eventually(t, func() bool { return exp.total() >= 6 }, time.Second, time.Millisecond)
}

func TestDropOnFullQueue(t *testing.T) {
	exp := &blockingExporter{release: make(chan struct{})}
	p := batch.NewProcessor[int](exp,
		batch.WithMaxQueueSize[int](2),
		batch.WithScheduledDelay[int](time.Hour),
	)

	p.Enqueue(1) // picked up by the worker, queue now empty
	time.Sleep(10 * time.Millisecond)
	p.Enqueue(2)
	p.Enqueue(3)
	p.Enqueue(4) // queue is full (2), this one is dropped

	close(exp.release)

	require.Eventually(t, func() bool { return p.Dropped() >= 1 }, time.Second, time.Millisecond)
}

type blockingExporter struct {
	release chan struct{}
}

func (e *blockingExporter) Export(ctx context.Context, items []int) error {
	select {
	case <-e.release:
	case <-ctx.Done():
	}
	return nil
}

func (e *blockingExporter) Shutdown(context.Context) error { return nil }

func TestShutdownFlushesThenRejectsNewWork(t *testing.T) {
	exp := &recordingExporter{}
	p := batch.NewProcessor[int](exp, batch.WithScheduledDelay[int](time.Hour))

	p.Enqueue(1)
	p.Enqueue(2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	assert.Equal(t, 2, exp.total())
	assert.True(t, exp.shutdown)

	p.Enqueue(3)
	assert.Equal(t, 2, exp.total())
}
