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

// Package batch implements the one generic bounded-queue,
// single-worker, scheduled-flush export pipeline shared by the span and
// log processors: enqueue is never blocking, a dedicated goroutine
// drains FIFO into bounded batches, and ForceFlush/Shutdown use a
// sentinel item to know when everything queued ahead of them has been
// handed to the exporter.
package batch // import "github.com/CodeBlanch/otelcore/sdk/internal/batch"

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/CodeBlanch/otelcore"
)

const (
	DefaultMaxQueueSize       = 2048
	DefaultScheduledDelay     = 5 * time.Second
	DefaultMaxExportBatchSize = 512
	DefaultExportTimeout      = 30 * time.Second
)

// ErrShuttingDown is returned by ForceFlush once Shutdown has begun.
var ErrShuttingDown = errors.New("otelcore: processor is shutting down")

// Exporter hands a batch of items of type T to a backend. Export must
// not retain items beyond the call.
type Exporter[T any] interface {
	Export(ctx context.Context, items []T) error
	Shutdown(ctx context.Context) error
}

// Filter decides whether an item is eligible to be queued at all. It
// fails open: a nil Filter admits everything.
type Filter[T any] func(T) bool

type sentinel struct {
	ack chan struct{}
}

// Processor is the generic BatchExportProcessor: it owns a bounded
// channel, a dedicated worker goroutine, and the scheduled/eager/forced
// flush logic described by spec.md §4.5.
type Processor[T any] struct {
	exporter Exporter[T]
	filter   Filter[T]

	maxQueueSize       int
	scheduledDelay     time.Duration
	maxExportBatchSize int
	exportTimeout      time.Duration

	queue chan any // either a T item or a *sentinel

	stopOnce sync.Once
	stopped  chan struct{}
	exitCh   chan struct{}
	done     chan struct{}

	droppedMu sync.Mutex
	dropped   int64
}

// Option configures a Processor.
type Option[T any] func(*Processor[T])

func WithMaxQueueSize[T any](n int) Option[T] {
	return func(p *Processor[T]) { p.maxQueueSize = n }
}

func WithScheduledDelay[T any](d time.Duration) Option[T] {
	return func(p *Processor[T]) { p.scheduledDelay = d }
}

func WithMaxExportBatchSize[T any](n int) Option[T] {
	return func(p *Processor[T]) { p.maxExportBatchSize = n }
}

func WithExportTimeout[T any](d time.Duration) Option[T] {
	return func(p *Processor[T]) { p.exportTimeout = d }
}

func WithFilter[T any](f Filter[T]) Option[T] {
	return func(p *Processor[T]) { p.filter = f }
}

// NewProcessor constructs a Processor exporting through exp and starts
// its worker goroutine.
func NewProcessor[T any](exp Exporter[T], opts ...Option[T]) *Processor[T] {
	p := &Processor[T]{
		exporter:           exp,
		maxQueueSize:       DefaultMaxQueueSize,
		scheduledDelay:     DefaultScheduledDelay,
		maxExportBatchSize: DefaultMaxExportBatchSize,
		exportTimeout:      DefaultExportTimeout,
		stopped:            make(chan struct{}),
		exitCh:             make(chan struct{}),
		done:               make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = make(chan any, p.maxQueueSize)

	go p.run()
	return p
}

// Enqueue offers item to the queue. It never blocks: if the queue is
// full, or the Filter rejects the item, or the Processor is shutting
// down, the item is dropped and a drop counter is incremented.
func (p *Processor[T]) Enqueue(item T) {
	select {
	case <-p.stopped:
		p.incDropped()
		return
	default:
	}

	if p.filter != nil && !p.filter(item) {
		p.incDropped()
		return
	}

	select {
	case p.queue <- item:
	default:
		p.incDropped()
	}
}

func (p *Processor[T]) incDropped() {
	p.droppedMu.Lock()
	p.dropped++
	p.droppedMu.Unlock()
}

// Dropped returns the number of items discarded because the queue was
// full, the item was filtered, or the Processor had already begun
// shutting down.
func (p *Processor[T]) Dropped() int64 {
	p.droppedMu.Lock()
	defer p.droppedMu.Unlock()
	return p.dropped
}

func (p *Processor[T]) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.scheduledDelay)
	defer ticker.Stop()

	batch := make([]T, 0, p.maxExportBatchSize)
	halfFull := (p.maxQueueSize + 1) / 2

	export := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.exportTimeout)
		if err := p.exporter.Export(ctx, batch); err != nil {
			otelcore.Handle(err)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case <-ticker.C:
			export()

		case <-p.exitCh:
			// Drain whatever is already queued before stopping, so
			// items enqueued ahead of Shutdown are not silently lost.
			for {
				select {
				case v := <-p.queue:
					if s, isSentinel := v.(*sentinel); isSentinel {
						export()
						close(s.ack)
						continue
					}
					batch = append(batch, v.(T))
				default:
					export()
					return
				}
			}

		case v := <-p.queue:
			if s, isSentinel := v.(*sentinel); isSentinel {
				export()
				close(s.ack)
				continue
			}
			batch = append(batch, v.(T))
			if len(batch)+len(p.queue) >= halfFull {
				// Eager export: take what is already queued into this batch.
				for len(batch) < p.maxExportBatchSize && len(p.queue) > 0 {
					next := <-p.queue
					if s, isSentinel := next.(*sentinel); isSentinel {
						export()
						close(s.ack)
						continue
					}
					batch = append(batch, next.(T))
				}
				export()
			} else if len(batch) >= p.maxExportBatchSize {
				export()
			}
		}
	}
}

// ForceFlush posts a sentinel and waits up to ctx's deadline for the
// worker to acknowledge every item queued before the sentinel has been
// handed to the exporter.
func (p *Processor[T]) ForceFlush(ctx context.Context) error {
	select {
	case <-p.stopped:
		return ErrShuttingDown
	default:
	}

	s := &sentinel{ack: make(chan struct{})}
	select {
	case p.queue <- s:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-s.ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown flushes once and then stops the worker; subsequent Enqueue
// calls become silent no-ops.
func (p *Processor[T]) Shutdown(ctx context.Context) error {
	var flushErr error
	p.stopOnce.Do(func() {
		flushErr = p.ForceFlush(ctx)
		close(p.stopped)
		close(p.exitCh)
	})

	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := p.exporter.Shutdown(ctx); err != nil && flushErr == nil {
		flushErr = err
	}
	return flushErr
}
