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

package trace // import "github.com/CodeBlanch/otelcore/sdk/trace"

import (
	"context"
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/internal/batch"
)

// SpanExporter hands finished spans to a backend.
type SpanExporter interface {
	ExportSpans(ctx context.Context, spans []ReadOnlySpan) error
	Shutdown(ctx context.Context) error
}

// SpanProcessor observes span lifecycle events.
type SpanProcessor interface {
	OnStart(parent SpanContext, s ReadWriteSpan)
	OnEnd(s ReadOnlySpan)
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ReadWriteSpan is the mutable view of a span available to SpanProcessors
// during OnStart, before any instrumentation-visible mutation occurs.
type ReadWriteSpan interface {
	ReadOnlySpan
	SetName(name string)
	SetAttributes(attrs ...attribute.KeyValue)
}

type exporterAdapter struct {
	exp SpanExporter
}

func (a exporterAdapter) Export(ctx context.Context, spans []ReadOnlySpan) error {
	return a.exp.ExportSpans(ctx, spans)
}

func (a exporterAdapter) Shutdown(ctx context.Context) error { return a.exp.Shutdown(ctx) }

// BatchSpanProcessor batches ended spans through the shared
// bounded-queue/worker engine before handing them to a SpanExporter.
type BatchSpanProcessor struct {
	p *batch.Processor[ReadOnlySpan]
}

// BatchSpanProcessorOption configures a BatchSpanProcessor.
type BatchSpanProcessorOption func(*batchSpanProcessorConfig)

type batchSpanProcessorConfig struct {
	opts []batch.Option[ReadOnlySpan]
}

func WithMaxQueueSize(n int) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.opts = append(c.opts, batch.WithMaxQueueSize[ReadOnlySpan](n)) }
}

func WithBatchTimeout(d time.Duration) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.opts = append(c.opts, batch.WithScheduledDelay[ReadOnlySpan](d)) }
}

func WithMaxExportBatchSize(n int) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) {
		c.opts = append(c.opts, batch.WithMaxExportBatchSize[ReadOnlySpan](n))
	}
}

func WithExportTimeout(d time.Duration) BatchSpanProcessorOption {
	return func(c *batchSpanProcessorConfig) { c.opts = append(c.opts, batch.WithExportTimeout[ReadOnlySpan](d)) }
}

// NewBatchSpanProcessor constructs a BatchSpanProcessor exporting through
// exp.
func NewBatchSpanProcessor(exp SpanExporter, opts ...BatchSpanProcessorOption) *BatchSpanProcessor {
	cfg := &batchSpanProcessorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &BatchSpanProcessor{p: batch.NewProcessor[ReadOnlySpan](exporterAdapter{exp}, cfg.opts...)}
}

func (b *BatchSpanProcessor) OnStart(SpanContext, ReadWriteSpan) {}

// OnEnd enqueues s for export, unless the Sampler decided RecordOnly
// (recorded but not exported).
func (b *BatchSpanProcessor) OnEnd(s ReadOnlySpan) {
	if !s.SpanContext().IsSampled() {
		return
	}
	b.p.Enqueue(s)
}

func (b *BatchSpanProcessor) ForceFlush(ctx context.Context) error { return b.p.ForceFlush(ctx) }

func (b *BatchSpanProcessor) Shutdown(ctx context.Context) error { return b.p.Shutdown(ctx) }

// SimpleSpanProcessor exports each span synchronously as it ends; useful
// for tests and low-volume exporters where batching adds latency without
// benefit.
type SimpleSpanProcessor struct {
	exp SpanExporter
}

func NewSimpleSpanProcessor(exp SpanExporter) *SimpleSpanProcessor {
	return &SimpleSpanProcessor{exp: exp}
}

func (s *SimpleSpanProcessor) OnStart(SpanContext, ReadWriteSpan) {}

func (s *SimpleSpanProcessor) OnEnd(span ReadOnlySpan) {
	if !span.SpanContext().IsSampled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), batch.DefaultExportTimeout)
	defer cancel()
	_ = s.exp.ExportSpans(ctx, []ReadOnlySpan{span})
}

func (s *SimpleSpanProcessor) ForceFlush(context.Context) error { return nil }

func (s *SimpleSpanProcessor) Shutdown(ctx context.Context) error { return s.exp.Shutdown(ctx) }
