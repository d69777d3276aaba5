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

package log // import "github.com/CodeBlanch/otelcore/sdk/log"

import (
	"context"
	"time"

	"github.com/CodeBlanch/otelcore/sdk/internal/batch"
)

// Exporter hands emitted Records to a backend.
type Exporter interface {
	Export(ctx context.Context, records []Record) error
	Shutdown(ctx context.Context) error
}

// Processor observes each Record as it is emitted.
type Processor interface {
	OnEmit(ctx context.Context, r Record)
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type exporterAdapter struct{ exp Exporter }

func (a exporterAdapter) Export(ctx context.Context, records []Record) error {
	return a.exp.Export(ctx, records)
}

func (a exporterAdapter) Shutdown(ctx context.Context) error { return a.exp.Shutdown(ctx) }

// BatchProcessor batches Records through the shared bounded-queue/worker
// engine before handing them to an Exporter.
type BatchProcessor struct {
	p *batch.Processor[Record]
}

type BatchProcessorOption func(*batchProcessorConfig)

type batchProcessorConfig struct {
	opts []batch.Option[Record]
}

func WithMaxQueueSize(n int) BatchProcessorOption {
	return func(c *batchProcessorConfig) { c.opts = append(c.opts, batch.WithMaxQueueSize[Record](n)) }
}

func WithExportInterval(d time.Duration) BatchProcessorOption {
	return func(c *batchProcessorConfig) { c.opts = append(c.opts, batch.WithScheduledDelay[Record](d)) }
}

func WithMaxExportBatchSize(n int) BatchProcessorOption {
	return func(c *batchProcessorConfig) { c.opts = append(c.opts, batch.WithMaxExportBatchSize[Record](n)) }
}

func WithExportTimeout(d time.Duration) BatchProcessorOption {
	return func(c *batchProcessorConfig) { c.opts = append(c.opts, batch.WithExportTimeout[Record](d)) }
}

// NewBatchProcessor constructs a BatchProcessor exporting through exp.
func NewBatchProcessor(exp Exporter, opts ...BatchProcessorOption) *BatchProcessor {
	cfg := &batchProcessorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &BatchProcessor{p: batch.NewProcessor[Record](exporterAdapter{exp}, cfg.opts...)}
}

func (b *BatchProcessor) OnEmit(_ context.Context, r Record) { b.p.Enqueue(r) }

func (b *BatchProcessor) ForceFlush(ctx context.Context) error { return b.p.ForceFlush(ctx) }

func (b *BatchProcessor) Shutdown(ctx context.Context) error { return b.p.Shutdown(ctx) }

// SimpleProcessor exports each Record synchronously as it is emitted.
type SimpleProcessor struct {
	exp Exporter
}

func NewSimpleProcessor(exp Exporter) *SimpleProcessor { return &SimpleProcessor{exp: exp} }

func (s *SimpleProcessor) OnEmit(ctx context.Context, r Record) {
	ctx, cancel := context.WithTimeout(ctx, batch.DefaultExportTimeout)
	defer cancel()
	_ = s.exp.Export(ctx, []Record{r})
}

func (s *SimpleProcessor) ForceFlush(context.Context) error { return nil }

func (s *SimpleProcessor) Shutdown(ctx context.Context) error { return s.exp.Shutdown(ctx) }
