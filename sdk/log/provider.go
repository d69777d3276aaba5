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
	"sync"
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/resource"
	sdktrace "github.com/CodeBlanch/otelcore/sdk/trace"
)

// LoggerProvider owns the resource and Processors shared by every
// Logger it hands out.
type LoggerProvider struct {
	resource *resource.Resource

	mu         sync.Mutex
	processors []Processor
	loggers    map[instrumentation.Scope]*Logger
	stopped    bool
}

// Option configures a LoggerProvider.
type Option func(*LoggerProvider)

func WithResource(res *resource.Resource) Option {
	return func(p *LoggerProvider) { p.resource = res }
}

func WithProcessor(proc Processor) Option {
	return func(p *LoggerProvider) { p.processors = append(p.processors, proc) }
}

// NewLoggerProvider constructs a LoggerProvider.
func NewLoggerProvider(opts ...Option) *LoggerProvider {
	p := &LoggerProvider{
		resource: resource.Empty(),
		loggers:  make(map[instrumentation.Scope]*Logger),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoggerOption configures the instrumentation.Scope of a Logger.
type LoggerOption func(*instrumentation.Scope)

func WithInstrumentationVersion(v string) LoggerOption {
	return func(s *instrumentation.Scope) { s.Version = v }
}

func WithSchemaURL(url string) LoggerOption {
	return func(s *instrumentation.Scope) { s.SchemaURL = url }
}

// Logger returns a memoized Logger for the named instrumentation scope.
func (p *LoggerProvider) Logger(name string, opts ...LoggerOption) *Logger {
	scope := instrumentation.Scope{Name: name}
	for _, opt := range opts {
		opt(&scope)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.loggers[scope]; ok {
		return l
	}
	l := &Logger{scope: scope, provider: p}
	p.loggers[scope] = l
	return l
}

// ForceFlush flushes every registered Processor.
func (p *LoggerProvider) ForceFlush(ctx context.Context) error {
	p.mu.Lock()
	processors := append([]Processor(nil), p.processors...)
	p.mu.Unlock()

	var firstErr error
	for _, proc := range processors {
		if err := proc.ForceFlush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Shutdown shuts down every registered Processor; idempotent.
func (p *LoggerProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	processors := append([]Processor(nil), p.processors...)
	p.mu.Unlock()

	var firstErr error
	for _, proc := range processors {
		if err := proc.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Logger emits Records for one instrumentation scope.
type Logger struct {
	scope    instrumentation.Scope
	provider *LoggerProvider
}

// EmitOption configures a single Emit call.
type EmitOption func(*Record)

func WithTimestamp(t time.Time) EmitOption { return func(r *Record) { r.timestamp = t } }

func WithObservedTimestamp(t time.Time) EmitOption {
	return func(r *Record) { r.observedTimestamp = t }
}

func WithSeverity(s Severity) EmitOption { return func(r *Record) { r.severity = s } }

func WithSeverityText(text string) EmitOption { return func(r *Record) { r.severityText = text } }

func WithBody(v attribute.Value) EmitOption { return func(r *Record) { r.body = v } }

func WithRecordAttributes(attrs ...attribute.KeyValue) EmitOption {
	return func(r *Record) { r.attrs = append(r.attrs, attrs...) }
}

func WithTraceContext(sc sdktrace.SpanContext) EmitOption {
	return func(r *Record) { r.traceContext = sc }
}

// Emit builds a Record from the given options and hands it to every
// registered Processor in order.
func (l *Logger) Emit(ctx context.Context, opts ...EmitOption) {
	r := Record{
		timestamp:         time.Now(),
		observedTimestamp: time.Now(),
		scope:             l.scope,
		res:               l.provider.resource,
	}
	if sc := sdktrace.SpanContextFromContext(ctx); sc.IsValid() {
		r.traceContext = sc
	}
	for _, opt := range opts {
		opt(&r)
	}

	l.provider.mu.Lock()
	processors := append([]Processor(nil), l.provider.processors...)
	stopped := l.provider.stopped
	l.provider.mu.Unlock()
	if stopped {
		return
	}

	for _, proc := range processors {
		proc.OnEmit(ctx, r)
	}
}
