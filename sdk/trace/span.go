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
	"reflect"
	"sync"
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/resource"
)

// SpanKind describes a span's relationship to its caller/callees.
type SpanKind int

const (
	SpanKindUnspecified SpanKind = iota
	SpanKindInternal
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

// StatusCode is the span's outcome as set by instrumentation.
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusError
	StatusOK
)

// Status is a span's final disposition.
type Status struct {
	Code        StatusCode
	Description string
}

// Event is a timestamped annotation on a span.
type Event struct {
	Name       string
	Time       time.Time
	Attributes []attribute.KeyValue
}

// Link associates a span with another, unrelated-by-parentage span
// context (e.g. a batch's constituent requests).
type Link struct {
	SpanContext SpanContext
	Attributes  []attribute.KeyValue
}

// ReadOnlySpan is the immutable view of a span handed to SpanProcessors
// and Exporters; it may be read concurrently after the span ends.
type ReadOnlySpan interface {
	Name() string
	SpanContext() SpanContext
	Parent() SpanContext
	SpanKind() SpanKind
	StartTime() time.Time
	EndTime() time.Time
	Attributes() []attribute.KeyValue
	Events() []Event
	Links() []Link
	Status() Status
	InstrumentationScope() instrumentation.Scope
	Resource() *resource.Resource
	Ended() bool
}

// span is the SDK's concrete, mutable Span implementation. Fields are
// guarded by mu for the duration the span is open; after End() no
// instrumentation call may mutate it again, but ReadOnlySpan accessors
// remain safe to call from any goroutine.
type span struct {
	mu sync.Mutex

	name       string
	sc         SpanContext
	parent     SpanContext
	kind       SpanKind
	startTime  time.Time
	endTime    time.Time
	attrs      []attribute.KeyValue
	events     []Event
	links      []Link
	status     Status
	ended      bool

	scope    instrumentation.Scope
	res      *resource.Resource
	recorded bool // Sampler decided RecordOnly or RecordAndSample
	sampled  bool // Sampler decided RecordAndSample

	tracer *tracer
}

var _ ReadOnlySpan = (*span)(nil)

func (s *span) Name() string                            { s.mu.Lock(); defer s.mu.Unlock(); return s.name }
func (s *span) SpanContext() SpanContext                 { return s.sc }
func (s *span) Parent() SpanContext                      { return s.parent }
func (s *span) SpanKind() SpanKind                       { return s.kind }
func (s *span) StartTime() time.Time                     { return s.startTime }
func (s *span) InstrumentationScope() instrumentation.Scope { return s.scope }
func (s *span) Resource() *resource.Resource             { return s.res }

func (s *span) EndTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime
}

func (s *span) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *span) Attributes() []attribute.KeyValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]attribute.KeyValue, len(s.attrs))
	copy(out, s.attrs)
	return out
}

func (s *span) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *span) Links() []Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Link, len(s.links))
	copy(out, s.links)
	return out
}

func (s *span) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsRecording reports whether operations on the span are being recorded.
func (s *span) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.ended && s.recorded
}

// SetName renames the span.
func (s *span) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || !s.recorded {
		return
	}
	s.name = name
}

// SetAttributes adds or overwrites attributes on the span.
func (s *span) SetAttributes(attrs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || !s.recorded {
		return
	}
	for _, kv := range attrs {
		replaced := false
		for i := range s.attrs {
			if s.attrs[i].Key == kv.Key {
				s.attrs[i] = kv
				replaced = true
				break
			}
		}
		if !replaced {
			s.attrs = append(s.attrs, kv)
		}
	}
}

// SetStatus sets the span's final status. An OK status clears a
// previously-set description, matching OpenTelemetry's documented
// precedence (Error can be overwritten by OK, but not vice versa).
func (s *span) SetStatus(code StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || !s.recorded {
		return
	}
	if code == StatusOK {
		s.status = Status{Code: StatusOK}
		return
	}
	if s.status.Code == StatusOK {
		return
	}
	s.status = Status{Code: code, Description: description}
}

// AddEvent appends a timestamped event to the span.
func (s *span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || !s.recorded {
		return
	}
	s.events = append(s.events, Event{Name: name, Time: time.Now(), Attributes: attrs})
}

// RecordError attaches err to the span as an "exception" event, following
// the exception semantic conventions (exception.type, exception.message).
// Extra attrs are appended after the conventional ones. It does not set
// the span's status; callers that want the error reflected in Status
// call SetStatus separately.
func (s *span) RecordError(err error, attrs ...attribute.KeyValue) {
	if err == nil {
		return
	}
	exceptionAttrs := append([]attribute.KeyValue{
		attribute.String("exception.type", reflect.TypeOf(err).String()),
		attribute.String("exception.message", err.Error()),
	}, attrs...)
	s.AddEvent("exception", exceptionAttrs...)
}

// End marks the span complete and hands it to the Tracer's span
// processors; subsequent mutating calls are no-ops.
func (s *span) End() {
	s.mu.Lock()
	if s.ended || !s.recorded {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.endTime = time.Now()
	s.mu.Unlock()

	if s.recorded {
		s.tracer.onEnd(s)
	}
}
