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

// Package log implements the log-record half of the telemetry SDK:
// LoggerProvider/Logger/Record, batched through the same export engine
// used by sdk/trace.
package log // import "github.com/CodeBlanch/otelcore/sdk/log"

import (
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/resource"
	sdktrace "github.com/CodeBlanch/otelcore/sdk/trace"
)

// Severity mirrors the OpenTelemetry log severity number range; the
// named levels are the conventional anchors within it.
type Severity int

const (
	SeverityUnspecified Severity = 0
	SeverityTrace       Severity = 1
	SeverityDebug       Severity = 5
	SeverityInfo        Severity = 9
	SeverityWarn        Severity = 13
	SeverityError       Severity = 17
	SeverityFatal       Severity = 21
)

// Record is an immutable, emitted log record, ready for a Processor.
type Record struct {
	timestamp         time.Time
	observedTimestamp time.Time
	severity          Severity
	severityText      string
	body              attribute.Value
	attrs             []attribute.KeyValue
	traceContext      sdktrace.SpanContext
	scope             instrumentation.Scope
	res               *resource.Resource
}

func (r Record) Timestamp() time.Time         { return r.timestamp }
func (r Record) ObservedTimestamp() time.Time { return r.observedTimestamp }
func (r Record) Severity() Severity           { return r.severity }
func (r Record) SeverityText() string         { return r.severityText }
func (r Record) Body() attribute.Value        { return r.body }
func (r Record) TraceContext() sdktrace.SpanContext { return r.traceContext }
func (r Record) InstrumentationScope() instrumentation.Scope { return r.scope }
func (r Record) Resource() *resource.Resource { return r.res }

// Attributes returns a defensive copy of the record's attributes.
func (r Record) Attributes() []attribute.KeyValue {
	out := make([]attribute.KeyValue, len(r.attrs))
	copy(out, r.attrs)
	return out
}
