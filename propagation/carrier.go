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

// Package propagation carries SpanContext and Baggage across process
// boundaries (TextMapPropagator) and across in-process asynchronous
// boundaries where a context.Context cannot simply be threaded through
// (the scoped Attach/Detach slot).
package propagation // import "github.com/CodeBlanch/otelcore/propagation"

// TextMapCarrier reads and writes string key/value pairs from a
// wire-level container such as HTTP headers.
type TextMapCarrier interface {
	Get(key string) string
	Set(key, value string)
	Keys() []string
}

// MapCarrier is a TextMapCarrier backed by a plain map, useful for tests
// and any transport whose headers are already map-shaped.
type MapCarrier map[string]string

func (c MapCarrier) Get(key string) string { return c[key] }

func (c MapCarrier) Set(key, value string) { c[key] = value }

func (c MapCarrier) Keys() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}
