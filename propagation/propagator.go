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

package propagation // import "github.com/CodeBlanch/otelcore/propagation"

import "context"

// TextMapPropagator injects values from a Context into a carrier and
// extracts them back into a Context on the receiving side.
type TextMapPropagator interface {
	Inject(ctx context.Context, carrier TextMapCarrier)
	Extract(ctx context.Context, carrier TextMapCarrier) context.Context
	Fields() []string
}

// CompositeTextMapPropagator runs a fixed list of propagators in order;
// Extract applies them in order so a later propagator sees an earlier
// one's extracted values already in ctx, and Inject lets a later
// propagator overwrite an earlier one's carrier entries.
type CompositeTextMapPropagator []TextMapPropagator

// NewCompositeTextMapPropagator combines propagators into one.
func NewCompositeTextMapPropagator(propagators ...TextMapPropagator) TextMapPropagator {
	return CompositeTextMapPropagator(propagators)
}

func (c CompositeTextMapPropagator) Inject(ctx context.Context, carrier TextMapCarrier) {
	for _, p := range c {
		p.Inject(ctx, carrier)
	}
}

func (c CompositeTextMapPropagator) Extract(ctx context.Context, carrier TextMapCarrier) context.Context {
	for _, p := range c {
		ctx = p.Extract(ctx, carrier)
	}
	return ctx
}

func (c CompositeTextMapPropagator) Fields() []string {
	var out []string
	for _, p := range c {
		out = append(out, p.Fields()...)
	}
	return out
}
