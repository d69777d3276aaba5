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

import (
	"context"
	"net/url"
	"strings"

	"github.com/CodeBlanch/otelcore/baggage"
)

const baggageHeader = "baggage"

type baggageContextKey struct{}

// ContextWithBaggage returns a copy of ctx carrying b.
func ContextWithBaggage(ctx context.Context, b baggage.Baggage) context.Context {
	return context.WithValue(ctx, baggageContextKey{}, b)
}

// BaggageFromContext extracts the Baggage carried by ctx, or an empty
// Baggage if none was attached.
func BaggageFromContext(ctx context.Context) baggage.Baggage {
	b, ok := ctx.Value(baggageContextKey{}).(baggage.Baggage)
	if !ok {
		return baggage.Baggage{}
	}
	return b
}

// AttachToken is returned by Attach and consumed by Detach to restore
// the ambient slot to exactly what it held before the matching Attach —
// the scoped-attach contract of spec.md §4.6, for call sites that cannot
// simply keep using their own pre-Attach context.Context value (e.g. a
// callback-driven instrumentation hook invoked with only one context
// "in hand").
type AttachToken struct {
	prior context.Context
}

// Attach stores b as ctx's ambient Baggage and returns both the derived
// context and a token that can restore ctx via Detach.
func Attach(ctx context.Context, b baggage.Baggage) (context.Context, AttachToken) {
	return ContextWithBaggage(ctx, b), AttachToken{prior: ctx}
}

// Detach returns the context exactly as it was before the Attach call
// that produced tok. Safe to call from a defer on every exit path.
func Detach(tok AttachToken) context.Context { return tok.prior }

// Baggage implements the W3C Baggage propagation format.
type Baggage struct{}

func (Baggage) Fields() []string { return []string{baggageHeader} }

// Inject writes ctx's Baggage members into carrier as a single
// comma-separated "baggage" header. An empty Baggage is a no-op.
func (Baggage) Inject(ctx context.Context, carrier TextMapCarrier) {
	b := BaggageFromContext(ctx)
	if b.Len() == 0 {
		return
	}
	members := b.Members()
	pairs := make([]string, 0, len(members))
	for _, m := range members {
		pairs = append(pairs, url.QueryEscape(m.Key())+"="+url.QueryEscape(m.Value()))
	}
	carrier.Set(baggageHeader, strings.Join(pairs, ","))
}

// Extract parses a "baggage" header out of carrier and returns a context
// carrying the resulting Baggage. Malformed pairs are skipped rather
// than failing the whole header.
func (Baggage) Extract(ctx context.Context, carrier TextMapCarrier) context.Context {
	h := carrier.Get(baggageHeader)
	if h == "" {
		return ctx
	}

	b := baggage.Baggage{}
	for _, pair := range strings.Split(h, ",") {
		pair = strings.TrimSpace(pair)
		// Drop any per-member metadata (";propertyKey=value") — not
		// modeled by this Baggage implementation.
		if i := strings.IndexByte(pair, ';'); i >= 0 {
			pair = pair[:i]
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSpace(kv[0]))
		if err != nil || key == "" {
			continue
		}
		value, err := url.QueryUnescape(strings.TrimSpace(kv[1]))
		if err != nil {
			continue
		}
		var setErr error
		b, setErr = b.SetMember(key, value)
		if setErr != nil {
			continue
		}
	}
	return ContextWithBaggage(ctx, b)
}
