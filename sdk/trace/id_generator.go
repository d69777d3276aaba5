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
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// IDGenerator produces new trace and span IDs. The default
// implementation is cryptographically random; instrumentation that
// needs deterministic or vendor-specific ID formats can supply its own.
type IDGenerator interface {
	NewIDs(ctx context.Context) (TraceID, SpanID)
	NewSpanID(ctx context.Context, traceID TraceID) SpanID
}

type randomIDGenerator struct {
	mu sync.Mutex
}

// NewRandomIDGenerator returns the default IDGenerator, backed by
// crypto/rand.
func NewRandomIDGenerator() IDGenerator { return &randomIDGenerator{} }

func (g *randomIDGenerator) NewSpanID(ctx context.Context, _ TraceID) SpanID {
	g.mu.Lock()
	defer g.mu.Unlock()
	var sid SpanID
	for {
		_, _ = rand.Read(sid[:])
		if sid.IsValid() {
			return sid
		}
	}
}

func (g *randomIDGenerator) NewIDs(ctx context.Context) (TraceID, SpanID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var tid TraceID
	var sid SpanID
	for {
		_, _ = rand.Read(tid[:])
		if tid.IsValid() {
			break
		}
	}
	for {
		_, _ = rand.Read(sid[:])
		if sid.IsValid() {
			break
		}
	}
	return tid, sid
}

// asUint64 is a small unexported helper that derives a numeric
// span/trace ID component (e.g. for logging); the default generator
// does not call it.
func asUint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
