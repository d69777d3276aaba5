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

package aggregate // import "github.com/CodeBlanch/otelcore/sdk/metric/internal/aggregate"

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/CodeBlanch/otelcore/attribute"
)

// DefaultCardinalityLimit is the number of unique, non-overflow
// AttributeSets a Store admits before routing further series to the
// overflow point.
const DefaultCardinalityLimit = 2000

// overflowAttributeKey tags the pre-allocated overflow point so an
// exporter can distinguish it from a legitimate zero-attribute series.
var overflowAttributeKey = attribute.Key("otel.metric.overflow")

// zeroIndex and overflowIndex are fixed slots, allocated unconditionally
// regardless of whether they ever receive a record. This matches
// spec.md's "pre-allocated zero-tag MetricPoint at index 0" / "overflow
// MetricPoint (index 1)".
const (
	zeroIndex     = 0
	overflowIndex = 1
)

// Store is a cardinality-bounded map from AttributeSet to Point, with
// optional reclamation of inactive series under delta temporality. It
// corresponds 1:1 to spec.md §4.2's AggregatorStore.
type Store struct {
	newState func() any

	cardinalityLimit int
	emitOverflow     bool
	reclaim          bool

	mu        sync.Mutex
	points    []*Point
	index     map[attribute.Distinct]int32
	freeList  []int32
	dropCount atomic.Int64
}

// NewStore constructs a Store. newState produces a fresh, kernel-owned
// running-state blob for a newly claimed Point.
func NewStore(newState func() any, cardinalityLimit int, emitOverflow, reclaim bool) *Store {
	if cardinalityLimit <= 0 {
		cardinalityLimit = DefaultCardinalityLimit
	}
	s := &Store{
		newState:         newState,
		cardinalityLimit: cardinalityLimit,
		emitOverflow:     emitOverflow,
		reclaim:          reclaim,
		index:            make(map[attribute.Distinct]int32),
	}

	zero, _ := attribute.NewSet()
	overflow, _ := attribute.NewSet(overflowAttributeKey.Bool(true))

	s.points = make([]*Point, 2)
	s.points[zeroIndex] = &Point{Attrs: zero, State: newState()}
	s.points[overflowIndex] = &Point{Attrs: overflow, State: newState()}
	s.index[zero.Equivalent()] = zeroIndex
	// The overflow point is intentionally NOT addressable by attribute
	// lookup; it is only reached via the cardinality-exceeded path.
	return s
}

// DropCount returns the number of measurements discarded because the
// cardinality limit was reached and overflow routing was disabled.
func (s *Store) DropCount() int64 { return s.dropCount.Load() }

// Record finds or creates the Point for attrs and invokes update on its
// running state, then marks the point pending collection. update must
// not retain state beyond the call.
func (s *Store) Record(attrs attribute.Set, update func(state any)) {
	if attrs.Len() == 0 {
		p := s.points[zeroIndex]
		update(p.State)
		p.MarkPending()
		return
	}

	for {
		p, idx, ok := s.findOrCreate(attrs)
		if !ok {
			// Cardinality exceeded.
			if !s.emitOverflow {
				s.dropCount.Add(1)
				return
			}
			p = s.points[overflowIndex]
			update(p.State)
			p.MarkPending()
			return
		}

		if !p.ref() {
			// Lost a race with reclamation; the slot we read is being
			// torn down. Abandon it and retry the lookup.
			s.mu.Lock()
			if s.index[attrs.Equivalent()] == idx {
				delete(s.index, attrs.Equivalent())
			}
			s.mu.Unlock()
			yieldToContender()
			continue
		}
		update(p.State)
		p.MarkPending()
		p.unref()
		return
	}
}

// findOrCreate returns the Point for attrs, creating one if this is the
// first record of that AttributeSet and the store is under its
// cardinality limit. ok is false when the limit has been reached and a
// new index could not be reserved.
func (s *Store) findOrCreate(attrs attribute.Set) (*Point, int32, bool) {
	dist := attrs.Equivalent()

	s.mu.Lock()
	if idx, found := s.index[dist]; found {
		p := s.points[idx]
		s.mu.Unlock()
		return p, idx, true
	}

	// The zero-attribute entry is always in index and is not counted.
	nonOverflow := len(s.index) - 1
	if nonOverflow >= s.cardinalityLimit {
		s.mu.Unlock()
		return nil, 0, false
	}

	var idx int32
	if n := len(s.freeList); n > 0 {
		idx = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.points[idx].reset(attrs, s.newState())
	} else {
		idx = int32(len(s.points))
		s.points = append(s.points, &Point{Attrs: attrs, State: s.newState()})
	}
	s.index[dist] = idx
	p := s.points[idx]
	s.mu.Unlock()
	return p, idx, true
}

// ForEach invokes fn for every live Point (indices 0 and 1 always
// included), in index order. fn must not block.
func (s *Store) ForEach(fn func(p *Point)) {
	s.mu.Lock()
	pts := make([]*Point, len(s.points))
	copy(pts, s.points)
	s.mu.Unlock()

	for _, p := range pts {
		if p == nil {
			continue
		}
		fn(p)
	}
}

// Reclaim is called after a full delta collection cycle. It evicts every
// non-pinned Point whose status is NoCollectPending and whose refCount
// is zero, returning its index to the free list. It is a no-op unless
// reclamation was enabled at construction.
func (s *Store) Reclaim() {
	if !s.reclaim {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for idx, p := range s.points {
		if idx == zeroIndex || idx == overflowIndex {
			continue
		}
		if Status(atomic.LoadInt32((*int32)(&p.status))) != NoCollectPending {
			continue
		}
		if !p.tryReclaim() {
			// Either busy (refCount != 0) or another goroutine beat us
			// to reclaiming it already.
			continue
		}
		delete(s.index, p.Attrs.Equivalent())
		s.freeList = append(s.freeList, int32(idx))
	}
}

// yieldToContender is called by a recorder that lost a race with
// concurrent reclamation, mirroring the busy-retry pattern of the
// teacher's acquireHandle loop.
func yieldToContender() { runtime.Gosched() }
