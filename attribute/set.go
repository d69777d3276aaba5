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

package attribute // import "github.com/CodeBlanch/otelcore/attribute"

import (
	"errors"
	"hash/fnv"
	"sort"
)

// ErrInvalidAttribute is returned by NewSet when a key is empty.
var ErrInvalidAttribute = errors.New("attribute: invalid key")

// Set is a canonical, de-duplicated, key-sorted collection of KeyValues.
// It is immutable once constructed and its fingerprint (Distinct) is
// computed once, at construction time.
type Set struct {
	kvs  []KeyValue
	dist Distinct
}

// Distinct is a cacheable, comparable key that uniquely identifies a Set's
// normalized contents; it is safe to use as a Go map key. Two Sets with
// the same normalized contents have an equal Distinct.
type Distinct struct {
	canonical string
}

// Fingerprint returns a 64-bit FNV hash of the Set's canonical encoding.
// The hash is not cached: each call hashes the encoding again. It is
// cheap to compute comparisons against but, unlike Distinct, is not
// guaranteed collision-free — callers that need exact equality should key
// maps off Distinct (or Set.Equals) and use Fingerprint only to choose a
// bucket to probe.
func (s Set) Fingerprint() uint64 { return s.dist.hash() }

func (d Distinct) hash() uint64 {
	h := fnvHash(d.canonical)
	return h
}

// Sortable is reusable scratch space for NewSetWithSortable, letting
// repeated Set construction avoid an allocation per call.
type Sortable []KeyValue

func (s Sortable) Len() int           { return len(s) }
func (s Sortable) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s Sortable) Less(i, j int) bool { return s[i].Key < s[j].Key }

// Filter decides whether a KeyValue should be kept.
type Filter func(KeyValue) bool

// empty is the canonical zero-attribute Set.
var empty = Set{kvs: []KeyValue{}}

// Empty returns the canonical Set with no attributes.
func Empty() Set { return empty }

// NewSet copies, sorts, and de-duplicates kvs (last write wins), drops
// entries whose value is an empty string, and rejects empty keys.
//
// Unlike NewSetWithSortable this always allocates a scratch slice; prefer
// NewSetWithSortable on a hot path that constructs many Sets.
func NewSet(kvs ...KeyValue) (Set, error) {
	var scratch Sortable
	return NewSetWithSortable(kvs, &scratch)
}

// NewSetWithSortable behaves like NewSet but reuses the tmp scratch space
// across calls instead of allocating one per call.
func NewSetWithSortable(kvs []KeyValue, tmp *Sortable) (Set, error) {
	for _, kv := range kvs {
		if !kv.Key.Defined() {
			return empty, ErrInvalidAttribute
		}
	}

	*tmp = append((*tmp)[:0], kvs...)
	sort.Stable(*tmp)
	cp := []KeyValue(*tmp)

	// De-duplicate: last write wins. Walk backwards keeping first-seen
	// (rightmost) occurrence of each key, then re-sort the survivors.
	seen := make(map[Key]struct{}, len(cp))
	out := cp[:0]
	for i := len(cp) - 1; i >= 0; i-- {
		kv := cp[i]
		if _, ok := seen[kv.Key]; ok {
			continue
		}
		seen[kv.Key] = struct{}{}
		if kv.Value.emptyString() {
			continue
		}
		out = append(out, kv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	final := make([]KeyValue, len(out))
	copy(final, out)

	return Set{kvs: final, dist: fingerprint(final)}, nil
}

// Len returns the number of attributes in the Set.
func (s Set) Len() int { return len(s.kvs) }

// ToSlice returns the Set's KeyValues in key-sorted order. The caller
// must not mutate the returned slice's contents by reference semantics
// that would escape; a defensive copy is returned.
func (s Set) ToSlice() []KeyValue {
	out := make([]KeyValue, len(s.kvs))
	copy(out, s.kvs)
	return out
}

// Iter returns an iterator over the Set in key-sorted order.
func (s Set) Iter() Iterator { return Iterator{storage: s, idx: -1} }

// Iterator walks a Set in key-sorted order.
type Iterator struct {
	storage Set
	idx     int
}

// Next advances the iterator; returns false when exhausted.
func (i *Iterator) Next() bool {
	i.idx++
	return i.idx < len(i.storage.kvs)
}

// Attribute returns the current KeyValue. Only valid after a true Next().
func (i *Iterator) Attribute() KeyValue { return i.storage.kvs[i.idx] }

// Value looks up the value for key; ok is false if absent.
func (s Set) Value(k Key) (Value, bool) {
	// Binary search since kvs is key-sorted.
	lo, hi := 0, len(s.kvs)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.kvs[mid].Key < k {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.kvs) && s.kvs[lo].Key == k {
		return s.kvs[lo].Value, true
	}
	return Value{}, false
}

// HasValue reports whether k is present.
func (s Set) HasValue(k Key) bool {
	_, ok := s.Value(k)
	return ok
}

// Equals reports structural equality between s and o.
func (s Set) Equals(o Set) bool { return s.dist == o.dist }

// Equivalent returns the comparable fingerprint used as a map key. Two
// Sets with the same normalized contents produce an equal Equivalent.
func (s Set) Equivalent() Distinct { return s.dist }

// Filter returns a new Set retaining only the KeyValues f accepts, along
// with the KeyValues it rejected (in original key-sorted order).
func (s Set) Filter(f Filter) (Set, []KeyValue) {
	if f == nil {
		return s, nil
	}
	var kept, dropped []KeyValue
	for _, kv := range s.kvs {
		if f(kv) {
			kept = append(kept, kv)
		} else {
			dropped = append(dropped, kv)
		}
	}
	if len(dropped) == 0 {
		return s, nil
	}
	return Set{kvs: kept, dist: fingerprint(kept)}, dropped
}

// fingerprint computes the canonical string encoding of the normalized,
// key-sorted kvs. It is stable across process runs (no random seeding),
// per spec, and is exact: no two distinct normalized attribute sets
// produce the same Distinct.
func fingerprint(kvs []KeyValue) Distinct {
	var b []byte
	for _, kv := range kvs {
		b = append(b, kv.Key...)
		b = append(b, 0, byte(kv.Value.Type()), 0)
		b = append(b, kv.Value.String()...)
		b = append(b, 0)
	}
	return Distinct{canonical: string(b)}
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
