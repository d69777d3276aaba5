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

// Package baggage implements an immutable, copy-on-write ordered
// string-to-string map for propagating application-defined context
// across process boundaries, independent of the telemetry signals.
package baggage // import "github.com/CodeBlanch/otelcore/baggage"

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidKey is returned when a Member is constructed with an empty key.
var ErrInvalidKey = errors.New("baggage: invalid key")

// Member is one key/value pair carried in a Baggage.
type Member struct {
	key   string
	value string
}

// NewMember constructs a Member, rejecting an empty key.
func NewMember(key, value string) (Member, error) {
	if key == "" {
		return Member{}, ErrInvalidKey
	}
	return Member{key: key, value: value}, nil
}

func (m Member) Key() string   { return m.key }
func (m Member) Value() string { return m.value }

// Baggage is an immutable, ordered collection of Members, keyed
// case-insensitively. Every mutating operation returns a new Baggage;
// the receiver and any previously observed value are left unchanged.
type Baggage struct {
	members []Member
}

// New constructs a Baggage from members, keeping the last occurrence of
// each case-insensitively equal key.
func New(members ...Member) (Baggage, error) {
	b := Baggage{}
	for _, m := range members {
		if m.key == "" {
			return Baggage{}, ErrInvalidKey
		}
		b = b.withSet(m)
	}
	return b, nil
}

// Len returns the number of members in b.
func (b Baggage) Len() int { return len(b.members) }

// Member looks up a key case-insensitively; ok is false if absent.
func (b Baggage) Member(key string) (Member, bool) {
	idx := b.indexOf(key)
	if idx < 0 {
		return Member{}, false
	}
	return b.members[idx], true
}

// Members returns a defensive copy of b's members, sorted by key for a
// stable, comparable ordering.
func (b Baggage) Members() []Member {
	out := make([]Member, len(b.members))
	copy(out, b.members)
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// SetMember returns a new Baggage with key set to value, replacing any
// existing case-insensitively equal key; b is unmodified.
func (b Baggage) SetMember(key, value string) (Baggage, error) {
	m, err := NewMember(key, value)
	if err != nil {
		return Baggage{}, err
	}
	return b.withSet(m), nil
}

func (b Baggage) withSet(m Member) Baggage {
	next := make([]Member, 0, len(b.members)+1)
	replaced := false
	for _, existing := range b.members {
		if strings.EqualFold(existing.key, m.key) {
			next = append(next, m)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, m)
	}
	return Baggage{members: next}
}

// DeleteMember returns a new Baggage without key; b is unmodified. A
// missing key is a no-op that still returns a fresh (structurally equal)
// Baggage, never the receiver's own backing slice.
func (b Baggage) DeleteMember(key string) Baggage {
	next := make([]Member, 0, len(b.members))
	for _, existing := range b.members {
		if strings.EqualFold(existing.key, key) {
			continue
		}
		next = append(next, existing)
	}
	return Baggage{members: next}
}

func (b Baggage) indexOf(key string) int {
	for i, m := range b.members {
		if strings.EqualFold(m.key, key) {
			return i
		}
	}
	return -1
}
