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

// Package resource describes the entity producing telemetry. Detection
// (from environment, process, host) is a collaborator's concern; this
// package only provides construction and merge.
package resource // import "github.com/CodeBlanch/otelcore/sdk/resource"

import "github.com/CodeBlanch/otelcore/attribute"

// Resource is an immutable representation of the entity producing
// telemetry, modeled as an attribute.Set.
type Resource struct {
	attrs attribute.Set
}

var empty = Resource{attrs: attribute.Empty()}

// Empty returns a Resource with no attributes.
func Empty() *Resource { return &empty }

// New constructs a Resource from the given attributes.
func New(kvs ...attribute.KeyValue) (*Resource, error) {
	set, err := attribute.NewSet(kvs...)
	if err != nil {
		return Empty(), err
	}
	return &Resource{attrs: set}, nil
}

// Attributes returns the Resource's attribute.Set.
func (r *Resource) Attributes() attribute.Set {
	if r == nil {
		return attribute.Empty()
	}
	return r.attrs
}

// Merge returns a new Resource combining a and b; on key conflicts b wins.
// Neither a nor b is mutated.
func Merge(a, b *Resource) (*Resource, error) {
	if a == nil {
		a = Empty()
	}
	if b == nil {
		b = Empty()
	}
	kvs := a.attrs.ToSlice()
	kvs = append(kvs, b.attrs.ToSlice()...)
	return New(kvs...)
}
