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

// Package view lets a MeterProvider rewrite an instrument's exported
// name, description, attribute keys, or aggregation before it reaches
// the AggregatorStore, without instrumented code changing.
package view // import "github.com/CodeBlanch/otelcore/sdk/metric/view"

import (
	"regexp"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/instrumentation"
	"github.com/CodeBlanch/otelcore/sdk/metric/aggregation"
)

// InstrumentKind mirrors the kinds a Meter can create instruments of.
type InstrumentKind int

const (
	InstrumentKindCounter InstrumentKind = iota + 1
	InstrumentKindUpDownCounter
	InstrumentKindHistogram
	InstrumentKindObservableCounter
	InstrumentKindObservableUpDownCounter
	InstrumentKindObservableGauge
	InstrumentKindGauge
)

// Instrument identifies an instrument a View's criteria are matched
// against.
type Instrument struct {
	Name        string
	Description string
	Kind        InstrumentKind
	Unit        string
	Scope       instrumentation.Scope
}

// Stream is the (possibly rewritten) identity and aggregation an
// instrument's measurements are recorded under.
type Stream struct {
	Name              string
	Description       string
	Unit              string
	Aggregation       aggregation.Aggregation
	AttributeFilter    attribute.Filter
}

// View both decides whether it applies to an Instrument and, when it
// does, produces the Stream that instrument's measurements should be
// recorded into.
type View func(Instrument) (Stream, bool)

// Criteria selects which instruments a View applies to. A zero-value
// field imposes no constraint on that dimension; Name/Unit support "*"
// wildcards, each matching any run of characters, anywhere in the
// pattern and any number of times.
type Criteria struct {
	Name          string
	Description   string
	Kind          InstrumentKind
	Unit          string
	ScopeName     string
	ScopeVersion  string
	SchemaURL     string
}

// New constructs a View from Criteria plus a mutator that builds the
// Stream for a matched Instrument. If mutator is nil, the
// View passes the instrument through with its own identity and the
// reader's default aggregation.
func New(crit Criteria, mutator func(Instrument) Stream) View {
	nameRe := wildcardRegexp(crit.Name)
	unitRe := wildcardRegexp(crit.Unit)

	return func(inst Instrument) (Stream, bool) {
		if crit.Name != "" && !nameRe.MatchString(inst.Name) {
			return Stream{}, false
		}
		if crit.Description != "" && crit.Description != inst.Description {
			return Stream{}, false
		}
		if crit.Kind != 0 && crit.Kind != inst.Kind {
			return Stream{}, false
		}
		if crit.Unit != "" && !unitRe.MatchString(inst.Unit) {
			return Stream{}, false
		}
		if crit.ScopeName != "" && crit.ScopeName != inst.Scope.Name {
			return Stream{}, false
		}
		if crit.ScopeVersion != "" && crit.ScopeVersion != inst.Scope.Version {
			return Stream{}, false
		}
		if crit.SchemaURL != "" && crit.SchemaURL != inst.Scope.SchemaURL {
			return Stream{}, false
		}

		stream := Stream{Name: inst.Name, Description: inst.Description, Unit: inst.Unit}
		if mutator != nil {
			stream = mutator(inst)
		}
		return stream, true
	}
}

// wildcardRegexp compiles pattern into a regexp where "*" matches any
// run of characters, mirroring the instrument-name glob matching the
// teacher's Stream.Name comparisons use.
func wildcardRegexp(pattern string) *regexp.Regexp {
	if pattern == "" {
		return regexp.MustCompile(".*")
	}
	var b []byte
	b = append(b, '^')
	for _, part := range splitStar(pattern) {
		if part == "*" {
			b = append(b, ".*"...)
			continue
		}
		b = append(b, regexp.QuoteMeta(part)...)
	}
	b = append(b, '$')
	return regexp.MustCompile(string(b))
}

// splitStar splits pattern into literal runs and single "*" tokens.
func splitStar(pattern string) []string {
	var parts []string
	var cur []byte
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '*' {
			if len(cur) > 0 {
				parts = append(parts, string(cur))
				cur = nil
			}
			parts = append(parts, "*")
			continue
		}
		cur = append(cur, pattern[i])
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}
