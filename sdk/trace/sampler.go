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
	"encoding/binary"

	"github.com/CodeBlanch/otelcore/attribute"
)

// SamplingDecision is the outcome of a Sampler's evaluation.
type SamplingDecision int

const (
	// Drop means the span will not be recorded at all.
	Drop SamplingDecision = iota
	// RecordOnly means the span is recorded locally (attributes,
	// events, status all populate) but is not exported.
	RecordOnly
	// RecordAndSample means the span is recorded and exported, and the
	// sampled flag propagates to children.
	RecordAndSample
)

// SamplingParameters are the inputs to a sampling decision.
type SamplingParameters struct {
	ParentContext SpanContext
	TraceID       TraceID
	Name          string
	Attributes    []attribute.KeyValue
}

// SamplingResult is a Sampler's decision plus any trace-state additions.
type SamplingResult struct {
	Decision   SamplingDecision
	Attributes []attribute.KeyValue
	TraceState string
}

// Sampler decides whether a new span should be recorded and/or
// exported.
type Sampler interface {
	ShouldSample(p SamplingParameters) SamplingResult
	Description() string
}

type alwaysSample struct{}

// AlwaysSample returns a Sampler that samples every span.
func AlwaysSample() Sampler { return alwaysSample{} }

func (alwaysSample) ShouldSample(p SamplingParameters) SamplingResult {
	return SamplingResult{Decision: RecordAndSample, TraceState: p.ParentContext.TraceState()}
}
func (alwaysSample) Description() string { return "AlwaysOnSampler" }

type neverSample struct{}

// NeverSample returns a Sampler that drops every span.
func NeverSample() Sampler { return neverSample{} }

func (neverSample) ShouldSample(p SamplingParameters) SamplingResult {
	return SamplingResult{Decision: Drop, TraceState: p.ParentContext.TraceState()}
}
func (neverSample) Description() string { return "AlwaysOffSampler" }

// traceIDRatioSampler samples a deterministic fraction of traces by
// comparing the upper 63 bits of the TraceID's second half against a
// threshold. Deterministic: two SDKs with the same ratio and TraceID
// always agree on the decision.
type traceIDRatioSampler struct {
	ratio     float64
	threshold uint64
}

// TraceIDRatioBased returns a Sampler that samples approximately the
// given fraction (clamped to [0,1]) of traces, keyed by TraceID so the
// decision is consistent across the whole trace.
func TraceIDRatioBased(ratio float64) Sampler {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return &traceIDRatioSampler{ratio: ratio, threshold: uint64(ratio * (1 << 63))}
}

func (s *traceIDRatioSampler) ShouldSample(p SamplingParameters) SamplingResult {
	x := binary.BigEndian.Uint64(p.TraceID[8:16]) >> 1
	decision := Drop
	if x < s.threshold {
		decision = RecordAndSample
	}
	return SamplingResult{Decision: decision, TraceState: p.ParentContext.TraceState()}
}

func (s *traceIDRatioSampler) Description() string { return "TraceIDRatioBased" }

type parentBased struct {
	root                    Sampler
	remoteSampled           Sampler
	remoteNotSampled        Sampler
	localSampled            Sampler
	localNotSampled         Sampler
}

// ParentBasedOption configures ParentBased's behavior for non-root
// spans; defaults respect the parent's sampling decision exactly.
type ParentBasedOption func(*parentBased)

func WithRemoteParentSampled(s Sampler) ParentBasedOption {
	return func(p *parentBased) { p.remoteSampled = s }
}
func WithRemoteParentNotSampled(s Sampler) ParentBasedOption {
	return func(p *parentBased) { p.remoteNotSampled = s }
}
func WithLocalParentSampled(s Sampler) ParentBasedOption {
	return func(p *parentBased) { p.localSampled = s }
}
func WithLocalParentNotSampled(s Sampler) ParentBasedOption {
	return func(p *parentBased) { p.localNotSampled = s }
}

// ParentBased defers to root for spans with no valid parent, and
// otherwise matches the parent's sampling decision (overridable per
// case via options).
func ParentBased(root Sampler, opts ...ParentBasedOption) Sampler {
	p := &parentBased{
		root:             root,
		remoteSampled:    AlwaysSample(),
		remoteNotSampled: NeverSample(),
		localSampled:     AlwaysSample(),
		localNotSampled:  NeverSample(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *parentBased) ShouldSample(params SamplingParameters) SamplingResult {
	psc := params.ParentContext
	if !psc.IsValid() {
		return p.root.ShouldSample(params)
	}
	sampled := psc.IsSampled()
	switch {
	case psc.IsRemote() && sampled:
		return p.remoteSampled.ShouldSample(params)
	case psc.IsRemote() && !sampled:
		return p.remoteNotSampled.ShouldSample(params)
	case !psc.IsRemote() && sampled:
		return p.localSampled.ShouldSample(params)
	default:
		return p.localNotSampled.ShouldSample(params)
	}
}

func (p *parentBased) Description() string { return "ParentBased{" + p.root.Description() + "}" }
