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
	"math"
	"sync/atomic"

	"github.com/CodeBlanch/otelcore"
	"github.com/CodeBlanch/otelcore/attribute"
)

// unmapped is the sentinel refCount value marking a MetricPoint as
// reclaimed. It mirrors the i32::MIN sentinel from spec: far below any
// value reachable by legitimate ref()/unref() traffic.
const unmapped = math.MinInt32

// Status is the MetricPoint's pending-collection state.
type Status int32

const (
	// NoCollectPending means the point has not been updated since the
	// last snapshot.
	NoCollectPending Status = iota
	// CollectPending means the point was updated and should be
	// snapshotted on the next Collect.
	CollectPending
)

// Point is one live aggregation cell: running state and the bookkeeping
// needed for cardinality-bounded reclamation. It holds no separate
// snapshot state; a kernel's Collect reads the running state directly
// (resetting it under delta temporality). State is an
// opaque AggregatorKernel-owned blob; Point itself only owns identity and
// lifecycle.
type Point struct {
	Attrs attribute.Set

	// State is the kernel's running aggregator state for this cell.
	// Its type is determined by which AggregatorKernel owns the Store
	// this Point lives in.
	State any

	status Status

	// refCount guards reclamation. A value of unmapped (math.MinInt32)
	// means the slot has been reclaimed and must not be read or
	// written; any other value is the count of in-flight
	// recorders/collectors currently touching the slot.
	refCount atomic.Int32
}

// MarkPending records that an update occurred; the collector will
// snapshot this point on its next pass.
func (p *Point) MarkPending() {
	atomic.StoreInt32((*int32)(&p.status), int32(CollectPending))
}

// TakePending reads and clears the pending flag, returning the previous
// value.
func (p *Point) TakePending() Status {
	return Status(atomic.SwapInt32((*int32)(&p.status), int32(NoCollectPending)))
}

// ref attempts to claim the slot for an in-flight operation. It returns
// false if the slot has been reclaimed; the caller must then abandon the
// index and retry its lookup.
func (p *Point) ref() bool {
	for {
		v := p.refCount.Load()
		if v < 0 {
			return false
		}
		if p.refCount.CompareAndSwap(v, v+1) {
			return true
		}
	}
}

// unref releases a claim taken by ref.
func (p *Point) unref() {
	v := p.refCount.Add(-1)
	otelcore.DebugAssert(v >= 0, "Point.unref: refCount went negative without reclamation")
}

// tryReclaim attempts to transition an idle slot (refCount == 0) to
// reclaimed. It returns true if this call performed the reclamation.
func (p *Point) tryReclaim() bool {
	return p.refCount.CompareAndSwap(0, unmapped)
}

// reset prepares a reclaimed (or fresh) slot for reuse with a new
// AttributeSet.
func (p *Point) reset(attrs attribute.Set, state any) {
	p.Attrs = attrs
	p.State = state
	p.status = NoCollectPending
	p.refCount.Store(0)
}
