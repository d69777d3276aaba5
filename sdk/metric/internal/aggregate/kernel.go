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
	"time"

	"github.com/CodeBlanch/otelcore/attribute"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
)

// Number is the set of measurement value types an instrument may record.
type Number interface {
	int64 | float64
}

// Kernel is a stateless, type-parameterized aggregation algorithm. A
// Store holds one Kernel and calls NewState to create each Point's
// running-state blob, Update to fold in a measurement, and Collect to
// walk every live Point and produce an immutable output Aggregation.
//
// Kernel implementations must be safe to call concurrently with
// distinct state blobs, and Update must be safe to call concurrently on
// the SAME state blob whenever the Store's spinlock-or-atomic discipline
// requires it (histograms use a spinlock; sums use atomics directly).
type Kernel[N Number] interface {
	// NewState returns a fresh running-state blob for a newly claimed
	// Point.
	NewState() any

	// Update folds value into state. attrs, spanID and traceID are the
	// measurement's dropped attributes and trace linkage, offered to the
	// Point's exemplar reservoir (if one is configured); kernels that
	// were built without a reservoir ignore them.
	Update(state any, value N, attrs []attribute.KeyValue, spanID, traceID []byte)

	// Collect walks every live Point in store, snapshots points that
	// are due for collection (CollectPending, or all of them under
	// cumulative temporality), and returns the resulting Aggregation.
	// start is the window start (instrument registration time, or the
	// previous collection time under delta temporality); now is the
	// current collection time.
	Collect(store *Store, start, now time.Time) metricdata.Aggregation
}
