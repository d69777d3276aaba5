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

import "sync/atomic"

// diagnostics holds process-wide counters for conditions a recorder
// rejects silently at the data-plane level (never an error return, since
// instrumentation call sites must never be allowed to fail); a test or
// an internal self-observability hook can read these without touching
// the logger.
type diagnostics struct {
	NonMonotonicRejected atomic.Int64
}

// GlobalDiagnostics is the process-wide counter set incremented by
// kernels on invalid input. It is intentionally global-only: a rejected
// measurement isn't attributable to one Store cleanly once attributes
// themselves may be what's malformed.
var GlobalDiagnostics diagnostics
