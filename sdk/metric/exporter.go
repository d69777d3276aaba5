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

package metric // import "github.com/CodeBlanch/otelcore/sdk/metric"

import (
	"context"

	"github.com/CodeBlanch/otelcore/sdk/metric/aggregation"
	"github.com/CodeBlanch/otelcore/sdk/metric/metricdata"
	"github.com/CodeBlanch/otelcore/sdk/metric/view"
)

// Exporter sends collected metrics to a backend. Export is called
// exactly once per collection by whichever Reader owns the Exporter; it
// must not retain data after returning.
type Exporter interface {
	// Temporality reports the temporality this Exporter prefers for
	// instruments of kind.
	Temporality(kind view.InstrumentKind) metricdata.Temporality
	// Aggregation reports the aggregation this Exporter prefers for
	// instruments of kind.
	Aggregation(kind view.InstrumentKind) aggregation.Aggregation

	Export(ctx context.Context, data *metricdata.ResourceMetrics) error
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
