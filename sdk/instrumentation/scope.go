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

// Package instrumentation provides the identity of the library that
// produced a telemetry stream.
package instrumentation // import "github.com/CodeBlanch/otelcore/sdk/instrumentation"

// Scope represents the instrumentation scope: the meter, tracer, or
// logger that created a given stream.
type Scope struct {
	// Name is the name of the instrumentation scope, typically the
	// package or module producing telemetry.
	Name string
	// Version is the version of the instrumentation scope.
	Version string
	// SchemaURL of the telemetry emitted by the scope.
	SchemaURL string
}
