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

//go:build !otelcore_debug

package otelcore // import "github.com/CodeBlanch/otelcore"

// DebugAssert is a no-op in release builds (no otelcore_debug build tag).
func DebugAssert(cond bool, msg string) {}

// DebugAssertionsEnabled reports whether DebugAssert is a live check or
// a stripped no-op in this build.
const DebugAssertionsEnabled = false
