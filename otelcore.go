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

// Package otelcore provides the process-wide diagnostic logger used by
// every SDK component for conditions that are notable but not fatal to
// the calling goroutine: a dropped batch, a clamped histogram scale, a
// duplicate instrument registration.
package otelcore // import "github.com/CodeBlanch/otelcore"

import (
	"errors"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// ErrExporterFailure wraps an Exporter's error when a metric
// PeriodicReader's ForceFlush or Shutdown returns it; a failed scheduled
// export is passed to Handle instead. The span and log batch processors
// do not use it: they pass export errors to Handle, and their ForceFlush
// and Shutdown do not return them.
var ErrExporterFailure = errors.New("otelcore: exporter failure")

var globalLogger atomic.Pointer[logr.Logger]

func init() {
	l := stdr.New(nil)
	globalLogger.Store(&l)
}

// SetLogger installs l as the logger used by Handle and GetLogger. It is
// intended to be called once during process initialization, before any
// provider is constructed.
func SetLogger(l logr.Logger) {
	globalLogger.Store(&l)
}

// GetLogger returns the currently installed logger.
func GetLogger() logr.Logger {
	return *globalLogger.Load()
}

// Handle reports a non-fatal error through the installed logger. A nil
// err is a no-op.
func Handle(err error) {
	if err == nil {
		return
	}
	GetLogger().Error(err, "otelcore: internal error")
}
