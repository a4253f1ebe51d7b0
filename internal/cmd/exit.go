/*
Copyright 2026 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"errors"
	"fmt"

	"sigs.k8s.io/tollgate/pkg/exec"
	"sigs.k8s.io/tollgate/pkg/pipeline"
)

const (
	// ExitFailure is returned for errors of tollgate itself
	ExitFailure = 1

	// ExitLaunchFailure is returned when an analyzer or the test
	// executor could not be started, as shells do.
	ExitLaunchFailure = 127
)

// ExitError makes the process exit with Code
type ExitError struct {
	Code int
	Err  error

	// Reported is true if the failure was already shown to the user
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for an error returned by
// Execute. Tool failures keep the status of the tool, launch failures
// map to 127 and anything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return nonZero(exitErr.Code)
	}

	var sfe *pipeline.StrictFailureError
	if errors.As(err, &sfe) {
		if sfe.LaunchFailed() {
			return ExitLaunchFailure
		}
		return nonZero(sfe.ExitCode)
	}

	var launchErr *exec.LaunchError
	if errors.As(err, &launchErr) {
		return ExitLaunchFailure
	}
	return ExitFailure
}

// nonZero makes sure a failure never exits with 0. Negative codes
// (processes killed by a signal) turn into a plain failure.
func nonZero(code int) int {
	if code <= 0 {
		return ExitFailure
	}
	return code
}
