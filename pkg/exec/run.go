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

package exec

import (
	"fmt"
	"strings"
	"time"

	"sigs.k8s.io/release-utils/command"
)

// Invocation describes a child process to launch
type Invocation struct {
	Command string   // Executable name or path
	Params  []string // Arguments, passed as-is
	Dir     string   // Working directory, defaults to Options.CWD
	Env     []string // Extra KEY=value pairs added to the environment
}

// String returns the invocation as a (non-quoted) command line
func (i *Invocation) String() string {
	if len(i.Params) == 0 {
		return i.Command
	}
	return i.Command + " " + strings.Join(i.Params, " ")
}

// Run records a single executed invocation
type Run struct {
	Executable  *command.Command `json:"-"`
	Command     string
	Params      []string
	ExitCode    int
	Output      string
	ErrorOutput string
	StartTime   time.Time
	EndTime     time.Time
	Environment RunEnvironment
}

type RunEnvironment struct {
	Variables []string
	Directory string
}

// Success returns true if the process exited with status zero
func (r *Run) Success() bool {
	return r.ExitCode == 0
}

// Duration returns the wall time the process ran
func (r *Run) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// CombinedOutput returns the captured stdout followed by stderr
func (r *Run) CombinedOutput() string {
	switch {
	case r.ErrorOutput == "":
		return r.Output
	case r.Output == "":
		return r.ErrorOutput
	}
	return strings.TrimSuffix(r.Output, "\n") + "\n" + r.ErrorOutput
}

// String returns the command line of the run
func (r *Run) String() string {
	return (&Invocation{Command: r.Command, Params: r.Params}).String()
}

// LaunchError is returned when the executable of an invocation
// cannot be found or started. It is distinct from a process that
// ran and exited non-zero.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
