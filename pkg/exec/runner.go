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
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

func NewExecutor() *Executor {
	return &Executor{
		Options: Options{
			Logger: logrus.StandardLogger(),
		},
		implementation: &defaultExecutorImplementation{},
	}
}

// Executor launches invocations one at a time and waits for them
// to finish. It never imposes a timeout and never retries.
type Executor struct {
	Options        Options
	implementation ExecutorImplementation
}

type Options struct {
	// CWD is the directory processes run in when the invocation
	// does not define one. Empty means the current directory.
	CWD string

	// Silent disables mirroring the process output to the
	// caller's stdout and stderr. Output is always captured.
	Silent bool

	// Stdout and Stderr receive a copy of the process streams. They
	// are written as output is produced, on top of the caller's own
	// streams, or after the process exits when Silent is set.
	Stdout io.Writer
	Stderr io.Writer

	Logger *logrus.Logger
}

// SetImplementation replaces the process backend of the executor
func (e *Executor) SetImplementation(impl ExecutorImplementation) {
	e.implementation = impl
}

// Execute runs the invocation and blocks until it exits. The returned
// error is non-nil only when the process could not be launched (a
// *LaunchError) or the run could not be set up. A process exiting with
// a non-zero status is reported through Run.ExitCode.
func (e *Executor) Execute(inv *Invocation) (*Run, error) {
	if inv == nil || inv.Command == "" {
		return nil, errors.New("invocation has no command defined")
	}

	run, err := e.implementation.CreateRun(&e.Options, inv)
	if err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	if err := e.implementation.Execute(&e.Options, run); err != nil {
		return run, fmt.Errorf("executing %s: %w", inv.Command, err)
	}

	return run, nil
}
