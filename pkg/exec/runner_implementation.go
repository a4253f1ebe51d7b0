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
	"os"
	gexec "os/exec"
	"path/filepath"
	"strings"
	"time"

	"sigs.k8s.io/release-utils/command"
)

type ExecutorImplementation interface {
	CreateRun(*Options, *Invocation) (*Run, error)
	Execute(*Options, *Run) error
}

type defaultExecutorImplementation struct{}

// CreateRun resolves the executable and creates a run from the invocation.
// A relative command with a path separator is looked up in the working
// directory of the run. An executable that cannot be found results in a
// LaunchError.
func (di *defaultExecutorImplementation) CreateRun(opts *Options, inv *Invocation) (r *Run, err error) {
	cwd := inv.Dir
	if cwd == "" {
		cwd = opts.CWD
	}
	if cwd == "" {
		cwd, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	executable := inv.Command
	if strings.ContainsRune(executable, os.PathSeparator) && !filepath.IsAbs(executable) {
		executable = filepath.Join(cwd, executable)
	}
	if _, err := gexec.LookPath(executable); err != nil {
		return nil, &LaunchError{Command: inv.Command, Err: err}
	}

	cmd := command.NewWithWorkDir(cwd, executable, inv.Params...)
	if len(inv.Env) > 0 {
		cmd = cmd.Env(inv.Env...)
	}

	// Silent runs only fill the capture buffers, their output is
	// copied to the writers once the process exits.
	if !opts.Silent {
		if opts.Stdout != nil {
			cmd = cmd.AddOutputWriter(opts.Stdout)
		}
		if opts.Stderr != nil {
			cmd = cmd.AddErrorWriter(opts.Stderr)
		}
	}

	r = &Run{
		Executable: cmd,
		Command:    inv.Command,
		Params:     inv.Params,
		Environment: RunEnvironment{
			Directory: cwd,
			Variables: inv.Env,
		},
	}

	if opts.Logger != nil {
		opts.Logger.Debugf("Executing command: %s", r.String())
	}
	return r, nil
}

func (di *defaultExecutorImplementation) Execute(opts *Options, run *Run) (err error) {
	var status *command.Status

	run.StartTime = time.Now()
	if opts.Silent {
		status, err = run.Executable.RunSilent()
	} else {
		status, err = run.Executable.Run()
	}
	run.EndTime = time.Now()

	if status != nil {
		run.ExitCode = status.ExitCode()
		run.Output = status.Output()
		run.ErrorOutput = status.Error()
	}

	if opts.Silent {
		if err := copyOutput(opts, run); err != nil {
			return fmt.Errorf("copying process output: %w", err)
		}
	}

	if err != nil {
		var exitErr *gexec.ExitError
		if errors.As(err, &exitErr) {
			run.ExitCode = exitErr.ExitCode()
			return nil
		}
		return &LaunchError{Command: run.Command, Err: err}
	}
	if status == nil {
		return &LaunchError{Command: run.Command, Err: errors.New("process returned no status")}
	}
	return nil
}

func copyOutput(opts *Options, run *Run) error {
	if opts.Stdout != nil && run.Output != "" {
		if _, err := io.WriteString(opts.Stdout, run.Output); err != nil {
			return err
		}
	}
	if opts.Stderr != nil && run.ErrorOutput != "" {
		if _, err := io.WriteString(opts.Stderr, run.ErrorOutput); err != nil {
			return err
		}
	}
	return nil
}
