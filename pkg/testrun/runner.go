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

package testrun

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"sigs.k8s.io/tollgate/pkg/exec"
	"sigs.k8s.io/tollgate/pkg/watcher"
)

// Executor launches the test process. *exec.Executor implements it.
type Executor interface {
	Execute(*exec.Invocation) (*exec.Run, error)
}

func NewRunner(cfg Config, executor Executor) *Runner {
	return &Runner{
		Config: cfg,
		Options: Options{
			Logger: logrus.StandardLogger(),
		},
		executor: executor,
	}
}

// Runner executes the test suite once
type Runner struct {
	Config   Config
	Options  Options
	executor Executor
}

type Options struct {
	WorkDir string
	Logger  *logrus.Logger
}

// Report is the result of a test run
type Report struct {
	Run       *exec.Run
	ExitCode  int
	Coverage  bool
	Artifacts []watcher.Artifact
}

// Success returns true if the test executor exited with status zero
func (r *Report) Success() bool {
	return r.ExitCode == 0
}

// CoverageReport returns the coverage artifact of the run, if one
// was produced
func (r *Report) CoverageReport() *watcher.Artifact {
	if !r.Coverage || len(r.Artifacts) == 0 {
		return nil
	}
	return &r.Artifacts[0]
}

// Run executes the test suite. A returned error means the executor
// could not be started; failing tests are reported through the exit
// code in the report, which mirrors the executor's status.
func (r *Runner) Run() (*Report, error) {
	report := &Report{Coverage: r.Config.Coverage, Artifacts: []watcher.Artifact{}}

	var w watcher.Watcher
	if r.Config.Coverage {
		reportPath := r.Config.coverageReport()
		if !filepath.IsAbs(reportPath) && r.Options.WorkDir != "" {
			reportPath = filepath.Join(r.Options.WorkDir, reportPath)
		}
		w = watcher.NewDirectory(filepath.Dir(reportPath), filepath.Base(reportPath))
		if err := w.Snap(); err != nil {
			return nil, fmt.Errorf("snapshotting coverage location: %w", err)
		}
		r.Options.Logger.Info("CI run detected, coverage instrumentation enabled")
	}

	inv := &exec.Invocation{
		Command: r.Config.Command,
		Params:  r.Config.Args(),
		Dir:     r.Options.WorkDir,
	}
	if r.Config.Filter != "" {
		r.Options.Logger.Infof("Running tests matching %q", r.Config.Filter)
	}
	r.Options.Logger.Infof("Running test suite: %s", inv.String())

	run, err := r.executor.Execute(inv)
	if err != nil {
		var launchErr *exec.LaunchError
		if errors.As(err, &launchErr) {
			return nil, err
		}
		return nil, &exec.LaunchError{Command: inv.Command, Err: err}
	}
	report.Run = run
	report.ExitCode = run.ExitCode

	if w != nil {
		if err := w.Snap(); err != nil {
			return report, fmt.Errorf("snapshotting coverage location: %w", err)
		}
		report.Artifacts = w.Changes()
		if len(report.Artifacts) == 0 {
			r.Options.Logger.Warn("Coverage was enabled but no coverage report was written")
		}
		for _, a := range report.Artifacts {
			r.Options.Logger.Infof("Coverage report written to %s", a.Path)
		}
	}

	if report.Success() {
		r.Options.Logger.Info("Test suite passed")
	} else {
		r.Options.Logger.WithField("exit", report.ExitCode).Error("Test suite failed")
	}
	return report, nil
}
