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

package pipeline

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"sigs.k8s.io/tollgate/pkg/exec"
)

// StepExecutor launches the process of a step. *exec.Executor
// implements it.
type StepExecutor interface {
	Execute(*exec.Invocation) (*exec.Run, error)
}

func NewRunner(executor StepExecutor) *Runner {
	return &Runner{
		Options: Options{
			Logger:    logrus.StandardLogger(),
			ExtraArgs: map[string][]string{},
		},
		executor: executor,
	}
}

// Runner executes the steps of a check pipeline in order
type Runner struct {
	Options  Options
	executor StepExecutor
}

type Options struct {
	// WorkDir is where analyzers run and globs are expanded
	WorkDir string

	// ExtraArgs are forwarded to the step with the matching name
	ExtraArgs map[string][]string

	Logger *logrus.Logger
}

// Run executes the steps in their declared order. The first strict
// step that fails stops the run and every step after it is recorded
// as skipped without being executed. Advisory failures are logged
// and the run goes on.
func (r *Runner) Run(steps []Step) *Result {
	result := &Result{
		Outcomes:   make([]Outcome, 0, len(steps)),
		StartTime:  time.Now(),
		FailedStep: -1,
	}

	aborted := false
	for i := range steps {
		if aborted {
			result.Outcomes = append(result.Outcomes, Outcome{Step: steps[i], Status: StatusSkipped})
			continue
		}

		outcome := r.runStep(&steps[i])
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Failed() && steps[i].IsStrict() {
			aborted = true
		}
	}

	result.EndTime = time.Now()
	result.computeSuccess()
	return result
}

func (r *Runner) runStep(step *Step) Outcome {
	log := r.Options.Logger.WithField("step", step.Name)
	outcome := Outcome{Step: *step}

	inv, err := step.Invocation(r.Options.WorkDir, r.Options.ExtraArgs[step.Name])
	if err != nil {
		outcome.Err = err
		outcome.Status = StatusLaunchError
		r.logFailure(log, &outcome)
		return outcome
	}

	log.Infof("Running %s (%s): %s", step.Name, step.Tolerance, inv.String())
	start := time.Now()
	run, err := r.executor.Execute(inv)
	outcome.Duration = time.Since(start)
	if run != nil {
		outcome.ExitCode = run.ExitCode
		outcome.Output = run.CombinedOutput()
		if d := run.Duration(); d > 0 {
			outcome.Duration = d
		}
	}

	switch {
	case err != nil:
		outcome.Err = err
		outcome.Status = StatusLaunchError
		var launchErr *exec.LaunchError
		if !errors.As(err, &launchErr) {
			outcome.Err = &exec.LaunchError{Command: step.Command, Err: err}
		}
	case outcome.ExitCode == 0:
		outcome.Status = StatusPassed
		log.Infof("%s passed", step.Name)
		return outcome
	case step.IsStrict():
		outcome.Status = StatusFailed
	default:
		outcome.Status = StatusWarned
	}

	r.logFailure(log, &outcome)
	return outcome
}

func (r *Runner) logFailure(log *logrus.Entry, o *Outcome) {
	log = log.WithField("exit", o.ExitCode)
	if !o.Step.IsStrict() {
		if o.Err != nil {
			log.Warnf("Advisory check %s could not run, continuing: %v", o.Step.String(), o.Err)
			return
		}
		log.Warnf("Advisory check %s reported findings, continuing", o.Step.String())
		return
	}
	if o.Err != nil {
		log.Errorf("Strict check %s could not run: %v", o.Step.String(), o.Err)
		return
	}
	log.Errorf("Strict check %s failed", o.Step.String())
}
