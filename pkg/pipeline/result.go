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
	"fmt"
	"strings"
	"time"
)

// Status is the classification of a step outcome
type Status string

const (
	StatusPassed      Status = "passed"
	StatusFailed      Status = "failed"
	StatusWarned      Status = "warned"
	StatusLaunchError Status = "launch-error"
	StatusSkipped     Status = "skipped"
)

// Outcome is the result of executing one step
type Outcome struct {
	Step     Step
	Status   Status
	ExitCode int
	Output   string
	Duration time.Duration

	// Err is set when the analyzer could not be launched
	Err error
}

// Failed returns true if the step ran and did not succeed, or
// could not be started at all
func (o *Outcome) Failed() bool {
	return o.Err != nil || (o.Status != StatusSkipped && o.ExitCode != 0)
}

// Result aggregates the outcomes of a pipeline run
type Result struct {
	Success   bool
	Outcomes  []Outcome
	StartTime time.Time
	EndTime   time.Time

	// FailedStep indexes Outcomes with the strict failure that
	// aborted the run, -1 if there is none.
	FailedStep int
}

// Failure returns the outcome that aborted the pipeline or nil
func (r *Result) Failure() *Outcome {
	if r.Success || r.FailedStep < 0 || r.FailedStep >= len(r.Outcomes) {
		return nil
	}
	return &r.Outcomes[r.FailedStep]
}

// Warnings returns the advisory steps that did not pass
func (r *Result) Warnings() []Outcome {
	res := []Outcome{}
	for _, o := range r.Outcomes {
		if !o.Step.IsStrict() && o.Failed() {
			res = append(res, o)
		}
	}
	return res
}

// Err returns a StrictFailureError describing the step that failed
// the pipeline, or nil if it succeeded.
func (r *Result) Err() error {
	o := r.Failure()
	if o == nil {
		return nil
	}
	return &StrictFailureError{
		Step:     o.Step,
		ExitCode: o.ExitCode,
		Output:   o.Output,
		Err:      o.Err,
	}
}

// computeSuccess derives the overall status from strict outcomes only
func (r *Result) computeSuccess() {
	r.Success = true
	r.FailedStep = -1
	for i := range r.Outcomes {
		if r.Outcomes[i].Step.IsStrict() && r.Outcomes[i].Failed() {
			r.Success = false
			r.FailedStep = i
			return
		}
	}
}

// StrictFailureError is returned when a strict step fails, either by
// reporting findings or by not being launchable.
type StrictFailureError struct {
	Step     Step
	ExitCode int
	Output   string
	Err      error
}

func (e *StrictFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("strict check %s could not run: %v", e.Step.String(), e.Err)
	}
	return fmt.Sprintf("strict check %s failed with exit code %d", e.Step.String(), e.ExitCode)
}

func (e *StrictFailureError) Unwrap() error {
	return e.Err
}

// LaunchFailed returns true when the failure was the analyzer not starting
func (e *StrictFailureError) LaunchFailed() bool {
	return e.Err != nil
}

// Details returns the failure followed by the captured analyzer output
func (e *StrictFailureError) Details() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}
