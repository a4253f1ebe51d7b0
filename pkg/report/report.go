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

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/release-utils/version"

	"sigs.k8s.io/tollgate/pkg/pipeline"
	"sigs.k8s.io/tollgate/pkg/testrun"
	"sigs.k8s.io/tollgate/pkg/watcher"
)

const (
	KindCheck = "check"
	KindTest  = "test"

	// maxOutputLines is how much of a step output is kept in reports
	maxOutputLines = 50
)

// Report is the document describing one tollgate invocation
type Report struct {
	RunID     string      `json:"runId"`
	Kind      string      `json:"kind"`
	Version   string      `json:"version"`
	Source    Source      `json:"source"`
	StartTime time.Time   `json:"startTime"`
	EndTime   time.Time   `json:"endTime"`
	Success   bool        `json:"success"`
	Steps     []StepEntry `json:"steps,omitempty"`
	Test      *TestEntry  `json:"test,omitempty"`
}

type Source struct {
	URL    string `json:"url,omitempty"`
	Commit string `json:"commit,omitempty"`
}

type StepEntry struct {
	Name       string   `json:"name"`
	Command    string   `json:"command"`
	Targets    []string `json:"targets"`
	Tolerance  string   `json:"tolerance"`
	Status     string   `json:"status"`
	ExitCode   int      `json:"exitCode"`
	DurationMS int64    `json:"durationMs"`
	Output     string   `json:"output,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type TestEntry struct {
	Command    string             `json:"command"`
	Args       []string           `json:"args"`
	ExitCode   int                `json:"exitCode"`
	Coverage   bool               `json:"coverage"`
	DurationMS int64              `json:"durationMs"`
	Artifacts  []watcher.Artifact `json:"artifacts"`

	// CoverageReport is the path of the coverage artifact, if any
	CoverageReport string `json:"coverageReport,omitempty"`
}

func newReport(kind string) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Kind:    kind,
		Version: version.GetVersionInfo().GitVersion,
	}
}

// FromPipeline builds the report of a check run
func FromPipeline(result *pipeline.Result) *Report {
	r := newReport(KindCheck)
	r.StartTime = result.StartTime
	r.EndTime = result.EndTime
	r.Success = result.Success
	r.Steps = make([]StepEntry, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		entry := StepEntry{
			Name:       o.Step.Name,
			Command:    o.Step.Command,
			Targets:    o.Step.Targets,
			Tolerance:  o.Step.Tolerance.String(),
			Status:     string(o.Status),
			ExitCode:   o.ExitCode,
			DurationMS: o.Duration.Milliseconds(),
			Output:     Tail(o.Output, maxOutputLines),
		}
		if entry.Targets == nil {
			entry.Targets = []string{}
		}
		if o.Err != nil {
			entry.Error = o.Err.Error()
		}
		r.Steps = append(r.Steps, entry)
	}
	return r
}

// FromTestRun builds the report of a test run
func FromTestRun(tr *testrun.Report) *Report {
	r := newReport(KindTest)
	r.Success = tr.Success()
	r.Test = &TestEntry{
		ExitCode:  tr.ExitCode,
		Coverage:  tr.Coverage,
		Artifacts: tr.Artifacts,
		Args:      []string{},
	}
	if r.Test.Artifacts == nil {
		r.Test.Artifacts = []watcher.Artifact{}
	}
	if a := tr.CoverageReport(); a != nil {
		r.Test.CoverageReport = a.Path
	}
	if tr.Run != nil {
		r.StartTime = tr.Run.StartTime
		r.EndTime = tr.Run.EndTime
		r.Test.Command = tr.Run.Command
		r.Test.Args = tr.Run.Params
		r.Test.DurationMS = tr.Run.Duration().Milliseconds()
	}
	return r
}

// WithSource records the repository the report refers to
func (r *Report) WithSource(url, commit string) *Report {
	r.Source = Source{URL: url, Commit: commit}
	return r
}

func (r *Report) ToJSON() ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return b.Bytes(), nil
}

// Tail returns the last n lines of s
func Tail(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return fmt.Sprintf("[... %d lines omitted]\n", len(lines)-n) + strings.Join(lines[len(lines)-n:], "\n")
}
