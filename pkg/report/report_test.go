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
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sigs.k8s.io/tollgate/pkg/exec"
	"sigs.k8s.io/tollgate/pkg/pipeline"
	"sigs.k8s.io/tollgate/pkg/testrun"
	"sigs.k8s.io/tollgate/pkg/watcher"
)

func failedResult() *pipeline.Result {
	return &pipeline.Result{
		Success:    false,
		FailedStep: 1,
		Outcomes: []pipeline.Outcome{
			{
				Step:     pipeline.Step{Name: "pylint", Command: "pylint", Targets: []string{"src"}, Tolerance: pipeline.Advisory},
				Status:   pipeline.StatusWarned,
				ExitCode: 16,
				Output:   "C0114 missing module docstring\n",
				Duration: 1500 * time.Millisecond,
			},
			{
				Step:     pipeline.Step{Name: "flake8", Command: "flake8", Targets: []string{"src", "tests"}, Tolerance: pipeline.Strict},
				Status:   pipeline.StatusFailed,
				ExitCode: 1,
				Output:   "src/a.py:1:80: E501 line too long\n",
			},
			{
				Step:   pipeline.Step{Name: "mypy", Command: "mypy", Tolerance: pipeline.Strict},
				Status: pipeline.StatusSkipped,
			},
		},
	}
}

func TestFromPipeline(t *testing.T) {
	r := FromPipeline(failedResult()).WithSource("https://github.com/example/pyanimate", "abc123")
	require.Equal(t, KindCheck, r.Kind)
	require.NotEmpty(t, r.RunID)
	require.False(t, r.Success)
	require.Nil(t, r.Test)
	require.Len(t, r.Steps, 3)

	require.Equal(t, "warned", r.Steps[0].Status)
	require.Equal(t, "advisory", r.Steps[0].Tolerance)
	require.Equal(t, int64(1500), r.Steps[0].DurationMS)
	require.Equal(t, "failed", r.Steps[1].Status)
	require.Equal(t, "src/a.py:1:80: E501 line too long", r.Steps[1].Output)
	require.Equal(t, "skipped", r.Steps[2].Status)
	require.Equal(t, []string{}, r.Steps[2].Targets)

	data, err := r.ToJSON()
	require.NoError(t, err)
	parsed := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Equal(t, "abc123", parsed["source"].(map[string]any)["commit"])
	require.NotContains(t, parsed, "test")
}

func TestFromPipelineLaunchError(t *testing.T) {
	r := FromPipeline(&pipeline.Result{FailedStep: 0, Outcomes: []pipeline.Outcome{{
		Step:   pipeline.Step{Name: "mypy", Command: "mypy", Tolerance: pipeline.Strict},
		Status: pipeline.StatusLaunchError,
		Err:    &exec.LaunchError{Command: "mypy", Err: errors.New("executable file not found")},
	}}})
	require.Contains(t, r.Steps[0].Error, "launching mypy")
}

func TestFromTestRun(t *testing.T) {
	start := time.Now()
	r := FromTestRun(&testrun.Report{
		ExitCode: 1,
		Coverage: true,
		Run: &exec.Run{
			Command:   "pytest",
			Params:    []string{"tests", "tests/typesafety"},
			ExitCode:  1,
			StartTime: start,
			EndTime:   start.Add(2 * time.Second),
		},
		Artifacts: []watcher.Artifact{{Path: "coverage.xml", Hash: "abc"}},
	})
	require.Equal(t, KindTest, r.Kind)
	require.False(t, r.Success)
	require.Equal(t, 1, r.Test.ExitCode)
	require.Equal(t, "pytest", r.Test.Command)
	require.Equal(t, int64(2000), r.Test.DurationMS)
	require.Len(t, r.Test.Artifacts, 1)
	require.Equal(t, "coverage.xml", r.Test.CoverageReport)

	r = FromTestRun(&testrun.Report{})
	require.True(t, r.Success)
	require.Equal(t, []watcher.Artifact{}, r.Test.Artifacts)
	require.Empty(t, r.Test.CoverageReport)
}

func TestTail(t *testing.T) {
	require.Equal(t, "", Tail("", 5))
	require.Equal(t, "a\nb", Tail("a\nb\n", 5))
	require.Equal(t, "[... 2 lines omitted]\nc\nd", Tail("a\nb\nc\nd\n", 2))
}

func TestSummary(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Summary(&b, failedResult()))
	out := b.String()
	require.Contains(t, out, "| STEP")
	require.Contains(t, out, "| flake8")
	require.Contains(t, out, "⏭️ skipped")
	require.Contains(t, out, "1 advisory check(s) reported problems")
	require.Contains(t, out, "Pipeline FAILED: strict check flake8 [src tests] failed with exit code 1")
	require.Contains(t, out, "E501 line too long")

	b.Reset()
	require.NoError(t, Summary(&b, &pipeline.Result{Success: true, FailedStep: -1}))
	require.True(t, strings.HasSuffix(b.String(), "Pipeline passed\n"))
}

func TestNewSink(t *testing.T) {
	for _, tc := range []struct {
		uri        string
		check      func(Sink) bool
		shouldFail bool
	}{
		{"-", func(s Sink) bool { _, ok := s.(*Writer); return ok }, false},
		{"out/report.json", func(s Sink) bool { return s.(*File).Path == "out/report.json" }, false},
		{"file:///tmp/report.json", func(s Sink) bool { return s.(*File).Path == "/tmp/report.json" }, false},
		{"gs://bucket/reports/run.json", func(s Sink) bool {
			g := s.(*GCS)
			return g.Bucket == "bucket" && g.Object == "reports/run.json"
		}, false},
		{"gs://bucket/", nil, true},
		{"gs:///object.json", nil, true},
		{"s3://bucket/object.json", nil, true},
		{"", nil, true},
	} {
		sink, err := NewSink(tc.uri)
		if tc.shouldFail {
			require.Error(t, err, tc.uri)
			continue
		}
		require.NoError(t, err, tc.uri)
		require.True(t, tc.check(sink), tc.uri)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "check.json")
	r := FromPipeline(failedResult())
	require.NoError(t, Write(context.Background(), r, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	read := Report{}
	require.NoError(t, json.Unmarshal(data, &read))
	require.Equal(t, r.RunID, read.RunID)
	require.Len(t, read.Steps, 3)
}

func TestWriterSink(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, (&Writer{Out: &b}).Write(context.Background(), []byte("{}")))
	require.Equal(t, "{}", b.String())
}
