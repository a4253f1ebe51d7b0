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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"sigs.k8s.io/tollgate/pkg/exec"
)

// stubExecutor mimics the bits of pytest the runner relies on: it
// "runs" the cases matching -k, writes the --cov-report file and fails
// when it receives --fail
const stubExecutor = `#!/bin/sh
filter=""
report=""
fail=0
while [ $# -gt 0 ]; do
  case "$1" in
    -k) filter="$2"; shift ;;
    --cov-report=xml:*) report="${1#--cov-report=xml:}" ;;
    --fail) fail=1 ;;
  esac
  shift
done
for c in foo_case bar_case; do
  case "$c" in
    *"$filter"*) echo "RAN $c" ;;
  esac
done
if [ -n "$report" ]; then echo "<coverage/>" > "$report"; fi
if [ "$fail" = 1 ]; then exit 3; fi
`

func newTestRunner(t *testing.T, cfg Config) (*Runner, string) {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "pytest-stub")
	require.NoError(t, os.WriteFile(script, []byte(stubExecutor), os.FileMode(0o755)))
	cfg.Command = script

	executor := exec.NewExecutor()
	executor.Options.Silent = true

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := NewRunner(cfg, executor)
	r.Options.WorkDir = dir
	r.Options.Logger = logger
	return r, dir
}

func ranCases(report *Report) []string {
	res := []string{}
	for _, line := range strings.Split(report.Run.Output, "\n") {
		if c, ok := strings.CutPrefix(line, "RAN "); ok {
			res = append(res, c)
		}
	}
	return res
}

func TestRunFilter(t *testing.T) {
	for _, tc := range []struct {
		args   []string
		expect []string
	}{
		{nil, []string{"foo_case", "bar_case"}},
		{[]string{""}, []string{"foo_case", "bar_case"}},
		{[]string{"foo"}, []string{"foo_case"}},
		{[]string{"bar"}, []string{"bar_case"}},
		{[]string{"baz"}, []string{}},
	} {
		cfg := ConfigFromArgs(DefaultConfig(), tc.args, "", lookupFrom(map[string]string{}))
		sut, _ := newTestRunner(t, cfg)
		report, err := sut.Run()
		require.NoError(t, err)
		require.True(t, report.Success())
		require.Equal(t, tc.expect, ranCases(report))
	}
}

func TestRunCoverage(t *testing.T) {
	for _, tc := range []struct {
		env      map[string]string
		artifact bool
	}{
		{map[string]string{"CI": "true"}, true},
		{map[string]string{}, false},
		{map[string]string{"CI": "false"}, false},
	} {
		cfg := ConfigFromArgs(DefaultConfig(), nil, DefaultCIVariable, lookupFrom(tc.env))
		sut, dir := newTestRunner(t, cfg)
		report, err := sut.Run()
		require.NoError(t, err)
		require.Equal(t, tc.artifact, report.Coverage)

		if tc.artifact {
			require.FileExists(t, filepath.Join(dir, "coverage.xml"))
			require.Len(t, report.Artifacts, 1)
			require.Equal(t, "coverage.xml", report.CoverageReport().Path)
			require.NotEmpty(t, report.CoverageReport().Hash)
			continue
		}
		require.NoFileExists(t, filepath.Join(dir, "coverage.xml"))
		require.Empty(t, report.Artifacts)
		require.Nil(t, report.CoverageReport())
	}
}

func TestRunExitCodePassthrough(t *testing.T) {
	cfg := ConfigFromArgs(DefaultConfig(), []string{"foo", "--fail"}, "", nil)
	sut, _ := newTestRunner(t, cfg)
	report, err := sut.Run()
	require.NoError(t, err)
	require.False(t, report.Success())
	require.Equal(t, 3, report.ExitCode)
	require.Equal(t, []string{"foo_case"}, ranCases(report))
}

func TestRunLaunchError(t *testing.T) {
	cfg := DefaultConfig()
	sut, _ := newTestRunner(t, cfg)
	sut.Config.Command = filepath.Join(t.TempDir(), "no-such-pytest")

	report, err := sut.Run()
	require.Error(t, err)
	require.Nil(t, report)

	var launchErr *exec.LaunchError
	require.True(t, errors.As(err, &launchErr))
}
