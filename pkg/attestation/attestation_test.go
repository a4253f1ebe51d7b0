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

package attestation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sigs.k8s.io/tollgate/pkg/pipeline"
)

func outcome(name string, tolerance pipeline.Tolerance, status pipeline.Status, exit int) pipeline.Outcome {
	return pipeline.Outcome{
		Step:     pipeline.Step{Name: name, Tolerance: tolerance},
		Status:   status,
		ExitCode: exit,
	}
}

func TestFromResult(t *testing.T) {
	for _, tc := range []struct {
		name   string
		result pipeline.Result
		expect string
		passed []string
		warned []string
		failed []string
	}{
		{
			"all passed",
			pipeline.Result{Success: true, Outcomes: []pipeline.Outcome{
				outcome("isort", pipeline.Strict, pipeline.StatusPassed, 0),
				outcome("pylint", pipeline.Advisory, pipeline.StatusPassed, 0),
			}},
			ResultPassed, []string{"isort", "pylint"}, []string{}, []string{},
		},
		{
			"advisory warning",
			pipeline.Result{Success: true, Outcomes: []pipeline.Outcome{
				outcome("isort", pipeline.Strict, pipeline.StatusPassed, 0),
				outcome("pylint", pipeline.Advisory, pipeline.StatusWarned, 16),
			}},
			ResultWarned, []string{"isort"}, []string{"pylint"}, []string{},
		},
		{
			"strict failure skips the rest",
			pipeline.Result{Success: false, FailedStep: 1, Outcomes: []pipeline.Outcome{
				outcome("pylint", pipeline.Advisory, pipeline.StatusWarned, 16),
				outcome("flake8", pipeline.Strict, pipeline.StatusFailed, 1),
				outcome("mypy", pipeline.Strict, pipeline.StatusSkipped, 0),
			}},
			ResultFailed, []string{}, []string{"pylint"}, []string{"flake8"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			att := FromResult(&tc.result)
			require.Equal(t, PredicateType, att.PredicateType)
			require.Equal(t, tc.expect, att.Predicate.Result)
			require.Equal(t, tc.passed, att.Predicate.PassedTests)
			require.Equal(t, tc.warned, att.Predicate.WarnedTests)
			require.Equal(t, tc.failed, att.Predicate.FailedTests)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "tollgate.yaml")
	require.NoError(t, os.WriteFile(confPath, []byte("test"), os.FileMode(0o644)))

	att := FromResult(&pipeline.Result{Success: true})
	att.AddSubject("git@github.com:kubernetes-sigs/tollgate.git", "0123456789abcdef0123456789abcdef01234567")
	require.NoError(t, att.AddConfiguration(confPath))
	require.Error(t, att.AddConfiguration(filepath.Join(dir, "missing.yaml")))

	out := filepath.Join(dir, "gate.intoto.json")
	require.NoError(t, att.WriteJSON(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	parsed := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Equal(t, "https://in-toto.io/Statement/v0.1", parsed["_type"])
	require.Equal(t, PredicateType, parsed["predicateType"])

	subjects := parsed["subject"].([]any)
	require.Len(t, subjects, 1)
	subject := subjects[0].(map[string]any)
	require.Equal(t, "0123456789abcdef0123456789abcdef01234567", subject["digest"].(map[string]any)["sha1"])

	predicate := parsed["predicate"].(map[string]any)
	require.Equal(t, ResultPassed, predicate["result"])
	conf := predicate["configuration"].([]any)[0].(map[string]any)
	require.Equal(t,
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		conf["digest"].(map[string]any)["sha256"],
	)
}
