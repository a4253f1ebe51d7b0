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
	"path/filepath"
	"slices"
	"strings"

	"sigs.k8s.io/tollgate/pkg/exec"
)

// Tolerance defines how the failure of a step affects the pipeline
type Tolerance string

const (
	// Strict steps abort the pipeline when they fail
	Strict Tolerance = "strict"

	// Advisory steps are reported but never fail the pipeline
	Advisory Tolerance = "advisory"
)

// ParseTolerance reads a tolerance from its string form. An empty
// string defaults to Strict.
func ParseTolerance(s string) (Tolerance, error) {
	switch Tolerance(strings.ToLower(strings.TrimSpace(s))) {
	case Strict, "":
		return Strict, nil
	case Advisory:
		return Advisory, nil
	}
	return "", fmt.Errorf("invalid tolerance %q, must be one of %s or %s", s, Strict, Advisory)
}

func (t Tolerance) String() string {
	return string(t)
}

// Step is a single invocation of an external analyzer. Steps are
// defined once per pipeline and are not modified by the runner.
type Step struct {
	Name      string
	Command   string
	Args      []string
	Targets   []string
	Tolerance Tolerance
}

// String returns the step identity as shown to users
func (s *Step) String() string {
	if len(s.Targets) == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s [%s]", s.Name, strings.Join(s.Targets, " "))
}

// IsStrict returns true if a failure of the step aborts the pipeline
func (s *Step) IsStrict() bool {
	return s.Tolerance != Advisory
}

// Invocation builds the process invocation of the step. The extra
// arguments go after the declared ones and before the targets. Targets
// containing glob patterns are expanded relative to dir; a pattern
// that matches nothing is passed on literally so the analyzer can
// complain about it.
func (s *Step) Invocation(dir string, extra []string) (*exec.Invocation, error) {
	params := slices.Clone(s.Args)
	params = append(params, extra...)

	targets, err := expandTargets(dir, s.Targets)
	if err != nil {
		return nil, fmt.Errorf("expanding targets of %s: %w", s.Name, err)
	}
	params = append(params, targets...)

	return &exec.Invocation{
		Command: s.Command,
		Params:  params,
		Dir:     dir,
	}, nil
}

func expandTargets(dir string, targets []string) ([]string, error) {
	res := []string{}
	for _, t := range targets {
		if !strings.ContainsAny(t, "*?[") {
			res = append(res, t)
			continue
		}

		pattern := t
		if dir != "" && !filepath.IsAbs(t) {
			pattern = filepath.Join(dir, t)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", t, err)
		}
		if len(matches) == 0 {
			res = append(res, t)
			continue
		}
		for _, m := range matches {
			if dir != "" && !filepath.IsAbs(t) {
				if rel, err := filepath.Rel(dir, m); err == nil {
					m = rel
				}
			}
			res = append(res, m)
		}
	}
	return res, nil
}
