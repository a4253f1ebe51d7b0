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

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
	"sigs.k8s.io/release-utils/helpers"

	"sigs.k8s.io/tollgate/pkg/pipeline"
	"sigs.k8s.io/tollgate/pkg/testrun"
)

// DefaultFile is the configuration read when no path is given
const DefaultFile = "tollgate.yaml"

// Config is the definition of the check pipeline and the test run
type Config struct {
	// Targets are named path sets steps can refer to
	Targets map[string][]string `yaml:"targets"`
	Steps   []StepConfig        `yaml:"steps"`
	Test    TestConfig          `yaml:"test"`

	// Path is the file the configuration was read from, empty for
	// the built-in defaults
	Path string `yaml:"-"`
}

type StepConfig struct {
	Name      string   `yaml:"name"`
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	Targets   []string `yaml:"targets"`
	Tolerance string   `yaml:"tolerance"`
}

type TestConfig struct {
	Command        string   `yaml:"command"`
	Args           []string `yaml:"args"`
	TestDir        string   `yaml:"testDir"`
	FixtureDir     string   `yaml:"fixtureDir"`
	FilterFlag     string   `yaml:"filterFlag"`
	CoverageTarget string   `yaml:"coverageTarget"`
	CoverageReport string   `yaml:"coverageReport"`
	CIVariable     string   `yaml:"ciVariable"`
}

// Default returns the built-in pipeline of the project
func Default() *Config {
	return &Config{
		Targets: map[string][]string{
			"source":   {"src", "tests"},
			"examples": {"examples"},
		},
		Steps: []StepConfig{
			{
				Name:      "isort",
				Command:   "isort",
				Args:      []string{"--check-only", "--diff"},
				Targets:   []string{"source", "examples"},
				Tolerance: string(pipeline.Strict),
			},
			{
				Name:      "flake8",
				Command:   "flake8",
				Targets:   []string{"source", "examples"},
				Tolerance: string(pipeline.Strict),
			},
			{
				Name:      "mypy",
				Command:   "mypy",
				Targets:   []string{"source"},
				Tolerance: string(pipeline.Strict),
			},
			{
				// The constraint assertion checker is experimental
				Name:      "pylint",
				Command:   "pylint",
				Args:      []string{"--load-plugins=assert_checker"},
				Targets:   []string{"source"},
				Tolerance: string(pipeline.Advisory),
			},
		},
		Test: defaultTestConfig(),
	}
}

func defaultTestConfig() TestConfig {
	def := testrun.DefaultConfig()
	return TestConfig{
		Command:        def.Command,
		Args:           def.BaseArgs,
		TestDir:        def.TestDir,
		FixtureDir:     def.FixtureDir,
		FilterFlag:     def.FilterFlag,
		CoverageTarget: def.CoverageTarget,
		CoverageReport: def.CoverageReport,
		CIVariable:     testrun.DefaultCIVariable,
	}
}

// Load reads the configuration file at path. When path is empty the
// default file is read if it exists, otherwise the built-in
// configuration is returned.
func Load(path string) (*Config, error) {
	if path == "" {
		if !helpers.Exists(DefaultFile) {
			return Default(), nil
		}
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	conf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	conf.Path = path
	return conf, nil
}

// Parse decodes and validates a YAML configuration. Missing test
// settings are taken from the defaults.
func Parse(data []byte) (*Config, error) {
	conf := &Config{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("unmarshaling yaml: %w", err)
	}
	if conf.Targets == nil {
		conf.Targets = map[string][]string{}
	}
	conf.Test.fillDefaults(defaultTestConfig())

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return conf, nil
}

func (tc *TestConfig) fillDefaults(def TestConfig) {
	if tc.Command == "" {
		tc.Command = def.Command
	}
	if tc.Args == nil {
		tc.Args = def.Args
	}
	if tc.TestDir == "" {
		tc.TestDir = def.TestDir
	}
	if tc.FixtureDir == "" {
		tc.FixtureDir = def.FixtureDir
	}
	if tc.FilterFlag == "" {
		tc.FilterFlag = def.FilterFlag
	}
	if tc.CoverageTarget == "" {
		tc.CoverageTarget = def.CoverageTarget
	}
	if tc.CoverageReport == "" {
		tc.CoverageReport = def.CoverageReport
	}
	if tc.CIVariable == "" {
		tc.CIVariable = def.CIVariable
	}
}

// Validate checks the configuration and returns all problems found
func (c *Config) Validate() error {
	errs := []error{}
	seen := map[string]struct{}{}
	for i, s := range c.Steps {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("step #%d has no name", i+1))
		} else if _, ok := seen[s.Name]; ok {
			errs = append(errs, fmt.Errorf("step name %q is defined more than once", s.Name))
		}
		seen[s.Name] = struct{}{}

		if s.Command == "" {
			errs = append(errs, fmt.Errorf("step %q has no command", s.Name))
		}
		if _, err := pipeline.ParseTolerance(s.Tolerance); err != nil {
			errs = append(errs, fmt.Errorf("step %q: %w", s.Name, err))
		}
	}

	for name, paths := range c.Targets {
		if len(paths) == 0 {
			errs = append(errs, fmt.Errorf("target set %q is empty", name))
		}
	}

	if c.Test.Command == "" {
		errs = append(errs, errors.New("test runner has no command"))
	}
	return errors.Join(errs...)
}

// PipelineSteps resolves the configuration into pipeline steps. Target names
// are replaced by the paths of their set, any other target is taken
// as a literal path.
func (c *Config) PipelineSteps() ([]pipeline.Step, error) {
	steps := make([]pipeline.Step, 0, len(c.Steps))
	for _, s := range c.Steps {
		tolerance, err := pipeline.ParseTolerance(s.Tolerance)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", s.Name, err)
		}
		targets := []string{}
		for _, t := range s.Targets {
			if set, ok := c.Targets[t]; ok {
				targets = append(targets, set...)
				continue
			}
			targets = append(targets, t)
		}
		steps = append(steps, pipeline.Step{
			Name:      s.Name,
			Command:   s.Command,
			Args:      slices.Clone(s.Args),
			Targets:   targets,
			Tolerance: tolerance,
		})
	}
	return steps, nil
}

// StepNames returns the names of the configured steps in order
func (c *Config) StepNames() []string {
	names := make([]string, 0, len(c.Steps))
	for _, s := range c.Steps {
		names = append(names, s.Name)
	}
	return names
}

// TestRun returns the test runner settings as a testrun configuration
func (c *Config) TestRun() testrun.Config {
	return testrun.Config{
		Command:        c.Test.Command,
		BaseArgs:       slices.Clone(c.Test.Args),
		TestDir:        c.Test.TestDir,
		FixtureDir:     c.Test.FixtureDir,
		FilterFlag:     c.Test.FilterFlag,
		CoverageTarget: c.Test.CoverageTarget,
		CoverageReport: c.Test.CoverageReport,
	}
}
