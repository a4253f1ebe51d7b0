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
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultCIVariable is the environment variable signaling a CI run
	DefaultCIVariable = "CI"

	defaultCommand        = "pytest"
	defaultTestDir        = "tests"
	defaultFixtureDir     = "tests/typesafety"
	defaultFilterFlag     = "-k"
	defaultCoverageTarget = "src/pyanimate"
	defaultCoverageReport = "coverage.xml"
)

// Config captures everything a test run needs. It is built once per
// invocation and not modified afterwards.
type Config struct {
	// Filter selects test cases by name. Empty runs every test.
	Filter string

	// Coverage enables coverage instrumentation
	Coverage bool

	// ExtraArgs are forwarded untouched to the test executor
	ExtraArgs []string

	// Command is the test executor and BaseArgs are passed to it first
	Command  string
	BaseArgs []string

	// TestDir and FixtureDir are always passed to the executor,
	// FixtureDir holds the type-safety fixtures.
	TestDir    string
	FixtureDir string

	// FilterFlag is the executor flag taking the filter expression
	FilterFlag string

	// CoverageTarget is the package measured and CoverageReport the
	// file the report is written to, relative to the work directory.
	CoverageTarget string
	CoverageReport string
}

// DefaultConfig returns the executor settings of the project. It is the
// base of the test section of the built-in pipeline.
func DefaultConfig() Config {
	return Config{
		Command:        defaultCommand,
		BaseArgs:       []string{},
		TestDir:        defaultTestDir,
		FixtureDir:     defaultFixtureDir,
		FilterFlag:     defaultFilterFlag,
		CoverageTarget: defaultCoverageTarget,
		CoverageReport: defaultCoverageReport,
	}
}

// ConfigFromArgs fills the caller supplied parts of a configuration.
// The first argument is the filter expression, the rest are extra
// arguments passed through verbatim. lookup reads the environment
// (os.LookupEnv outside of tests) and is consulted once, for ciVar.
func ConfigFromArgs(base Config, args []string, ciVar string, lookup func(string) (string, bool)) Config {
	cfg := base
	cfg.BaseArgs = slices.Clone(base.BaseArgs)
	cfg.ExtraArgs = []string{}

	if len(args) > 0 {
		cfg.Filter = args[0]
		cfg.ExtraArgs = slices.Clone(args[1:])
	}

	if ciVar == "" {
		ciVar = DefaultCIVariable
	}
	if lookup != nil {
		if v, ok := lookup(ciVar); ok {
			cfg.Coverage = IsTrue(v)
		}
	}
	return cfg
}

// IsTrue interprets a boolean-like environment value. Unparseable
// values other than "yes" and "on" are false.
func IsTrue(v string) bool {
	v = strings.TrimSpace(v)
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "yes", "y", "on":
		return true
	}
	return false
}

// Args returns the argument list of the test executor: base args, the
// test and fixture directories, the filter, coverage flags and finally
// the extra arguments.
func (c *Config) Args() []string {
	args := slices.Clone(c.BaseArgs)
	if c.TestDir != "" {
		args = append(args, c.TestDir)
	}
	if c.FixtureDir != "" {
		args = append(args, c.FixtureDir)
	}

	if c.Filter != "" {
		flag := c.FilterFlag
		if flag == "" {
			flag = defaultFilterFlag
		}
		args = append(args, flag, c.Filter)
	}

	if c.Coverage {
		if c.CoverageTarget != "" {
			args = append(args, "--cov="+c.CoverageTarget)
		} else {
			args = append(args, "--cov")
		}
		args = append(args, "--cov-report=xml:"+c.coverageReport())
	}

	return append(args, c.ExtraArgs...)
}

func (c *Config) coverageReport() string {
	if c.CoverageReport == "" {
		return defaultCoverageReport
	}
	return c.CoverageReport
}
