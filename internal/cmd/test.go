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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/env"

	"sigs.k8s.io/tollgate/pkg/exec"
	"sigs.k8s.io/tollgate/pkg/report"
	"sigs.k8s.io/tollgate/pkg/testrun"
)

type testOptions struct {
	outputOptions
	configPath string
}

func addTest(parentCmd *cobra.Command) {
	testCmd := &cobra.Command{
		Short: "Run the test suite, optionally filtered by name",
		Long: `tollgate test [filter] [args...]

The test subcommand runs the test executor of the project over the
test directory and the type-safety fixtures. The first argument, if
present and not empty, selects the tests to run by name. Every other
argument is handed to the test executor exactly as given, flags
included.

When the CI environment variable is true, coverage is measured and
the coverage report is registered as an artifact of the run.

tollgate exits with the status of the test executor, or 127 when the
executor could not be started.

Flags are not parsed by this subcommand, use the environment instead:

	TOLLGATE_CONFIG    pipeline definition file
	TOLLGATE_WORKDIR   directory of the source tree
	TOLLGATE_REPORT    write a JSON report (file, gs:// URI or -)

	`,
		Use:                "test [filter] [args...]",
		SilenceUsage:       true,
		DisableFlagParsing: true,
		PersistentPreRunE:  initLogging,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := testOptionsFromEnv()
			return runTest(cmd.Context(), &opts, args, os.LookupEnv)
		},
	}
	parentCmd.AddCommand(testCmd)
}

func testOptionsFromEnv() testOptions {
	return testOptions{
		outputOptions: outputOptions{
			ReportURI: env.Default("TOLLGATE_REPORT", ""),
			CWD:       env.Default("TOLLGATE_WORKDIR", ""),
		},
		configPath: env.Default("TOLLGATE_CONFIG", ""),
	}
}

// runTest runs the test suite. lookup is used to read the CI
// signal, everything else comes from args and opts.
func runTest(ctx context.Context, opts *testOptions, args []string, lookup func(string) (string, bool)) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := loadConfig(opts.configPath, opts.CWD)
	if err != nil {
		return err
	}

	cfg := testrun.ConfigFromArgs(conf.TestRun(), args, conf.Test.CIVariable, lookup)

	executor := exec.NewExecutor()
	executor.Options.CWD = opts.CWD

	runner := testrun.NewRunner(cfg, executor)
	runner.Options.WorkDir = opts.CWD

	res, err := runner.Run()
	if err != nil {
		var launchErr *exec.LaunchError
		if errors.As(err, &launchErr) {
			return &ExitError{Code: ExitLaunchFailure, Err: err}
		}
		return fmt.Errorf("running tests: %w", err)
	}

	if err := opts.writeReport(ctx, report.FromTestRun(res)); err != nil {
		return err
	}

	if !res.Success() {
		return &ExitError{
			Code:     res.ExitCode,
			Err:      fmt.Errorf("test executor exited with status %d", res.ExitCode),
			Reported: true,
		}
	}
	return nil
}
