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
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sigs.k8s.io/release-utils/env"
	"sigs.k8s.io/release-utils/log"
	"sigs.k8s.io/release-utils/version"
)

func Execute() error {
	rootCmd := &cobra.Command{
		Short: "Run the quality gate of a source tree",
		Long: `tollgate

🚧 tollgate runs the static analyzers and the test suite of a project
in a fixed order and turns their results into a single exit status
that a CI job or a developer shell can act on.

	tollgate check            # run the analyzers
	tollgate test             # run the whole test suite
	tollgate test foo -x      # run tests matching "foo", pass -x on

Analyzers are either strict, failing the gate and stopping the run
as soon as they report problems, or advisory, whose findings are
shown but never fail the gate.

	`,
		Use:               "tollgate",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initLogging,
		// Root flags given before a subcommand are parsed here, test
		// does not parse flags on its own.
		TraverseChildren: true,
	}

	rootCmd.PersistentFlags().StringVar(
		&commandLineOpts.logLevel,
		"log-level",
		env.Default("TOLLGATE_LOG_LEVEL", "info"),
		fmt.Sprintf("the logging verbosity, either %s", log.LevelNames()),
	)

	addCheck(rootCmd)
	addTest(rootCmd)
	rootCmd.AddCommand(version.WithFont("larry3d"))

	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			logrus.Error(err)
		}
		return err
	}
	return nil
}

type commandLineOptions struct {
	logLevel string
}

var commandLineOpts = &commandLineOptions{}

func initLogging(*cobra.Command, []string) error {
	return log.SetupGlobalLogger(commandLineOpts.logLevel)
}
