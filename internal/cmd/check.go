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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/env"

	"sigs.k8s.io/tollgate/pkg/attestation"
	"sigs.k8s.io/tollgate/pkg/config"
	"sigs.k8s.io/tollgate/pkg/exec"
	"sigs.k8s.io/tollgate/pkg/pipeline"
	"sigs.k8s.io/tollgate/pkg/report"
)

type checkOptions struct {
	*outputOptions
	configPath  string
	attestPath  string
	stepArgs    []string
	dryRun      bool
	quietOutput bool
}

func (o *checkOptions) Verify() error {
	errs := []error{}
	if o.dryRun && o.attestPath != "" {
		errs = append(errs, errors.New("--attest cannot be used with --dry-run"))
	}
	if o.dryRun && o.ReportURI != "" {
		errs = append(errs, errors.New("--report cannot be used with --dry-run"))
	}
	return errors.Join(errs...)
}

func addCheck(parentCmd *cobra.Command) {
	checkOpts := checkOptions{}

	checkCmd := &cobra.Command{
		Short: "Run the static analyzers of the project",
		Long: `tollgate check

The check subcommand runs every analyzer defined in the pipeline,
one after the other, in the order they are declared. The paths each
analyzer looks at are part of the pipeline definition.

If a strict analyzer fails, the run stops right away and tollgate
exits with the analyzer's status. Advisory analyzers are allowed to
fail: their findings are printed as warnings and the run goes on.

The pipeline is read from tollgate.yaml (or --config). When there is
no such file the built-in pipeline is used.

	`,
		Use:               "check",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: initLogging,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOpts.Verify(); err != nil {
				return fmt.Errorf("verifying options: %w", err)
			}
			return runCheck(cmd.Context(), &checkOpts)
		},
	}

	checkCmd.PersistentFlags().StringVarP(
		&checkOpts.configPath,
		"config",
		"c",
		env.Default("TOLLGATE_CONFIG", ""),
		"pipeline definition file (defaults to "+config.DefaultFile+" or the built-in pipeline)",
	)

	checkCmd.PersistentFlags().StringArrayVar(
		&checkOpts.stepArgs,
		"step-arg",
		[]string{},
		"extra argument for a step, as step=argument (can be repeated)",
	)

	checkCmd.PersistentFlags().StringVar(
		&checkOpts.attestPath,
		"attest",
		"",
		"write an in-toto attestation of the check results to this file",
	)

	checkCmd.PersistentFlags().BoolVar(
		&checkOpts.dryRun,
		"dry-run",
		false,
		"print the analyzer invocations without running them",
	)

	checkCmd.PersistentFlags().BoolVar(
		&checkOpts.quietOutput,
		"quiet",
		false,
		"do not show the analyzer output as it runs, only in the summary",
	)

	checkOpts.outputOptions = addOutputFlags(checkCmd)
	parentCmd.AddCommand(checkCmd)
}

func runCheck(ctx context.Context, opts *checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := loadConfig(opts.configPath, opts.CWD)
	if err != nil {
		return err
	}

	steps, err := conf.PipelineSteps()
	if err != nil {
		return fmt.Errorf("resolving pipeline steps: %w", err)
	}

	extraArgs, err := parseStepArgs(opts.stepArgs, conf.StepNames())
	if err != nil {
		return fmt.Errorf("parsing step arguments: %w", err)
	}

	if opts.dryRun {
		return printInvocations(steps, opts.CWD, extraArgs)
	}

	executor := exec.NewExecutor()
	executor.Options.CWD = opts.CWD
	executor.Options.Silent = opts.quietOutput

	runner := pipeline.NewRunner(executor)
	runner.Options.WorkDir = opts.CWD
	runner.Options.ExtraArgs = extraArgs

	result := runner.Run(steps)

	if err := report.Summary(os.Stdout, result); err != nil {
		return fmt.Errorf("printing summary: %w", err)
	}

	if err := opts.writeReport(ctx, report.FromPipeline(result)); err != nil {
		return err
	}

	if opts.attestPath != "" {
		if err := writeAttestation(opts, conf, result); err != nil {
			return err
		}
	}

	if err := result.Err(); err != nil {
		return &ExitError{Code: ExitCode(err), Err: err, Reported: true}
	}
	return nil
}

func printInvocations(steps []pipeline.Step, dir string, extraArgs map[string][]string) error {
	for i := range steps {
		inv, err := steps[i].Invocation(dir, extraArgs[steps[i].Name])
		if err != nil {
			return fmt.Errorf("building invocation: %w", err)
		}
		fmt.Printf("%-10s %-9s %s\n", steps[i].Name, steps[i].Tolerance, inv.String())
	}
	return nil
}

func writeAttestation(opts *checkOptions, conf *config.Config, result *pipeline.Result) error {
	att := attestation.FromResult(result)
	if url, commit := sourceIdentity(opts.CWD); url != "" || commit != "" {
		att.AddSubject(url, commit)
	}
	if conf.Path != "" {
		if err := att.AddConfiguration(conf.Path); err != nil {
			return fmt.Errorf("recording pipeline configuration: %w", err)
		}
	}
	if err := att.WriteJSON(opts.attestPath); err != nil {
		return fmt.Errorf("writing attestation: %w", err)
	}
	logrus.Infof("Wrote gate attestation to %s", opts.attestPath)
	return nil
}
