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
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/env"
	"sigs.k8s.io/release-utils/helpers"

	"sigs.k8s.io/tollgate/pkg/config"
	"sigs.k8s.io/tollgate/pkg/git"
	"sigs.k8s.io/tollgate/pkg/report"
)

type outputOptions struct {
	ReportURI string
	CWD       string
}

func addOutputFlags(command *cobra.Command) *outputOptions {
	opts := &outputOptions{}
	command.PersistentFlags().StringVar(
		&opts.ReportURI,
		"report",
		env.Default("TOLLGATE_REPORT", ""),
		"write a JSON report to a file, gs://bucket/object or - for STDOUT",
	)
	command.PersistentFlags().StringVarP(
		&opts.CWD,
		"cwd",
		"C",
		"",
		"directory of the source tree to run in",
	)
	return opts
}

// writeReport adds the source information to the report and writes
// it out, if a destination was requested
func (oo *outputOptions) writeReport(ctx context.Context, r *report.Report) error {
	if oo.ReportURI == "" {
		return nil
	}
	url, commit := sourceIdentity(oo.CWD)
	r.WithSource(url, commit)
	if err := report.Write(ctx, r, oo.ReportURI); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logrus.Infof("Wrote %s report to %s", r.Kind, oo.ReportURI)
	return nil
}

// sourceIdentity returns the repository URL and HEAD commit of dir.
// Problems reading them are logged, they never fail a run.
func sourceIdentity(dir string) (url, commit string) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		logrus.Warnf("Unable to resolve source directory: %v", err)
		return "", ""
	}
	repo := git.NewRepository(dir)
	url, err = repo.SourceURL()
	if err != nil {
		logrus.Warnf("Unable to read repository URL: %v", err)
	}
	commit, err = repo.HeadCommit()
	if err != nil {
		logrus.Warnf("Unable to read repository commit: %v", err)
	}
	return url, commit
}

// parseStepArgs reads name=value pairs into arguments per step
func parseStepArgs(pairs, steps []string) (map[string][]string, error) {
	res := map[string][]string{}
	known := map[string]struct{}{}
	for _, s := range steps {
		known[s] = struct{}{}
	}

	errs := []error{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			errs = append(errs, fmt.Errorf("invalid step argument %q, expected step=argument", p))
			continue
		}
		if _, ok := known[name]; !ok {
			errs = append(errs, fmt.Errorf("step argument for unknown step %q", name))
			continue
		}
		res[name] = append(res[name], value)
	}
	return res, errors.Join(errs...)
}

// loadConfig reads the pipeline definition. Without an explicit path
// the default file is looked up in the source directory.
func loadConfig(path, cwd string) (*config.Config, error) {
	if path == "" && cwd != "" && helpers.Exists(filepath.Join(cwd, config.DefaultFile)) {
		path = filepath.Join(cwd, config.DefaultFile)
	}
	conf, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading pipeline: %w", err)
	}
	if conf.Path != "" {
		logrus.Infof("Using pipeline defined in %s", conf.Path)
	}
	return conf, nil
}
