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
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sigs.k8s.io/release-utils/helpers"

	"sigs.k8s.io/tollgate/pkg/pipeline"
)

var statusMarks = map[pipeline.Status]string{
	pipeline.StatusPassed:      "✅",
	pipeline.StatusFailed:      "❌",
	pipeline.StatusWarned:      "⚠️",
	pipeline.StatusLaunchError: "💣",
	pipeline.StatusSkipped:     "⏭️",
}

// Summary prints a table with the outcome of every step followed by
// the details of the step that failed the pipeline, if any.
func Summary(w io.Writer, result *pipeline.Result) error {
	table := helpers.NewTableWriterWithDefaultsAndHeader(
		w, []string{"STEP", "TOLERANCE", "STATUS", "EXIT", "TIME", "TARGETS"},
	)
	for _, o := range result.Outcomes {
		exit := "-"
		if o.Status != pipeline.StatusSkipped && o.Status != pipeline.StatusLaunchError {
			exit = fmt.Sprintf("%d", o.ExitCode)
		}
		if err := table.Append([]string{
			o.Step.Name, string(o.Step.Tolerance), statusMarks[o.Status] + " " + string(o.Status), exit,
			o.Duration.Round(time.Millisecond).String(), strings.Join(o.Step.Targets, " "),
		}); err != nil {
			return fmt.Errorf("adding %s to summary: %w", o.Step.Name, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("writing summary table: %w", err)
	}

	if warnings := result.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(w, "\n%d advisory check(s) reported problems\n", len(warnings))
	}

	if err := result.Err(); err != nil {
		details := err.Error()
		var sfe *pipeline.StrictFailureError
		if errors.As(err, &sfe) {
			details = sfe.Details()
		}
		fmt.Fprintf(w, "\nPipeline FAILED: %s\n", details)
		return nil
	}
	fmt.Fprintln(w, "\nPipeline passed")
	return nil
}
