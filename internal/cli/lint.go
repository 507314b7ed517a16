package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/canvasreplay/internal/harness"
	"github.com/roach88/canvasreplay/internal/lint"
)

// LintOptions holds flags for the lint command.
type LintOptions struct {
	*RootOptions
	Strict bool // warnings fail the run
}

// LintResult is the lint payload.
type LintResult struct {
	Scenario string         `json:"scenario"`
	Events   int            `json:"events"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Findings []lint.Finding `json:"findings"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lint <scenario.yaml>",
		Short: "Check recorded payloads against their event schemas",
		Long: `Record the scenario's steps and check every log entry against the JSON
schema for its event type. Entries that replay would ignore are reported:
malformed payloads as errors, updates and deletes of missing targets as
warnings.

Exit codes:
  0 - No errors (warnings allowed unless --strict)
  1 - Findings
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as failures")

	return cmd
}

func runLint(opts *LintOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	log, err := harness.Record(scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to record scenario", err)
	}

	linter, err := lint.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load event schemas", err)
	}

	result := LintResult{Scenario: scenario.Name, Events: len(log), Findings: linter.Check(log)}
	for _, f := range result.Findings {
		if f.Severity == lint.SeverityError {
			result.Errors++
		} else {
			result.Warnings++
		}
	}
	failed := result.Errors > 0 || (opts.Strict && result.Warnings > 0)

	if formatter.JSON() {
		if !failed {
			return formatter.Success(result)
		}
		msg := fmt.Sprintf("%d error(s), %d warning(s)", result.Errors, result.Warnings)
		if err := formatter.Failure(ErrCodeLint, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	for _, f := range result.Findings {
		fmt.Fprintln(formatter.Writer, f)
	}
	fmt.Fprintf(formatter.Writer, "%s: %d event(s), %d error(s), %d warning(s)\n",
		result.Scenario, result.Events, result.Errors, result.Warnings)

	if failed {
		return NewExitError(ExitFailure, fmt.Sprintf("lint failed for %s", result.Scenario))
	}
	return nil
}
