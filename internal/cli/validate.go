package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/canvasreplay/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files without running them",
		Long: `Check scenario files against the scenario schema and the per-action
argument rules without executing any step.

Faster than "test" for editing feedback: unknown fields, misspelled
actions and assertion types, and missing arguments are all reported.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		fv := validateFile(file)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if result.Valid {
		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ All scenarios valid (%d file(s))\n", len(files))
		return nil
	}

	invalid := 0
	for _, fv := range result.Files {
		if !fv.Valid {
			invalid++
		}
	}
	msg := fmt.Sprintf("validation failed for %d file(s)", invalid)

	if formatter.JSON() {
		if err := formatter.Failure(ErrCodeInvalid, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, fv := range result.Files {
		if fv.Valid {
			continue
		}
		fmt.Fprintln(formatter.Writer, fv.File)
		for _, p := range fv.Problems {
			fmt.Fprintf(formatter.Writer, "  %s\n", p)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return NewExitError(ExitFailure, msg)
}

// validateFile loads one scenario and lists what is wrong with it.
func validateFile(file string) FileValidation {
	_, err := harness.LoadScenario(file)
	if err == nil {
		return FileValidation{File: file, Valid: true}
	}

	var schemaErr *harness.SchemaError
	if errors.As(err, &schemaErr) {
		return FileValidation{File: file, Problems: schemaErr.Problems}
	}
	return FileValidation{File: file, Problems: []string{err.Error()}}
}
