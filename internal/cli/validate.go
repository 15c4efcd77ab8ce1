package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pbenes/gooddata-data-layer/internal/document"
	"github.com/pbenes/gooddata-data-layer/pkg/afm"
)

type validateOptions struct {
	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate AFM documents",
		Long: `Validate decodes every AFM in the file and checks its structure:
object references name exactly one of identifier or uri, measure local
identifiers are present and unique, relative date filters have a
granularity and from <= to.

Attribute filters without values are reported as warnings. Returns exit
code 7 on validation failure (or on warnings with --strict).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings in addition to errors")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, opts *validateOptions) error {
	stderr := cmd.ErrOrStderr()

	docs, err := document.Load(path)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "syntax error: %v\n", err)
		return &ExitError{Code: exitValidation, Err: fmt.Errorf("decoding documents: %w", err)}
	}

	var errCount, warnCount int

	for _, doc := range docs {
		for _, problem := range flattenErrors(afm.Validate(doc.AFM)) {
			errCount++
			_, _ = fmt.Fprintf(stderr, "ERROR   %s: %v\n", doc.Name(), problem)
		}

		for _, warning := range emptyFilterWarnings(doc.AFM) {
			warnCount++
			_, _ = fmt.Fprintf(stderr, "WARNING %s: %s\n", doc.Name(), warning)
		}
	}

	printValidateSummary(stderr, len(docs), errCount, warnCount)

	if errCount > 0 {
		return &ExitError{Code: exitValidation, Err: fmt.Errorf("validation failed with %d error(s)", errCount)}
	}

	if opts.strict && warnCount > 0 {
		return &ExitError{Code: exitValidation, Err: fmt.Errorf("validation failed with %d warning(s) (strict mode)", warnCount)}
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed.")

	return nil
}

// flattenErrors unpacks an errors.Join result into its parts.
func flattenErrors(err error) []error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}

	return []error{err}
}

// emptyFilterWarnings lists attribute filters that carry no values and are
// therefore no-ops.
func emptyFilterWarnings(a afm.AFM) []string {
	var warnings []string

	check := func(path string, fs afm.Filters) {
		for i, f := range fs {
			if f != nil && !afm.IsNotEmptyFilter(f) {
				warnings = append(warnings, fmt.Sprintf("%s[%d]: %s has no values", path, i, f.Kind()))
			}
		}
	}

	for i, m := range a.Measures {
		check(fmt.Sprintf("measures[%d].definition.measure.filters", i), m.Filters())
	}

	check("filters", a.Filters)

	return warnings
}

func printValidateSummary(w io.Writer, docs, errCount, warnCount int) {
	_, _ = fmt.Fprintf(w, "%d document(s) checked: %d error(s), %d warning(s)\n", docs, errCount, warnCount)
}
