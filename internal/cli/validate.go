package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/molsim/deckgen/internal/app"
	"github.com/molsim/deckgen/internal/workflow"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan>",
		Short: "Validate a plan without rendering any deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.New().Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(cmd, report)
			if !report.OK() {
				return fmt.Errorf("plan invalid: %d of %d chains failed", len(report.Issues), report.Chains)
			}
			return nil
		},
	}
}

// printReport writes the structured violation report: every finding of
// every failed chain, one line each.
func printReport(cmd *cobra.Command, report *app.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "plan: %d chain(s), %d stage(s)\n", report.Chains, report.Stages)
	for _, issue := range report.Issues {
		var stageErr *workflow.StageError
		if errors.As(issue.Err, &stageErr) {
			for _, e := range stageErr.Errs {
				fmt.Fprintf(out, "  %s: stage %d: %s\n", issue.Chain, stageErr.Stage, e)
			}
			continue
		}
		fmt.Fprintf(out, "  %s: %s\n", issue.Chain, issue.Err)
	}
	if report.OK() {
		fmt.Fprintln(out, "plan is valid")
	}
}
