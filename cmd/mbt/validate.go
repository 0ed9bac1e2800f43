package main

import (
	"fmt"

	"github.com/aretw0/mbtassist/internal/validator"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project|file>",
		Short: "Check the model for consistency",
		Long: `Reports dangling transitions, duplicate ids, missing or duplicate initial
states and states unreachable from the initial one. Exits non-zero on errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			report := validator.ValidateDocument(doc)
			out := cmd.OutOrStdout()
			for _, issue := range report.Issues {
				fmt.Fprintln(out, issue.String())
			}
			if err := report.Err(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Model is valid! ✅")
			return nil
		},
	}
}
