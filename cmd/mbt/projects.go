package main

import (
	"fmt"

	"github.com/aretw0/mbtassist/pkg/adapters/file"
	"github.com/spf13/cobra"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <name> <file>",
		Short: "Store a .json/.yaml model file as a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := file.ReadFile(args[1])
			if err != nil {
				return err
			}
			if _, _, err := doc.Graph(); err != nil {
				return err
			}
			if err := a.store.Save(cmd.Context(), args[0], doc); err != nil {
				return err
			}
			a.logger.Info("project imported", "project", args[0], "from", args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <name> <file>",
		Short: "Write a stored project to a .json/.yaml file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return file.WriteFile(args[1], doc)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Delete(cmd.Context(), args[0])
		},
	})
	return cmd
}
