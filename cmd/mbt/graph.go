package main

import (
	"fmt"

	"github.com/aretw0/mbtassist/internal/presentation/graph"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <project|file>",
		Short: "Export the model as a Mermaid diagram",
		Long:  `Outputs a Mermaid flowchart (graph TD) of the model. With --case N the path of test case N is highlighted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, _, err := doc.Graph()
			if err != nil {
				return err
			}

			var overlay *graph.Overlay
			if n, _ := cmd.Flags().GetInt("case"); n > 0 {
				paths := generator.New(g, generator.WithLogger(a.logger)).GenerateAllPaths()
				if n > len(paths) {
					return fmt.Errorf("test case %d does not exist (%d generated)", n, len(paths))
				}
				overlay = graph.OverlayFor(paths[n-1])
			}

			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
			return nil
		},
	}
	cmd.Flags().Int("case", 0, "Highlight the path of this test case")
	return cmd
}
