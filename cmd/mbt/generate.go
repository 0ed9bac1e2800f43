package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/mbtassist/internal/export"
	"github.com/aretw0/mbtassist/internal/presentation/table"
	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <project|file>",
		Short: "Generate test cases from a model",
		Long: `Enumerates every path from the initial state of the model and prints one
test case per path. The model is a stored project name or a .json/.yaml file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output") {
				a.cfg.Output, _ = cmd.Flags().GetString("output")
			}
			if cmd.Flags().Changed("max-paths") {
				a.cfg.MaxPaths, _ = cmd.Flags().GetInt("max-paths")
			}
			if cmd.Flags().Changed("sentinel") {
				a.cfg.Sentinel, _ = cmd.Flags().GetString("sentinel")
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			doc, err := a.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, _, err := doc.Graph()
			if err != nil {
				return err
			}

			res := generator.New(g,
				generator.WithLogger(a.logger),
				generator.WithSentinel(a.cfg.Sentinel),
				generator.WithMaxPaths(a.cfg.MaxPaths),
			).Generate()
			if res.NoStart {
				a.logger.Warn("model has no initial state; nothing to generate", "model", args[0])
			}
			if res.Truncated {
				a.logger.Warn("enumeration truncated", "max_paths", a.cfg.MaxPaths)
			}

			if out, _ := cmd.Flags().GetString("out"); out != "" {
				return writeCasesFile(out, a.cfg.Output, res.TestCases)
			}
			return writeCases(cmd.OutOrStdout(), a.cfg.Output, res.TestCases)
		},
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table, markdown, json or csv")
	cmd.Flags().Int("max-paths", 0, "Stop after this many paths (0 = unlimited)")
	cmd.Flags().String("sentinel", generator.DefaultSentinel, "Placeholder for missing input or expected result")
	cmd.Flags().String("out", "", "Write to this file instead of stdout")
	return cmd
}

var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeCasesFile writes to path. A failed Close is reported: it may be the
// flush that lost the data.
func writeCasesFile(path, format string, cases []domain.TestCase) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return writeCases(f, format, cases)
}

func writeCases(w io.Writer, format string, cases []domain.TestCase) error {
	switch format {
	case "json":
		if cases == nil {
			cases = []domain.TestCase{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cases)
	case "csv":
		return export.WriteCSV(w, cases)
	case "markdown":
		return table.Render(w, table.Markdown(cases), false)
	case "table":
		return table.Render(w, table.Markdown(cases), table.IsTerminal(w))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
