// Package table renders generated test cases as the results table.
package table

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/mbtassist/internal/presentation/tui"
	"github.com/aretw0/mbtassist/pkg/domain"
	"golang.org/x/term"
)

// Header is the column layout shared by the table and the CSV export.
var Header = []string{"Test ID", "Step", "Action", "Input", "Expected Result"}

// Rows flattens test cases into one row per step. The test id cell is only
// filled on the first step of each case.
func Rows(cases []domain.TestCase) [][]string {
	var rows [][]string
	for _, tc := range cases {
		for i, s := range tc.Steps {
			id := ""
			if i == 0 {
				id = fmt.Sprintf("Test #%d", tc.ID)
			}
			rows = append(rows, []string{id, fmt.Sprintf("%d", i+1), s.Action, s.Input, s.Expected})
		}
	}
	return rows
}

// Markdown renders the results table as a GitHub-flavoured markdown table.
func Markdown(cases []domain.TestCase) string {
	var sb strings.Builder
	writeRow(&sb, Header)
	sep := make([]string, len(Header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&sb, sep)
	for _, row := range Rows(cases) {
		writeRow(&sb, row)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(escapeCell(c))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// Render writes md to w. When rich is true the markdown goes through glamour first.
func Render(w io.Writer, md string, rich bool) error {
	if !rich {
		_, err := io.WriteString(w, md)
		return err
	}
	out, err := tui.NewRenderer(0)(md)
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
