// Package export writes generated test cases to spreadsheet-friendly formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/aretw0/mbtassist/internal/presentation/table"
	"github.com/aretw0/mbtassist/pkg/domain"
)

// WriteCSV writes cases using the results table layout: one row per step,
// with the test id only on the first step of each case.
func WriteCSV(w io.Writer, cases []domain.TestCase) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(table.Rows(cases)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
