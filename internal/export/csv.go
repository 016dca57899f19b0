// Package export renders expense lists as downloadable reports.
package export

import (
	"encoding/csv"
	"io"
	"time"

	"tally/internal/core"
)

// csvHeader is the first record of every export.
var csvHeader = []string{"Date", "Description", "Amount", "Category"}

// WriteCSV writes the expenses as a CSV document with a header row.
// Amounts are decimal strings, dates are calendar days in UTC.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range expenses {
		record := []string{
			e.Date.UTC().Format("2006-01-02"),
			e.Description,
			e.Amount.DecimalString(),
			e.Category.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename returns the attachment name for an export taken at t.
func Filename(t time.Time) string {
	return "expenses-" + t.UTC().Format("2006-01-02") + ".csv"
}
