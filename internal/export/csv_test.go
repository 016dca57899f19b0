package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"tally/internal/core"
)

func TestWriteCSV(t *testing.T) {
	expenses := []core.Expense{
		{
			ID:          "a",
			Description: "Groceries",
			Amount:      core.Money{Cents: 5000},
			Category:    core.Food,
			Date:        time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:          "b",
			Description: "Bus ticket, monthly",
			Amount:      core.Money{Cents: 155},
			Category:    core.Transport,
			Date:        time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, expenses); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output back: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	wantHeader := []string{"Date", "Description", "Amount", "Category"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	want := []string{"2025-03-10", "Groceries", "50.00", "Food"}
	for i, col := range want {
		if records[1][i] != col {
			t.Errorf("row[%d] = %q, want %q", i, records[1][i], col)
		}
	}
	// Commas in descriptions must survive the round trip.
	if records[2][1] != "Bus ticket, monthly" {
		t.Errorf("description = %q, want quoted comma preserved", records[2][1])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Date,Description,Amount,Category" {
		t.Fatalf("empty export = %q, want header only", got)
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)
	if got := Filename(ts); got != "expenses-2025-03-10.csv" {
		t.Fatalf("Filename = %q", got)
	}
}
