// Package statements builds bank statement files for tests. Statements carry the
// title lines, trailing footer and column layout of a typical bank export.
//
// Example usage:
//
//	path := statements.NewBuilder(t).
//		WithTitle("HDFC BANK Ltd.").
//		WithTransaction("UPI-NAIMISH.DG@OKSBI", "1,200.00", "").
//		WriteCSV(t.TempDir(), "march.csv")
package statements

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Column names used by the builder. They match the default statement mapping.
const (
	ColumnSerial     = "S.N."
	ColumnDate       = "Value Date"
	ColumnRemarks    = "Transaction Remarks"
	ColumnWithdrawal = "Withdrawal Amt (INR)"
	ColumnDeposit    = "Deposit Amt (INR)"
	ColumnBalance    = "Balance (INR)"
)

// Columns is the header row written by the builder.
var Columns = []string{ColumnSerial, ColumnDate, ColumnRemarks, ColumnWithdrawal, ColumnDeposit, ColumnBalance}

// Builder accumulates the lines of a statement.
type Builder struct {
	t      *testing.T
	title  [][]string
	rows   [][]string
	footer [][]string
}

// NewBuilder creates an empty statement for the given test.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithTitle adds preamble lines above the header.
func (b *Builder) WithTitle(lines ...string) *Builder {
	for _, line := range lines {
		b.title = append(b.title, []string{line})
	}
	return b
}

// WithTransaction appends a numbered transaction row.
func (b *Builder) WithTransaction(remarks, withdrawal, deposit string) *Builder {
	serial := strconv.Itoa(len(b.rows) + 1)
	b.rows = append(b.rows, []string{serial, "01/03/25", remarks, withdrawal, deposit, ""})
	return b
}

// WithRow appends raw cells below the header.
func (b *Builder) WithRow(cells ...string) *Builder {
	b.rows = append(b.rows, cells)
	return b
}

// WithFooter adds trailing lines after the transactions.
func (b *Builder) WithFooter(lines ...string) *Builder {
	for _, line := range lines {
		b.footer = append(b.footer, []string{"", "", line})
	}
	return b
}

// HeaderRow returns the 1-based row number of the header line.
func (b *Builder) HeaderRow() int {
	return len(b.title) + 1
}

// Records returns every line of the statement in file order.
func (b *Builder) Records() [][]string {
	records := make([][]string, 0, len(b.title)+len(b.rows)+len(b.footer)+1)
	records = append(records, b.title...)
	records = append(records, Columns)
	records = append(records, b.rows...)
	records = append(records, b.footer...)
	return records
}

// WriteCSV writes the statement to dir/name and returns the path.
func (b *Builder) WriteCSV(dir, name string) string {
	b.t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		b.t.Fatalf("failed to create statement: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(b.Records()); err != nil {
		b.t.Fatalf("failed to write statement: %v", err)
	}
	return path
}

// WriteXLSX writes the statement to the first sheet of a new workbook at dir/name and
// returns the path. Blank cells are left out, as in a bank export.
func (b *Builder) WriteXLSX(dir, name string) string {
	b.t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, record := range b.Records() {
		for j, value := range record {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				b.t.Fatalf("invalid cell: %v", err)
			}
			if err := f.SetCellStr("Sheet1", cell, value); err != nil {
				b.t.Fatalf("failed to write %s: %v", cell, err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		b.t.Fatalf("failed to save statement: %v", err)
	}
	return path
}
