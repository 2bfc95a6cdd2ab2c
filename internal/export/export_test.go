package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	"github.com/Veraticus/the-spice-must-tally/internal/ingest"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fields = ingest.DefaultFields()

func statementTable() model.Table {
	return model.Table{
		Columns: []string{"S.N.", "Transaction Remarks", "Withdrawal Amt (INR)", "Deposit Amt (INR)"},
		Rows: []model.Row{
			{"S.N.": model.Text("1"), "Transaction Remarks": model.Text("UPI/naimish.dg"), "Withdrawal Amt (INR)": model.Text("500"), "Deposit Amt (INR)": model.Missing()},
			{"S.N.": model.Text("2"), "Transaction Remarks": model.Text("salary, march"), "Withdrawal Amt (INR)": model.Missing(), "Deposit Amt (INR)": model.Text("9000")},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	table := classification.Classify(statementTable(), fields, model.DefaultTaxonomy())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	expected := "S.N.,Transaction Remarks,Withdrawal Amt (INR),Deposit Amt (INR),Expense Type,Expense Category,Expense Subcategory,Remarks\n" +
		"1,UPI/naimish.dg,500,,Business,Software,,\n" +
		"2,\"salary, march\",,9000,,,,\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "processed.xlsx")
	table := classification.Classify(statementTable(), fields, model.DefaultTaxonomy())

	require.NoError(t, WriteXLSX(table, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, table.Columns, rows[0])
	require.GreaterOrEqual(t, len(rows[1]), 6)
	assert.Equal(t, []string{"1", "UPI/naimish.dg", "500", "", "Business", "Software"}, rows[1][:6])
}

func TestWriteFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.CSV")
	require.NoError(t, WriteFile(statementTable(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "S.N.,Transaction Remarks"))
}

// sourceWorkbook builds a statement with a title row, a styled header on row 2,
// a trailing summary row and a notes column beyond the header.
func sourceWorkbook(t *testing.T, header []any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sheet1"
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "#FF0000"}})
	require.NoError(t, err)

	require.NoError(t, f.SetCellStr(sheet, "A1", "Account statement"))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &header))
	require.NoError(t, f.SetCellStyle(sheet, "A2", "D2", style))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{1, "UPI/naimish.dg", 500, nil}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{2, "Uber cab", 120, nil}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{3, "salary", nil, 9000}))
	require.NoError(t, f.SetSheetRow(sheet, "A6", &[]any{"Total", nil, 620, 9000, nil, "checked"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestAnnotate(t *testing.T) {
	ctx := context.Background()
	src := sourceWorkbook(t, []any{"S.N.", "Transaction Remarks", "Withdrawal Amt (INR)", "Deposit Amt (INR)"})

	table, err := (&ingest.XLSXReader{}).Read(ctx, bytes.NewReader(src), ingest.Options{HeaderRow: 2})
	require.NoError(t, err)
	classified := classification.Classify(table, fields, model.DefaultTaxonomy())

	dst := filepath.Join(t.TempDir(), "annotated.xlsx")
	w := &XLSXWriter{HeaderRow: 2}
	require.NoError(t, w.Annotate(ctx, bytes.NewReader(src), dst, classified, fields.Writable(model.DefaultOutputColumns())))

	f, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	title, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Account statement", title)

	// The notes column in F pushes the appended headers to G onwards.
	header, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S.N.", "Transaction Remarks", "Withdrawal Amt (INR)", "Deposit Amt (INR)", "", "", "Expense Type", "Expense Category", "Expense Subcategory", "Remarks"}, header[1])

	expectCell := func(cell, expected string) {
		t.Helper()
		got, err := f.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		assert.Equal(t, expected, got, cell)
	}
	expectCell("G3", "Business")
	expectCell("H3", "Software")
	expectCell("G4", "Business")
	expectCell("H4", "Travel")
	expectCell("G5", "")
	expectCell("G6", "")
	expectCell("F6", "checked")
	expectCell("C4", "120")

	headerStyle, err := f.GetCellStyle("Sheet1", "D2")
	require.NoError(t, err)
	appendedStyle, err := f.GetCellStyle("Sheet1", "G2")
	require.NoError(t, err)
	assert.Equal(t, headerStyle, appendedStyle)
}

func TestAnnotate_ReusesExistingHeaders(t *testing.T) {
	ctx := context.Background()
	src := sourceWorkbook(t, []any{"S.N.", "Transaction Remarks", "Withdrawal Amt (INR)", "Expense Type"})

	table, err := (&ingest.XLSXReader{}).Read(ctx, bytes.NewReader(src), ingest.Options{HeaderRow: 2})
	require.NoError(t, err)
	classified := classification.Classify(table, fields, model.DefaultTaxonomy())

	dst := filepath.Join(t.TempDir(), "annotated.xlsx")
	out := model.OutputColumns{Type: "Expense Type"}
	require.NoError(t, (&XLSXWriter{HeaderRow: 2}).Annotate(ctx, bytes.NewReader(src), dst, classified, out))

	f, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S.N.", "Transaction Remarks", "Withdrawal Amt (INR)", "Expense Type"}, rows[1])

	// Deposit column D held "9000" on the salary row; it is now an output column
	// and the row is a deposit, so the stale value is cleared.
	got, err := f.GetCellValue("Sheet1", "D5")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.GetCellValue("Sheet1", "D3")
	require.NoError(t, err)
	assert.Equal(t, "Business", got)

	// The total row is outside the transaction block and keeps its value.
	got, err = f.GetCellValue("Sheet1", "D6")
	require.NoError(t, err)
	assert.Equal(t, "9000", got)
}

func TestAnnotate_NoColumns(t *testing.T) {
	err := (&XLSXWriter{}).Annotate(context.Background(), bytes.NewReader(nil), "out.xlsx", statementTable(), model.DefaultOutputColumns())
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestAnnotate_MissingSheet(t *testing.T) {
	src := sourceWorkbook(t, []any{"S.N."})
	table := classification.Classify(statementTable(), fields, model.DefaultTaxonomy())

	err := (&XLSXWriter{Sheet: "Nope"}).Annotate(context.Background(), bytes.NewReader(src), filepath.Join(t.TempDir(), "x.xlsx"), table, model.DefaultOutputColumns())
	assert.ErrorIs(t, err, ingest.ErrSheetNotFound)
}
