package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/ingest"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet name of freshly written workbooks.
const SheetName = "Processed Transactions"

// ErrNoColumns is returned when there is nothing to write.
var ErrNoColumns = errors.New("no output columns")

// WriteXLSX writes table into a new workbook at path with a bold header row.
func WriteXLSX(table model.Table, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeSheet(f, SheetName, table); err != nil {
		return err
	}

	return save(f, path)
}

func writeSheet(f *excelize.File, sheet string, table model.Table) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, name := range table.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		values := make([]any, len(table.Columns))
		for j, name := range table.Columns {
			if v := row.Get(name); v.Present && v.Text != "" {
				values[j] = v.Text
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return nil
}

// WriteFile writes table to path as CSV when the extension is .csv and as a new
// workbook otherwise.
func WriteFile(table model.Table, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if err := ensureDir(path); err != nil {
			return err
		}
		out, err := os.Create(path) //nolint:gosec // output path from the command line
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := WriteCSV(out, table); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	}
	return WriteXLSX(table, path)
}

// XLSXWriter annotates the workbook a table was read from.
type XLSXWriter struct {
	// HeaderRow is the 1-based row holding the column names. Zero means 1.
	HeaderRow int
	// Sheet is the annotated worksheet. Empty means the first sheet.
	Sheet string
}

// Annotate copies the workbook read from src to dst with the output columns of table
// filled in. Existing headers named like an output column are reused, missing ones are
// appended after the last used column with the style of the last header cell. Row i of
// table is written to sheet row HeaderRow+1+i. Every other cell keeps its value and style.
func (w *XLSXWriter) Annotate(ctx context.Context, src io.Reader, dst string, table model.Table, out model.OutputColumns) error {
	headerRow := w.HeaderRow
	if headerRow == 0 {
		headerRow = 1
	}
	if headerRow < 0 {
		return fmt.Errorf("%w: %d", common.ErrInvalidHeaderRow, headerRow)
	}

	var columns []string
	for _, name := range out.Names() {
		if name != "" && table.HasColumn(name) {
			columns = append(columns, name)
		}
	}
	if len(columns) == 0 {
		return ErrNoColumns
	}

	f, err := excelize.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := ingest.ResolveSheet(f, w.Sheet)
	if err != nil {
		return err
	}

	positions, err := w.placeHeaders(f, sheet, headerRow, columns)
	if err != nil {
		return err
	}

	for i, row := range table.Rows {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for _, name := range columns {
			cell, err := excelize.CoordinatesToCellName(positions[name], headerRow+1+i)
			if err != nil {
				return err
			}
			if err := setCell(f, sheet, cell, row.Get(name).Text); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	slog.Debug("Annotated workbook", "sheet", sheet, "rows", len(table.Rows), "dst", dst)

	return save(f, dst)
}

// placeHeaders returns the 1-based column index of every output column, appending the
// headers that do not exist yet.
func (w *XLSXWriter) placeHeaders(f *excelize.File, sheet string, headerRow int, columns []string) (map[string]int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	var header []string
	if headerRow <= len(rows) {
		header = rows[headerRow-1]
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	styleID := 0
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), headerRow)
		if err != nil {
			return nil, err
		}
		if styleID, err = f.GetCellStyle(sheet, last); err != nil {
			return nil, fmt.Errorf("reading header style: %w", err)
		}
	}

	positions := make(map[string]int, len(columns))
	for _, name := range columns {
		if idx := indexOf(header, name); idx >= 0 {
			positions[name] = idx + 1
			continue
		}

		width++
		positions[name] = width
		cell, err := excelize.CoordinatesToCellName(width, headerRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", cell, err)
		}
		if styleID != 0 {
			if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
				return nil, fmt.Errorf("failed to style header %s: %w", cell, err)
			}
		}
	}
	return positions, nil
}

// setCell writes value unless the cell already holds it, so untouched cells keep
// their type. Empty cells are never created.
func setCell(f *excelize.File, sheet, cell, value string) error {
	current, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	if current == value {
		return nil
	}
	return f.SetCellStr(sheet, cell, value)
}

func indexOf(values []string, name string) int {
	for i, v := range values {
		if v == name {
			return i
		}
	}
	return -1
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return nil
}

func save(f *excelize.File, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
