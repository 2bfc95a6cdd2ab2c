package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/xuri/excelize/v2"
)

// XLSXReader reads Excel workbooks. Cells are read as raw values so number formats
// such as currency symbols or thousands separators do not reach the classifier.
type XLSXReader struct{}

// Format returns the reader name.
func (x *XLSXReader) Format() string { return "xlsx" }

// Extensions returns the file extensions handled by the reader.
func (x *XLSXReader) Extensions() []string { return []string{".xlsx", ".xlsm"} }

// Read parses the selected worksheet of a workbook.
func (x *XLSXReader) Read(ctx context.Context, r io.Reader, opts Options) (model.Table, error) {
	headerRow, err := opts.headerRow()
	if err != nil {
		return model.Table{}, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Table{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := ResolveSheet(f, opts.Sheet)
	if err != nil {
		return model.Table{}, err
	}

	if err := ctx.Err(); err != nil {
		return model.Table{}, err
	}

	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Table{}, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	return buildTable(records, headerRow)
}

// ResolveSheet returns name when the workbook has such a sheet, or the first sheet
// when name is empty.
func ResolveSheet(f *excelize.File, name string) (string, error) {
	sheets := f.GetSheetList()
	if name == "" {
		if len(sheets) == 0 {
			return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		}
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}
