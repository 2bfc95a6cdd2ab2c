package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

const utf8BOM = "\ufeff"

// CSVReader reads comma separated statements. Records may have differing lengths.
type CSVReader struct {
	// Comma overrides the field delimiter. Zero means ','.
	Comma rune
}

// Format returns the reader name.
func (c *CSVReader) Format() string { return "csv" }

// Extensions returns the file extensions handled by the reader.
func (c *CSVReader) Extensions() []string { return []string{".csv"} }

// Read parses a CSV statement.
func (c *CSVReader) Read(ctx context.Context, r io.Reader, opts Options) (model.Table, error) {
	headerRow, err := opts.headerRow()
	if err != nil {
		return model.Table{}, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if c.Comma != 0 {
		cr.Comma = c.Comma
	}

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return model.Table{}, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Table{}, fmt.Errorf("reading CSV: %w", err)
		}
		records = append(records, rec)
	}

	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}

	return buildTable(records, headerRow)
}
