// Package export writes classified statements back out as workbooks or CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// WriteCSV writes table to w with a header record. Missing cells are written empty.
func WriteCSV(w io.Writer, table model.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j, name := range table.Columns {
			record[j] = row.Get(name).Text
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
