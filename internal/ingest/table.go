package ingest

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// buildTable turns raw records into a table. Records above headerRow are dropped, the
// header record names the columns and every later record becomes one row. Cells that
// are empty or beyond the end of a short record are explicit missing values.
func buildTable(records [][]string, headerRow int) (model.Table, error) {
	if headerRow < 1 || headerRow > len(records) {
		return model.Table{}, fmt.Errorf("%w: row %d of %d", common.ErrInvalidHeaderRow, headerRow, len(records))
	}

	data := records[headerRow:]
	width := len(records[headerRow-1])
	for _, rec := range data {
		width = max(width, len(rec))
	}

	columns := headerNames(records[headerRow-1], width)
	table := model.Table{
		Columns: columns,
		Rows:    make([]model.Row, 0, len(data)),
	}

	for _, rec := range data {
		row := make(model.Row, width)
		for i, name := range columns {
			if i < len(rec) && rec[i] != "" {
				row[name] = model.Text(rec[i])
				continue
			}
			row[name] = model.Missing()
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// headerNames names width columns from header. Blank names become "Unnamed: N" with
// the 0-based column index, repeated names get ".1", ".2" suffixes.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]bool, width)
	counts := make(map[string]int, width)

	for i := range names {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		base := name
		for seen[name] {
			counts[base]++
			name = base + "." + strconv.Itoa(counts[base])
		}
		seen[name] = true
		names[i] = name
	}
	return names
}
