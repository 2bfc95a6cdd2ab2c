package statements

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuilder_Records(t *testing.T) {
	b := NewBuilder(t).
		WithTitle("Bank").
		WithTransaction("cab", "10", "").
		WithRow("", "", "carried forward").
		WithFooter("end")

	records := b.Records()

	require.Len(t, records, 5)
	assert.Equal(t, []string{"Bank"}, records[0])
	assert.Equal(t, Columns, records[1])
	assert.Equal(t, []string{"1", "01/03/25", "cab", "10", "", ""}, records[2])
	assert.Equal(t, []string{"", "", "end"}, records[4])
	assert.Equal(t, 2, b.HeaderRow())
}

func TestBuilder_WriteCSV(t *testing.T) {
	path := Sample(t).WriteCSV(t.TempDir(), "sample.csv")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Len(t, records, 9)
	assert.Equal(t, "5", records[7][0])
}

func TestBuilder_WriteXLSX(t *testing.T) {
	path := NewBuilder(t).
		WithTitle("Bank").
		WithTransaction("cab", "10", "").
		WriteXLSX(t.TempDir(), "sample.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Bank"}, rows[0])
	assert.Equal(t, Columns, rows[1])
	assert.Equal(t, []string{"1", "01/03/25", "cab", "10"}, rows[2])
}
