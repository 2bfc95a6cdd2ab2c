package ingest

import (
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable(t *testing.T) {
	records := [][]string{
		{"Statement for account 123"},
		{},
		{"S.N.", "Transaction Remarks", "", "Amount", "Amount"},
		{"1", "UPI/naimish.dg", "x", "100", "5", "overflow"},
		{"2", "cab"},
		{},
		{"Closing balance"},
	}

	table, err := buildTable(records, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"S.N.", "Transaction Remarks", "Unnamed: 2", "Amount", "Amount.1", "Unnamed: 5"}, table.Columns)
	require.Len(t, table.Rows, 4)

	assert.Equal(t, model.Text("UPI/naimish.dg"), table.Rows[0]["Transaction Remarks"])
	assert.Equal(t, model.Text("5"), table.Rows[0]["Amount.1"])
	assert.Equal(t, model.Text("overflow"), table.Rows[0]["Unnamed: 5"])

	assert.Equal(t, model.Text("2"), table.Rows[1]["S.N."])
	assert.Equal(t, model.Missing(), table.Rows[1]["Amount"])

	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Columns), "every row exposes every column")
	}
	assert.Equal(t, model.Text("Closing balance"), table.Rows[3]["S.N."])
}

func TestBuildTable_HeaderRowOutOfRange(t *testing.T) {
	_, err := buildTable([][]string{{"a"}}, 2)
	assert.ErrorIs(t, err, common.ErrInvalidHeaderRow)

	_, err = buildTable(nil, 1)
	assert.ErrorIs(t, err, common.ErrInvalidHeaderRow)
}

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		expected []string
		width    int
	}{
		{
			name:     "unique",
			header:   []string{"a", "b"},
			width:    2,
			expected: []string{"a", "b"},
		},
		{
			name:     "duplicates",
			header:   []string{"a", "a", "a"},
			width:    3,
			expected: []string{"a", "a.1", "a.2"},
		},
		{
			name:     "suffix collides with existing name",
			header:   []string{"a", "a.1", "a"},
			width:    3,
			expected: []string{"a", "a.1", "a.2"},
		},
		{
			name:     "blank and padded",
			header:   []string{"", "b"},
			width:    3,
			expected: []string{"Unnamed: 0", "b", "Unnamed: 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, headerNames(tt.header, tt.width))
		})
	}
}
