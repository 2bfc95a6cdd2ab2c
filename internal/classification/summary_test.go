package classification

import (
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	taxonomy := model.FlatTaxonomy{
		{Name: "Software", Keywords: []string{"aws"}},
		{Name: "Travel", Keywords: []string{"cab"}},
	}
	table := testTable(
		txnRow(model.Text("Opening"), "aws", "9999", ""),
		txnRow(model.Text("1"), "AWS invoice", "1,000.10", ""),
		txnRow(model.Text("2"), "aws credits", "0.20", ""),
		txnRow(model.Text("3"), "cab fare", "300", ""),
		txnRow(model.Text("4"), "misc shop", "50.5", ""),
		txnRow(model.Text("5"), "salary", "", "25,000"),
		txnRow(model.Text("Total"), "", "1351.3", "25000"),
	)

	out := model.DefaultOutputColumns()
	s := Summarize(ClassifyWith(table, testFields, taxonomy, out), testFields, out)

	assert.Equal(t, 5, s.Rows)
	assert.Equal(t, 3, s.Business)
	assert.Equal(t, 1, s.Unmatched)
	assert.Equal(t, 1, s.NonExpense)
	assert.True(t, s.Withdrawals.Equal(decimal.RequireFromString("1350.8")), s.Withdrawals.String())
	assert.True(t, s.Deposits.Equal(decimal.RequireFromString("25000")), s.Deposits.String())
	assert.True(t, s.Uncategorised.Equal(decimal.RequireFromString("50.5")))

	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, "Software", s.ByCategory[0].Category)
	assert.Equal(t, 2, s.ByCategory[0].Count)
	assert.True(t, s.ByCategory[0].Amount.Equal(decimal.RequireFromString("1000.3")))
	assert.Equal(t, "Travel", s.ByCategory[1].Category)
}

func TestSummarize_NoBlock(t *testing.T) {
	s := Summarize(testTable(txnRow(model.Missing(), "", "", "")), testFields, model.DefaultOutputColumns())

	assert.Equal(t, 0, s.Rows)
	assert.True(t, s.Withdrawals.IsZero())
	assert.Empty(t, s.ByCategory)
}

func TestSummarize_Untotalled(t *testing.T) {
	taxonomy := model.FlatTaxonomy{{Name: "Software", Keywords: []string{"aws"}}}
	table := testTable(
		txnRow(model.Text("1"), "aws", "1e400", ""),
		txnRow(model.Text("2"), "aws", "0x1p4", ""),
		txnRow(model.Text("3"), "aws", "25", "inf"),
		txnRow(model.Text("4"), "aws", "n/a", ""),
		txnRow(model.Text("5"), "aws", "10", ""),
	)

	out := model.DefaultOutputColumns()
	s := Summarize(ClassifyWith(table, testFields, taxonomy, out), testFields, out)

	assert.Equal(t, 5, s.Rows)
	assert.Equal(t, 4, s.Business)
	assert.Equal(t, 3, s.Untotalled)
	assert.True(t, s.Withdrawals.Equal(decimal.RequireFromString("35")), s.Withdrawals.String())
	assert.True(t, s.Deposits.IsZero())
}
