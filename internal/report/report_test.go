package report

import (
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() classification.Summary {
	return classification.Summary{
		Withdrawals:   decimal.RequireFromString("1750.5"),
		Deposits:      decimal.RequireFromString("9000"),
		Uncategorised: decimal.RequireFromString("50.5"),
		ByCategory: []classification.CategoryTotal{
			{Category: "Software", Amount: decimal.RequireFromString("1200"), Count: 2},
			{Category: "Travel", Subcategory: "Cab", Amount: decimal.RequireFromString("500"), Count: 1},
		},
		Rows:       5,
		Business:   3,
		Unmatched:  1,
		NonExpense: 1,
	}
}

func TestRender(t *testing.T) {
	out := Render("march.xlsx", sampleSummary())

	assert.Contains(t, out, "march.xlsx")
	assert.Contains(t, out, "1750.50")
	assert.Contains(t, out, "Software")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "matched no keyword")
}

func TestRender_Empty(t *testing.T) {
	out := Render("empty.csv", classification.Summary{})

	assert.Contains(t, out, "0.00")
	assert.NotContains(t, out, "Category")
	assert.NotContains(t, out, "matched no keyword")
	assert.NotContains(t, out, "left out of the totals")
}

func TestRender_Untotalled(t *testing.T) {
	summary := sampleSummary()
	summary.Untotalled = 2

	assert.Contains(t, Render("march.xlsx", summary), "2 rows have amounts left out of the totals")
}

func TestRows(t *testing.T) {
	rows := Rows(sampleSummary())

	require.Len(t, rows, 10)
	assert.Equal(t, []any{"Transactions", 5}, rows[0])
	assert.Equal(t, []any{"Withdrawals", "1750.50"}, rows[1])
	assert.Equal(t, []any{"Category", "Subcategory", "Count", "Amount"}, rows[7])
	assert.Equal(t, []any{"Travel", "Cab", "1", "500.00"}, rows[9])
}
