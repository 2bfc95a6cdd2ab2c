// Package report presents classification summaries on the terminal and in spreadsheets.
package report

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	"github.com/Veraticus/the-spice-must-tally/internal/cli"
	"github.com/shopspring/decimal"
)

// Render draws summary as a titled box.
func Render(title string, summary classification.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %d\n", cli.BoldStyle.Render("Transactions:"), summary.Rows)
	fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render("Withdrawals: "), money(summary.Withdrawals))
	fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render("Deposits:    "), money(summary.Deposits))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d  %s %d  %s %d\n",
		cli.SuccessStyle.Render("Business"), summary.Business,
		cli.WarningStyle.Render("Uncategorised"), summary.Unmatched,
		cli.SubtleStyle.Render("Other"), summary.NonExpense)

	if len(summary.ByCategory) > 0 {
		b.WriteString("\n")
		b.WriteString(cli.RenderTable(categoryHeader(), categoryCells(summary)))
	}
	if summary.Unmatched > 0 {
		b.WriteString("\n\n")
		b.WriteString(cli.FormatWarning(fmt.Sprintf("%d withdrawals (%s) matched no keyword", summary.Unmatched, money(summary.Uncategorised))))
	}
	if summary.Untotalled > 0 {
		b.WriteString("\n\n")
		b.WriteString(cli.FormatWarning(fmt.Sprintf("%d rows have amounts left out of the totals", summary.Untotalled)))
	}

	return cli.RenderBox(cli.ChartIcon+" "+title, strings.TrimRight(b.String(), "\n"))
}

// Rows lays summary out as spreadsheet rows: totals, then one row per category.
func Rows(summary classification.Summary) [][]any {
	rows := [][]any{
		{"Transactions", summary.Rows},
		{"Withdrawals", money(summary.Withdrawals)},
		{"Deposits", money(summary.Deposits)},
		{"Business", summary.Business},
		{"Uncategorised", summary.Unmatched},
		{"Uncategorised amount", money(summary.Uncategorised)},
		{},
	}

	header := categoryHeader()
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	rows = append(rows, headerRow)

	for _, c := range categoryCells(summary) {
		row := make([]any, len(c))
		for i, v := range c {
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows
}

func categoryHeader() []string {
	return []string{"Category", "Subcategory", "Count", "Amount"}
}

func categoryCells(summary classification.Summary) [][]string {
	cells := make([][]string, 0, len(summary.ByCategory))
	for _, c := range summary.ByCategory {
		cells = append(cells, []string{c.Category, c.Subcategory, fmt.Sprint(c.Count), money(c.Amount)})
	}
	return cells
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
