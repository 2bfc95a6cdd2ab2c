package classification

import (
	"math"
	"sort"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/shopspring/decimal"
)

// CategoryTotal aggregates business withdrawals for one category/subcategory pair.
type CategoryTotal struct {
	Amount      decimal.Decimal
	Category    string
	Subcategory string
	Count       int
}

// Summary describes the classified block of an annotated table.
type Summary struct {
	Withdrawals   decimal.Decimal
	Deposits      decimal.Decimal
	Uncategorised decimal.Decimal
	ByCategory    []CategoryTotal
	Rows          int
	Business      int
	Unmatched     int
	NonExpense    int
	// Untotalled counts rows with an amount that classifies as a number but has no
	// exact decimal value, such as "inf" or "1e400". It is left out of every total.
	Untotalled int
}

// Summarize totals an annotated table produced by ClassifyWith with the same columns.
func Summarize(table model.Table, fields Fields, out model.OutputColumns) Summary {
	s := Summary{
		Withdrawals:   decimal.Zero,
		Deposits:      decimal.Zero,
		Uncategorised: decimal.Zero,
	}

	start, end, ok := Block(table, fields.Serial)
	if !ok {
		return s
	}

	type key struct{ category, subcategory string }
	totals := make(map[key]*CategoryTotal)

	for _, row := range table.Rows[start:end] {
		s.Rows++
		withdrawal, wok := decimalAmount(row.Get(fields.Withdrawal))
		deposit, dok := decimalAmount(row.Get(fields.Deposit))
		if !wok || !dok {
			s.Untotalled++
		}
		s.Withdrawals = s.Withdrawals.Add(withdrawal)
		s.Deposits = s.Deposits.Add(deposit)

		switch model.ExpenseType(row.Get(out.Type).Text) {
		case model.ExpenseTypeBusiness:
			s.Business++
			k := key{row.Get(out.Category).Text, row.Get(out.Subcategory).Text}
			t, found := totals[k]
			if !found {
				t = &CategoryTotal{Category: k.category, Subcategory: k.subcategory, Amount: decimal.Zero}
				totals[k] = t
			}
			t.Count++
			t.Amount = t.Amount.Add(withdrawal)
		case model.ExpenseTypeUncategorised:
			s.Unmatched++
			s.Uncategorised = s.Uncategorised.Add(withdrawal)
		default:
			s.NonExpense++
		}
	}

	s.ByCategory = make([]CategoryTotal, 0, len(totals))
	for _, t := range totals {
		s.ByCategory = append(s.ByCategory, *t)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Subcategory < b.Subcategory
	})

	return s
}

// decimalAmount parses an amount cell exactly. Cells ParseAmount reads as zero are zero.
// ok is false, with a zero amount, when ParseAmount sees a number that cannot be
// totalled: an infinity, or a float form decimal does not accept.
func decimalAmount(v model.Value) (decimal.Decimal, bool) {
	s := normalizeAmount(v)
	if s == "" {
		return decimal.Zero, true
	}
	f := ParseAmount(v)
	if math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, f == 0
	}
	return d, true
}
