package statements

import "testing"

// Sample returns a statement with one match for several default keywords, an
// unmatched withdrawal, a deposit and the usual title and footer lines.
//
// Classified with model.DefaultTaxonomy the rows come out as:
//
//	1 Business / Software
//	2 Business / Travel
//	3 Uncategorised
//	4 "" (deposit)
//	5 Business / Office Supplies
func Sample(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(t).
		WithTitle("HDFC BANK Ltd.", "Statement of account").
		WithTransaction("UPI-NAIMISH.DG@OKSBI-SUBSCRIPTION", "1,200.00", "").
		WithTransaction("UBER CAB 4471", "350.50", "").
		WithTransaction("POS SWIGGY BANGALORE", "99", "").
		WithTransaction("NEFT CR-ACME CORP SALARY", "", "90,000.00").
		WithTransaction("GOOGLE WORKSPACE", "1,500", "").
		WithFooter("**Closing balance includes funds earmarked for hold**")
}
