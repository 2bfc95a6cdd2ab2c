package model

// ExpenseType is the coarse outcome of classifying a row.
type ExpenseType string

// Expense type constants.
const (
	ExpenseTypeNone          ExpenseType = ""
	ExpenseTypeBusiness      ExpenseType = "Business"
	ExpenseTypeUncategorised ExpenseType = "Uncategorised"
)

// Classification is the per-row result written into the output columns.
// Remarks is reserved for match details and is currently always empty.
type Classification struct {
	Type        ExpenseType
	Category    string
	Subcategory string
	Remarks     string
}

// OutputColumns names the columns a Classification is written to.
type OutputColumns struct {
	Type        string
	Category    string
	Subcategory string
	Remarks     string
}

// DefaultOutputColumns returns the column names used by exported statements.
func DefaultOutputColumns() OutputColumns {
	return OutputColumns{
		Type:        "Expense Type",
		Category:    "Expense Category",
		Subcategory: "Expense Subcategory",
		Remarks:     "Remarks",
	}
}

// Names returns the output column names in export order.
func (c OutputColumns) Names() []string {
	return []string{c.Type, c.Category, c.Subcategory, c.Remarks}
}
