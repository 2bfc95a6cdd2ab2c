package ingest

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// Default column names of the statement layout the tool was built around.
const (
	DefaultSerialColumn     = "S.N."
	DefaultRemarksColumn    = "Transaction Remarks"
	DefaultWithdrawalColumn = "Withdrawal Amt (INR)"
	DefaultDepositColumn    = "Deposit Amt (INR)"
)

// DefaultFields returns the default column mapping.
func DefaultFields() classification.Fields {
	return classification.Fields{
		Serial:     DefaultSerialColumn,
		Remarks:    DefaultRemarksColumn,
		Withdrawal: DefaultWithdrawalColumn,
		Deposit:    DefaultDepositColumn,
	}
}

// GuessFields maps each field to its preferred column when present and to the first
// column otherwise. Preferred names are tried in order.
func GuessFields(columns []string, preferred ...classification.Fields) classification.Fields {
	if len(preferred) == 0 {
		preferred = []classification.Fields{DefaultFields()}
	}

	pick := func(get func(classification.Fields) string) string {
		for _, p := range preferred {
			if name := get(p); name != "" && contains(columns, name) {
				return name
			}
		}
		if len(columns) > 0 {
			return columns[0]
		}
		return ""
	}

	return classification.Fields{
		Serial:     pick(func(f classification.Fields) string { return f.Serial }),
		Remarks:    pick(func(f classification.Fields) string { return f.Remarks }),
		Withdrawal: pick(func(f classification.Fields) string { return f.Withdrawal }),
		Deposit:    pick(func(f classification.Fields) string { return f.Deposit }),
	}
}

// RequireColumns checks that every mapped field names a column of table.
func RequireColumns(table model.Table, fields classification.Fields) error {
	var missing []string
	for _, name := range fields.Names() {
		if name == "" || !table.HasColumn(name) {
			missing = append(missing, fmt.Sprintf("%q", name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", common.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func contains(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
