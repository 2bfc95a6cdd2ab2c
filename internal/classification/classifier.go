// Package classification implements the row classifier: it locates the transaction
// block inside a loosely structured table and tags each withdrawal with a business
// expense category from the user's keyword taxonomy.
package classification

import (
	"log/slog"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/Veraticus/the-spice-must-tally/internal/pattern"
)

// Fields names the source columns the classifier reads.
type Fields struct {
	Serial     string
	Remarks    string
	Withdrawal string
	Deposit    string
}

// Names returns the mapped columns in serial, remarks, withdrawal, deposit order.
func (f Fields) Names() []string {
	return []string{f.Serial, f.Remarks, f.Withdrawal, f.Deposit}
}

func (f Fields) contains(name string) bool {
	for _, n := range f.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Writable returns out with every column that is also a mapped input field blanked.
// Blank output columns are neither added nor written.
func (f Fields) Writable(out model.OutputColumns) model.OutputColumns {
	blank := func(name string) string {
		if f.contains(name) {
			return ""
		}
		return name
	}
	return model.OutputColumns{
		Type:        blank(out.Type),
		Category:    blank(out.Category),
		Subcategory: blank(out.Subcategory),
		Remarks:     blank(out.Remarks),
	}
}

// Classify annotates table using the default output column names.
func Classify(table model.Table, fields Fields, taxonomy model.Taxonomy) model.Table {
	return ClassifyWith(table, fields, taxonomy, model.DefaultOutputColumns())
}

// ClassifyWith returns a copy of table with the classification columns populated.
//
// Only the first contiguous run of rows with a numeric serial is classified. Rows
// outside it get empty values in newly added output columns and keep whatever an
// existing output column already held. Output columns that coincide with one of the
// mapped input fields are left alone. The input table and taxonomy are not modified.
func ClassifyWith(table model.Table, fields Fields, taxonomy model.Taxonomy, out model.OutputColumns) model.Table {
	result := table.Clone()
	out = fields.Writable(out)

	columns := make([]string, 0, 4)
	var added []string
	for _, name := range out.Names() {
		if name == "" {
			continue
		}
		columns = append(columns, name)
		if !result.HasColumn(name) {
			added = append(added, name)
			result.AddColumn(name)
		}
	}

	// New columns start empty on every row; existing ones keep their values outside the block.
	empty := model.Classification{}
	for _, row := range result.Rows {
		write(row, out, added, empty)
	}

	start, end, ok := Block(table, fields.Serial)
	if !ok {
		slog.Debug("no transaction block found", "serial_column", fields.Serial, "rows", len(table.Rows))
		return result
	}

	matcher := pattern.Compile(taxonomy)
	for i := start; i < end; i++ {
		write(result.Rows[i], out, columns, classifyRow(table.Rows[i], fields, matcher))
	}

	slog.Debug("classified transaction block",
		"start", start,
		"end", end,
		"taxonomy", matcher.Kind())

	return result
}

// classifyRow applies the matching rule to a single in-block row.
func classifyRow(row model.Row, fields Fields, matcher pattern.Matcher) model.Classification {
	if ParseAmount(row.Get(fields.Withdrawal)) <= 0 {
		return model.Classification{}
	}

	remark := row.Get(fields.Remarks)
	if m, ok := matcher.Match(remark.Text); ok {
		return model.Classification{
			Type:        model.ExpenseTypeBusiness,
			Category:    m.Category,
			Subcategory: m.Subcategory,
		}
	}

	return model.Classification{Type: model.ExpenseTypeUncategorised}
}

// write stores c into row for every column in columns.
func write(row model.Row, out model.OutputColumns, columns []string, c model.Classification) {
	for _, name := range columns {
		var v string
		switch name {
		case out.Type:
			v = string(c.Type)
		case out.Category:
			v = c.Category
		case out.Subcategory:
			v = c.Subcategory
		case out.Remarks:
			v = c.Remarks
		}
		row[name] = model.Text(v)
	}
}
