package classification

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// ValidSerial reports whether v parses as a number. Missing cells and NaN are invalid;
// zero is valid.
func ValidSerial(v model.Value) bool {
	if !v.Present {
		return false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}
	return !math.IsNaN(f)
}

// Block locates the transaction block: rows [start, end) are the first contiguous run
// with a valid serial. ok is false when no row has a valid serial.
func Block(table model.Table, serial string) (start, end int, ok bool) {
	start = -1
	for i, row := range table.Rows {
		if ValidSerial(row.Get(serial)) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}

	end = start
	for end < len(table.Rows) && ValidSerial(table.Rows[end].Get(serial)) {
		end++
	}
	return start, end, true
}

// ParseAmount normalizes a withdrawal or deposit cell. Thousands separators and
// surrounding whitespace are stripped; blank or unparseable values are zero.
func ParseAmount(v model.Value) float64 {
	s := normalizeAmount(v)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func normalizeAmount(v model.Value) string {
	if !v.Present {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(v.Text, ",", ""))
}
