package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fuzzydedup/internal/dedupe"
)

// Result column names appended to exported files.
const (
	GroupColumn = "duplicate_group"
	RowsColumn  = "duplicate_rows"
)

// AppendResults returns a new table with duplicate_group and
// duplicate_rows columns appended. Ungrouped rows get -1 and an empty
// rows cell. Short rows are padded to the header width so the result
// columns align.
func AppendResults(t *Table, assignments []dedupe.Assignment) (*Table, error) {
	if len(assignments) != len(t.Rows) {
		return nil, fmt.Errorf("assignment count %d does not match row count %d",
			len(assignments), len(t.Rows))
	}

	headers := make([]string, 0, len(t.Headers)+2)
	headers = append(headers, t.Headers...)
	headers = append(headers, GroupColumn, RowsColumn)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		padded := make([]string, 0, len(t.Headers)+2)
		padded = append(padded, row...)
		for len(padded) < len(t.Headers) {
			padded = append(padded, "")
		}

		a := assignments[i]
		padded = append(padded, strconv.Itoa(a.GroupID), FormatRows(a.DuplicateRows))
		rows[i] = padded
	}

	return &Table{Headers: headers, Rows: rows, Source: t.Source}, nil
}

// FormatRows renders 1-based duplicate row numbers as "2, 5, 9".
func FormatRows(rows []int) string {
	if len(rows) == 0 {
		return ""
	}
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = strconv.Itoa(row)
	}
	return strings.Join(parts, ", ")
}
