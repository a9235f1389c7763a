package tabular

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fuzzydedup/internal/normalize"
)

// Table is an in-memory tabular dataset: a header row plus data rows in
// original order. Row i of a loaded file is record i for the engine and
// row number i+1 in user-facing output.
type Table struct {
	Headers []string
	Rows    [][]string
	Source  string
}

// RecordTexts returns the comparable text for every row, in row order.
func (t *Table) RecordTexts() []string {
	return normalize.RecordTexts(t.Rows)
}

// NewTableFromValues builds a table from raw cell values, coercing each
// cell to text. Used for JSON uploads where cells arrive as numbers,
// booleans or nulls.
func NewTableFromValues(headers []string, rows [][]interface{}) *Table {
	converted := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, value := range row {
			cells[j] = normalize.CellText(value)
		}
		converted[i] = cells
	}
	return &Table{Headers: headers, Rows: converted}
}

// ReadFile loads a CSV or XLSX file based on its extension.
func ReadFile(filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(filename)
	case ".xlsx":
		return ReadXLSX(filename)
	default:
		return nil, fmt.Errorf("unsupported file type %q: expected .csv or .xlsx", filepath.Ext(filename))
	}
}

// WriteFile writes a CSV or XLSX file based on its extension.
func WriteFile(t *Table, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return WriteCSV(t, filename)
	case ".xlsx":
		return WriteXLSX(t, filename)
	default:
		return fmt.Errorf("unsupported file type %q: expected .csv or .xlsx", filepath.Ext(filename))
	}
}
