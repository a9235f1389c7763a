package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX loads the first sheet of a workbook into a table.
func ReadXLSX(filename string) (*Table, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filename, err)
	}
	defer f.Close()

	return tableFromWorkbook(f, filename)
}

// ParseXLSX reads a workbook from a stream, for uploads.
func ParseXLSX(r io.Reader, source string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()

	return tableFromWorkbook(f, source)
}

func tableFromWorkbook(f *excelize.File, source string) (*Table, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		return &Table{Source: source}, nil
	}

	return &Table{
		Headers: rows[0],
		Rows:    rows[1:],
		Source:  source,
	}, nil
}

// WriteXLSX writes a table to a single-sheet workbook.
func WriteXLSX(t *Table, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := fillWorkbook(f, t); err != nil {
		return err
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", filename, err)
	}
	return nil
}

// WriteXLSXTo streams a workbook, for download responses.
func WriteXLSXTo(t *Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := fillWorkbook(f, t); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func fillWorkbook(f *excelize.File, t *Table) error {
	sheet := f.GetSheetName(0)

	if err := setRow(f, sheet, 1, t.Headers); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, cell := range cells {
		values[i] = cell
	}

	cellName, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
