package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ReadCSV loads a CSV file into a table. The first row is the header.
func ReadCSV(filename string) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	table, err := ParseCSV(file, filename)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// ParseCSV reads CSV data from a stream. Rows may have varying field
// counts; short rows are kept as-is and padded only at export time.
func ParseCSV(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{Source: source}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Headers: header, Source: source}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// WriteCSV writes a table to a CSV file, header first.
func WriteCSV(t *Table, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	return WriteCSVTo(t, file)
}

// WriteCSVTo streams CSV output, for download responses.
func WriteCSVTo(t *Table, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
