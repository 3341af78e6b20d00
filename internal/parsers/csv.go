// Package parsers turns tabular files into raw rows for the importer.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"bookbatch/internal/importer"
)

// ParseCSV reads a CSV document into raw rows keyed by header name. Header
// names are lowercased and trimmed. Malformed lines are collected as
// per-line errors without aborting the parse; only an unreadable header is
// fatal.
func ParseCSV(r io.Reader) ([]importer.RawRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []importer.RawRow
	var parseErrors []string
	lineNum := 1 // Start at 1 because we already read the header

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("Line %d: %v", lineNum, err))
			continue
		}

		row := make(importer.RawRow, len(columns))
		for i, column := range columns {
			if column == "" {
				continue
			}
			if i < len(record) {
				row[column] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, parseErrors, nil
}
