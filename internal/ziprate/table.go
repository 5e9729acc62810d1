// Package ziprate turns the nationwide ZIP-code rate download into a lookup table.
package ziprate

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table maps a ZIP code to the remaining fields of its CSV row, in column order.
// It is also the on-disk snapshot shape.
type Table map[string][]string

// FromRows builds a table keyed by the first field of each row.
// A ZIP code that appears twice keeps the last row.
func FromRows(rows [][]string) Table {
	table := make(Table, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		fields := make([]string, len(row)-1)
		copy(fields, row[1:])
		table[row[0]] = fields
	}
	return table
}

// ParseCSV decodes a comma-delimited body into rows. Every row is data;
// rows may have different field counts.
func ParseCSV(content []byte) ([][]string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = ','
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// Lookup returns the raw fields for a ZIP code.
func (t Table) Lookup(zip string) ([]string, bool) {
	fields, ok := t[zip]
	return fields, ok
}

// Rate decodes the row for a ZIP code. A row that does not decode wraps ErrCorruptRow.
func (t Table) Rate(zip string) (Rate, bool, error) {
	fields, ok := t.Lookup(zip)
	if !ok {
		return Rate{}, false, nil
	}
	rate, err := ParseRow(zip, fields)
	return rate, true, err
}
