// Package importer reads the delimited tables and the replacement table a run consumes.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter separates columns in every table. It is not a comma
// because free-text fields contain commas.
const DefaultDelimiter = ';'

// ErrBadDelimiter is returned for a comma or multi-rune delimiter.
var ErrBadDelimiter = errors.New("delimiter must be a single non-comma character")

// ParseDelimiter validates a configured delimiter.
func ParseDelimiter(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, ErrBadDelimiter
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == ',' || r == '"' || r == '\n' || r == '\r' {
		return 0, ErrBadDelimiter
	}
	return r, nil
}

// Record is one data row keyed by column name. Line is the 1-based line of the
// row in the file, header included.
type Record struct {
	Line  int
	Cells map[string]string
}

// Get returns the named cell, "" if the column is missing.
func (r Record) Get(col string) string {
	return r.Cells[col]
}

// ReadTable reads a delimited table with a header row. Short rows leave the
// missing trailing columns empty; extra cells are ignored.
func ReadTable(r io.Reader, delim rune) ([]string, []Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		cells := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(row) {
				cells[col] = row[i]
			} else {
				cells[col] = ""
			}
		}
		records = append(records, Record{Line: line, Cells: cells})
	}
	return cols, records, nil
}

// requireColumns fails when any of want is missing from the header.
func requireColumns(cols []string, want ...string) error {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	var missing []string
	for _, w := range want {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")
