package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one CSV record, keyed by the header names.
type Row struct {
	// Columns keeps the header order; names are unique.
	Columns []string
	Values  map[string]string
}

// Get returns the value for the given column.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// ParseRows reads CSV text with a header line into rows.
//
// Records shorter than the header only carry the columns they have, so their
// placeholders stay unsubstituted. Extra fields are named "_<index>". A
// repeated header name keeps the value of its last column.
func ParseRows(sheet string) ([]Row, error) {
	sheet = strings.TrimPrefix(sheet, "\ufeff")
	r := csv.NewReader(strings.NewReader(sheet))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("could not read record: %w", err)
		}
		rows = append(rows, newRow(header, record))
	}
}

func newRow(header, record []string) Row {
	row := Row{
		Values: make(map[string]string, len(record)),
	}
	for i, value := range record {
		name := "_" + strconv.Itoa(i)
		if i < len(header) {
			name = header[i]
		}
		if _, ok := row.Values[name]; !ok {
			row.Columns = append(row.Columns, name)
		}
		row.Values[name] = value
	}
	return row
}
