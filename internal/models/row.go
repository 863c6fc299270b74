package models

import (
	"math"
	"strconv"
	"strings"
)

// Row is one data row of a tab, keyed by header name.
// Index is the 1-based sheet row number; row 1 is always the header.
type Row struct {
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields"`
}

// NewRow builds a row from a header and positional values.
// Missing trailing values are stored as empty strings.
func NewRow(index int, header []string, values []string) Row {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(values) {
			fields[h] = values[i]
		} else {
			fields[h] = ""
		}
	}
	return Row{Index: index, Fields: fields}
}

// Get returns a field value and whether the field exists on the row
func (r Row) Get(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Text returns the trimmed value of a field, empty if absent
func (r Row) Text(field string) string {
	return strings.TrimSpace(r.Fields[field])
}

// Float parses a numeric field. Missing, non-numeric and non-finite
// values (NaN, Inf) yield 0.
func (r Row) Float(field string) float64 {
	v, err := strconv.ParseFloat(r.Text(field), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Table is a tab snapshot: header plus data rows in sheet order
type Table struct {
	Name   string   `json:"name"`
	Header []string `json:"header"`
	Rows   []Row    `json:"rows"`
}

// HasColumn reports whether the header contains the named column
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the 0-based index of a column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}
