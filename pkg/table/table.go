// Package table assembles tab-separated search results into an ordered
// in-memory table. Pages are parsed individually and appended in arrival
// order; the column set comes from the response header row, not a fixed
// schema.
package table

import (
	"encoding/csv"
	"strings"
)

// Row is a single result record, keyed by column name.
type Row map[string]string

// Table is an ordered sequence of rows accumulated across pages.
type Table struct {
	// Columns in first-seen order across all appended pages.
	Columns []string

	// Rows in page-arrival order.
	Rows []Row

	// TotalResults is the server-reported total match count
	// (X-Total-Results header), 0 when the server did not report one.
	TotalResults int
}

// New creates an empty table.
func New() *Table {
	return &Table{}
}

// Len returns the number of accumulated rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Append merges one page of parsed rows into the table. Column names not
// seen before are added to the column set; rows keep their arrival order.
func (t *Table) Append(columns []string, rows []Row) {
	for _, col := range columns {
		if !t.hasColumn(col) {
			t.Columns = append(t.Columns, col)
		}
	}
	t.Rows = append(t.Rows, rows...)
}

func (t *Table) hasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// ParseTSV parses one page body of tab-separated text. The first line names
// the columns; each following line is one row. Malformed or empty bodies
// yield an empty row set rather than an error, so a bad page never corrupts
// the accumulated table. Ragged lines are tolerated: missing cells become
// empty strings, surplus cells are dropped.
func ParseTSV(body string) ([]string, []Row) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err != nil {
			// EOF or a malformed line; keep what parsed so far
			break
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return header, rows
}
