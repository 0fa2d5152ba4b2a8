// Package sheet reads portal spreadsheet exports into plain text tables and
// writes the merged report workbook.
package sheet

import (
	"strconv"
	"strings"
)

// Table is a header row plus data rows, every cell kept as text. Rows may be
// shorter than Header; missing trailing cells read as "".
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// New builds a Table; header names are trimmed and deduplicated.
func New(header []string, rows [][]string) *Table {
	h := make([]string, len(header))
	for i, name := range header {
		h[i] = strings.TrimSpace(name)
	}
	t := &Table{Header: DedupeColumns(h), Rows: rows}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		if _, ok := t.index[name]; !ok {
			t.index[name] = i
		}
	}
}

// Len is the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	if t == nil {
		return -1
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Cell returns the trimmed value of column col in row r, "" when absent.
func (t *Table) Cell(r int, col int) string {
	if col < 0 || r < 0 || r >= len(t.Rows) {
		return ""
	}
	row := t.Rows[r]
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Get returns the trimmed value of the named column in row r, "" when absent.
func (t *Table) Get(r int, name string) string {
	return t.Cell(r, t.Index(name))
}

// Rename returns a copy of t whose header names are mapped through names; names
// without a mapping are kept. Rows are shared, not copied.
func (t *Table) Rename(names func(string) string) *Table {
	h := make([]string, len(t.Header))
	for i, name := range t.Header {
		h[i] = names(name)
	}
	out := &Table{Header: DedupeColumns(h), Rows: t.Rows}
	out.reindex()
	return out
}

// DedupeColumns suffixes repeated header names with their instance counter:
// "BOL", "BOL" becomes "BOL", "BOL.1". Blank names become "Unnamed: <pos>".
func DedupeColumns(cols []string) []string {
	seen := make(map[string]int, len(cols))
	out := make([]string, 0, len(cols))
	for i, col := range cols {
		if col == "" {
			col = "Unnamed: " + strconv.Itoa(i)
		}
		n, dup := seen[col]
		if !dup {
			seen[col] = 0
			out = append(out, col)
			continue
		}
		n++
		name := col + "." + strconv.Itoa(n)
		for {
			if _, taken := seen[name]; !taken {
				break
			}
			n++
			name = col + "." + strconv.Itoa(n)
		}
		seen[col] = n
		seen[name] = 0
		out = append(out, name)
	}
	return out
}
