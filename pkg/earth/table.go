package earth

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sudorandom/earth-viz/pkg/sources"
)

// Table is the marker description table: one row per marker, one cell per
// configured column. Clicking a header sorts by that column; clicking it again
// reverses the order.
type Table struct {
	ID      string
	Columns []string
	Rows    [][]string
	Visible bool

	sortCol int
	desc    bool
}

func NewTable(id string, columns []string) *Table {
	return &Table{ID: id, Columns: append([]string(nil), columns...), sortCol: -1}
}

// AddRow appends a row, padding or truncating it to the number of columns.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Records returns the rows keyed by column name.
func (t *Table) Records() []sources.Record {
	out := make([]sources.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(sources.Record, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(row) {
				rec[c] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Sort orders the rows by the named column. Cells that both parse as numbers compare
// numerically, anything else compares as case-insensitive text.
func (t *Table) Sort(column string) bool {
	col := -1
	for i, c := range t.Columns {
		if strings.EqualFold(c, column) {
			col = i
			break
		}
	}
	if col < 0 {
		return false
	}
	if col == t.sortCol {
		t.desc = !t.desc
	} else {
		t.sortCol, t.desc = col, false
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		if t.desc {
			return cellLess(t.Rows[j][col], t.Rows[i][col])
		}
		return cellLess(t.Rows[i][col], t.Rows[j][col])
	})
	return true
}

// SortedBy returns the sort column and whether the order is descending.
func (t *Table) SortedBy() (string, bool) {
	if t.sortCol < 0 {
		return "", false
	}
	return t.Columns[t.sortCol], t.desc
}

func cellLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// LoadTable uses an existing table as the marker source. The table is kept across
// redraws and its rows become the marker records.
func (e *Earth) LoadTable(t *Table) {
	if t == nil {
		return
	}
	e.table = t
	e.tableProvided = true
	if t.ID != "" {
		e.markerDataID = t.ID
	}
	e.SetMarkerData(t.Records())
}

// Table returns the description table, or nil when none has been built.
func (e *Earth) Table() *Table { return e.table }

func (e *Earth) buildTable() *Table {
	id := e.markerDataID
	if id == "" {
		id = e.id + "-markers-table"
	}
	t := NewTable(id, e.columns)
	for _, m := range e.markers {
		cells := make([]string, len(e.columns))
		for i, c := range e.columns {
			cells[i], _ = field(m.Record, c)
		}
		t.AddRow(cells...)
	}
	return t
}
