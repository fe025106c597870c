package df

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Table is an ordered set of named columns of equal length. Methods never modify the receiver;
// those that change the table return a new one. Columns that are unchanged may be shared between
// tables, so a Col that belongs to a Table must not be altered.
type Table struct {
	cols []*Col
}

// NewTable creates a table. It requires at least one column, unique names and equal lengths.
func NewTable(cols ...*Col) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns in NewTable")
	}

	for _, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("nil column in NewTable")
		}
	}

	rowCount := cols[0].Len()
	var names []string
	for ind := 0; ind < len(cols); ind++ {
		if e := validName(cols[ind].Name()); e != nil {
			return nil, e
		}

		if has(cols[ind].Name(), names) {
			return nil, fmt.Errorf("duplicate column name: %s", cols[ind].Name())
		}

		if cols[ind].Len() != rowCount {
			return nil, fmt.Errorf("length mismatch: column %s has %d rows, expected %d",
				cols[ind].Name(), cols[ind].Len(), rowCount)
		}

		names = append(names, cols[ind].Name())
	}

	return &Table{cols: append([]*Col(nil), cols...)}, nil
}

// mustTable is for internal use where the invariants are known to hold.
func mustTable(cols ...*Col) *Table {
	t, e := NewTable(cols...)
	if e != nil {
		panic(e)
	}

	return t
}

func (t *Table) RowCount() int {
	return t.cols[0].Len()
}

func (t *Table) ColumnCount() int {
	return len(t.cols)
}

func (t *Table) ColumnNames() []string {
	var names []string
	for _, c := range t.cols {
		names = append(names, c.Name())
	}

	return names
}

// Column returns the column colName, nil if there is no such column.
func (t *Table) Column(colName string) *Col {
	for _, c := range t.cols {
		if c.Name() == colName {
			return c
		}
	}

	return nil
}

// Columns returns the columns in order.
func (t *Table) Columns() []*Col {
	return append([]*Col(nil), t.cols...)
}

// Floats returns the data of colName as []float64.
func (t *Table) Floats(colName string) ([]float64, error) {
	c := t.Column(colName)
	if c == nil {
		return nil, fmt.Errorf("column %s not found", colName)
	}

	return c.AsFloat()
}

// Strings returns the data of colName as []string.
func (t *Table) Strings(colName string) ([]string, error) {
	c := t.Column(colName)
	if c == nil {
		return nil, fmt.Errorf("column %s not found", colName)
	}

	return c.AsString()
}

// Copy is a deep copy.
func (t *Table) Copy() *Table {
	var cols []*Col
	for _, c := range t.cols {
		cols = append(cols, c.Copy())
	}

	return mustTable(cols...)
}

// Row returns the values of row ind.
func (t *Table) Row(ind int) []any {
	var row []any
	for _, c := range t.cols {
		row = append(row, c.Element(ind))
	}

	return row
}

// KeepColumns returns a table with only colNames, in that order.
func (t *Table) KeepColumns(colNames ...string) (*Table, error) {
	var cols []*Col
	for _, cn := range colNames {
		c := t.Column(cn)
		if c == nil {
			return nil, fmt.Errorf("column %s not found", cn)
		}

		cols = append(cols, c)
	}

	return NewTable(cols...)
}

func (t *Table) DropColumns(colNames ...string) (*Table, error) {
	for _, cn := range colNames {
		if t.Column(cn) == nil {
			return nil, fmt.Errorf("column %s not found", cn)
		}
	}

	var cols []*Col
	for _, c := range t.cols {
		if !has(c.Name(), colNames) {
			cols = append(cols, c)
		}
	}

	if cols == nil {
		return nil, fmt.Errorf("no columns left")
	}

	return NewTable(cols...)
}

// AppendColumn adds col at the end. If a column of the same name exists it is replaced in place
// when replace is true and is an error otherwise.
func (t *Table) AppendColumn(col *Col, replace bool) (*Table, error) {
	if col.Len() != t.RowCount() {
		return nil, fmt.Errorf("length mismatch: table - %d, append col - %d", t.RowCount(), col.Len())
	}

	cols := t.Columns()
	if pos := position(col.Name(), t.ColumnNames()); pos >= 0 {
		if !replace {
			return nil, fmt.Errorf("duplicate column name: %s", col.Name())
		}

		cols[pos] = col

		return NewTable(cols...)
	}

	return NewTable(append(cols, col)...)
}

func (t *Table) Rename(oldName, newName string) (*Table, error) {
	pos := position(oldName, t.ColumnNames())
	if pos < 0 {
		return nil, fmt.Errorf("column %s not found", oldName)
	}

	if oldName != newName && t.Column(newName) != nil {
		return nil, fmt.Errorf("column %s already exists, cannot Rename", newName)
	}

	var (
		c *Col
		e error
	)
	if c, e = t.cols[pos].Renamed(newName); e != nil {
		return nil, e
	}

	cols := t.Columns()
	cols[pos] = c

	return NewTable(cols...)
}

// Rows returns the rows at indx, in that order.
func (t *Table) Rows(indx []int) *Table {
	var cols []*Col
	for _, c := range t.cols {
		cols = append(cols, &Col{Vector: c.Gather(indx), name: c.Name()})
	}

	return mustTable(cols...)
}

// Where keeps the rows for which keep is true.
func (t *Table) Where(keep []bool) (*Table, error) {
	if len(keep) != t.RowCount() {
		return nil, fmt.Errorf("Where: indicator has %d rows, table has %d", len(keep), t.RowCount())
	}

	var indx []int
	for ind, k := range keep {
		if k {
			indx = append(indx, ind)
		}
	}

	return t.Rows(indx), nil
}

// Sort sorts on keys. The sort is stable.
func (t *Table) Sort(ascending bool, keys ...string) (*Table, error) {
	var by []*Col
	for _, k := range keys {
		c := t.Column(k)
		if c == nil {
			return nil, fmt.Errorf("column %s not found", k)
		}

		by = append(by, c)
	}

	indx := make([]int, t.RowCount())
	for ind := range indx {
		indx[ind] = ind
	}

	sort.SliceStable(indx, func(i, j int) bool {
		a, b := indx[i], indx[j]
		for _, c := range by {
			if c.Less(a, b) {
				return ascending
			}

			if c.Less(b, a) {
				return !ascending
			}
			// equal -- keep checking
		}

		return false
	})

	return t.Rows(indx), nil
}

// rowKey is a string that is equal for two rows exactly when their values are.
func (t *Table) rowKey(ind int, colNames ...string) string {
	var parts []string
	for _, c := range t.cols {
		if colNames != nil && !has(c.Name(), colNames) {
			continue
		}

		el := c.Element(ind)
		if f, ok := el.(float64); ok && math.IsNaN(f) {
			parts = append(parts, "NaN")
			continue
		}

		parts = append(parts, fmt.Sprintf("%v", el))
	}

	return strings.Join(parts, "\x00")
}

// Distinct removes rows that exactly duplicate an earlier row.
func (t *Table) Distinct() *Table {
	seen := make(map[string]bool)
	var indx []int
	for ind := 0; ind < t.RowCount(); ind++ {
		k := t.rowKey(ind)
		if seen[k] {
			continue
		}

		seen[k] = true
		indx = append(indx, ind)
	}

	return t.Rows(indx)
}

// SumBy groups on key and sums cols within each group. Missing values are skipped. The output is
// sorted by key and the sums are DTfloat.
func (t *Table) SumBy(key string, cols ...string) (*Table, error) {
	kc := t.Column(key)
	if kc == nil {
		return nil, fmt.Errorf("column %s not found", key)
	}

	var vals [][]float64
	for _, cn := range cols {
		var (
			x []float64
			e error
		)
		if x, e = t.Floats(cn); e != nil {
			return nil, e
		}

		vals = append(vals, x)
	}

	groups := make(map[string]int)
	var (
		first []int
		sums  [][]float64
	)
	for ind := 0; ind < t.RowCount(); ind++ {
		k := t.rowKey(ind, key)
		g, ok := groups[k]
		if !ok {
			g = len(first)
			groups[k] = g
			first = append(first, ind)
			sums = append(sums, make([]float64, len(cols)))
		}

		for c := range cols {
			if v := vals[c][ind]; !math.IsNaN(v) {
				sums[g][c] += v
			}
		}
	}

	outCols := []*Col{{Vector: kc.Gather(first), name: key}}
	for c, cn := range cols {
		x := make([]float64, len(first))
		for g := range first {
			x[g] = sums[g][c]
		}

		outCols = append(outCols, &Col{Vector: &Vector{dt: DTfloat, data: x}, name: cn})
	}

	var (
		out *Table
		e   error
	)
	if out, e = NewTable(outCols...); e != nil {
		return nil, e
	}

	return out.Sort(true, key)
}

// Join is an inner join on the column on. Rows are in the order of the receiver; a key that
// matches several rows of right produces one row for each. Apart from on, column names must
// not overlap.
func (t *Table) Join(right *Table, on string) (*Table, error) {
	lk, rk := t.Column(on), right.Column(on)
	if lk == nil || rk == nil {
		return nil, fmt.Errorf("join column %s missing", on)
	}

	if lk.DataType() != rk.DataType() {
		return nil, fmt.Errorf("join column %s has types %s and %s", on, lk.DataType(), rk.DataType())
	}

	for _, cn := range right.ColumnNames() {
		if cn != on && t.Column(cn) != nil {
			return nil, fmt.Errorf("column %s on both sides of join", cn)
		}
	}

	rightRows := make(map[string][]int)
	for ind := 0; ind < right.RowCount(); ind++ {
		k := right.rowKey(ind, on)
		rightRows[k] = append(rightRows[k], ind)
	}

	var lIndx, rIndx []int
	for ind := 0; ind < t.RowCount(); ind++ {
		for _, r := range rightRows[t.rowKey(ind, on)] {
			lIndx = append(lIndx, ind)
			rIndx = append(rIndx, r)
		}
	}

	cols := t.Rows(lIndx).Columns()
	rt := right.Rows(rIndx)
	for _, c := range rt.cols {
		if c.Name() != on {
			cols = append(cols, c)
		}
	}

	return NewTable(cols...)
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	n = min(n, t.RowCount())
	indx := make([]int, n)
	for ind := range indx {
		indx[ind] = ind
	}

	return t.Rows(indx)
}

func (t *Table) String() string {
	const maxRows = 10

	h := t.Head(maxRows)
	var data []any
	for _, c := range h.cols {
		data = append(data, c.AsAny())
	}

	out := prettyPrint(h.ColumnNames(), data...)
	if t.RowCount() > maxRows {
		out += fmt.Sprintf("... %d rows x %d columns\n", t.RowCount(), t.ColumnCount())
	}

	return out
}
