package df

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DF is the data: an ordered list of equal-length, uniquely named columns.
type DF struct {
	head    *columnList
	current *columnList

	by []*Vector
}

type columnList struct {
	col Column

	prior *columnList
	next  *columnList
}

// MissingColumnError is returned whenever a named column is not in the DF.
type MissingColumnError struct {
	Name string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %s not found", e.Name)
}

// IsMissingColumn reports whether err is, or wraps, a *MissingColumnError
func IsMissingColumn(err error) bool {
	var mc *MissingColumnError
	return errors.As(err, &mc)
}

func NewDF(cols ...Column) (*DF, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns in NewDF")
	}

	var names []string
	for _, c := range cols {
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("length mismatch: %s has %d rows, %s has %d",
				cols[0].Name(), cols[0].Len(), c.Name(), c.Len())
		}

		names = append(names, c.Name())
	}

	if dups := duplicates(names); dups != nil {
		return nil, fmt.Errorf("duplicate column names: %s", strings.Join(dups, ","))
	}

	var head, priorNode *columnList
	for ind := 0; ind < len(cols); ind++ {
		node := &columnList{
			col: cols[ind],

			prior: priorNode,
			next:  nil,
		}

		if priorNode != nil {
			priorNode.next = node
		}

		priorNode = node

		if ind == 0 {
			head = node
		}
	}

	return &DF{head: head}, nil
}

///////////// DF methods

// Next iterates through the columns. Start with reset=true; a nil return means done.
func (df *DF) Next(reset bool) Column {
	if reset || df.current == nil {
		df.current = df.head
		return df.current.col
	}

	if df.current.next == nil {
		df.current = nil
		return nil
	}

	df.current = df.current.next
	return df.current.col
}

func (df *DF) RowCount() int {
	if df.head == nil {
		return 0
	}

	return df.head.col.Len()
}

func (df *DF) ColumnCount() int {
	cols := 0
	for c := df.head; c != nil; c = c.next {
		cols++
	}

	return cols
}

func (df *DF) ColumnNames() []string {
	var names []string

	for h := df.head; h != nil; h = h.next {
		names = append(names, h.col.Name())
	}

	return names
}

func (df *DF) ColumnTypes() []DataTypes {
	var dts []DataTypes

	for h := df.head; h != nil; h = h.next {
		dts = append(dts, h.col.DataType())
	}

	return dts
}

func (df *DF) Column(colName string) (col Column, err error) {
	var node *columnList
	if node, err = df.node(colName); err != nil {
		return nil, err
	}

	return node.col, nil
}

// HasColumns returns a *MissingColumnError for the first of colNames not in df
func (df *DF) HasColumns(colNames ...string) error {
	for _, cn := range colNames {
		if _, e := df.node(cn); e != nil {
			return e
		}
	}

	return nil
}

func (df *DF) AppendColumn(col Column) error {
	if has(col.Name(), df.ColumnNames()) {
		return fmt.Errorf("duplicate column name: %s", col.Name())
	}

	if col.Len() != df.RowCount() {
		return fmt.Errorf("length mismatch: DF - %d, append col - %d", df.RowCount(), col.Len())
	}

	var tail *columnList
	for tail = df.head; tail.next != nil; tail = tail.next {
	}

	tail.next = &columnList{
		col:   col,
		prior: tail,
		next:  nil,
	}

	return nil
}

func (df *DF) node(colName string) (node *columnList, err error) {
	for h := df.head; h != nil; h = h.next {
		if h.col.Name() == colName {
			return h, nil
		}
	}

	return nil, &MissingColumnError{Name: colName}
}

func (df *DF) DropColumns(colNames ...string) error {
	if e := df.HasColumns(colNames...); e != nil {
		return e
	}

	for _, cName := range colNames {
		node, _ := df.node(cName)

		if node == df.head {
			if df.head.next == nil {
				return fmt.Errorf("cannot drop %s: no columns left", cName)
			}

			df.head = df.head.next
			df.head.prior = nil
			continue
		}

		node.prior.next = node.next
		if node.next != nil {
			node.next.prior = node.prior
		}
	}

	df.current = nil

	return nil
}

// KeepColumns returns a new DF of colNames, in that order.  The columns are shared with df, not copied.
func (df *DF) KeepColumns(colNames ...string) (*DF, error) {
	var cols []Column

	for ind := 0; ind < len(colNames); ind++ {
		var (
			col Column
			err error
		)

		if col, err = df.Column(colNames[ind]); err != nil {
			return nil, err
		}

		cols = append(cols, col)
	}

	return NewDF(cols...)
}

// Row returns the values of row indx across all columns
func (df *DF) Row(indx int) ([]any, error) {
	if indx < 0 || indx >= df.RowCount() {
		return nil, fmt.Errorf("row %d out of range", indx)
	}

	var row []any
	for h := df.head; h != nil; h = h.next {
		row = append(row, h.col.Data().Element(indx))
	}

	return row, nil
}

// Sort sorts the rows of df in ascending order of keys, in place.  Ties keep their relative order.
func (df *DF) Sort(keys ...string) error {
	var by []*Vector

	for ind := 0; ind < len(keys); ind++ {
		var (
			x Column
			e error
		)

		if x, e = df.Column(keys[ind]); e != nil {
			return e
		}

		by = append(by, x.Data())
	}

	df.by = by
	defer func() { df.by = nil }()

	// sort a permutation rather than the columns so every column moves the same way
	perm := make([]int, df.RowCount())
	for ind := range perm {
		perm[ind] = ind
	}

	sort.SliceStable(perm, func(i, j int) bool {
		return df.less(perm[i], perm[j])
	})

	for h := df.head; h != nil; h = h.next {
		if c, ok := h.col.(*Col); ok {
			c.Vector = c.Vector.Where(perm)
			continue
		}

		return fmt.Errorf("cannot sort column %s of type %T", h.col.Name(), h.col)
	}

	return nil
}

func (df *DF) less(i, j int) bool {
	for _, v := range df.by {
		if v.Less(i, j) {
			return true
		}

		if v.Less(j, i) {
			return false
		}

		// equal -- keep checking
	}

	return false
}

func (df *DF) String() string {
	const maxRows = 10

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d rows x %d columns\n", df.RowCount(), df.ColumnCount()))
	sb.WriteString(strings.Join(df.ColumnNames(), "\t") + "\n")
	for ind := 0; ind < df.RowCount() && ind < maxRows; ind++ {
		row, _ := df.Row(ind)
		var vals []string
		for _, x := range row {
			vals = append(vals, toString(x))
		}

		sb.WriteString(strings.Join(vals, "\t") + "\n")
	}

	return sb.String()
}
