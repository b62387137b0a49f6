package df

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Reducer collapses the rows of v listed in each group to one value per group.
// Rows within a group are in input order.
type Reducer func(v *Vector, groups [][]int) (*Vector, error)

// Groups holds the distinct values of a key column and the rows holding each.
type Groups struct {
	Key  *Vector
	Rows [][]int
}

// Group finds the distinct values of column key.  Groups are ordered by ascending key value.
func (df *DF) Group(key string) (*Groups, error) {
	var (
		col Column
		e   error
	)
	if col, e = df.Column(key); e != nil {
		return nil, e
	}

	v := col.Data()

	var (
		index = make(map[any]int)
		first []int
		rows  [][]int
	)

	for row := 0; row < v.Len(); row++ {
		k := v.Element(row)
		g, ok := index[k]
		if !ok {
			g = len(first)
			index[k] = g
			first = append(first, row)
			rows = append(rows, nil)
		}

		rows[g] = append(rows[g], row)
	}

	order := make([]int, len(first))
	for ind := range order {
		order[ind] = ind
	}

	sort.Slice(order, func(i, j int) bool {
		return v.Less(first[order[i]], first[order[j]])
	})

	grp := &Groups{Rows: make([][]int, len(order))}
	keyRows := make([]int, len(order))
	for ind, g := range order {
		grp.Rows[ind] = rows[g]
		keyRows[ind] = first[g]
	}

	grp.Key = v.Where(keyRows)

	return grp, nil
}

// By groups df on key and reduces each of cols with red.  The result has the key column, holding one
// row per distinct key value in ascending order, followed by the reduced cols.  If key appears in cols it
// is not repeated.  Every column is checked before any work is done, so a missing column returns
// a *MissingColumnError and no DF.
func (df *DF) By(key string, red Reducer, cols ...string) (*DF, error) {
	return df.ByAs(key, key, red, cols...)
}

// ByAs is By with the key column of the result named as.  When as differs from key, a key listed in cols
// is reduced like any other column.
func (df *DF) ByAs(key, as string, red Reducer, cols ...string) (*DF, error) {
	if red == nil {
		return nil, fmt.Errorf("nil reducer in By")
	}

	if as == "" {
		return nil, fmt.Errorf("empty key column name in By")
	}

	if e := df.HasColumns(append([]string{key}, cols...)...); e != nil {
		return nil, e
	}

	var (
		grp *Groups
		e   error
	)
	if grp, e = df.Group(key); e != nil {
		return nil, e
	}

	keyCol, _ := NewCol(grp.Key, ColName(as))
	outCols := []Column{keyCol}

	for _, cn := range cols {
		if cn == as {
			if cn == key {
				continue
			}

			return nil, fmt.Errorf("key column name %s is also a reduced column", as)
		}

		col, _ := df.Column(cn)

		var v *Vector
		if v, e = red(col.Data(), grp.Rows); e != nil {
			return nil, fmt.Errorf("column %s: %w", cn, e)
		}

		var out *Col
		if out, e = NewCol(v, ColName(cn)); e != nil {
			return nil, e
		}

		outCols = append(outCols, out)
	}

	return NewDF(outCols...)
}

// Sum adds up the values in each group.  Integer columns stay integer; float columns are
// accumulated exactly and rounded to float64 once per group.  As in pandas, NaN values are skipped,
// a group holding an infinity sums to it and a group holding both infinities sums to NaN.
func Sum(v *Vector, groups [][]int) (*Vector, error) {
	switch v.VectorType() {
	case DTint:
		x := v.AsAny().([]int)
		out := make([]int, len(groups))
		for g, rows := range groups {
			for _, row := range rows {
				out[g] += x[row]
			}
		}

		return NewVector(out, DTint)
	case DTfloat:
		x := v.AsAny().([]float64)
		out := make([]float64, len(groups))
		for g, rows := range groups {
			var (
				total  = decimal.Zero
				posInf bool
				negInf bool
			)
			for _, row := range rows {
				switch {
				case math.IsNaN(x[row]):
					continue
				case math.IsInf(x[row], 1):
					posInf = true
				case math.IsInf(x[row], -1):
					negInf = true
				default:
					total = total.Add(decimal.NewFromFloat(x[row]))
				}
			}

			switch {
			case posInf && negInf:
				out[g] = math.NaN()
			case posInf:
				out[g] = math.Inf(1)
			case negInf:
				out[g] = math.Inf(-1)
			default:
				out[g] = total.InexactFloat64()
			}
		}

		return NewVector(out, DTfloat)
	}

	return nil, fmt.Errorf("cannot sum a %s column", v.VectorType())
}

// First takes the value of the first row of each group.
func First(v *Vector, groups [][]int) (*Vector, error) {
	rows := make([]int, len(groups))
	for g, r := range groups {
		if len(r) == 0 {
			return nil, fmt.Errorf("empty group %d", g)
		}

		rows[g] = r[0]
	}

	return v.Where(rows), nil
}

// NonUniform counts, for each of cols, the groups of key holding more than one distinct value.
// Columns that are constant within every group are left out of the result.
func (df *DF) NonUniform(key string, cols ...string) (map[string]int, error) {
	if e := df.HasColumns(append([]string{key}, cols...)...); e != nil {
		return nil, e
	}

	grp, e := df.Group(key)
	if e != nil {
		return nil, e
	}

	counts := make(map[string]int)
	for _, cn := range cols {
		if cn == key {
			continue
		}

		col, _ := df.Column(cn)
		v := col.Data()

		for _, rows := range grp.Rows {
			for _, row := range rows[1:] {
				if v.Element(row) != v.Element(rows[0]) {
					counts[cn]++
					break
				}
			}
		}
	}

	return counts, nil
}
