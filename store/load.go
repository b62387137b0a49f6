package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/invertedv/asec/df"
)

// scan reads rows into a DF. Each column's type is imputed from the values the driver returns;
// NULLs are read as zero values.
func scan(rows *sql.Rows) (*df.DF, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	vals := make([][]any, len(names))
	row2read := make([]any, len(names))
	for ind := range row2read {
		var x any
		row2read[ind] = &x
	}

	for rows.Next() {
		if err := rows.Scan(row2read...); err != nil {
			return nil, err
		}

		for ind := range names {
			vals[ind] = append(vals[ind], normalize(*row2read[ind].(*any)))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var cols []df.Column
	for ind, nm := range names {
		dt := imputeType(vals[ind])

		v, e := df.MakeVector(dt, len(vals[ind]))
		if e != nil {
			return nil, e
		}

		for row, x := range vals[ind] {
			if x == nil {
				continue
			}

			if e := v.SetAny(x, row); e != nil {
				return nil, fmt.Errorf("column %s, row %d: %w", nm, row, e)
			}
		}

		col, e := df.NewCol(v, df.ColName(nm))
		if e != nil {
			return nil, e
		}

		cols = append(cols, col)
	}

	return df.NewDF(cols...)
}

// normalize maps driver values to int, float64, string or nil.  Text protocols (mysql) return numbers as
// []byte, so those are parsed.
func normalize(x any) any {
	switch v := x.(type) {
	case nil:
		return nil
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case string:
		return v
	case []byte:
		s := string(v)
		if i, e := strconv.ParseInt(s, 10, 64); e == nil {
			return int(i)
		}

		if f, e := strconv.ParseFloat(s, 64); e == nil {
			return f
		}

		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

func imputeType(vals []any) df.DataTypes {
	dt := df.DTunknown
	for _, x := range vals {
		xt := df.WhatAmI(x)
		switch {
		case xt == df.DTunknown:
			continue
		case dt == df.DTunknown, dt == xt:
			dt = xt
		case dt.IsNumeric() && xt.IsNumeric():
			dt = df.DTfloat
		default:
			return df.DTstring
		}
	}

	if dt == df.DTunknown {
		// empty or all NULL
		return df.DTstring
	}

	return dt
}
