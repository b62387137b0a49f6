package df

import (
	"fmt"
)

type Vector struct {
	dt DataTypes

	data any
}

// NewVector wraps data, which must be a []int, []float64 or []string.  The slice is not copied.
func NewVector(data any, dt DataTypes) (*Vector, error) {
	if dt == DTunknown {
		dt = WhatAmI(data)
	}

	if dt == DTunknown || WhatAmI(data) != dt {
		return nil, fmt.Errorf("cannot make vector of type %s from %T", dt, data)
	}

	return &Vector{dt: dt, data: data}, nil
}

func MakeVector(dt DataTypes, n int) (*Vector, error) {
	switch dt {
	case DTfloat:
		return &Vector{dt: dt, data: make([]float64, n)}, nil
	case DTint:
		return &Vector{dt: dt, data: make([]int, n)}, nil
	case DTstring:
		return &Vector{dt: dt, data: make([]string, n)}, nil
	default:
		return nil, fmt.Errorf("cannot make Vector with data type %s", dt)
	}
}

func (v *Vector) VectorType() DataTypes {
	return v.dt
}

func (v *Vector) Len() int {
	switch v.dt {
	case DTfloat:
		return len(v.data.([]float64))
	case DTint:
		return len(v.data.([]int))
	case DTstring:
		return len(v.data.([]string))
	default:
		return 0
	}
}

func (v *Vector) Data() *Vector {
	return v
}

func (v *Vector) AsAny() any {
	return v.data
}

func (v *Vector) SetFloat(val float64, indx int) error {
	if v.dt != DTfloat {
		return fmt.Errorf("vector isn't DTfloat")
	}

	if indx < 0 || indx >= v.Len() {
		return fmt.Errorf("index %d out of range", indx)
	}

	v.data.([]float64)[indx] = val

	return nil
}

func (v *Vector) SetInt(val, indx int) error {
	if v.dt != DTint {
		return fmt.Errorf("vector isn't DTint")
	}

	if indx < 0 || indx >= v.Len() {
		return fmt.Errorf("index %d out of range", indx)
	}

	v.data.([]int)[indx] = val

	return nil
}

func (v *Vector) SetString(val string, indx int) error {
	if v.dt != DTstring {
		return fmt.Errorf("vector isn't DTstring")
	}

	if indx < 0 || indx >= v.Len() {
		return fmt.Errorf("index %d out of range", indx)
	}

	v.data.([]string)[indx] = val

	return nil
}

// SetAny converts val to the vector's type and stores it at indx
func (v *Vector) SetAny(val any, indx int) error {
	x, e := toDataType(val, v.dt)
	if e != nil {
		return e
	}

	switch v.dt {
	case DTfloat:
		return v.SetFloat(x.(float64), indx)
	case DTint:
		return v.SetInt(x.(int), indx)
	case DTstring:
		return v.SetString(x.(string), indx)
	}

	return fmt.Errorf("unsupported data type %s in SetAny", v.dt)
}

func (v *Vector) AsFloat() ([]float64, error) {
	switch v.dt {
	case DTfloat:
		return v.data.([]float64), nil
	case DTint:
		xOut := make([]float64, v.Len())
		for ind, xx := range v.data.([]int) {
			xOut[ind] = float64(xx)
		}

		return xOut, nil
	case DTstring:
		xOut := make([]float64, v.Len())
		for ind, xx := range v.data.([]string) {
			var e error
			if xOut[ind], e = toFloat(xx); e != nil {
				return nil, e
			}
		}

		return xOut, nil
	}

	return nil, fmt.Errorf("cannot convert %s to float", v.dt)
}

func (v *Vector) AsInt() ([]int, error) {
	switch v.dt {
	case DTint:
		return v.data.([]int), nil
	case DTfloat:
		xOut := make([]int, v.Len())
		for ind, xx := range v.data.([]float64) {
			xOut[ind] = int(xx)
		}

		return xOut, nil
	case DTstring:
		xOut := make([]int, v.Len())
		for ind, xx := range v.data.([]string) {
			var e error
			if xOut[ind], e = toInt(xx); e != nil {
				return nil, e
			}
		}

		return xOut, nil
	}

	return nil, fmt.Errorf("cannot convert %s to int", v.dt)
}

func (v *Vector) AsString() []string {
	if v.dt == DTstring {
		return v.data.([]string)
	}

	xOut := make([]string, v.Len())
	for ind := 0; ind < v.Len(); ind++ {
		xOut[ind] = toString(v.Element(ind))
	}

	return xOut
}

func (v *Vector) Element(indx int) any {
	switch v.dt {
	case DTfloat:
		return v.data.([]float64)[indx]
	case DTint:
		return v.data.([]int)[indx]
	case DTstring:
		return v.data.([]string)[indx]
	default:
		return nil
	}
}

func (v *Vector) Copy() *Vector {
	var copied any
	switch v.dt {
	case DTfloat:
		copied = append([]float64(nil), v.data.([]float64)...)
	case DTint:
		copied = append([]int(nil), v.data.([]int)...)
	case DTstring:
		copied = append([]string(nil), v.data.([]string)...)
	}

	return &Vector{dt: v.dt, data: copied}
}

// Where returns a new vector holding the elements at rows, in that order
func (v *Vector) Where(rows []int) *Vector {
	out, _ := MakeVector(v.dt, len(rows))
	for ind, row := range rows {
		switch v.dt {
		case DTfloat:
			out.data.([]float64)[ind] = v.data.([]float64)[row]
		case DTint:
			out.data.([]int)[ind] = v.data.([]int)[row]
		case DTstring:
			out.data.([]string)[ind] = v.data.([]string)[row]
		}
	}

	return out
}

// Less compares elements i and j strictly
func (v *Vector) Less(i, j int) bool {
	switch v.dt {
	case DTfloat:
		return v.data.([]float64)[i] < v.data.([]float64)[j]
	case DTint:
		return v.data.([]int)[i] < v.data.([]int)[j]
	case DTstring:
		return v.data.([]string)[i] < v.data.([]string)[j]
	default:
		return false
	}
}
