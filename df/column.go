package df

import (
	"fmt"
	"strings"
)

// Column is a named Vector.
type Column interface {
	Name() string
	Rename(newName string) error
	DataType() DataTypes
	Len() int
	Data() *Vector
	Copy() Column
	String() string
}

type Col struct {
	name string

	*Vector
}

// ***************** Col - Create *****************

// NewCol creates a column from data, which is either a *Vector or a slice NewVector accepts.
func NewCol(data any, opts ...ColOpt) (*Col, error) {
	var v *Vector
	if vx, ok := data.(*Vector); ok {
		v = vx
	}

	if v == nil {
		var e error
		if v, e = NewVector(data, DTunknown); e != nil {
			return nil, e
		}
	}

	col := &Col{Vector: v}
	for _, opt := range opts {
		if e := opt(col); e != nil {
			return nil, e
		}
	}

	return col, nil
}

// *********** Setters ***********

type ColOpt func(c *Col) error

func ColName(name string) ColOpt {
	return func(c *Col) error {
		if c == nil {
			return fmt.Errorf("nil column to ColName")
		}

		if c.name != "" {
			return fmt.Errorf("column already named -- use Rename method")
		}

		if e := validName(name); e != nil {
			return e
		}

		c.name = name

		return nil
	}
}

// ColDataType converts the column to dt
func ColDataType(dt DataTypes) ColOpt {
	return func(c *Col) error {
		if c == nil {
			return fmt.Errorf("nil column to ColDataType")
		}

		if c.DataType() == dt {
			return nil
		}

		var (
			data any
			e    error
		)
		switch dt {
		case DTfloat:
			data, e = c.AsFloat()
		case DTint:
			data, e = c.AsInt()
		case DTstring:
			data = c.AsString()
		default:
			e = fmt.Errorf("cannot convert column to %s", dt)
		}

		if e != nil {
			return e
		}

		c.Vector = &Vector{dt: dt, data: data}

		return nil
	}
}

// ***************** Col - Methods *****************

func (c *Col) Name() string {
	return c.name
}

func (c *Col) Rename(newName string) error {
	if e := validName(newName); e != nil {
		return e
	}

	c.name = newName

	return nil
}

func (c *Col) DataType() DataTypes {
	return c.VectorType()
}

func (c *Col) Copy() Column {
	return &Col{name: c.name, Vector: c.Vector.Copy()}
}

func (c *Col) String() string {
	const maxRows = 10

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%s, %d rows)\n", c.Name(), c.DataType(), c.Len()))
	for ind := 0; ind < c.Len() && ind < maxRows; ind++ {
		sb.WriteString(fmt.Sprintf("  %v\n", c.Element(ind)))
	}

	if c.Len() > maxRows {
		sb.WriteString("  ...\n")
	}

	return sb.String()
}
