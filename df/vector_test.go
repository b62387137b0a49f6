package df

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVector(t *testing.T) {
	v, e := NewVector([]int{1, 2}, DTunknown)
	assert.Nil(t, e)
	assert.Equal(t, DTint, v.VectorType())
	assert.Equal(t, 2, v.Len())

	_, e = NewVector([]int{1, 2}, DTfloat)
	assert.NotNil(t, e)

	_, e = NewVector([]bool{true}, DTunknown)
	assert.NotNil(t, e)

	_, e = MakeVector(DTany, 3)
	assert.NotNil(t, e)
}

func TestVector_Set(t *testing.T) {
	v, _ := MakeVector(DTfloat, 2)
	assert.Nil(t, v.SetFloat(1.5, 0))
	assert.Nil(t, v.SetAny("2.5", 1))
	assert.Equal(t, []float64{1.5, 2.5}, v.AsAny())
	assert.NotNil(t, v.SetFloat(1, 2))
	assert.NotNil(t, v.SetInt(1, 0))

	s, _ := MakeVector(DTstring, 1)
	assert.Nil(t, s.SetAny(7, 0))
	assert.Equal(t, []string{"7"}, s.AsAny())
}

func TestVector_As(t *testing.T) {
	v, _ := NewVector([]int{1, 2, 3}, DTint)

	f, e := v.AsFloat()
	assert.Nil(t, e)
	assert.Equal(t, []float64{1, 2, 3}, f)
	assert.Equal(t, []string{"1", "2", "3"}, v.AsString())

	s, _ := NewVector([]string{"4", "x"}, DTstring)
	_, e = s.AsInt()
	assert.NotNil(t, e)
}

func TestVector_WhereCopy(t *testing.T) {
	v, _ := NewVector([]string{"a", "b", "c"}, DTstring)
	assert.Equal(t, []string{"c", "a"}, v.Where([]int{2, 0}).AsAny())

	c := v.Copy()
	assert.Nil(t, c.SetString("z", 0))
	assert.Equal(t, "a", v.Element(0))
}

func TestCol_DataType(t *testing.T) {
	c, e := NewCol([]int{1, 2}, ColName("a"), ColDataType(DTfloat))
	assert.Nil(t, e)
	assert.Equal(t, DTfloat, c.DataType())
	assert.Equal(t, []float64{1, 2}, c.Data().AsAny())

	_, e = NewCol([]int{1}, ColName("bad name"))
	assert.NotNil(t, e)

	assert.Nil(t, c.Rename("b"))
	assert.Equal(t, "b", c.Name())
}

func TestDTFromString(t *testing.T) {
	assert.Equal(t, DTfloat, DTFromString("DTfloat"))
	assert.Equal(t, DTunknown, DTFromString("DTnope"))
}

func TestBestType(t *testing.T) {
	assert.Equal(t, DTint, bestType("12"))
	assert.Equal(t, DTint, bestType("-3"))
	assert.Equal(t, DTfloat, bestType("2.5"))
	assert.Equal(t, DTstring, bestType("abc"))
	// too long for an int: keep every digit
	assert.Equal(t, DTstring, bestType("0123456789012345678901"))

	assert.Equal(t, DTfloat, widen(DTint, DTfloat))
	assert.Equal(t, DTstring, widen(DTint, DTstring))
	assert.Equal(t, DTint, widen(DTunknown, DTint))
}
