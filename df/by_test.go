package df

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personDF(t *testing.T) *DF {
	id, _ := NewCol([]int{3, 1, 3, 2, 1}, ColName("id"))
	n, _ := NewCol([]int{1, 2, 3, 4, 5}, ColName("n"))
	x, _ := NewCol([]float64{0.1, 0.2, 0.2, 1.5, 0.7}, ColName("x"))
	s, _ := NewCol([]string{"p", "q", "r", "s", "q"}, ColName("s"))

	df, e := NewDF(id, n, x, s)
	require.Nil(t, e)

	return df
}

func TestDF_Group(t *testing.T) {
	df := personDF(t)

	grp, e := df.Group("id")
	require.Nil(t, e)
	assert.Equal(t, []int{1, 2, 3}, grp.Key.AsAny())
	assert.Equal(t, [][]int{{1, 4}, {3}, {0, 2}}, grp.Rows)

	_, e = df.Group("nope")
	assert.True(t, IsMissingColumn(e))
}

func TestDF_BySum(t *testing.T) {
	df := personDF(t)

	out, e := df.By("id", Sum, "n", "x", "id")
	require.Nil(t, e)
	assert.Equal(t, []string{"id", "n", "x"}, out.ColumnNames())
	assert.Equal(t, 3, out.RowCount())

	id, _ := out.Column("id")
	n, _ := out.Column("n")
	x, _ := out.Column("x")
	assert.Equal(t, []int{1, 2, 3}, id.Data().AsAny())
	assert.Equal(t, []int{7, 4, 4}, n.Data().AsAny())
	// exact: 0.1 + 0.2 is 0.3, not 0.30000000000000004
	assert.Equal(t, []float64{0.9, 1.5, 0.3}, x.Data().AsAny())

	_, e = df.By("id", Sum, "s")
	assert.NotNil(t, e)
}

func TestDF_ByAs(t *testing.T) {
	df := personDF(t)

	out, e := df.ByAs("id", "unit", Sum, "id", "n")
	require.Nil(t, e)
	assert.Equal(t, []string{"unit", "id", "n"}, out.ColumnNames())

	unit, _ := out.Column("unit")
	id, _ := out.Column("id")
	n, _ := out.Column("n")
	assert.Equal(t, []int{1, 2, 3}, unit.Data().AsAny())
	// the key is summed like any other column
	assert.Equal(t, []int{2, 2, 6}, id.Data().AsAny())
	assert.Equal(t, []int{7, 4, 4}, n.Data().AsAny())

	_, e = df.ByAs("id", "n", Sum, "n")
	assert.NotNil(t, e)

	_, e = df.ByAs("id", "", Sum, "n")
	assert.NotNil(t, e)
}

func TestSum_NonFinite(t *testing.T) {
	x, e := NewVector([]float64{1, math.NaN(), 2, math.Inf(1), 3, math.Inf(1), math.Inf(-1), 4, math.Inf(-1)}, DTfloat)
	require.Nil(t, e)

	out, e := Sum(x, [][]int{{0, 1, 2}, {3, 4}, {5, 6}, {7, 8}})
	require.Nil(t, e)

	got := out.AsAny().([]float64)
	assert.Equal(t, 3.0, got[0])
	assert.True(t, math.IsInf(got[1], 1))
	assert.True(t, math.IsNaN(got[2]))
	assert.True(t, math.IsInf(got[3], -1))
}

func TestDF_ByFirst(t *testing.T) {
	df := personDF(t)

	out, e := df.By("id", First, "s", "n")
	require.Nil(t, e)

	s, _ := out.Column("s")
	n, _ := out.Column("n")
	assert.Equal(t, []string{"q", "s", "p"}, s.Data().AsAny())
	assert.Equal(t, []int{2, 4, 1}, n.Data().AsAny())
}

func TestDF_ByMissing(t *testing.T) {
	df := personDF(t)

	out, e := df.By("id", Sum, "n", "nope")
	assert.Nil(t, out)
	assert.True(t, IsMissingColumn(e))
	assert.Equal(t, "column nope not found", e.Error())

	out, e = df.By("nope", First, "n")
	assert.Nil(t, out)
	assert.True(t, IsMissingColumn(e))

	_, e = df.By("id", nil, "n")
	assert.NotNil(t, e)
}

func TestDF_ByStringKey(t *testing.T) {
	df := personDF(t)

	out, e := df.By("s", Sum, "n")
	require.Nil(t, e)

	s, _ := out.Column("s")
	n, _ := out.Column("n")
	assert.Equal(t, []string{"p", "q", "r", "s"}, s.Data().AsAny())
	assert.Equal(t, []int{1, 7, 3, 4}, n.Data().AsAny())
}

func TestDF_NonUniform(t *testing.T) {
	df := personDF(t)

	counts, e := df.NonUniform("id", "s", "n", "x")
	require.Nil(t, e)
	// id 3 has differing s, n and x; id 1 has differing n and x
	assert.Equal(t, map[string]int{"s": 1, "n": 2, "x": 2}, counts)

	counts, e = df.NonUniform("s", "id")
	require.Nil(t, e)
	assert.Empty(t, counts)

	_, e = df.NonUniform("id", "nope")
	assert.True(t, IsMissingColumn(e))
}
