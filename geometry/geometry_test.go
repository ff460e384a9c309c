package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property: block count is ceil(D/B), the final block is short by the
// correct amount, and the union of block intervals exactly covers
// [0,D) without overlap.
func TestBlockGeometryProperty(t *testing.T) {
	g, err := NewGrid([]int64{15}, []int64{4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), g.BlockCount(0))

	blocks := g.AllBlocks()
	require.Len(t, blocks, 4)
	wantSizes := []int64{4, 4, 4, 3}
	var covered int64
	for i, bl := range blocks {
		assert.Equal(t, wantSizes[i], bl.Size()[0])
		covered += bl.Size()[0]
	}
	assert.Equal(t, int64(15), covered)
	assert.Equal(t, int64(0), blocks[0].Beg[0])
	assert.Equal(t, int64(15), blocks[3].End[0])
}

func TestBlocksIntersecting(t *testing.T) {
	g, err := NewGrid([]int64{10, 10}, []int64{4, 4})
	require.NoError(t, err)
	blocks, err := g.BlocksIntersecting([]int64{3, 3}, []int64{5, 5})
	require.NoError(t, err)
	// region [3,5)x[3,5) straddles the block boundary at 4 on both axes, so
	// it touches the four blocks at grid coordinates (0,0), (0,1), (1,0), (1,1).
	assert.NotEmpty(t, blocks)
	for _, bl := range blocks {
		_, _, _, ok := Intersect(bl, []int64{3, 3}, []int64{5, 5})
		assert.True(t, ok)
	}
}

func TestIntersectNoOverlap(t *testing.T) {
	bl := Block{Coord: []int64{0}, Beg: []int64{0}, End: []int64{4}}
	_, _, _, ok := Intersect(bl, []int64{10}, []int64{20})
	assert.False(t, ok)
}

// Column-major linearization from first principles:
// offset(i0,...,in-1) = i0 + D0*i1 + D0*D1*i2 + ...
func TestOffsetColumnMajor(t *testing.T) {
	shape := []int64{3, 4}
	off, err := Offset(shape, []int64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2+3*1), off)
}

func TestOffsetOutOfRange(t *testing.T) {
	_, err := Offset([]int64{3}, []int64{3})
	assert.Error(t, err)
}

func TestFlattenedRowAndAt(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5, 6, 7, 8} // shape [4,2] column-major
	flat, err := NewFlattened(buf, []int64{4, 2})
	require.NoError(t, err)

	col0, err := flat.Row(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, col0)

	v, err := flat.At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, float64(6), v)
}

func TestFlattenedSetRowAndSetAt(t *testing.T) {
	buf := make([]float64, 8)
	flat, err := NewFlattened(buf, []int64{4, 2})
	require.NoError(t, err)
	require.NoError(t, flat.SetRow(1, []float64{10, 20, 30, 40}))
	col1, err := flat.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30, 40}, col1)

	vflat, err := NewFlattened(make([]float64, 6), []int64{3, 2})
	require.NoError(t, err)
	require.NoError(t, vflat.SetAt(5, 2, 1))
	v, err := vflat.At(2, 1)
	require.NoError(t, err)
	assert.Equal(t, float64(5), v)
}
