package blockcodec

import (
	"context"
	"testing"

	"github.com/janelia-flyem/geff/store"
	"github.com/janelia-flyem/geff/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadDenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	src := make([]int32, 15)
	for i := range src {
		src[i] = int32(i)
	}
	err := WriteDense(ctx, st, "vals", []int64{15}, []int64{4}, store.Int32, store.Compression{}, Int32ToBytes(src), store.Int32)
	require.NoError(t, err)

	got, dims, err := ReadDense(ctx, st, "vals", store.Int32)
	require.NoError(t, err)
	assert.Equal(t, []int64{15}, dims)
	assert.Equal(t, src, BytesToInt32(got))
}

// 15 elements at chunk size 4 produce blocks of sizes 4,4,4,3.
func TestChunkBoundaryBlockSizes(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	src := make([]int32, 15)
	require.NoError(t, WriteDense(ctx, st, "vals", []int64{15}, []int64{4}, store.Int32, store.Compression{}, Int32ToBytes(src), store.Int32))

	attrs, err := st.DatasetAttributes(ctx, "vals")
	require.NoError(t, err)
	wantSizes := []int64{4, 4, 4, 3}
	for i, want := range wantSizes {
		block, err := st.ReadBlock(ctx, "vals", attrs, []int64{int64(i)})
		require.NoError(t, err)
		assert.Equal(t, want, block.Size[0])
	}
}

func TestReadRegionPartial(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	src := make([]float64, 20)
	for i := range src {
		src[i] = float64(i)
	}
	require.NoError(t, WriteDense(ctx, st, "vals", []int64{20}, []int64{6}, store.Float64, store.Compression{}, Float64ToBytes(src), store.Float64))

	attrs, err := st.DatasetAttributes(ctx, "vals")
	require.NoError(t, err)
	region, err := ReadRegion(ctx, st, "vals", attrs, store.Float64, []int64{5}, []int64{9})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 7, 8}, BytesToFloat64(region))
}

func TestCoercionNarrowingAndWidening(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	src := []int64{1, 2, 300, 70000}
	buf := make([]byte, 0, 32)
	for _, v := range src {
		b := make([]byte, 8)
		for i := 0; i < 8; i++ {
			b[i] = byte(v >> (8 * i))
		}
		buf = append(buf, b...)
	}
	require.NoError(t, WriteDense(ctx, st, "vals", []int64{4}, []int64{4}, store.Int32, store.Compression{}, buf, store.Int64))

	narrowed, _, err := ReadDense(ctx, st, "vals", store.Int32)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 300, 70000}, BytesToInt32(narrowed))

	widened, _, err := ReadDense(ctx, st, "vals", store.Float64)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 300, 70000}, BytesToFloat64(widened))
}

func TestTypeMismatchFailsClosed(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.CreateDataset(ctx, "strs", []int64{2}, []int64{2}, store.String, store.Compression{}))
	attrs, _ := st.DatasetAttributes(ctx, "strs")
	require.NoError(t, st.WriteBlock(ctx, "strs", attrs, store.Block{Coord: []int64{0}, Size: []int64{2}, Data: []byte{0, 0}}))

	_, _, err := ReadDense(ctx, st, "strs", store.Int32)
	assert.Error(t, err)
	var tm TypeMismatchError
	assert.ErrorAs(t, err, &tm)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	_, _, err := ReadDense(ctx, st, "nope", store.Int32)
	assert.IsType(t, NotFoundError{}, err)
}
