package localstore

import (
	"context"
	"os"
	"testing"

	"github.com/janelia-flyem/geff/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	dir, err := os.MkdirTemp("", "geff-localstore-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	st, err := New(dir)
	require.NoError(t, err)
	return st
}

func TestCreateDatasetAndRoundTripBlock(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dims := []int64{10}
	blockSize := []int64{4}
	require.NoError(t, st.CreateDataset(ctx, "nodes/ids", dims, blockSize, store.Int32, store.Compression{Name: Blosc}))

	attrs, err := st.DatasetAttributes(ctx, "nodes/ids")
	require.NoError(t, err)
	assert.Equal(t, dims, attrs.Dimensions)

	block := store.Block{Coord: []int64{0}, Size: []int64{4}, Data: []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4, 0, 0, 0}}
	require.NoError(t, st.WriteBlock(ctx, "nodes/ids", attrs, block))

	got, err := st.ReadBlock(ctx, "nodes/ids", attrs, []int64{0})
	require.NoError(t, err)
	assert.Equal(t, block.Data, got.Data)
}

func TestReadUnwrittenBlockZeroFilled(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.CreateDataset(ctx, "nodes/ids", []int64{10}, []int64{4}, store.Int32, store.Compression{}))
	attrs, err := st.DatasetAttributes(ctx, "nodes/ids")
	require.NoError(t, err)

	got, err := st.ReadBlock(ctx, "nodes/ids", attrs, []int64{2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, got.Size) // dataset has 10 elements, block size 4: last block is short
	for _, b := range got.Data {
		assert.Equal(t, byte(0), b)
	}
}

func TestSnappyCompressor(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	attrs := store.DatasetAttributes{Dimensions: []int64{4}, BlockSize: []int64{4}, ElementType: store.Int32, Compression: store.Compression{Name: Snappy}}
	require.NoError(t, st.CreateDataset(ctx, "vals", attrs.Dimensions, attrs.BlockSize, attrs.ElementType, attrs.Compression))

	data := []byte{9, 9, 9, 9, 8, 8, 8, 8, 7, 7, 7, 7, 6, 6, 6, 6}
	require.NoError(t, st.WriteBlock(ctx, "vals", attrs, store.Block{Coord: []int64{0}, Size: []int64{4}, Data: data}))
	got, err := st.ReadBlock(ctx, "vals", attrs, []int64{0})
	require.NoError(t, err)
	assert.Equal(t, data, got.Data)
}

func TestAttributesRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.SetAttribute(ctx, "", "geff", map[string]interface{}{"geff_version": "0.3.0", "directed": true}))

	exists, err := st.GroupExists(ctx, "")
	require.NoError(t, err)
	assert.True(t, exists)

	v, found, err := st.GetAttribute(ctx, "", "geff")
	require.NoError(t, err)
	require.True(t, found)
	asMap, ok := v.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "0.3.0", asMap["geff_version"])
}
