package edgecodec

import (
	"context"
	"testing"

	"github.com/janelia-flyem/geff/geffio"
	"github.com/janelia-flyem/geff/store"
	"github.com/janelia-flyem/geff/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	edges := []Edge{{SourceNodeID: 0, TargetNodeID: 1, Score: 0.95, Distance: 1.4}}
	require.NoError(t, Write(ctx, st, "", edges, 1000, store.Compression{}))

	got, err := Read(ctx, st, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(0), got[0].ID)
	assert.Equal(t, int32(0), got[0].SourceNodeID)
	assert.Equal(t, int32(1), got[0].TargetNodeID)
	assert.Equal(t, 0.95, got[0].Score)
	assert.Equal(t, 1.4, got[0].Distance)
}

// A self-loop (source == target) round-trips and is flagged valid.
func TestSelfLoopPreserved(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	edges := []Edge{{SourceNodeID: 7, TargetNodeID: 7, Score: -1, Distance: -1}}
	require.NoError(t, Write(ctx, st, "", edges, 1000, store.Compression{}))

	got, err := Read(ctx, st, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsSelfLoop())
	assert.True(t, got[0].Valid())
}

func TestEqualCoversAllStoredFields(t *testing.T) {
	a := Edge{SourceNodeID: 1, TargetNodeID: 2, Score: 0.5, Distance: 1.0}
	b := a
	assert.True(t, a.Equal(b))
	b.Distance = 2.0
	assert.False(t, a.Equal(b))
}

func TestMissingIDsFailsWithMissingRequiredDataset(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	_, err := Read(ctx, st, "")
	assert.IsType(t, geffio.MissingRequiredDataset{}, err)
}

func TestInvalidEdgeDetection(t *testing.T) {
	e := Edge{SourceNodeID: -1, TargetNodeID: 3}
	assert.False(t, e.Valid())
}
