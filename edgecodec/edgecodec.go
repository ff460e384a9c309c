// Package edgecodec reads and writes the edge record collection to and
// from edges/ids (a [2,E] column-major matrix) and the optional
// edges/props/{distance,score}/values columns.
package edgecodec

import (
	"context"

	"github.com/janelia-flyem/geff/blockcodec"
	"github.com/janelia-flyem/geff/geffio"
	"github.com/janelia-flyem/geff/store"
)

// Edge is one edge record. ID is the sequential index within the
// record list, assigned on read and never persisted.
type Edge struct {
	ID                         int64
	SourceNodeID, TargetNodeID int32
	Score, Distance            float64
}

const (
	DefaultScore    = -1.0
	DefaultDistance = -1.0
)

const (
	pathIDs      = "edges/ids"
	pathDistance = "edges/props/distance/values"
	pathScore    = "edges/props/score/values"
)

func join(group, rel string) string {
	if group == "" {
		return rel
	}
	return group + "/" + rel
}

// Valid reports whether an edge's endpoints are both non-negative.
func (e Edge) Valid() bool { return e.SourceNodeID >= 0 && e.TargetNodeID >= 0 }

// IsSelfLoop reports whether source and target coincide.
func (e Edge) IsSelfLoop() bool { return e.SourceNodeID == e.TargetNodeID }

// Equal compares all stored fields -- source, target, score, distance.
// ID (the derived sequential index) is excluded since it is
// positional, not stored.
func (e Edge) Equal(o Edge) bool {
	return e.SourceNodeID == o.SourceNodeID &&
		e.TargetNodeID == o.TargetNodeID &&
		e.Score == o.Score &&
		e.Distance == o.Distance
}

// Read loads the full edge record collection under group.
func Read(ctx context.Context, st store.Store, group string) ([]Edge, error) {
	idsPath := join(group, pathIDs)
	exists, err := st.DatasetExists(ctx, idsPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, geffio.MissingRequiredDataset{Path: idsPath}
	}
	idsBuf, dims, err := blockcodec.ReadDense(ctx, st, idsPath, store.Int32)
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 || dims[0] != 2 {
		return nil, geffio.RankMismatch{Path: idsPath, Expected: 2, Actual: len(dims)}
	}
	e := dims[1]
	ids := blockcodec.BytesToInt32(idsBuf)

	edges := make([]Edge, e)
	for i := int64(0); i < e; i++ {
		// column-major [2,E]: offset(i0,i1) = i0 + 2*i1.
		edges[i].ID = i
		edges[i].SourceNodeID = ids[2*i]
		edges[i].TargetNodeID = ids[2*i+1]
		edges[i].Score = DefaultScore
		edges[i].Distance = DefaultDistance
	}

	if vals, ok, err := read1DFloat64(ctx, st, join(group, pathDistance), e); err != nil {
		return nil, err
	} else if ok {
		for i := range edges {
			edges[i].Distance = vals[i]
		}
	}
	if vals, ok, err := read1DFloat64(ctx, st, join(group, pathScore), e); err != nil {
		return nil, err
	} else if ok {
		for i := range edges {
			edges[i].Score = vals[i]
		}
	}
	return edges, nil
}

func read1DFloat64(ctx context.Context, st store.Store, path string, n int64) ([]float64, bool, error) {
	exists, err := st.DatasetExists(ctx, path)
	if err != nil || !exists {
		return nil, false, err
	}
	buf, dims, err := blockcodec.ReadDense(ctx, st, path, store.Float64)
	if err != nil {
		return nil, false, err
	}
	if len(dims) != 1 {
		return nil, false, geffio.RankMismatch{Path: path, Expected: 1, Actual: len(dims)}
	}
	if dims[0] != n {
		return nil, false, geffio.LengthMismatch{Path: path, Expected: n, Actual: dims[0]}
	}
	return blockcodec.BytesToFloat64(buf), true, nil
}

// Write projects edges into the ids matrix and the optional distance and
// score columns, then emits them through the block codec under group.
func Write(ctx context.Context, st store.Store, group string, edges []Edge, chunkSize int64, compression store.Compression) error {
	e := int64(len(edges))
	ids := make([]int32, 2*e)
	distances := make([]float64, e)
	scores := make([]float64, e)
	for i, ed := range edges {
		ids[2*i] = ed.SourceNodeID
		ids[2*i+1] = ed.TargetNodeID
		distances[i] = ed.Distance
		scores[i] = ed.Score
	}

	if err := blockcodec.WriteDense(ctx, st, join(group, pathIDs), []int64{2, e}, []int64{2, chunkSize}, store.Int32, compression, blockcodec.Int32ToBytes(ids), store.Int32); err != nil {
		return err
	}
	if err := blockcodec.WriteDense(ctx, st, join(group, pathDistance), []int64{e}, []int64{chunkSize}, store.Float64, compression, blockcodec.Float64ToBytes(distances), store.Float64); err != nil {
		return err
	}
	return blockcodec.WriteDense(ctx, st, join(group, pathScore), []int64{e}, []int64{chunkSize}, store.Float64, compression, blockcodec.Float64ToBytes(scores), store.Float64)
}
