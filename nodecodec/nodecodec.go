// Package nodecodec reads and writes the node record collection to and
// from nodes/ids and nodes/props/*/values.
// Grounded on the block codec's WriteDense/ReadDense pair and on the
// Flattened view for the matrix-shaped properties (color,
// covariance2d/3d, the 0.4 polygon tables).
package nodecodec

import (
	"context"
	"fmt"

	"github.com/janelia-flyem/geff/blockcodec"
	"github.com/janelia-flyem/geff/geffio"
	"github.com/janelia-flyem/geff/geometry"
	"github.com/janelia-flyem/geff/store"
)

// Node is one node record; fields absent on disk are filled with their
// documented defaults.
type Node struct {
	ID           int32
	T            int32
	X, Y, Z      float64
	Color        [4]float64
	TrackID      int32
	Radius       float64
	Covariance2D [4]float64
	Covariance3D [6]float64
	PolygonX     []float64
	PolygonY     []float64
}

// DefaultColor, DefaultCovariance2D, DefaultCovariance3D and
// DefaultRadius/DefaultTrackID are the per-field fill values applied
// only when a property's entire column is missing on disk.
var (
	DefaultColor        = [4]float64{1, 1, 1, 1}
	DefaultCovariance2D = [4]float64{1, 0, 0, 1}
	DefaultCovariance3D = [6]float64{1, 0, 0, 1, 0, 1}
)

const (
	DefaultRadius  = 1.0
	DefaultTrackID = -1
)

const (
	pathIDs          = "nodes/ids"
	pathT            = "nodes/props/t/values"
	pathX            = "nodes/props/x/values"
	pathY            = "nodes/props/y/values"
	pathZ            = "nodes/props/z/values"
	pathColor        = "nodes/props/color/values"
	pathTrackID      = "nodes/props/track_id/values"
	pathRadius       = "nodes/props/radius/values"
	pathCovariance2D = "nodes/props/covariance2d/values"
	pathCovariance3D = "nodes/props/covariance3d/values"
	pathPolygonSlice = "nodes/props/polygon/slices"
	pathPolygonValue = "nodes/props/polygon/values"
)

func join(group, rel string) string {
	if group == "" {
		return rel
	}
	return group + "/" + rel
}

// Read loads the full node record collection under group. withPolygon
// gates the 0.4-only polygon table per the version gate's
// HasPolygonSupport result.
func Read(ctx context.Context, st store.Store, group string, withPolygon bool) ([]Node, error) {
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
	if len(dims) != 1 {
		return nil, geffio.RankMismatch{Path: idsPath, Expected: 1, Actual: len(dims)}
	}
	n := dims[0]
	ids := blockcodec.BytesToInt32(idsBuf)

	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i].ID = ids[i]
		nodes[i].Color = DefaultColor
		nodes[i].TrackID = DefaultTrackID
		nodes[i].Radius = DefaultRadius
		nodes[i].Covariance2D = DefaultCovariance2D
		nodes[i].Covariance3D = DefaultCovariance3D
	}

	if vals, ok, err := read1DInt32(ctx, st, join(group, pathT), n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			nodes[i].T = vals[i]
		}
	}
	if vals, ok, err := read1DFloat64(ctx, st, join(group, pathX), n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			nodes[i].X = vals[i]
		}
	}
	if vals, ok, err := read1DFloat64(ctx, st, join(group, pathY), n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			nodes[i].Y = vals[i]
		}
	}
	if vals, ok, err := read1DFloat64(ctx, st, join(group, pathZ), n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			nodes[i].Z = vals[i]
		}
	}
	if vals, ok, err := read1DInt32(ctx, st, join(group, pathTrackID), n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			nodes[i].TrackID = vals[i]
		}
	}
	if vals, ok, err := read1DFloat64(ctx, st, join(group, pathRadius), n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			nodes[i].Radius = vals[i]
		}
	}
	if flat, ok, err := readMatrix(ctx, st, join(group, pathColor), 4, n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			row, err := flat.Row(int64(i))
			if err != nil {
				return nil, err
			}
			copy(nodes[i].Color[:], row)
		}
	}
	if flat, ok, err := readMatrix(ctx, st, join(group, pathCovariance2D), 4, n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			row, err := flat.Row(int64(i))
			if err != nil {
				return nil, err
			}
			copy(nodes[i].Covariance2D[:], row)
		}
	}
	if flat, ok, err := readMatrix(ctx, st, join(group, pathCovariance3D), 6, n); err != nil {
		return nil, err
	} else if ok {
		for i := range nodes {
			row, err := flat.Row(int64(i))
			if err != nil {
				return nil, err
			}
			copy(nodes[i].Covariance3D[:], row)
		}
	}

	if withPolygon {
		if err := readPolygons(ctx, st, group, n, nodes); err != nil {
			return nil, err
		}
	}

	return nodes, nil
}

func readPolygons(ctx context.Context, st store.Store, group string, n int64, nodes []Node) error {
	slicePath := join(group, pathPolygonSlice)
	exists, err := st.DatasetExists(ctx, slicePath)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	sliceBuf, sliceDims, err := blockcodec.ReadDense(ctx, st, slicePath, store.Int32)
	if err != nil {
		return err
	}
	if len(sliceDims) != 2 || sliceDims[0] != n || sliceDims[1] != 2 {
		return geffio.RankMismatch{Path: slicePath, Expected: 2, Actual: len(sliceDims)}
	}
	slices := blockcodec.BytesToInt32(sliceBuf)
	// sliceDims = [N, 2] column-major: offset(i,0) = i, offset(i,1) = N+i,
	// so node i's start is at i and its end is at N+i.
	valuesPath := join(group, pathPolygonValue)
	valuesBuf, valuesDims, err := blockcodec.ReadDense(ctx, st, valuesPath, store.Float64)
	if err != nil {
		return err
	}
	if len(valuesDims) != 2 || valuesDims[1] != 2 {
		return geffio.RankMismatch{Path: valuesPath, Expected: 2, Actual: len(valuesDims)}
	}
	flat, err := geometry.NewFlattened(blockcodec.BytesToFloat64(valuesBuf), valuesDims)
	if err != nil {
		return err
	}
	for i := int64(0); i < n; i++ {
		start := int64(slices[i])
		end := int64(slices[n+i])
		xs := make([]float64, 0, end-start)
		ys := make([]float64, 0, end-start)
		for v := start; v < end; v++ {
			x, err := flat.At(v, 0)
			if err != nil {
				return err
			}
			y, err := flat.At(v, 1)
			if err != nil {
				return err
			}
			xs = append(xs, x)
			ys = append(ys, y)
		}
		nodes[i].PolygonX = xs
		nodes[i].PolygonY = ys
	}
	return nil
}

func read1DInt32(ctx context.Context, st store.Store, path string, n int64) ([]int32, bool, error) {
	exists, err := st.DatasetExists(ctx, path)
	if err != nil || !exists {
		return nil, false, err
	}
	buf, dims, err := blockcodec.ReadDense(ctx, st, path, store.Int32)
	if err != nil {
		return nil, false, err
	}
	if len(dims) != 1 {
		return nil, false, geffio.RankMismatch{Path: path, Expected: 1, Actual: len(dims)}
	}
	if dims[0] != n {
		return nil, false, geffio.LengthMismatch{Path: path, Expected: n, Actual: dims[0]}
	}
	return blockcodec.BytesToInt32(buf), true, nil
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

func readMatrix(ctx context.Context, st store.Store, path string, rows, n int64) (geometry.Flattened, bool, error) {
	exists, err := st.DatasetExists(ctx, path)
	if err != nil || !exists {
		return geometry.Flattened{}, false, err
	}
	buf, dims, err := blockcodec.ReadDense(ctx, st, path, store.Float64)
	if err != nil {
		return geometry.Flattened{}, false, err
	}
	if len(dims) != 2 || dims[0] != rows {
		return geometry.Flattened{}, false, geffio.RankMismatch{Path: path, Expected: 2, Actual: len(dims)}
	}
	if dims[1] != n {
		return geometry.Flattened{}, false, geffio.LengthMismatch{Path: path, Expected: n, Actual: dims[1]}
	}
	flat, err := geometry.NewFlattened(blockcodec.BytesToFloat64(buf), dims)
	return flat, true, err
}

// Write projects nodes into per-column buffers and emits them through
// the block codec under group, using chunkSize as the block extent
// along the record axis. withPolygon gates whether the 0.4 polygon
// table is written.
func Write(ctx context.Context, st store.Store, group string, nodes []Node, chunkSize int64, compression store.Compression, withPolygon bool) error {
	n := int64(len(nodes))
	ids := make([]int32, n)
	ts := make([]int32, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	trackIDs := make([]int32, n)
	radii := make([]float64, n)
	colorFlat, err := geometry.NewFlattened(make([]float64, 4*n), []int64{4, n})
	if err != nil {
		return err
	}
	cov2Flat, err := geometry.NewFlattened(make([]float64, 4*n), []int64{4, n})
	if err != nil {
		return err
	}
	cov3Flat, err := geometry.NewFlattened(make([]float64, 6*n), []int64{6, n})
	if err != nil {
		return err
	}

	for i, nd := range nodes {
		ids[i] = nd.ID
		ts[i] = nd.T
		xs[i] = nd.X
		ys[i] = nd.Y
		zs[i] = nd.Z
		trackIDs[i] = nd.TrackID
		radii[i] = nd.Radius
		if err := colorFlat.SetRow(int64(i), nd.Color[:]); err != nil {
			return geffio.InvalidArgument{Reason: fmt.Sprintf("node %d: color: %v", nd.ID, err)}
		}
		if err := cov2Flat.SetRow(int64(i), nd.Covariance2D[:]); err != nil {
			return geffio.InvalidArgument{Reason: fmt.Sprintf("node %d: covariance2d: %v", nd.ID, err)}
		}
		if err := cov3Flat.SetRow(int64(i), nd.Covariance3D[:]); err != nil {
			return geffio.InvalidArgument{Reason: fmt.Sprintf("node %d: covariance3d: %v", nd.ID, err)}
		}
	}

	writes := []struct {
		path  string
		dims  []int64
		block []int64
		dtype store.ElementType
		data  []byte
		src   store.ElementType
	}{
		{join(group, pathIDs), []int64{n}, []int64{chunkSize}, store.Int32, blockcodec.Int32ToBytes(ids), store.Int32},
		{join(group, pathT), []int64{n}, []int64{chunkSize}, store.Int32, blockcodec.Int32ToBytes(ts), store.Int32},
		{join(group, pathX), []int64{n}, []int64{chunkSize}, store.Float64, blockcodec.Float64ToBytes(xs), store.Float64},
		{join(group, pathY), []int64{n}, []int64{chunkSize}, store.Float64, blockcodec.Float64ToBytes(ys), store.Float64},
		{join(group, pathZ), []int64{n}, []int64{chunkSize}, store.Float64, blockcodec.Float64ToBytes(zs), store.Float64},
		{join(group, pathTrackID), []int64{n}, []int64{chunkSize}, store.Int32, blockcodec.Int32ToBytes(trackIDs), store.Int32},
		{join(group, pathRadius), []int64{n}, []int64{chunkSize}, store.Float64, blockcodec.Float64ToBytes(radii), store.Float64},
		{join(group, pathColor), []int64{4, n}, []int64{4, chunkSize}, store.Float64, blockcodec.Float64ToBytes(colorFlat.Buf()), store.Float64},
		{join(group, pathCovariance2D), []int64{4, n}, []int64{4, chunkSize}, store.Float64, blockcodec.Float64ToBytes(cov2Flat.Buf()), store.Float64},
		{join(group, pathCovariance3D), []int64{6, n}, []int64{6, chunkSize}, store.Float64, blockcodec.Float64ToBytes(cov3Flat.Buf()), store.Float64},
	}
	for _, w := range writes {
		if err := blockcodec.WriteDense(ctx, st, w.path, w.dims, w.block, w.dtype, compression, w.data, w.src); err != nil {
			return err
		}
	}

	if withPolygon {
		if err := writePolygons(ctx, st, group, nodes, chunkSize, compression); err != nil {
			return err
		}
	}
	return nil
}

// writePolygons computes the exclusive prefix sum of per-node vertex
// counts into a local array -- never by mutating the node records
// during the loop, which would corrupt later iterations reading the
// same slice.
func writePolygons(ctx context.Context, st store.Store, group string, nodes []Node, chunkSize int64, compression store.Compression) error {
	n := int64(len(nodes))
	prefix := make([]int64, n+1)
	for i, nd := range nodes {
		if len(nd.PolygonX) != len(nd.PolygonY) {
			return geffio.InvalidArgument{Reason: fmt.Sprintf("node %d: polygon_x/polygon_y length mismatch", nd.ID)}
		}
		prefix[i+1] = prefix[i] + int64(len(nd.PolygonX))
	}
	totalVertices := prefix[n]

	// column-major [n,2], the same large-axis-first convention as
	// polygon/values below: offset(i,0) = i, offset(i,1) = n+i, so
	// column 0 holds every node's start and column 1 holds every node's
	// end, each contiguous rather than interleaved.
	slices := make([]int32, 2*n)
	for i := int64(0); i < n; i++ {
		slices[i] = int32(prefix[i])
		slices[n+i] = int32(prefix[i+1])
	}
	if err := blockcodec.WriteDense(ctx, st, join(group, pathPolygonSlice), []int64{n, 2}, []int64{chunkSize, 2}, store.Int32, compression, blockcodec.Int32ToBytes(slices), store.Int32); err != nil {
		return err
	}

	valuesFlat, err := geometry.NewFlattened(make([]float64, totalVertices*2), []int64{totalVertices, 2})
	if err != nil {
		return err
	}
	v := int64(0)
	for _, nd := range nodes {
		for k := range nd.PolygonX {
			if err := valuesFlat.SetAt(nd.PolygonX[k], v, 0); err != nil {
				return err
			}
			if err := valuesFlat.SetAt(nd.PolygonY[k], v, 1); err != nil {
				return err
			}
			v++
		}
	}
	vBlock := chunkSize
	if vBlock > totalVertices && totalVertices > 0 {
		vBlock = totalVertices
	}
	if totalVertices == 0 {
		vBlock = 1
	}
	return blockcodec.WriteDense(ctx, st, join(group, pathPolygonValue), []int64{totalVertices, 2}, []int64{vBlock, 2}, store.Float64, compression, blockcodec.Float64ToBytes(valuesFlat.Buf()), store.Float64)
}
