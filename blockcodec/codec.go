// Package blockcodec implements the dense <-> chunked shuttle between an
// in-memory buffer over a rectangular region and a store.Store's block
// grid, plus element-type coercion between on-disk and in-memory numeric
// types. Coercion uses a small set of typed element-copy primitives: a
// decoder for the source type and an encoder for the destination type,
// looked up once per block copy rather than per element.
package blockcodec

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/janelia-flyem/geff/geometry"
	"github.com/janelia-flyem/geff/glog"
	"github.com/janelia-flyem/geff/store"
)

// NotFoundError reports a missing dataset.
type NotFoundError struct{ Path string }

func (e NotFoundError) Error() string { return fmt.Sprintf("blockcodec: dataset not found: %s", e.Path) }

// RankMismatchError reports a dataset whose rank does not match what the caller expected.
type RankMismatchError struct {
	Path     string
	Expected int
	Actual   int
}

func (e RankMismatchError) Error() string {
	return fmt.Sprintf("blockcodec: %s: expected rank %d, got %d", e.Path, e.Expected, e.Actual)
}

// TypeMismatchError reports a coercion the codec refuses to perform.
type TypeMismatchError struct {
	Path      string
	Requested store.ElementType
	Actual    store.ElementType
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("blockcodec: %s: cannot coerce %s to %s", e.Path, e.Actual, e.Requested)
}

// BlockIOError wraps a store error encountered while reading or writing one block.
type BlockIOError struct {
	Path  string
	Coord []int64
	Cause error
}

func (e BlockIOError) Error() string {
	return fmt.Sprintf("blockcodec: %s: block %v: %v", e.Path, e.Coord, e.Cause)
}

func (e BlockIOError) Unwrap() error { return e.Cause }

// WriteDense creates a dataset at path with the given block size and
// element type, then splits src (a dense column-major buffer over shape
// dims, elements of srcType) into blocks and writes them in
// lexicographic grid order.
func WriteDense(ctx context.Context, st store.Store, path string, dims, blockSize []int64, dstType store.ElementType, compression store.Compression, src []byte, srcType store.ElementType) error {
	if err := st.CreateDataset(ctx, path, dims, blockSize, dstType, compression); err != nil {
		return fmt.Errorf("blockcodec: creating dataset %s: %w", path, err)
	}
	grid, err := geometry.NewGrid(dims, blockSize)
	if err != nil {
		return err
	}
	attrs := store.DatasetAttributes{Dimensions: dims, BlockSize: blockSize, ElementType: dstType, Compression: compression}
	tlog := glog.NewTimeLog()
	for _, bl := range grid.AllBlocks() {
		blockBuf := make([]byte, bl.NumElements()*int64(store.ElementSize(dstType)))
		if err := copyRegion(src, srcType, dims, bl.Beg, blockBuf, dstType, bl.Size(), zeros(len(bl.Beg)), bl.Size()); err != nil {
			return fmt.Errorf("blockcodec: %s: %w", path, err)
		}
		block := store.Block{Coord: bl.Coord, Size: bl.Size(), Data: blockBuf}
		if err := st.WriteBlock(ctx, path, attrs, block); err != nil {
			return BlockIOError{Path: path, Coord: bl.Coord, Cause: err}
		}
	}
	tlog.Infof("wrote dataset %s: %s in %d blocks", path, humanize.Bytes(uint64(geometry.NumElements(dims)*int64(store.ElementSize(dstType)))), grid.NumBlocks())
	return nil
}

// ReadDense reads the full dataset at path, coercing its on-disk element
// type to dstType, and returns the dense column-major buffer together
// with the dataset's dimensions.
func ReadDense(ctx context.Context, st store.Store, path string, dstType store.ElementType) ([]byte, []int64, error) {
	exists, err := st.DatasetExists(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, NotFoundError{Path: path}
	}
	attrs, err := st.DatasetAttributes(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	buf, err := ReadRegion(ctx, st, path, attrs, dstType, zeros(len(attrs.Dimensions)), attrs.Dimensions)
	if err != nil {
		return nil, nil, err
	}
	return buf, attrs.Dimensions, nil
}

// ReadRegion reads the requested half-open region [regionBeg,regionEnd)
// of the dataset at path, coercing to dstType.  The same intersection
// logic handles both a full-dataset read (region == dataset extents) and
// a genuine subregion read.
func ReadRegion(ctx context.Context, st store.Store, path string, attrs store.DatasetAttributes, dstType store.ElementType, regionBeg, regionEnd []int64) ([]byte, error) {
	if len(regionBeg) != len(attrs.Dimensions) {
		return nil, RankMismatchError{Path: path, Expected: len(attrs.Dimensions), Actual: len(regionBeg)}
	}
	regionShape := make([]int64, len(regionBeg))
	for i := range regionShape {
		regionShape[i] = regionEnd[i] - regionBeg[i]
	}
	dst := make([]byte, geometry.NumElements(regionShape)*int64(store.ElementSize(dstType)))

	grid, err := geometry.NewGrid(attrs.Dimensions, attrs.BlockSize)
	if err != nil {
		return nil, err
	}
	blocks, err := grid.BlocksIntersecting(regionBeg, regionEnd)
	if err != nil {
		return nil, err
	}
	for _, bl := range blocks {
		block, err := st.ReadBlock(ctx, path, attrs, bl.Coord)
		if err != nil {
			return nil, BlockIOError{Path: path, Coord: bl.Coord, Cause: err}
		}
		srcOff, dstOff, length, ok := geometry.Intersect(bl, regionBeg, regionEnd)
		if !ok {
			continue
		}
		if err := copyRegion(block.Data, attrs.ElementType, bl.Size(), srcOff, dst, dstType, regionShape, dstOff, length); err != nil {
			return nil, fmt.Errorf("blockcodec: %s: %w", path, err)
		}
	}
	return dst, nil
}

func zeros(n int) []int64 { return make([]int64, n) }
