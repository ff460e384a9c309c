// Package geometry implements the block-grid arithmetic shared by every
// dataset the block codec touches: computing how many blocks cover a
// dataset, the extent of any one block (accounting for a short final
// block), and the intersection of a block's covered interval with an
// arbitrary requested region.  It also implements the column-major
// Flattened view over a fully-read dense buffer.
//
// Column-major linearization is derived from first principles here
// rather than adapted from any buggy precedent: offset(i0,...,in-1) in a
// buffer of shape (D0,...,Dn-1) is i0 + D0*i1 + D0*D1*i2 + ...
package geometry

import "fmt"

// Grid describes a dataset's dimensions and block size; both are
// same-rank tuples.
type Grid struct {
	Dimensions []int64
	BlockSize  []int64
}

// NewGrid validates rank agreement and strictly positive block extents.
func NewGrid(dimensions, blockSize []int64) (Grid, error) {
	if len(dimensions) != len(blockSize) {
		return Grid{}, fmt.Errorf("geometry: rank mismatch, %d dimensions vs %d block-size entries", len(dimensions), len(blockSize))
	}
	for i, b := range blockSize {
		if b <= 0 {
			return Grid{}, fmt.Errorf("geometry: block size at axis %d must be positive, got %d", i, b)
		}
	}
	return Grid{Dimensions: dimensions, BlockSize: blockSize}, nil
}

// Rank returns the number of dimensions.
func (g Grid) Rank() int { return len(g.Dimensions) }

// BlockCount returns the number of blocks along axis i: ceil(Di/Bi).
func (g Grid) BlockCount(axis int) int64 {
	d, b := g.Dimensions[axis], g.BlockSize[axis]
	n := d / b
	if d%b != 0 {
		n++
	}
	return n
}

// GridShape returns the block count along every axis.
func (g Grid) GridShape() []int64 {
	shape := make([]int64, g.Rank())
	for i := range shape {
		shape[i] = g.BlockCount(i)
	}
	return shape
}

// NumBlocks returns the total number of blocks covering the dataset.
func (g Grid) NumBlocks() int64 {
	n := int64(1)
	for i := 0; i < g.Rank(); i++ {
		n *= g.BlockCount(i)
	}
	return n
}

// BlockExtent returns the covered half-open interval [beg, end) along
// axis for the block at grid coordinate gi.  The final block along an
// axis may be short; the returned extent reflects that, never a padded
// full-size block.
func (g Grid) BlockExtent(axis int, gi int64) (beg, end int64) {
	b := g.BlockSize[axis]
	beg = gi * b
	end = beg + b
	if d := g.Dimensions[axis]; end > d {
		end = d
	}
	return
}

// Block is one block's address and covered region across all axes.
type Block struct {
	Coord []int64 // grid coordinate
	Beg   []int64 // inclusive start, per axis, in dataset coordinates
	End   []int64 // exclusive end, per axis, in dataset coordinates
}

// Size returns the block's extent per axis (End[i]-Beg[i]).
func (bl Block) Size() []int64 {
	sz := make([]int64, len(bl.Beg))
	for i := range sz {
		sz[i] = bl.End[i] - bl.Beg[i]
	}
	return sz
}

// NumElements returns the product of the block's per-axis extents.
func (bl Block) NumElements() int64 {
	n := int64(1)
	for _, s := range bl.Size() {
		n *= s
	}
	return n
}

// AllBlocks enumerates every block in the grid in lexicographic grid
// order (axis 0 slowest-varying), giving the same block sequence every
// time for a given dimensions/block-size pair.
func (g Grid) AllBlocks() []Block {
	shape := g.GridShape()
	total := g.NumBlocks()
	blocks := make([]Block, 0, total)
	coord := make([]int64, g.Rank())
	for i := int64(0); i < total; i++ {
		bl := g.blockAt(coord)
		blocks = append(blocks, bl)
		for axis := g.Rank() - 1; axis >= 0; axis-- {
			coord[axis]++
			if coord[axis] < shape[axis] {
				break
			}
			coord[axis] = 0
		}
	}
	return blocks
}

func (g Grid) blockAt(coord []int64) Block {
	beg := make([]int64, g.Rank())
	end := make([]int64, g.Rank())
	c := make([]int64, g.Rank())
	copy(c, coord)
	for axis := 0; axis < g.Rank(); axis++ {
		beg[axis], end[axis] = g.BlockExtent(axis, coord[axis])
	}
	return Block{Coord: c, Beg: beg, End: end}
}

// BlocksIntersecting enumerates, in lexicographic grid order, every
// block whose covered region intersects the requested half-open region
// [regionBeg, regionEnd).
func (g Grid) BlocksIntersecting(regionBeg, regionEnd []int64) ([]Block, error) {
	if len(regionBeg) != g.Rank() || len(regionEnd) != g.Rank() {
		return nil, fmt.Errorf("geometry: region rank mismatch with grid rank %d", g.Rank())
	}
	gridBeg := make([]int64, g.Rank())
	gridEnd := make([]int64, g.Rank())
	for axis := 0; axis < g.Rank(); axis++ {
		gridBeg[axis] = regionBeg[axis] / g.BlockSize[axis]
		last := regionEnd[axis] - 1
		if last < regionBeg[axis] {
			return []Block{}, nil
		}
		gridEnd[axis] = last/g.BlockSize[axis] + 1
	}
	var out []Block
	shape := make([]int64, g.Rank())
	for axis := range shape {
		shape[axis] = gridEnd[axis] - gridBeg[axis]
	}
	total := int64(1)
	for _, s := range shape {
		total *= s
	}
	coord := make([]int64, g.Rank())
	for i := int64(0); i < total; i++ {
		abs := make([]int64, g.Rank())
		for axis := range abs {
			abs[axis] = gridBeg[axis] + coord[axis]
		}
		out = append(out, g.blockAt(abs))
		for axis := g.Rank() - 1; axis >= 0; axis-- {
			coord[axis]++
			if coord[axis] < shape[axis] {
				break
			}
			coord[axis] = 0
		}
	}
	return out, nil
}

// Intersect computes the overlap between a block's covered region and an
// arbitrary requested region, returning the per-axis source offset
// (relative to the block's own origin), destination offset (relative to
// the requested region's origin), and length of the overlap.  A nil
// returned slice (ok=false) means no overlap.
func Intersect(block Block, regionBeg, regionEnd []int64) (srcOff, dstOff, length []int64, ok bool) {
	rank := len(block.Beg)
	srcOff = make([]int64, rank)
	dstOff = make([]int64, rank)
	length = make([]int64, rank)
	for axis := 0; axis < rank; axis++ {
		beg := max64(block.Beg[axis], regionBeg[axis])
		end := min64(block.End[axis], regionEnd[axis])
		if end <= beg {
			return nil, nil, nil, false
		}
		srcOff[axis] = beg - block.Beg[axis]
		dstOff[axis] = beg - regionBeg[axis]
		length[axis] = end - beg
	}
	return srcOff, dstOff, length, true
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Strides returns the column-major strides for a buffer of the given
// shape: Strides[0] = 1, Strides[i] = Strides[i-1]*shape[i-1].
func Strides(shape []int64) []int64 {
	s := make([]int64, len(shape))
	if len(shape) == 0 {
		return s
	}
	s[0] = 1
	for i := 1; i < len(shape); i++ {
		s[i] = s[i-1] * shape[i-1]
	}
	return s
}

// Offset returns the column-major linear offset of index within a buffer
// of the given shape.
func Offset(shape, index []int64) (int64, error) {
	if len(shape) != len(index) {
		return 0, fmt.Errorf("geometry: index rank %d does not match shape rank %d", len(index), len(shape))
	}
	strides := Strides(shape)
	var off int64
	for i, idx := range index {
		if idx < 0 || idx >= shape[i] {
			return 0, fmt.Errorf("geometry: index %d out of range [0,%d) at axis %d", idx, shape[i], i)
		}
		off += strides[i] * idx
	}
	return off, nil
}

// NumElements returns the product of shape's entries.
func NumElements(shape []int64) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}
