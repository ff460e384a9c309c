package geometry

import "fmt"

// Flattened wraps a column-major buffer together with its shape and
// exposes element and row/column accessors.  It is used for the
// matrix-shaped node properties (color, covariance2d, covariance3d,
// polygon tables) once they have been read in full by the block codec.
type Flattened struct {
	buf   []float64
	shape []int64
}

// NewFlattened validates that len(buf) == product(shape) before wrapping.
func NewFlattened(buf []float64, shape []int64) (Flattened, error) {
	want := NumElements(shape)
	if int64(len(buf)) != want {
		return Flattened{}, fmt.Errorf("geometry: buffer has %d elements, shape %v wants %d", len(buf), shape, want)
	}
	return Flattened{buf: buf, shape: shape}, nil
}

// Size returns the shape this view was constructed with.
func (f Flattened) Size() []int64 { return f.shape }

// At returns the element at the given column-major index.
func (f Flattened) At(index ...int64) (float64, error) {
	off, err := Offset(f.shape, index)
	if err != nil {
		return 0, err
	}
	return f.buf[off], nil
}

// Row returns the slice [At(0,j), At(1,j), ..., At(shape[0]-1,j)] for a
// 2-D Flattened view, i.e. column j of a [rows, cols] buffer where rows
// is the fast-varying axis. Named Row because a "row" here is one
// node/edge's worth of values across the small leading axis (e.g. the 4
// RGBA components).
func (f Flattened) Row(j int64) ([]float64, error) {
	if len(f.shape) != 2 {
		return nil, fmt.Errorf("geometry: Row requires a 2-D Flattened view, got rank %d", len(f.shape))
	}
	rows := f.shape[0]
	out := make([]float64, rows)
	for i := int64(0); i < rows; i++ {
		v, err := f.At(i, j)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SetRow writes values into column j of a 2-D Flattened view, the write
// side of Row used when projecting per-node/per-edge values into a
// dense matrix buffer before handing it to the block codec.
func (f Flattened) SetRow(j int64, values []float64) error {
	if len(f.shape) != 2 {
		return fmt.Errorf("geometry: SetRow requires a 2-D Flattened view, got rank %d", len(f.shape))
	}
	rows := f.shape[0]
	if int64(len(values)) != rows {
		return fmt.Errorf("geometry: SetRow got %d values, want %d", len(values), rows)
	}
	for i := int64(0); i < rows; i++ {
		off, err := Offset(f.shape, []int64{i, j})
		if err != nil {
			return err
		}
		f.buf[off] = values[i]
	}
	return nil
}

// SetAt writes value at the given column-major index, for shapes where
// the Row/SetRow "small leading axis" convention does not apply (e.g.
// the polygon vertex table's [V,2] layout, where V is the large axis).
func (f Flattened) SetAt(value float64, index ...int64) error {
	off, err := Offset(f.shape, index)
	if err != nil {
		return err
	}
	f.buf[off] = value
	return nil
}

// Buf returns the underlying buffer (no copy) for handing to the block codec.
func (f Flattened) Buf() []float64 { return f.buf }
