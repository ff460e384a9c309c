package blockcodec

import (
	"encoding/binary"
	"math"

	"github.com/janelia-flyem/geff/store"
)

// Int32ToBytes encodes a native []int32 slice as little-endian bytes.
func Int32ToBytes(v []int32) []byte {
	b := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(x))
	}
	return b
}

// BytesToInt32 decodes little-endian bytes back into a native []int32 slice.
func BytesToInt32(b []byte) []int32 {
	v := make([]int32, len(b)/4)
	for i := range v {
		v[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// Float64ToBytes encodes a native []float64 slice as little-endian bytes.
func Float64ToBytes(v []float64) []byte {
	b := make([]byte, len(v)*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(x))
	}
	return b
}

// BytesToFloat64 decodes little-endian bytes back into a native []float64 slice.
func BytesToFloat64(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

// Int32ElementType and Float64ElementType name the in-memory element
// types nodecodec/edgecodec project their columns as before handing them
// to WriteDense/ReadDense.
const (
	Int32ElementType   = store.Int32
	Float64ElementType = store.Float64
)
