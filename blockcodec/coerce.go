package blockcodec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/janelia-flyem/geff/geometry"
	"github.com/janelia-flyem/geff/store"
)

// decodeFunc reads the element at idx from data (of the given native
// type) and returns it as a canonical int64 (sign- or zero-extended) or
// float64, with isFloat telling the caller which representation is
// meaningful.
type decodeFunc func(data []byte, idx int) (asInt int64, asFloat float64, isFloat bool)

// encodeFunc writes a canonical value into dst at idx, converting from
// whichever representation the source produced.
type encodeFunc func(dst []byte, idx int, asInt int64, asFloat float64, isFloat bool)

var decoders = map[store.ElementType]decodeFunc{
	store.Int8:    func(d []byte, i int) (int64, float64, bool) { return int64(int8(d[i])), 0, false },
	store.Uint8:   func(d []byte, i int) (int64, float64, bool) { return int64(d[i]), 0, false },
	store.Int16:   func(d []byte, i int) (int64, float64, bool) { return int64(int16(binary.LittleEndian.Uint16(d[i*2:]))), 0, false },
	store.Uint16:  func(d []byte, i int) (int64, float64, bool) { return int64(binary.LittleEndian.Uint16(d[i*2:])), 0, false },
	store.Int32:   func(d []byte, i int) (int64, float64, bool) { return int64(int32(binary.LittleEndian.Uint32(d[i*4:]))), 0, false },
	store.Uint32:  func(d []byte, i int) (int64, float64, bool) { return int64(binary.LittleEndian.Uint32(d[i*4:])), 0, false },
	store.Int64:   func(d []byte, i int) (int64, float64, bool) { return int64(binary.LittleEndian.Uint64(d[i*8:])), 0, false },
	store.Uint64:  func(d []byte, i int) (int64, float64, bool) { return int64(binary.LittleEndian.Uint64(d[i*8:])), 0, false },
	store.Float32: func(d []byte, i int) (int64, float64, bool) { return 0, float64(math.Float32frombits(binary.LittleEndian.Uint32(d[i*4:]))), true },
	store.Float64: func(d []byte, i int) (int64, float64, bool) { return 0, math.Float64frombits(binary.LittleEndian.Uint64(d[i*8:])), true },
}

var encoders = map[store.ElementType]encodeFunc{
	store.Int8: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if isFloat {
			v = int64(f)
		}
		dst[i] = byte(int8(v))
	},
	store.Uint8: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if isFloat {
			v = int64(f)
		}
		dst[i] = byte(uint8(v))
	},
	store.Int16: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if isFloat {
			v = int64(f)
		}
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(v)))
	},
	store.Uint16: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if isFloat {
			v = int64(f)
		}
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(v))
	},
	store.Int32: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if isFloat {
			v = int64(f)
		}
		binary.LittleEndian.PutUint32(dst[i*4:], uint32(int32(v)))
	},
	store.Uint32: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if isFloat {
			v = int64(f)
		}
		binary.LittleEndian.PutUint32(dst[i*4:], uint32(v))
	},
	store.Int64: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if isFloat {
			v = int64(f)
		}
		binary.LittleEndian.PutUint64(dst[i*8:], uint64(v))
	},
	store.Uint64: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if isFloat {
			v = int64(f)
		}
		binary.LittleEndian.PutUint64(dst[i*8:], uint64(v))
	},
	store.Float32: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if !isFloat {
			f = float64(v)
		}
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(float32(f)))
	},
	store.Float64: func(dst []byte, i int, v int64, f float64, isFloat bool) {
		if !isFloat {
			f = float64(v)
		}
		binary.LittleEndian.PutUint64(dst[i*8:], math.Float64bits(f))
	},
}

// copyRegion copies the box of extent length, at srcOffset within a
// buffer shaped srcShape (element type srcType), into dst at dstOffset
// within a buffer shaped dstShape (element type dstType), applying
// element-type coercion:
//
//   - numeric narrowing (i64->i32, f64->i32): C-style truncation
//   - widening (i32->f64, f32->f64): exact
//   - unsigned->signed of the same width: value is routed through a
//     canonical int64, never bit-reinterpreted, and is assumed non-negative
//   - any other combination (string/object involved): TypeMismatchError
func copyRegion(srcBuf []byte, srcType store.ElementType, srcShape, srcOffset []int64, dstBuf []byte, dstType store.ElementType, dstShape, dstOffset, length []int64) error {
	decode, ok := decoders[srcType]
	if !ok {
		return TypeMismatchError{Requested: dstType, Actual: srcType}
	}
	encode, ok := encoders[dstType]
	if !ok {
		return TypeMismatchError{Requested: dstType, Actual: srcType}
	}

	rank := len(length)
	idx := make([]int64, rank)
	total := geometry.NumElements(length)
	for n := int64(0); n < total; n++ {
		srcIdx := make([]int64, rank)
		dstIdx := make([]int64, rank)
		for axis := 0; axis < rank; axis++ {
			srcIdx[axis] = srcOffset[axis] + idx[axis]
			dstIdx[axis] = dstOffset[axis] + idx[axis]
		}
		srcOff, err := geometry.Offset(srcShape, srcIdx)
		if err != nil {
			return fmt.Errorf("copyRegion: src: %w", err)
		}
		dstOff, err := geometry.Offset(dstShape, dstIdx)
		if err != nil {
			return fmt.Errorf("copyRegion: dst: %w", err)
		}
		asInt, asFloat, isFloat := decode(srcBuf, int(srcOff))
		encode(dstBuf, int(dstOff), asInt, asFloat, isFloat)

		for axis := 0; axis < rank; axis++ {
			idx[axis]++
			if idx[axis] < length[axis] {
				break
			}
			idx[axis] = 0
		}
	}
	return nil
}
