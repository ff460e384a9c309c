// Package memstore is an in-memory store.Store used by geff's own tests
// and as a runnable reference implementation of the block-store
// abstraction, grounded on the minimal-interface style of
// storage/keyvalue_dummy.go.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/janelia-flyem/geff/store"
)

type dataset struct {
	attrs  store.DatasetAttributes
	blocks map[string][]byte // grid-coord key -> block bytes
	sizes  map[string][]int64
}

// Store is a map-backed store.Store. Zero value is not usable; use New.
type Store struct {
	mu       sync.Mutex
	datasets map[string]*dataset
	attrs    map[string]store.Attributes
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		datasets: make(map[string]*dataset),
		attrs:    make(map[string]store.Attributes),
	}
}

func coordKey(coord []int64) string {
	return fmt.Sprint(coord)
}

func groupOf(path string) string {
	// The group attribute document for a dataset path lives at the
	// nearest containing group; geff always calls Attributes/SetAttribute
	// with a group path distinct from any dataset path, so this is an
	// identity helper kept for readability at call sites.
	return path
}

func (s *Store) GroupExists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attrs[groupOf(path)]
	if ok {
		return true, nil
	}
	// A group "exists" once anything has been written under it.
	prefix := path
	for dsPath := range s.datasets {
		if len(dsPath) >= len(prefix) && dsPath[:len(prefix)] == prefix {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DatasetExists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.datasets[path]
	return ok, nil
}

func (s *Store) Attributes(ctx context.Context, path string) (store.Attributes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attrs[groupOf(path)]
	if !ok {
		return store.Attributes{}, nil
	}
	out := make(store.Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out, nil
}

func (s *Store) GetAttribute(ctx context.Context, path, key string) (interface{}, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attrs[groupOf(path)]
	if !ok {
		return nil, false, nil
	}
	v, ok := a[key]
	return v, ok, nil
}

func (s *Store) SetAttribute(ctx context.Context, path, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := groupOf(path)
	if s.attrs[g] == nil {
		s.attrs[g] = store.Attributes{}
	}
	s.attrs[g][key] = value
	return nil
}

func (s *Store) DatasetAttributes(ctx context.Context, path string) (store.DatasetAttributes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[path]
	if !ok {
		return store.DatasetAttributes{}, fmt.Errorf("memstore: no dataset at %q", path)
	}
	return ds.attrs, nil
}

func (s *Store) CreateDataset(ctx context.Context, path string, dims, blockSize []int64, etype store.ElementType, compression store.Compression) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[path] = &dataset{
		attrs: store.DatasetAttributes{
			Dimensions:  append([]int64{}, dims...),
			BlockSize:   append([]int64{}, blockSize...),
			ElementType: etype,
			Compression: compression,
		},
		blocks: make(map[string][]byte),
		sizes:  make(map[string][]int64),
	}
	return nil
}

func (s *Store) ReadBlock(ctx context.Context, path string, attrs store.DatasetAttributes, coord []int64) (store.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[path]
	if !ok {
		return store.Block{}, fmt.Errorf("memstore: no dataset at %q", path)
	}
	key := coordKey(coord)
	data, ok := ds.blocks[key]
	if !ok {
		// Never-written block within bounds reads as zero-filled.
		size := ds.sizes[key]
		if size == nil {
			size = blockSizeAt(ds.attrs, coord)
		}
		n := int64(1)
		for _, d := range size {
			n *= d
		}
		return store.Block{Coord: coord, Size: size, Data: make([]byte, n*int64(store.ElementSize(ds.attrs.ElementType)))}, nil
	}
	return store.Block{Coord: coord, Size: ds.sizes[key], Data: data}, nil
}

func (s *Store) WriteBlock(ctx context.Context, path string, attrs store.DatasetAttributes, block store.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[path]
	if !ok {
		return fmt.Errorf("memstore: no dataset at %q", path)
	}
	key := coordKey(block.Coord)
	ds.blocks[key] = append([]byte{}, block.Data...)
	ds.sizes[key] = append([]int64{}, block.Size...)
	return nil
}

func (s *Store) Close() error { return nil }

func blockSizeAt(attrs store.DatasetAttributes, coord []int64) []int64 {
	size := make([]int64, len(attrs.Dimensions))
	for axis := range size {
		beg := coord[axis] * attrs.BlockSize[axis]
		end := beg + attrs.BlockSize[axis]
		if end > attrs.Dimensions[axis] {
			end = attrs.Dimensions[axis]
		}
		size[axis] = end - beg
	}
	return size
}

// DeleteDataset removes a dataset entirely, used by tests simulating a
// schema revision that never wrote an optional column: re-reading must
// fall back to the documented default.
func (s *Store) DeleteDataset(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.datasets, path)
	return nil
}

// TruncateDataset shrinks a stored column's recorded trailing dimension
// to newTrailingLen; the stored block bytes are left as they are -- used
// by tests exercising the LengthMismatch failure mode.
func (s *Store) TruncateDataset(path string, newTrailingLen int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datasets[path]
	if !ok {
		return fmt.Errorf("memstore: no dataset at %q", path)
	}
	last := len(ds.attrs.Dimensions) - 1
	ds.attrs.Dimensions[last] = newTrailingLen
	return nil
}
