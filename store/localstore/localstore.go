// Package localstore implements store.Store over a local directory tree
// laid out like a Zarr v2 store: one JSON attributes file per group
// (".zattrs"), one ".zarray" metadata file per dataset, and one file per
// block under the dataset directory named by its grid coordinate. Block
// payloads are framed with an opaque Compression handle, grounded on the
// Compression/Checksum envelope in dvid/serialize.go (format byte then
// payload) but reworked here to name real pluggable codecs rather than
// DVID's own Snappy/LZ4 pair.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"context"

	"github.com/golang/snappy"
	"github.com/janelia-flyem/geff/glog"
	"github.com/janelia-flyem/geff/store"
	"github.com/klauspost/compress/zstd"
)

// Blosc is the default compression name for array datasets. No pure-Go
// Blosc binding is available in this module's dependency set (see
// DESIGN.md); zstd stands in as the concrete byte-level codec behind
// the "blosc" name.
const (
	Blosc  = "blosc"
	Snappy = "snappy"
	None   = "none"
)

// Store is a local-filesystem store.Store.
type Store struct {
	root string
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: creating root %q: %w", dir, err)
	}
	return &Store{root: dir}, nil
}

func (s *Store) groupPath(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(normalizePath(path)))
}

func normalizePath(p string) string {
	return strings.TrimPrefix(p, "/")
}

func (s *Store) attrsFile(path string) string {
	return filepath.Join(s.groupPath(path), ".zattrs")
}

func (s *Store) arrayFile(path string) string {
	return filepath.Join(s.groupPath(path), ".zarray")
}

type zarrayMeta struct {
	Dimensions  []int64 `json:"shape"`
	BlockSize   []int64 `json:"chunks"`
	ElementType string  `json:"dtype"`
	Compressor  string  `json:"compressor"`
}

func (s *Store) GroupExists(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(s.groupPath(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (s *Store) DatasetExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(s.arrayFile(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Attributes(ctx context.Context, path string) (store.Attributes, error) {
	data, err := os.ReadFile(s.attrsFile(path))
	if os.IsNotExist(err) {
		return store.Attributes{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out store.Attributes
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("localstore: parsing %s: %w", s.attrsFile(path), err)
	}
	return out, nil
}

func (s *Store) GetAttribute(ctx context.Context, path, key string) (interface{}, bool, error) {
	attrs, err := s.Attributes(ctx, path)
	if err != nil {
		return nil, false, err
	}
	v, ok := attrs[key]
	return v, ok, nil
}

func (s *Store) SetAttribute(ctx context.Context, path, key string, value interface{}) error {
	if err := os.MkdirAll(s.groupPath(path), 0o755); err != nil {
		return err
	}
	attrs, err := s.Attributes(ctx, path)
	if err != nil {
		return err
	}
	if attrs == nil {
		attrs = store.Attributes{}
	}
	attrs[key] = value
	// Key ordering within the document is delegated to encoding/json's
	// writer.
	data, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.attrsFile(path), data, 0o644)
}

func (s *Store) DatasetAttributes(ctx context.Context, path string) (store.DatasetAttributes, error) {
	data, err := os.ReadFile(s.arrayFile(path))
	if err != nil {
		return store.DatasetAttributes{}, err
	}
	var meta zarrayMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return store.DatasetAttributes{}, err
	}
	return store.DatasetAttributes{
		Dimensions:  meta.Dimensions,
		BlockSize:   meta.BlockSize,
		ElementType: store.ElementType(meta.ElementType),
		Compression: store.Compression{Name: meta.Compressor},
	}, nil
}

func (s *Store) CreateDataset(ctx context.Context, path string, dims, blockSize []int64, etype store.ElementType, compression store.Compression) error {
	if err := os.MkdirAll(s.groupPath(path), 0o755); err != nil {
		return err
	}
	name := compression.Name
	if name == "" {
		name = Blosc
	}
	meta := zarrayMeta{Dimensions: dims, BlockSize: blockSize, ElementType: string(etype), Compressor: name}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	// Replace semantics: a dataset write always starts from a clean
	// directory.
	if err := os.RemoveAll(s.groupPath(path)); err != nil {
		return err
	}
	if err := os.MkdirAll(s.groupPath(path), 0o755); err != nil {
		return err
	}
	glog.Debugf("creating dataset %s: dims=%v blocks=%v dtype=%s compressor=%s", path, dims, blockSize, etype, name)
	return os.WriteFile(s.arrayFile(path), data, 0o644)
}

func blockFile(dir string, coord []int64) string {
	parts := make([]string, len(coord))
	for i, c := range coord {
		parts[i] = strconv.FormatInt(c, 10)
	}
	return filepath.Join(dir, strings.Join(parts, "."))
}

func (s *Store) ReadBlock(ctx context.Context, path string, attrs store.DatasetAttributes, coord []int64) (store.Block, error) {
	fname := blockFile(s.groupPath(path), coord)
	raw, err := os.ReadFile(fname)
	if os.IsNotExist(err) {
		size := blockSizeAt(attrs, coord)
		n := int64(1)
		for _, d := range size {
			n *= d
		}
		return store.Block{Coord: coord, Size: size, Data: make([]byte, n*int64(store.ElementSize(attrs.ElementType)))}, nil
	}
	if err != nil {
		return store.Block{}, err
	}
	data, size, err := decodeBlock(raw, attrs.Compression.Name)
	if err != nil {
		return store.Block{}, err
	}
	return store.Block{Coord: coord, Size: size, Data: data}, nil
}

func (s *Store) WriteBlock(ctx context.Context, path string, attrs store.DatasetAttributes, block store.Block) error {
	fname := blockFile(s.groupPath(path), block.Coord)
	raw, err := encodeBlock(block, attrs.Compression.Name)
	if err != nil {
		return err
	}
	return os.WriteFile(fname, raw, 0o644)
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

// block file framing: a varint-free header of [rank byte][size per axis
// as 8-byte little-endian][compressed payload], mirroring the
// format-byte-then-payload shape of dvid.SerializeData without DVID's
// checksum field -- the filesystem already provides a consistency
// boundary per file, and a checksum concern belongs to whatever
// external store backs a production deployment, not this reference
// implementation.
func encodeBlock(block store.Block, compressor string) ([]byte, error) {
	payload, err := compressBytes(block.Data, compressor)
	if err != nil {
		return nil, err
	}
	header := make([]byte, 1+8*len(block.Size))
	header[0] = byte(len(block.Size))
	for i, d := range block.Size {
		putInt64(header[1+8*i:], d)
	}
	return append(header, payload...), nil
}

func decodeBlock(raw []byte, compressor string) (data []byte, size []int64, err error) {
	if len(raw) < 1 {
		return nil, nil, fmt.Errorf("localstore: truncated block header")
	}
	rank := int(raw[0])
	if len(raw) < 1+8*rank {
		return nil, nil, fmt.Errorf("localstore: truncated block header")
	}
	size = make([]int64, rank)
	for i := range size {
		size[i] = getInt64(raw[1+8*i:])
	}
	data, err = decompressBytes(raw[1+8*rank:], compressor)
	return data, size, err
}

func putInt64(b []byte, v int64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getInt64(b []byte) int64 {
	var v int64
	for i := 0; i < 8; i++ {
		v |= int64(b[i]) << (8 * i)
	}
	return v
}

func compressBytes(data []byte, compressor string) ([]byte, error) {
	switch compressor {
	case "", Blosc:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case Snappy:
		return snappy.Encode(nil, data), nil
	case None:
		return data, nil
	default:
		return nil, fmt.Errorf("localstore: unknown compressor %q", compressor)
	}
}

func decompressBytes(data []byte, compressor string) ([]byte, error) {
	switch compressor {
	case "", Blosc:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case Snappy:
		return snappy.Decode(nil, data)
	case None:
		return data, nil
	default:
		return nil, fmt.Errorf("localstore: unknown compressor %q", compressor)
	}
}
