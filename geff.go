// Package geff is the public entry point: it opens/creates a store
// group, dispatches the metadata, node, and edge codecs in the order a
// reader needs them (metadata last on write, so a visible version
// marker implies the data beneath it is present), and holds the
// in-memory graph snapshot. Grounded on the datastore-orchestration
// pattern in
// datatype/labelarray/datatype.go (load metadata, then dispatch to the
// value codecs, surfacing a single assembled result or a single error).
package geff

import (
	"context"
	"fmt"

	"github.com/janelia-flyem/geff/axis"
	"github.com/janelia-flyem/geff/blockcodec"
	"github.com/janelia-flyem/geff/config"
	"github.com/janelia-flyem/geff/edgecodec"
	"github.com/janelia-flyem/geff/geffio"
	"github.com/janelia-flyem/geff/glog"
	"github.com/janelia-flyem/geff/metadata"
	"github.com/janelia-flyem/geff/nodecodec"
	"github.com/janelia-flyem/geff/store"
	"github.com/janelia-flyem/geff/version"
)

// Re-exported error kinds, collected here so callers need only import
// the geff package to type-switch on failures.
type (
	MissingVersion           = metadata.MissingVersion
	MissingRequiredAttribute = metadata.MissingRequiredAttribute
	InvalidAxis              = metadata.InvalidAxis
	MissingRequiredDataset   = geffio.MissingRequiredDataset
	LengthMismatch           = geffio.LengthMismatch
	RankMismatch             = geffio.RankMismatch
	TypeMismatch             = blockcodec.TypeMismatchError
	BlockIOError             = blockcodec.BlockIOError
	InvalidArgument          = geffio.InvalidArgument
	MalformedVersion         = version.ErrMalformedVersion
	UnsupportedVersion       = version.ErrUnsupportedVersion
)

// Node and Edge are re-exported so callers assembling a Graph don't
// need to import nodecodec/edgecodec directly.
type (
	Node = nodecodec.Node
	Edge = edgecodec.Edge
)

// Axis is re-exported from the axis package for the same reason.
type Axis = axis.Axis

// Graph is the full in-memory snapshot of one GEFF group: version,
// directedness, the ordered axis list, and the ordered node/edge lists.
// List order is significant: the i-th Node is the i-th entry of every
// on-disk per-node column.
type Graph struct {
	Version  string
	Directed bool
	Axes     []Axis
	Nodes    []Node
	Edges    []Edge
}

// WriteOptions controls WriteGraph's defaults.
type WriteOptions struct {
	ChunkSize   int64
	Version     string
	Compression store.Compression
	// AllowLegacy01 is not consulted by WriteGraph, which always emits the
	// 0.2+ "geff" sub-document layout. Reading 0.1-era layouts is selected
	// by the allowLegacy01 argument of ReadGraph and ReadMetadata.
	AllowLegacy01 bool
}

// DefaultChunkSize is the block extent along the record axis when the
// caller does not specify one.
const DefaultChunkSize = 1000

func (o WriteOptions) withDefaults() WriteOptions {
	d := config.DefaultDefaults()
	if o.ChunkSize <= 0 {
		o.ChunkSize = int64(d.ChunkSize)
	}
	if o.Version == "" {
		o.Version = d.Version
	}
	if o.Compression.Name == "" {
		o.Compression.Name = d.Compression
	}
	return o
}

// WriteOptionsFromConfigFile loads library defaults from a TOML file at
// path (falling back silently to built-in defaults if it does not
// exist) and returns them as WriteOptions, leaving Compression.Opts for
// the caller to fill in.
func WriteOptionsFromConfigFile(path string) (WriteOptions, error) {
	d, err := config.LoadDefaults(path)
	if err != nil {
		return WriteOptions{}, err
	}
	return WriteOptions{
		ChunkSize:   int64(d.ChunkSize),
		Version:     d.Version,
		Compression: store.Compression{Name: d.Compression},
	}, nil
}

// ReadMetadata fetches and validates only the metadata document at
// group, without touching any node/edge dataset: a rejected version
// never causes a node dataset to be opened.
func ReadMetadata(ctx context.Context, st store.Store, group string, allowLegacy01 bool) (metadata.Metadata, error) {
	return metadata.Read(ctx, st, group, allowLegacy01)
}

// ReadGraph opens the group at group root, runs the Version Gate via
// the metadata codec, and then dispatches the node and edge codecs in
// order. A rejected metadata document short-circuits before any
// node/edge dataset is touched.
func ReadGraph(ctx context.Context, st store.Store, group string, allowLegacy01 bool) (Graph, error) {
	defer closeQuietly(st)

	md, err := metadata.Read(ctx, st, group, allowLegacy01)
	if err != nil {
		return Graph{}, err
	}
	glog.Infof("read metadata for %s: version=%s directed=%t axes=%d", group, md.Version, md.Directed, len(md.Axes))

	withPolygon := version.HasPolygonSupport(md.Version)
	nodes, err := nodecodec.Read(ctx, st, group, withPolygon)
	if err != nil {
		return Graph{}, err
	}
	edges, err := edgecodec.Read(ctx, st, group)
	if err != nil {
		return Graph{}, err
	}
	return Graph{Version: md.Version, Directed: md.Directed, Axes: md.Axes, Nodes: nodes, Edges: edges}, nil
}

// WriteGraph validates the graph's metadata, writes the node and edge
// codecs, then writes the metadata document last -- so a reader that
// observes a valid version marker can assume the data beneath it is
// present. Writing is not transactional: a failure partway through
// leaves the group partially populated and this function does not
// attempt to clean up.
func WriteGraph(ctx context.Context, st store.Store, group string, g Graph, opts WriteOptions) error {
	defer closeQuietly(st)

	opts = opts.withDefaults()
	v := g.Version
	if v == "" {
		v = opts.Version
	}
	md := metadata.Metadata{Version: v, Directed: g.Directed, Axes: g.Axes}
	if err := metadata.Validate(md); err != nil {
		return err
	}

	withPolygon := version.HasPolygonSupport(v)
	if err := nodecodec.Write(ctx, st, group, g.Nodes, opts.ChunkSize, opts.Compression, withPolygon); err != nil {
		return fmt.Errorf("geff: writing nodes: %w", err)
	}
	if err := edgecodec.Write(ctx, st, group, g.Edges, opts.ChunkSize, opts.Compression); err != nil {
		return fmt.Errorf("geff: writing edges: %w", err)
	}
	if err := metadata.Write(ctx, st, group, md); err != nil {
		return fmt.Errorf("geff: writing metadata: %w", err)
	}
	glog.Infof("wrote graph at %s: %d nodes, %d edges, version %s", group, len(g.Nodes), len(g.Edges), v)
	return nil
}

func closeQuietly(st store.Store) {
	if err := st.Close(); err != nil {
		glog.Warningf("closing store: %v", err)
	}
}
