// Package geffio holds the error kinds shared by the node and edge
// codecs, kept in their own package so that nodecodec and
// edgecodec can depend on them without an import cycle through the root
// geff package that also re-exports them.
package geffio

import "fmt"

// LengthMismatch reports a column whose length disagrees with the
// record count established by the ids dataset.
type LengthMismatch struct {
	Path     string
	Expected int64
	Actual   int64
}

func (e LengthMismatch) Error() string {
	return fmt.Sprintf("geff: %s: expected length %d, got %d", e.Path, e.Expected, e.Actual)
}

// RankMismatch reports a dataset of unexpected rank.
type RankMismatch struct {
	Path     string
	Expected int
	Actual   int
}

func (e RankMismatch) Error() string {
	return fmt.Sprintf("geff: %s: expected rank %d, got %d", e.Path, e.Expected, e.Actual)
}

// MissingRequiredDataset reports an absent required dataset, e.g.
// nodes/ids or edges/ids.
type MissingRequiredDataset struct{ Path string }

func (e MissingRequiredDataset) Error() string {
	return fmt.Sprintf("geff: missing required dataset %q", e.Path)
}

// InvalidArgument reports a caller-supplied value that fails a basic
// shape contract, e.g. a color array that is not length 4.
type InvalidArgument struct{ Reason string }

func (e InvalidArgument) Error() string { return fmt.Sprintf("geff: invalid argument: %s", e.Reason) }
