package metadata

import (
	"context"
	"testing"

	"github.com/janelia-flyem/geff/axis"
	"github.com/janelia-flyem/geff/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	tAxis, err := axis.New("t", axis.Time, "seconds", f(0), f(10))
	require.NoError(t, err)
	xAxis, err := axis.New("x", axis.Space, "micrometers", f(0), f(100))
	require.NoError(t, err)

	md := Metadata{Version: "0.3.0", Directed: true, Axes: []axis.Axis{tAxis, xAxis}}
	require.NoError(t, Write(ctx, st, "", md))

	got, err := Read(ctx, st, "", false)
	require.NoError(t, err)
	assert.Equal(t, md.Version, got.Version)
	assert.Equal(t, md.Directed, got.Directed)
	require.Len(t, got.Axes, 2)
	assert.Equal(t, "t", got.Axes[0].Name)
	assert.Equal(t, "x", got.Axes[1].Name)
}

func TestReadMissingVersion(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	_, err := Read(ctx, st, "", false)
	assert.IsType(t, MissingVersion{}, err)
}

// Reading a group with an unsupported major.minor version fails before
// any node dataset would even be considered.
func TestReadUnsupportedVersion(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.SetAttribute(ctx, "", "geff", map[string]interface{}{
		"geff_version": "1.0",
		"directed":     true,
	}))
	_, err := Read(ctx, st, "", false)
	assert.Error(t, err)
}

func TestAxisTypeMismatchRejected(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	badAxis := axis.Axis{Name: "t", Type: axis.Space, Unit: "seconds"}
	md := Metadata{Version: "0.3.0", Directed: true, Axes: []axis.Axis{badAxis}}
	err := Write(ctx, st, "", md)
	assert.Error(t, err)
}

func TestReadLegacy01(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.SetAttribute(ctx, "", "geff_version", "0.1"))
	require.NoError(t, st.SetAttribute(ctx, "", "directed", true))
	require.NoError(t, st.SetAttribute(ctx, "", "axis_names", []interface{}{"t", "x"}))
	require.NoError(t, st.SetAttribute(ctx, "", "axis_units", []interface{}{"seconds", "micrometers"}))
	require.NoError(t, st.SetAttribute(ctx, "", "roi_min", []interface{}{0.0}))
	require.NoError(t, st.SetAttribute(ctx, "", "roi_max", []interface{}{100.0}))

	md, err := Read(ctx, st, "", true)
	require.NoError(t, err)
	require.Len(t, md.Axes, 2)
	assert.Equal(t, axis.Time, md.Axes[0].Type)
	assert.Equal(t, axis.Space, md.Axes[1].Type)
	require.NotNil(t, md.Axes[1].Max)
	assert.Equal(t, 100.0, *md.Axes[1].Max)
}
