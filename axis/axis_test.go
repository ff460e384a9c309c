package axis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestNewRejectsMinGreaterThanMax(t *testing.T) {
	_, err := New("x", Space, "micrometers", f(10), f(5))
	assert.Error(t, err)
}

func TestNewAccepts(t *testing.T) {
	a, err := New("t", Time, "seconds", f(0), f(100))
	require.NoError(t, err)
	assert.True(t, a.HasExtent())
}

func TestRoiMinMax(t *testing.T) {
	axes := []Axis{
		mustAxis(t, "t", Time, "seconds", f(0), f(10)),
		mustAxis(t, "x", Space, "micrometers", f(0), f(100)),
		mustAxis(t, "y", Space, "micrometers", f(0), f(200)),
	}
	min, max, ok := RoiMinMax(axes)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0}, min)
	assert.Equal(t, []float64{100, 200}, max)
}

func mustAxis(t *testing.T, name string, typ Type, unit string, min, max *float64) Axis {
	a, err := New(name, typ, unit, min, max)
	require.NoError(t, err)
	return a
}
