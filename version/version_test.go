package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccepted(t *testing.T) {
	cases := []struct {
		raw   string
		minor int
		patch int
	}{
		{"0.2", 2, 0},
		{"0.3.0", 3, 0},
		{"0.2.2.dev20+g611e7a2.d20250719", 2, 2},
		{"0.3.0-alpha.1", 3, 0},
	}
	for _, tc := range cases {
		p, err := Parse(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.minor, p.MajorMinor.Minor, tc.raw)
		assert.Equal(t, tc.patch, p.Patch, tc.raw)
	}
}

func TestParseRejected(t *testing.T) {
	for _, raw := range []string{"1.0", "invalid", "0.1..x", ""} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("0.2"))
	assert.True(t, IsSupported("0.3.0"))
	assert.True(t, IsSupported("0.1"))
	assert.True(t, IsSupported("0.4"))
	assert.False(t, IsSupported("1.0"))
	assert.False(t, IsSupported("invalid"))
}

func TestGate(t *testing.T) {
	mm, err := Gate("0.3.0")
	require.NoError(t, err)
	assert.Equal(t, MajorMinor{Major: 0, Minor: 3}, mm)

	_, err = Gate("0.9")
	assert.IsType(t, ErrUnsupportedVersion{}, err)

	_, err = Gate("invalid")
	assert.IsType(t, ErrMalformedVersion{}, err)
}

// Idempotence property: stripping build metadata must never change the
// IsSupported verdict.
func TestIsSupportedIdempotent(t *testing.T) {
	raw := "0.2.2.dev20+g611e7a2.d20250719"
	stripped, err := StripBuild(raw)
	require.NoError(t, err)
	assert.Equal(t, IsSupported(raw), IsSupported(stripped))
}

func TestLegacyAndPolygonGates(t *testing.T) {
	assert.True(t, IsLegacy01("0.1"))
	assert.False(t, IsLegacy01("0.2"))
	assert.True(t, HasPolygonSupport("0.4.0"))
	assert.False(t, HasPolygonSupport("0.3.0"))
}
