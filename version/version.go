// Package version implements the GEFF Version Gate: parsing, validating,
// and comparing the geff_version metadata string.  Downstream codecs
// branch exclusively on MajorMinor, never on patch or build metadata.
package version

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/blang/semver"
)

// grammar:
//
//	version    := major "." minor ( "." patch )? ( "." identifier )? ( [+-] build )*
//	major      := "0"
//	minor      := digits           // any minor parses; Gate admits only supportedMinors
//	patch      := digits
//	identifier := alnum+
//	build      := alnum ( "." alnum+ )*
var grammar = regexp.MustCompile(
	`^0\.([0-9]+)(?:\.([0-9]+))?(?:\.([a-zA-Z0-9]+))?((?:[+-][a-zA-Z0-9]+(?:\.[a-zA-Z0-9]+)*)*)$`,
)

// MajorMinor is the (major, minor) pair downstream codecs dispatch on.
type MajorMinor struct {
	Major, Minor int
}

func (mm MajorMinor) String() string {
	return fmt.Sprintf("%d.%d", mm.Major, mm.Minor)
}

// supportedMinors is the accepted core set (0.2, 0.3) plus the optional
// legacy/extension revisions this library has chosen to implement
// (0.1, 0.4 -- see DESIGN.md Open Question decisions).
var supportedMinors = map[int]bool{
	1: true,
	2: true,
	3: true,
	4: true,
}

// ErrMalformedVersion reports a version string that does not match the
// accepted grammar at all.
type ErrMalformedVersion struct {
	Raw string
}

func (e ErrMalformedVersion) Error() string {
	return fmt.Sprintf("malformed geff version string %q", e.Raw)
}

// ErrUnsupportedVersion reports a version string that parses but whose
// major.minor is outside the supported set.
type ErrUnsupportedVersion struct {
	Raw        string
	MajorMinor MajorMinor
}

func (e ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported geff version %q (major.minor %s)", e.Raw, e.MajorMinor)
}

// Parsed is the result of a successful Parse: the original string, its
// major.minor, and a semver.Version over the canonicalized major.minor.patch
// used purely for ordering/comparison (build metadata and the optional
// 4th dotted identifier segment are intentionally excluded from the
// semver representation, since GEFF's grammar allows forms -- like a
// trailing bare identifier segment -- that are not valid semver build
// metadata).
type Parsed struct {
	Raw        string
	MajorMinor MajorMinor
	Patch      int
	Identifier string
	sv         semver.Version
}

// Parse validates raw against the accepted grammar and returns the
// parsed version. An empty string is always malformed: a null/empty
// version on read is fatal.
func Parse(raw string) (Parsed, error) {
	if raw == "" {
		return Parsed{}, ErrMalformedVersion{Raw: raw}
	}
	m := grammar.FindStringSubmatch(raw)
	if m == nil {
		return Parsed{}, ErrMalformedVersion{Raw: raw}
	}
	minor, err := strconv.Atoi(m[1])
	if err != nil {
		return Parsed{}, ErrMalformedVersion{Raw: raw}
	}
	patch := 0
	if m[2] != "" {
		patch, err = strconv.Atoi(m[2])
		if err != nil {
			return Parsed{}, ErrMalformedVersion{Raw: raw}
		}
	}
	canonical := fmt.Sprintf("0.%d.%d", minor, patch)
	sv, err := semver.Parse(canonical)
	if err != nil {
		return Parsed{}, ErrMalformedVersion{Raw: raw}
	}
	return Parsed{
		Raw:        raw,
		MajorMinor: MajorMinor{Major: 0, Minor: minor},
		Patch:      patch,
		Identifier: m[3],
		sv:         sv,
	}, nil
}

// IsSupported reports whether raw both parses and has a supported
// major.minor. Build metadata (anything after + or -, or repeated dotted
// segments in it) never affects the answer, which gives the version-gate
// idempotence property: IsSupported(v) == IsSupported(normalize(v)) for
// any normalization that strips only build metadata.
func IsSupported(raw string) bool {
	p, err := Parse(raw)
	if err != nil {
		return false
	}
	return supportedMinors[p.MajorMinor.Minor]
}

// Gate runs the full Version Gate used by the metadata codec on read:
// malformed strings fail with ErrMalformedVersion, strings with an
// unsupported major.minor fail with ErrUnsupportedVersion.
func Gate(raw string) (MajorMinor, error) {
	p, err := Parse(raw)
	if err != nil {
		return MajorMinor{}, err
	}
	if !supportedMinors[p.MajorMinor.Minor] {
		return MajorMinor{}, ErrUnsupportedVersion{Raw: raw, MajorMinor: p.MajorMinor}
	}
	return p.MajorMinor, nil
}

// Compare orders two parsed versions using major.minor.patch only,
// matching the rule that codecs never branch on identifier/build.
func Compare(a, b Parsed) int {
	return a.sv.Compare(b.sv)
}

// StripBuild returns raw with any +build or trailing identifier/build
// segments removed, as the canonical major.minor.patch (patch 0 when raw
// has none).  Used by tests
// checking the version-gate idempotence property.
func StripBuild(raw string) (string, error) {
	p, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0.%d.%d", p.MajorMinor.Minor, p.Patch), nil
}

// Default is the version written when a caller does not supply one.
const Default = "0.3.0"

// IsLegacy01 reports whether raw's major.minor is the optional legacy
// 0.1 layout (root-level attributes, not a "geff" sub-document).
func IsLegacy01(raw string) bool {
	p, err := Parse(raw)
	return err == nil && p.MajorMinor.Minor == 1
}

// HasPolygonSupport reports whether raw's major.minor is the optional
// 0.4 extension that carries per-node polygon tables.
func HasPolygonSupport(raw string) bool {
	p, err := Parse(raw)
	return err == nil && p.MajorMinor.Minor == 4
}
