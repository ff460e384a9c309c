// Package axis models one axis of a GEFF graph's coordinate system: its
// name, physical type, unit, and optional spatial extent, grounded on the
// Dimension type in dvid/geometry.go (name/unit/extent triple) but
// reworked to a name/type/unit/min/max shape.
package axis

import "fmt"

// Type classifies what an axis measures.
type Type string

const (
	Space Type = "space"
	Time  Type = "time"
	Other Type = "other" // unclassified, e.g. a channel or track index axis
)

// Axis describes one dimension of the coordinate space node properties
// such as t/x/y/z are drawn from.
type Axis struct {
	Name string
	Type Type
	Unit string
	Min  *float64
	Max  *float64
}

// New constructs an Axis, validating that Min <= Max when both are given.
func New(name string, typ Type, unit string, min, max *float64) (Axis, error) {
	if min != nil && max != nil && *min > *max {
		return Axis{}, fmt.Errorf("axis: %q: min %g exceeds max %g", name, *min, *max)
	}
	return Axis{Name: name, Type: typ, Unit: unit, Min: min, Max: max}, nil
}

// HasExtent reports whether both Min and Max are present.
func (a Axis) HasExtent() bool {
	return a.Min != nil && a.Max != nil
}

// NamesAndUnits splits a slice of Axis into the parallel name/unit slices
// the legacy 0.1 attribute document stores: axis_names and axis_units.
func NamesAndUnits(axes []Axis) (names, units []string) {
	names = make([]string, len(axes))
	units = make([]string, len(axes))
	for i, a := range axes {
		names[i] = a.Name
		units[i] = a.Unit
	}
	return names, units
}

// RoiMinMax collects the Min/Max of every spatial axis, in axis order, for
// the legacy 0.1 roi_min/roi_max attribute pair. It returns ok=false if any
// spatial axis lacks an extent.
func RoiMinMax(axes []Axis) (min, max []float64, ok bool) {
	min = make([]float64, 0, len(axes))
	max = make([]float64, 0, len(axes))
	for _, a := range axes {
		if a.Type != Space {
			continue
		}
		if !a.HasExtent() {
			return nil, nil, false
		}
		min = append(min, *a.Min)
		max = append(max, *a.Max)
	}
	return min, max, true
}

// ByName indexes axes by name for lookup while projecting node properties.
func ByName(axes []Axis) map[string]Axis {
	m := make(map[string]Axis, len(axes))
	for _, a := range axes {
		m[a.Name] = a
	}
	return m
}
