// Package metadata reads and writes the GEFF metadata attribute
// document (version, directedness, axes), running the version package's
// Version Gate and validating the assembled document against a JSON
// Schema. Grounded on dvid/datatype_record.go's attribute-document
// read/write pattern and on the small-typed-tree design note in the
// source specification's section 9; JSON Schema validation is borrowed
// from the example pack's santhosh-tekuri/jsonschema usage.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/janelia-flyem/geff/axis"
	"github.com/janelia-flyem/geff/store"
	"github.com/janelia-flyem/geff/version"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MissingVersion reports a metadata document with no version marker.
type MissingVersion struct{}

func (MissingVersion) Error() string { return "metadata: geff_version is missing" }

// MissingRequiredAttribute reports an absent required key.
type MissingRequiredAttribute struct{ Name string }

func (e MissingRequiredAttribute) Error() string {
	return fmt.Sprintf("metadata: missing required attribute %q", e.Name)
}

// InvalidAxis reports an axis record that fails validation.
type InvalidAxis struct{ Reason string }

func (e InvalidAxis) Error() string { return fmt.Sprintf("metadata: invalid axis: %s", e.Reason) }

// Metadata is the in-memory geff attribute document.
type Metadata struct {
	Version  string
	Directed bool
	Axes     []axis.Axis
}

const attributeKey = "geff"

// legacy 0.1 root-level keys.
const (
	legacyRoiMin       = "roi_min"
	legacyRoiMax       = "roi_max"
	legacyAxisNames    = "axis_names"
	legacyAxisUnits    = "axis_units"
	legacyPositionAttr = "position_attr"
)

// document mirrors the wire shape of the "geff" attribute sub-tree; it
// is the thin JSON-facing shell, kept separate from Metadata so that the
// in-memory model never carries JSON tags.
type document struct {
	Version  string        `json:"geff_version"`
	Directed bool          `json:"directed"`
	Axes     []axisDocument `json:"axes,omitempty"`
}

type axisDocument struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Unit string   `json:"unit,omitempty"`
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

// schemaDoc is the JSON Schema the assembled document is validated
// against once reconstructed into a plain map, after being modeled as a
// strongly-typed intermediate tree rather than validated off the raw
// attribute map directly.
const schemaDoc = `{
  "type": "object",
  "required": ["geff_version", "directed"],
  "properties": {
    "geff_version": {"type": "string"},
    "directed": {"type": "boolean"},
    "axes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "properties": {
          "name": {"type": "string"},
          "type": {"type": "string", "enum": ["space", "time", "other"]},
          "unit": {"type": "string"},
          "min": {"type": "number"},
          "max": {"type": "number"}
        }
      }
    }
  }
}`

var compiledSchema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("geff-metadata.json", strings.NewReader(schemaDoc)); err != nil {
		panic(fmt.Sprintf("metadata: compiling built-in schema: %v", err))
	}
	sch, err := c.Compile("geff-metadata.json")
	if err != nil {
		panic(fmt.Sprintf("metadata: compiling built-in schema: %v", err))
	}
	return sch
}()

// Read fetches and validates the geff attribute document at the group
// rooted at path. If the document is absent at the "geff" key, it falls
// back to the legacy 0.1 root-level layout when useLegacy01 is true;
// otherwise a 0.1-era document fails with UnsupportedVersion.
func Read(ctx context.Context, st store.Store, path string, useLegacy01 bool) (Metadata, error) {
	raw, found, err := st.GetAttribute(ctx, path, attributeKey)
	if err != nil {
		return Metadata{}, err
	}
	if !found {
		if useLegacy01 {
			return readLegacy01(ctx, st, path)
		}
		raw01, found01, err := st.GetAttribute(ctx, path, "geff_version")
		if err != nil {
			return Metadata{}, err
		}
		if s, _ := raw01.(string); found01 && version.IsLegacy01(s) {
			return Metadata{}, version.ErrUnsupportedVersion{Raw: s, MajorMinor: version.MajorMinor{Major: 0, Minor: 1}}
		}
		return Metadata{}, MissingVersion{}
	}
	sub, ok := raw.(store.Attributes)
	if !ok {
		// Round-tripped through JSON, a map[string]interface{} decodes
		// the same way store.Attributes does; accept either.
		if m, ok2 := raw.(map[string]interface{}); ok2 {
			sub = m
		} else {
			return Metadata{}, MissingVersion{}
		}
	}
	return parseDocument(sub)
}

func parseDocument(sub store.Attributes) (Metadata, error) {
	rawVersion, ok := sub["geff_version"]
	if !ok {
		return Metadata{}, MissingVersion{}
	}
	versionStr, _ := rawVersion.(string)
	mm, err := version.Gate(versionStr)
	_ = mm
	if err != nil {
		return Metadata{}, err
	}

	rawDirected, ok := sub["directed"]
	if !ok {
		return Metadata{}, MissingRequiredAttribute{Name: "directed"}
	}
	directed, _ := rawDirected.(bool)

	axes, err := parseAxes(sub["axes"])
	if err != nil {
		return Metadata{}, err
	}

	md := Metadata{Version: versionStr, Directed: directed, Axes: axes}
	if err := Validate(md); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

func parseAxes(raw interface{}) ([]axis.Axis, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, InvalidAxis{Reason: "axes attribute is not a list"}
	}
	out := make([]axis.Axis, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, InvalidAxis{Reason: "axis entry is not an object"}
		}
		name, _ := m["name"].(string)
		typ, _ := m["type"].(string)
		unit, _ := m["unit"].(string)
		min := floatPtr(m["min"])
		max := floatPtr(m["max"])
		a, err := axis.New(name, axis.Type(typ), unit, min, max)
		if err != nil {
			return nil, InvalidAxis{Reason: err.Error()}
		}
		out = append(out, a)
	}
	return out, nil
}

func floatPtr(v interface{}) *float64 {
	if v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func readLegacy01(ctx context.Context, st store.Store, path string) (Metadata, error) {
	rawVersion, found, err := st.GetAttribute(ctx, path, "geff_version")
	if err != nil {
		return Metadata{}, err
	}
	if !found {
		return Metadata{}, MissingVersion{}
	}
	versionStr, _ := rawVersion.(string)
	mm, err := version.Gate(versionStr)
	if err != nil {
		return Metadata{}, err
	}
	if mm.Minor != 1 {
		return Metadata{}, version.ErrUnsupportedVersion{Raw: versionStr, MajorMinor: mm}
	}

	rawDirected, found, err := st.GetAttribute(ctx, path, "directed")
	if err != nil {
		return Metadata{}, err
	}
	if !found {
		return Metadata{}, MissingRequiredAttribute{Name: "directed"}
	}
	directed, _ := rawDirected.(bool)

	names := stringSlice(mustGet(ctx, st, path, legacyAxisNames))
	units := stringSlice(mustGet(ctx, st, path, legacyAxisUnits))
	roiMin := floatSlice(mustGet(ctx, st, path, legacyRoiMin))
	roiMax := floatSlice(mustGet(ctx, st, path, legacyRoiMax))

	axes := make([]axis.Axis, 0, len(names))
	spatialIdx := 0
	for i, name := range names {
		unit := ""
		if i < len(units) {
			unit = units[i]
		}
		typ := classify(name)
		var min, max *float64
		if typ == axis.Space && spatialIdx < len(roiMin) && spatialIdx < len(roiMax) {
			lo, hi := roiMin[spatialIdx], roiMax[spatialIdx]
			min, max = &lo, &hi
			spatialIdx++
		}
		a, err := axis.New(name, typ, unit, min, max)
		if err != nil {
			return Metadata{}, InvalidAxis{Reason: err.Error()}
		}
		axes = append(axes, a)
	}

	md := Metadata{Version: versionStr, Directed: directed, Axes: axes}
	if err := Validate(md); err != nil {
		return Metadata{}, err
	}
	return md, nil
}

func classify(name string) axis.Type {
	switch name {
	case "t":
		return axis.Time
	case "x", "y", "z":
		return axis.Space
	default:
		return axis.Other
	}
}

func mustGet(ctx context.Context, st store.Store, path, key string) interface{} {
	v, _, _ := st.GetAttribute(ctx, path, key)
	return v
}

func stringSlice(raw interface{}) []string {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for i, v := range list {
		out[i], _ = v.(string)
	}
	return out
}

func floatSlice(raw interface{}) []float64 {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, len(list))
	for i, v := range list {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case json.Number:
			out[i], _ = n.Float64()
		}
	}
	return out
}

// Write runs Validate, then writes geff_version and directed, and axes
// if non-empty, all under the "geff" sub-document.
func Write(ctx context.Context, st store.Store, path string, md Metadata) error {
	if err := Validate(md); err != nil {
		return err
	}
	doc := document{Version: md.Version, Directed: md.Directed}
	for _, a := range md.Axes {
		doc.Axes = append(doc.Axes, axisDocument{Name: a.Name, Type: string(a.Type), Unit: a.Unit, Min: a.Min, Max: a.Max})
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(encoded, &asMap); err != nil {
		return err
	}
	return st.SetAttribute(ctx, path, attributeKey, asMap)
}

// Validate checks version acceptance, axis name/type agreement, and
// runs the document through the compiled JSON Schema.
func Validate(md Metadata) error {
	if _, err := version.Gate(md.Version); err != nil {
		return err
	}
	for _, a := range md.Axes {
		if err := validateAxisClass(a); err != nil {
			return err
		}
	}
	asMap := map[string]interface{}{
		"geff_version": md.Version,
		"directed":     md.Directed,
	}
	if len(md.Axes) > 0 {
		axesList := make([]interface{}, len(md.Axes))
		for i, a := range md.Axes {
			entry := map[string]interface{}{"name": a.Name, "type": string(a.Type)}
			if a.Unit != "" {
				entry["unit"] = a.Unit
			}
			if a.Min != nil {
				entry["min"] = *a.Min
			}
			if a.Max != nil {
				entry["max"] = *a.Max
			}
			axesList[i] = entry
		}
		asMap["axes"] = axesList
	}
	if err := compiledSchema.Validate(asMap); err != nil {
		return InvalidAxis{Reason: err.Error()}
	}
	return nil
}

func validateAxisClass(a axis.Axis) error {
	switch a.Name {
	case "t":
		if a.Type != axis.Time {
			return InvalidAxis{Reason: fmt.Sprintf("axis %q must have type time, got %s", a.Name, a.Type)}
		}
	case "x", "y", "z":
		if a.Type != axis.Space {
			return InvalidAxis{Reason: fmt.Sprintf("axis %q must have type space, got %s", a.Name, a.Type)}
		}
	}
	return nil
}
