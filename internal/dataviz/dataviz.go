// Package dataviz generates Manim code for data-driven scenes:
// charts, fields, 3D plots, graphs, and particle systems. A scene
// layer opts in with the "data_viz" visual type; its first element
// record describes what to draw.
package dataviz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lattice/audio2manim/internal/timeline"
)

// Visualization types accepted in a spec.
const (
	TypeTimeSeries     = "time_series"
	TypeVectorField    = "vector_field"
	TypeScatter3D      = "3d_scatter"
	TypeSurface3D      = "3d_surface"
	TypeGraphNetwork   = "graph_network"
	TypeParticleSystem = "particle_system"
)

// Spec describes one visualization. It is decoded from a layer's
// element record, so every field tolerates absence.
type Spec struct {
	Type     string
	DataPath string // CSV/JSON/JSONL file, loaded when set

	// Time series
	XColumn   string
	YColumns  []string
	ChartType string // line or bar, default line

	// Vector field
	FieldFunction string // python expression over pos, e.g. "pos * 0.5"
	Streamlines   bool

	// 3D
	ZColumn        string
	CameraAngle    float64 // degrees, default 45
	EnableRotation bool

	// Graph network
	Nodes  []string
	Edges  [][2]string
	Layout string // manim layout name, default spring

	// Particle system
	ParticleCount int
	ParticleSize  float64
}

// ForLayer builds the code fragment for a data_viz layer from its
// first element record.
func ForLayer(layer *timeline.SceneLayer) (string, error) {
	if len(layer.Elements) == 0 {
		return "", fmt.Errorf("scene %d has visual type %q but no element record", layer.ID, timeline.VisualDataViz)
	}
	spec, err := SpecFromElement(layer.Elements[0])
	if err != nil {
		return "", err
	}
	return Generate(spec)
}

// SpecFromElement decodes a spec from an element record as stored on
// the timeline wire format.
func SpecFromElement(elem map[string]any) (*Spec, error) {
	spec := &Spec{
		ChartType:      "line",
		Layout:         "spring",
		CameraAngle:    45,
		EnableRotation: true,
		ParticleCount:  100,
		ParticleSize:   0.1,
	}

	spec.Type, _ = elem["type"].(string)
	if spec.Type == "" {
		return nil, fmt.Errorf("element record has no visualization type")
	}
	spec.DataPath, _ = elem["data"].(string)
	spec.XColumn, _ = elem["x_column"].(string)
	spec.ZColumn, _ = elem["z_column"].(string)
	spec.FieldFunction, _ = elem["function"].(string)

	if v, ok := elem["y_columns"].(string); ok {
		for _, col := range strings.Split(v, ",") {
			if col = strings.TrimSpace(col); col != "" {
				spec.YColumns = append(spec.YColumns, col)
			}
		}
	}
	if v, ok := elem["y_column"].(string); ok && v != "" {
		spec.YColumns = append(spec.YColumns, v)
	}
	if v, ok := elem["chart_type"].(string); ok && v != "" {
		spec.ChartType = v
	}
	if v, ok := elem["layout"].(string); ok && v != "" {
		spec.Layout = v
	}
	if v, ok := elem["streamlines"].(bool); ok {
		spec.Streamlines = v
	}
	if v, ok := elem["enable_rotation"].(bool); ok {
		spec.EnableRotation = v
	}
	if v, ok := toFloat(elem["camera_angle"]); ok {
		spec.CameraAngle = v
	}
	if v, ok := toFloat(elem["particle_count"]); ok && v > 0 {
		spec.ParticleCount = int(v)
	}
	if v, ok := toFloat(elem["particle_size"]); ok && v > 0 {
		spec.ParticleSize = v
	}
	if list, ok := elem["nodes"].([]any); ok {
		for _, n := range list {
			spec.Nodes = append(spec.Nodes, stringify(n))
		}
	}
	if list, ok := elem["edges"].([]any); ok {
		for _, e := range list {
			pair, ok := e.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("graph edge must be a two-element list, got %v", e)
			}
			spec.Edges = append(spec.Edges, [2]string{stringify(pair[0]), stringify(pair[1])})
		}
	}
	return spec, nil
}

// Generate builds the Manim fragment for the visualization, loading
// the dataset when one is referenced. Same input and data, same output.
func Generate(spec *Spec) (string, error) {
	var ds *Dataset
	if spec.DataPath != "" {
		var err error
		ds, err = Load(spec.DataPath)
		if err != nil {
			return "", err
		}
	}

	switch spec.Type {
	case TypeTimeSeries:
		return timeSeries(spec, ds)
	case TypeVectorField:
		return vectorField(spec), nil
	case TypeScatter3D:
		return scatter3D(spec, ds)
	case TypeSurface3D:
		return surface3D(spec), nil
	case TypeGraphNetwork:
		return graphNetwork(spec)
	case TypeParticleSystem:
		return particleSystem(spec), nil
	default:
		return "", fmt.Errorf("unknown visualization type %q", spec.Type)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// pyFloat formats a float as a Python literal without trailing noise.
func pyFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// pyFloatList renders a float slice as a Python list literal.
func pyFloatList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = pyFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// pyStringList renders a string slice as a Python list literal.
func pyStringList(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
