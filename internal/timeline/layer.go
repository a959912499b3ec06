package timeline

import (
	"encoding/json"
	"math"
)

// MinDuration is the smallest span a layer may occupy, in seconds.
// Manim rejects zero-length play calls, so every mutation clamps
// against this floor instead of failing.
const MinDuration = 0.01

// Visual type hints consumed by the code generator. The timeline itself
// does not interpret them.
const (
	VisualAuto    = "auto"
	VisualShape   = "shape"
	VisualDataViz = "data_viz"
	VisualCustom  = "custom"
)

// SceneLayer is a single time-bounded unit of generated content on the
// timeline. Layers may overlap: each one can represent an independent
// overlay active at the same moment.
type SceneLayer struct {
	ID            int              `json:"id"`
	StartTime     float64          `json:"start_time"` // in point, seconds
	EndTime       float64          `json:"end_time"`   // out point, seconds
	Prompt        string           `json:"prompt"`
	VisualType    string           `json:"visual_type"`
	ManimCode     string           `json:"manim_code"`
	Elements      []map[string]any `json:"elements"`
	AutoGenerated bool             `json:"auto_generated"`
}

// NewSceneLayer creates a layer spanning [start, end] with the default
// visual type. The ID is assigned by the Timeline on insertion.
func NewSceneLayer(start, end float64, prompt string) *SceneLayer {
	return &SceneLayer{
		StartTime:  start,
		EndTime:    end,
		Prompt:     prompt,
		VisualType: VisualAuto,
		Elements:   []map[string]any{},
	}
}

// SetStart moves the in point, clamping to [0, end-MinDuration].
// NaN and negative inputs clamp to zero; the call never fails.
func (s *SceneLayer) SetStart(t float64) {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	hi := s.EndTime - MinDuration
	if hi < 0 {
		hi = 0
	}
	if t > hi {
		t = hi
	}
	s.StartTime = t
}

// SetEnd moves the out point, clamping to [start+MinDuration, +inf).
func (s *SceneLayer) SetEnd(t float64) {
	lo := s.StartTime + MinDuration
	if math.IsNaN(t) || t < lo {
		t = lo
	}
	s.EndTime = t
}

// Duration returns the layer's span in seconds, never below MinDuration.
func (s *SceneLayer) Duration() float64 {
	d := s.EndTime - s.StartTime
	if math.IsNaN(d) || d < MinDuration {
		return MinDuration
	}
	return d
}

// Contains reports whether the layer is active at the given time.
func (s *SceneLayer) Contains(t float64) bool {
	return s.StartTime <= t && t <= s.EndTime
}

// UnmarshalJSON decodes a layer record, defaulting missing optional
// fields instead of failing: visual_type falls back to "auto" and
// elements to an empty list.
func (s *SceneLayer) UnmarshalJSON(data []byte) error {
	type plain SceneLayer
	rec := plain{VisualType: VisualAuto}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if rec.Elements == nil {
		rec.Elements = []map[string]any{}
	}
	*s = SceneLayer(rec)
	return nil
}
