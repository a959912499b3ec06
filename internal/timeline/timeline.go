package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ParseError wraps a failure to decode a persisted timeline document.
// The caller decides whether to fall back to a fresh timeline.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("timeline parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Timeline owns an ordered collection of scene layers plus the audio
// duration they are synchronized against. Layers are kept sorted by
// start time; IDs are unique and assigned from a monotonic counter.
// A Timeline is not safe for concurrent mutation; concurrent renders
// must each operate on their own instance.
type Timeline struct {
	AudioDuration float64

	layers []*SceneLayer
	nextID int
}

// New creates an empty timeline for audio of the given duration.
func New(audioDuration float64) *Timeline {
	return &Timeline{
		AudioDuration: audioDuration,
		nextID:        1,
	}
}

// Layers returns the layer collection in start-time order. The slice
// is shared with the timeline; callers must not reorder it.
func (t *Timeline) Layers() []*SceneLayer {
	return t.layers
}

// Len returns the number of layers.
func (t *Timeline) Len() int { return len(t.layers) }

// ExtendAudioDuration grows the audio duration to at least d.
// The duration never shrinks once set.
func (t *Timeline) ExtendAudioDuration(d float64) {
	if d > t.AudioDuration {
		t.AudioDuration = d
	}
}

// AddScene inserts a layer, assigning it a fresh ID regardless of any
// ID already on the input, and re-sorts by start time. Overlapping
// ranges are permitted and never deduplicated.
func (t *Timeline) AddScene(s *SceneLayer) *SceneLayer {
	s.ID = t.nextID
	t.nextID++
	t.layers = append(t.layers, s)
	t.sortLayers()
	return s
}

// RemoveScene deletes the layer with the given ID. Removing an absent
// ID is a no-op.
func (t *Timeline) RemoveScene(id int) {
	kept := t.layers[:0]
	for _, s := range t.layers {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(t.layers); i++ {
		t.layers[i] = nil
	}
	t.layers = kept
}

// GetScene returns the layer with the given ID, or nil if absent.
func (t *Timeline) GetScene(id int) *SceneLayer {
	for _, s := range t.layers {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// UpdateScene applies field updates to the layer with the given ID.
// Only recognized field names (the wire-format keys) are applied;
// unknown names are ignored silently so that newer hosts can send
// fields this version does not know about. Time updates clamp through
// SetStart/SetEnd to preserve the minimum-duration invariant.
func (t *Timeline) UpdateScene(id int, fields map[string]any) {
	s := t.GetScene(id)
	if s == nil {
		return
	}
	for key, value := range fields {
		switch key {
		case "start_time":
			if f, ok := toFloat(value); ok {
				s.SetStart(f)
			}
		case "end_time":
			if f, ok := toFloat(value); ok {
				s.SetEnd(f)
			}
		case "prompt":
			if v, ok := value.(string); ok {
				s.Prompt = v
			}
		case "visual_type":
			if v, ok := value.(string); ok {
				s.VisualType = v
			}
		case "manim_code":
			if v, ok := value.(string); ok {
				s.ManimCode = v
			}
		case "elements":
			if v, ok := toElements(value); ok {
				s.Elements = v
			}
		case "auto_generated":
			if v, ok := value.(bool); ok {
				s.AutoGenerated = v
			}
		}
	}
}

// ScenesAt returns every layer active at the given time, in the current
// sorted order.
func (t *Timeline) ScenesAt(at float64) []*SceneLayer {
	var active []*SceneLayer
	for _, s := range t.layers {
		if s.Contains(at) {
			active = append(active, s)
		}
	}
	return active
}

func (t *Timeline) sortLayers() {
	sort.SliceStable(t.layers, func(i, j int) bool {
		return t.layers[i].StartTime < t.layers[j].StartTime
	})
}

// document is the persisted wire shape.
type document struct {
	AudioDuration float64       `json:"audio_duration"`
	Scenes        []*SceneLayer `json:"scenes"`
}

// Serialize exports the timeline as an indented JSON document with
// scenes in sorted order.
func (t *Timeline) Serialize() ([]byte, error) {
	doc := document{
		AudioDuration: t.AudioDuration,
		Scenes:        t.layers,
	}
	if doc.Scenes == nil {
		doc.Scenes = []*SceneLayer{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Deserialize rebuilds a timeline from its JSON form. Invalid JSON or a
// non-object top level yields a ParseError. The ID counter is recomputed
// from the loaded layers, so the monotonic-ID invariant holds even when
// the stored document was hand-edited.
func Deserialize(data []byte) (*Timeline, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ParseError{Err: fmt.Errorf("top-level value is not an object")}
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	t := New(doc.AudioDuration)
	for _, s := range doc.Scenes {
		t.layers = append(t.layers, s)
		if s.ID+1 > t.nextID {
			t.nextID = s.ID + 1
		}
	}
	t.sortLayers()
	return t, nil
}

// toElements accepts both the typed form and the []any produced by
// json.Unmarshal into a map.
func toElements(v any) ([]map[string]any, bool) {
	switch list := v.(type) {
	case []map[string]any:
		return list, true
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	}
	return nil, false
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
