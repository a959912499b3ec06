package compiler

import (
	"strings"
	"testing"

	"github.com/lattice/audio2manim/internal/timeline"
)

func buildTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	tl := timeline.New(10.0)
	s := tl.AddScene(timeline.NewSceneLayer(0.0, 2.5, "a blue circle"))
	s.ManimCode = "circle = Circle(radius=1, color=BLUE)\nself.play(Create(circle))"
	tl.AddScene(timeline.NewSceneLayer(3.0, 6.0, "")) // no code, placeholder expected
	return tl
}

func TestCompileEmptyTimeline(t *testing.T) {
	script := Compile(timeline.New(0), Options{TimedDispatch: true, FrameRate: 30})

	if !strings.Contains(script, "class TimelineScene(Scene):") {
		t.Error("missing scene class")
	}
	if !strings.Contains(script, "# No scenes in timeline") || !strings.Contains(script, "pass") {
		t.Error("empty timeline should compile to an empty-body document")
	}
	if strings.Contains(script, "timeline = {}") {
		t.Error("empty document should not set up a dispatch map")
	}
}

func TestCompileTimedDispatch(t *testing.T) {
	tl := buildTimeline(t)
	script := Compile(tl, Options{TimedDispatch: true, FrameRate: 30})

	for _, want := range []string{
		"from manim import *",
		"config.frame_rate = 30",
		"config.background_color = BLACK",
		"timeline = {}",
		"def scene_1_exec():",
		"def scene_2_exec():",
		"timeline[0] = scene_1_exec",
		"timeline[3] = scene_2_exec",
		"play_timeline(self, timeline)",
		"for time_key in sorted(timeline.keys()):",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q\n%s", want, script)
		}
	}

	// The user fragment lands at function-body depth.
	if !strings.Contains(script, "            circle = Circle(radius=1, color=BLUE)") {
		t.Error("layer code not embedded at callable depth")
	}
}

func TestCompileSequentialFallback(t *testing.T) {
	tl := buildTimeline(t)
	script := Compile(tl, Options{TimedDispatch: false, FrameRate: 30})

	if strings.Contains(script, "def scene_1_exec") {
		t.Error("sequential strategy should not emit callables")
	}
	if !strings.Contains(script, "# Sequential scene playback") {
		t.Error("missing sequential marker")
	}
	if !strings.Contains(script, "self.wait(2.50)") {
		t.Error("each block should be followed by a wait matching its duration")
	}
	if !strings.Contains(script, "self.wait(3.00)") {
		t.Error("placeholder scene should also be followed by its wait")
	}
	// Layers appear in start-time order.
	if strings.Index(script, "# Scene 1") > strings.Index(script, "# Scene 2") {
		t.Error("scenes out of order in sequential output")
	}
}

func TestCompilePlaceholderForEmptyCode(t *testing.T) {
	tl := timeline.New(5.0)
	tl.AddScene(timeline.NewSceneLayer(0.0, 1.5, ""))

	script := Compile(tl, Options{TimedDispatch: true, FrameRate: 30})
	if !strings.Contains(script, "# Auto-generated placeholder") {
		t.Error("empty layer should get the placeholder fragment")
	}
	if !strings.Contains(script, "run_time=1.50") {
		t.Error("placeholder should be sized to the layer duration")
	}
	if !strings.Contains(script, "Untitled") {
		t.Error("empty prompt should label as Untitled")
	}
}

func TestCompileBackgroundColor(t *testing.T) {
	tl := timeline.New(5)

	script := Compile(tl, Options{Background: "DARK_GRAY"})
	if !strings.Contains(script, "config.background_color = DARK_GRAY\n") {
		t.Error("color constant should be emitted as a bare identifier")
	}

	script = Compile(tl, Options{Background: "#1e1e1e"})
	if !strings.Contains(script, "config.background_color = \"#1e1e1e\"\n") {
		t.Error("hex color should be emitted as a quoted string")
	}

	script = Compile(tl, Options{})
	if !strings.Contains(script, "config.background_color = BLACK\n") {
		t.Error("background should default to BLACK")
	}
}

func TestPromptLabelKeepsRunesIntact(t *testing.T) {
	prompt := strings.Repeat("й", 60)
	label := promptLabel(prompt)

	if got := len([]rune(label)); got != 50 {
		t.Fatalf("label length = %d runes, want 50", got)
	}
	if label != strings.Repeat("й", 50) {
		t.Errorf("label contains broken runes: %q", label)
	}
}

func TestCompileIdempotent(t *testing.T) {
	tl := buildTimeline(t)
	opts := Options{TimedDispatch: true, FrameRate: 30, Captions: "caption = Text(\"hi\")"}

	first := Compile(tl, opts)
	second := Compile(tl, opts)
	if first != second {
		t.Error("compiling the same timeline twice must yield byte-identical output")
	}
}

func TestCompileCaptionAnchor(t *testing.T) {
	tl := buildTimeline(t)
	script := Compile(tl, Options{TimedDispatch: true, FrameRate: 30, Captions: "caption = Text(\"hello\")"})

	captionAt := strings.Index(script, "caption = Text")
	trailerAt := strings.Index(script, "# Play timeline")
	lastScene := strings.LastIndex(script, "timeline[3] = scene_2_exec")

	if captionAt == -1 || trailerAt == -1 {
		t.Fatalf("caption or trailer missing\n%s", script)
	}
	if !(lastScene < captionAt && captionAt < trailerAt) {
		t.Error("captions must be spliced between the scene registrations and the playback trailer")
	}
}

func TestIndentPreservesBlankLines(t *testing.T) {
	fragment := "line1\n\nline2\n   \nline3"
	indented := Indent(fragment, 8)

	for i, line := range strings.Split(indented, "\n") {
		trimmed := strings.TrimRight(line, " ")
		if trimmed != line {
			t.Errorf("line %d has trailing whitespace: %q", i, line)
		}
	}
	if !strings.Contains(indented, "        line1") || !strings.Contains(indented, "        line3") {
		t.Error("non-empty lines not indented")
	}
}

func TestCompileDoesNotIndentFragmentBlankLines(t *testing.T) {
	tl := timeline.New(5.0)
	s := tl.AddScene(timeline.NewSceneLayer(0.0, 2.0, "spaced"))
	s.ManimCode = "a = Circle()\n\nb = Square()"

	script := Compile(tl, Options{TimedDispatch: true, FrameRate: 30})
	for i, line := range strings.Split(script, "\n") {
		if strings.TrimSpace(line) == "" && line != "" {
			t.Errorf("line %d is whitespace-only: %q", i, line)
		}
	}
}
