package caption

import (
	"strings"
	"testing"

	"github.com/lattice/audio2manim/internal/transcribe"
)

func sample() []transcribe.Word {
	return []transcribe.Word{
		{Word: "Hello", Start: 0.0, End: 0.5},
		{Word: "world.", Start: 0.6, End: 1.1},
		{Word: "Bye", Start: 1.5, End: 2.0},
	}
}

func TestWordByWordAccumulates(t *testing.T) {
	out, err := Generate(sample(), StyleWordByWord, PositionBottom, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`Text("Hello", font="Arial", font_size=48, color=WHITE)`,
		`Text("Hello world.", font="Arial"`,
		`Text("Hello world. Bye", font="Arial"`,
		"to_edge(DOWN, buff=0.5)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(out, "run_time=0.500") {
		t.Errorf("expected word duration run_time, got:\n%s", out)
	}
}

func TestSentenceGrouping(t *testing.T) {
	out, err := Generate(sample(), StyleSentence, PositionTop, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `Text("Hello world."`) {
		t.Error("first sentence not rendered")
	}
	// Trailing partial sentence is kept.
	if !strings.Contains(out, `Text("Bye"`) {
		t.Error("trailing partial sentence dropped")
	}
	if !strings.Contains(out, "to_edge(UP, buff=0.5)") {
		t.Error("top position not honored")
	}
}

func TestHybridHighlightsCurrentWord(t *testing.T) {
	out, err := Generate(sample(), StyleHybrid, PositionBottom, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "color=YELLOW") {
		t.Error("current-word highlight missing")
	}
	if !strings.Contains(out, `Text("Hello world."`) {
		t.Error("sentence line missing")
	}
}

func TestCenterUsesMoveTo(t *testing.T) {
	out, err := Generate(sample(), StyleWordByWord, PositionCenter, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "move_to(ORIGIN)") {
		t.Error("center position should use move_to(ORIGIN)")
	}
	if strings.Contains(out, "to_edge") {
		t.Error("center position should not use to_edge")
	}
}

func TestQuoteEscaping(t *testing.T) {
	words := []transcribe.Word{{Word: `say "hi"`, Start: 0, End: 1}}
	out, err := Generate(words, StyleWordByWord, PositionBottom, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `Text("say \"hi\""`) {
		t.Errorf("quotes not escaped:\n%s", out)
	}
}

func TestMinimumWordDuration(t *testing.T) {
	words := []transcribe.Word{{Word: "a", Start: 1.0, End: 1.02}}
	out, err := Generate(words, StyleWordByWord, PositionBottom, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "run_time=0.100") {
		t.Errorf("clipped word should get the floor duration:\n%s", out)
	}
}

func TestEmptyWordsSkipped(t *testing.T) {
	words := []transcribe.Word{{Word: "  ", Start: 0, End: 1}}
	out, err := Generate(words, StyleSentence, PositionBottom, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "# No words to display") {
		t.Errorf("expected empty placeholder, got:\n%s", out)
	}
}

func TestBackdropEmittedWhenConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BGColor = "BLACK"
	out, err := Generate(sample(), StyleWordByWord, PositionBottom, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "bg_rect = Rectangle(") {
		t.Error("backdrop rectangle missing")
	}
}

func TestUnknownStyle(t *testing.T) {
	if _, err := Generate(sample(), Style("bogus"), PositionBottom, DefaultConfig()); err == nil {
		t.Fatal("expected error for unknown style")
	}
}
