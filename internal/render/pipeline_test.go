package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lattice/audio2manim/internal/config"
	"github.com/lattice/audio2manim/internal/timeline"
	"github.com/lattice/audio2manim/internal/transcribe"
)

type failingGenerator struct{}

func (failingGenerator) Generate(_, _ string) (string, error) {
	return "", errors.New("model unavailable")
}

type fixedTranscriber struct {
	words []transcribe.Word
}

func (f *fixedTranscriber) Transcribe(_ context.Context, _ string) ([]transcribe.Word, error) {
	return f.words, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Width: 1280, Height: 720, FPS: 30, Quality: "m",
		Workers: 1, OutputDir: t.TempDir(),
	}
}

func TestFillManimCodeRecoversWithPlaceholder(t *testing.T) {
	p := NewPipeline(testConfig(t), nil, failingGenerator{})

	tl := timeline.New(10)
	scene := tl.AddScene(timeline.NewSceneLayer(0, 2, "a chart"))
	if err := p.FillManimCode(tl); err != nil {
		t.Fatal(err)
	}
	if scene.ManimCode == "" {
		t.Fatal("scene left without code")
	}
	if !strings.Contains(scene.ManimCode, "placeholder") {
		t.Errorf("expected placeholder fragment:\n%s", scene.ManimCode)
	}
}

func TestFillManimCodeDataVizLayer(t *testing.T) {
	csv := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(csv, []byte("t,v\n0,1\n1,3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// The generator would fail; data_viz layers must not reach it.
	p := NewPipeline(testConfig(t), nil, failingGenerator{})
	tl := timeline.New(10)
	scene := tl.AddScene(timeline.NewSceneLayer(0, 4, "quarterly sales"))
	scene.VisualType = timeline.VisualDataViz
	scene.Elements = []map[string]any{{
		"type":     "time_series",
		"data":     csv,
		"x_column": "t",
		"y_column": "v",
	}}

	if err := p.FillManimCode(tl); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(scene.ManimCode, "plot_line_graph(") {
		t.Errorf("expected chart code for data_viz scene:\n%s", scene.ManimCode)
	}
}

func TestFillManimCodeDataVizFallsBackToPlaceholder(t *testing.T) {
	p := NewPipeline(testConfig(t), nil, failingGenerator{})
	tl := timeline.New(10)
	scene := tl.AddScene(timeline.NewSceneLayer(0, 4, "broken chart"))
	scene.VisualType = timeline.VisualDataViz // no element record

	if err := p.FillManimCode(tl); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(scene.ManimCode, "placeholder") {
		t.Errorf("expected placeholder fragment:\n%s", scene.ManimCode)
	}
}

func TestFillManimCodeKeepsExistingCode(t *testing.T) {
	p := NewPipeline(testConfig(t), nil, failingGenerator{})

	tl := timeline.New(10)
	scene := tl.AddScene(timeline.NewSceneLayer(0, 2, "custom"))
	scene.ManimCode = "self.add(Square())"
	if err := p.FillManimCode(tl); err != nil {
		t.Fatal(err)
	}
	if scene.ManimCode != "self.add(Square())" {
		t.Errorf("existing code overwritten: %s", scene.ManimCode)
	}
}

func TestPrepareTimelineEmptyEverything(t *testing.T) {
	p := NewPipeline(testConfig(t), &fixedTranscriber{}, failingGenerator{})

	_, _, err := p.PrepareTimeline(context.Background(), nil, "")
	var empty *EmptyTimelineError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyTimelineError, got %v", err)
	}
}

func TestPrepareTimelineDetectsScenes(t *testing.T) {
	words := []transcribe.Word{
		{Word: "One.", Start: 0, End: 1},
		{Word: "Two.", Start: 1.5, End: 2.5},
	}
	p := NewPipeline(testConfig(t), &fixedTranscriber{words: words}, failingGenerator{})

	tl, got, err := p.PrepareTimeline(context.Background(), nil, "narration.wav")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("words = %d", len(got))
	}
	if tl.Len() != 2 {
		t.Fatalf("scenes = %d, want 2", tl.Len())
	}
	if tl.AudioDuration < 2.5 {
		t.Errorf("audio duration = %f, want >= 2.5", tl.AudioDuration)
	}
}

func TestPrepareTimelineKeepsExistingScenes(t *testing.T) {
	p := NewPipeline(testConfig(t), &fixedTranscriber{}, failingGenerator{})

	existing := timeline.New(5)
	existing.AddScene(timeline.NewSceneLayer(0, 5, "manual"))
	tl, _, err := p.PrepareTimeline(context.Background(), existing, "")
	if err != nil {
		t.Fatal(err)
	}
	if tl != existing || tl.Len() != 1 {
		t.Error("existing timeline should pass through untouched")
	}
}
