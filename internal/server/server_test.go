package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lattice/audio2manim/internal/config"
	"github.com/lattice/audio2manim/internal/render"
	"github.com/lattice/audio2manim/internal/transcribe"
)

type stubTranscriber struct {
	words []transcribe.Word
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ string) ([]transcribe.Word, error) {
	return s.words, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(_, _ string) (string, error) {
	return "c = Circle()\nself.add(c)\n", nil
}

func testServer(t *testing.T, words []transcribe.Word) *Server {
	t.Helper()
	cfg := &config.Config{
		Width: 1280, Height: 720, FPS: 30, Quality: "m",
		Workers: 1, OutputDir: t.TempDir(), CaptionStyle: "none",
	}
	pipeline := render.NewPipeline(cfg, &stubTranscriber{words: words}, stubGenerator{})
	return New(cfg, pipeline)
}

func TestHealth(t *testing.T) {
	srv := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDetectReturnsTimeline(t *testing.T) {
	words := []transcribe.Word{
		{Word: "Hello", Start: 0, End: 0.5},
		{Word: "world.", Start: 0.6, End: 1.1},
	}
	srv := testServer(t, words)
	body := strings.NewReader(`{"audio_path": "narration.wav"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/detect", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Scenes []struct {
			ID     int    `json:"id"`
			Prompt string `json:"prompt"`
		} `json:"scenes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Scenes) != 1 {
		t.Fatalf("scenes = %d, want 1", len(resp.Scenes))
	}
	if resp.Scenes[0].Prompt != "Hello world." {
		t.Errorf("prompt = %q", resp.Scenes[0].Prompt)
	}
}

func TestDetectRequiresAudioPath(t *testing.T) {
	srv := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/detect", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDetectEmptyTranscriptUnprocessable(t *testing.T) {
	srv := testServer(t, nil)
	body := strings.NewReader(`{"audio_path": "silence.wav"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/detect", body))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCompileProducesScript(t *testing.T) {
	srv := testServer(t, nil)
	body := strings.NewReader(`{"timeline": {"audio_duration": 5.0, "scenes": [
		{"id": 1, "start_time": 0, "end_time": 2, "prompt": "a circle"}
	]}}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compile", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Script string `json:"script"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Script, "class TimelineScene(Scene):") {
		t.Errorf("script missing scene class:\n%s", resp.Script)
	}
	if !strings.Contains(resp.Script, "timeline[0] = scene_1_exec") {
		t.Errorf("script missing dispatch registration:\n%s", resp.Script)
	}
}

func TestCompileRejectsMalformedTimeline(t *testing.T) {
	srv := testServer(t, nil)
	body := strings.NewReader(`{"timeline": [1, 2, 3]}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/compile", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRenderRequiresInput(t *testing.T) {
	srv := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestJobNotFound(t *testing.T) {
	srv := testServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
