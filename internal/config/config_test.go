package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("default resolution = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.FPS != 30 {
		t.Errorf("default fps = %d, want 30", cfg.FPS)
	}
	if cfg.Quality != "l" {
		t.Errorf("default quality = %q, want l", cfg.Quality)
	}
	if cfg.Background != "BLACK" {
		t.Errorf("default background = %q, want BLACK", cfg.Background)
	}
	if cfg.CaptionStyle != "sentence" {
		t.Errorf("default caption style = %q", cfg.CaptionStyle)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("A2M_FPS", "60")
	t.Setenv("A2M_QUALITY", "h")
	t.Setenv("A2M_BACKGROUND", "#1e1e1e")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != 60 {
		t.Errorf("fps = %d, want 60", cfg.FPS)
	}
	if cfg.Quality != "h" {
		t.Errorf("quality = %q, want h", cfg.Quality)
	}
	if cfg.Background != "#1e1e1e" {
		t.Errorf("background = %q, want #1e1e1e", cfg.Background)
	}
}

func TestInvalidQualityRejected(t *testing.T) {
	t.Setenv("A2M_QUALITY", "ultra")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid quality")
	}
}

func TestMalformedIntFallsBack(t *testing.T) {
	t.Setenv("A2M_FPS", "thirty")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != 30 {
		t.Errorf("fps = %d, want default 30", cfg.FPS)
	}
}

func TestBuiltinPresets(t *testing.T) {
	presets, err := LoadPresets("")
	if err != nil {
		t.Fatal(err)
	}
	p, ok := presets["high"]
	if !ok {
		t.Fatal("high preset missing")
	}
	if p.Width != 1920 || p.FPS != 60 {
		t.Errorf("high preset = %+v", p)
	}
}

func TestPresetFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	data := []byte("draft:\n  width: 640\n  height: 360\n  fps: 10\n  quality: l\nhigh:\n  fps: 30\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatal(err)
	}
	if presets["draft"].Width != 640 {
		t.Errorf("draft preset not loaded: %+v", presets["draft"])
	}
	// File definitions replace built-ins wholesale.
	if presets["high"].FPS != 30 {
		t.Errorf("high preset not overridden: %+v", presets["high"])
	}
}

func TestApplyPreset(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	presets, _ := LoadPresets("")
	if err := cfg.ApplyPreset(presets, "preview"); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 854 || cfg.Quality != "l" {
		t.Errorf("preset not applied: %dx%d %q", cfg.Width, cfg.Height, cfg.Quality)
	}
	if err := cfg.ApplyPreset(presets, "nope"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}
