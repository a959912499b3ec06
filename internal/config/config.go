// Package config loads runtime settings from the environment, with an
// optional .env file and YAML quality presets.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries all runtime settings.
type Config struct {
	// Rendering
	Width        int
	Height       int
	FPS          int
	Quality      string // manim quality flag: l, m, h, k
	Background   string // manim color name or hex, e.g. BLACK or #1e1e1e
	ManimBinary  string
	OutputDir    string
	Workers      int
	VideoEncoder string

	// Transcription
	WhisperBinary string
	WhisperModel  string
	Language      string

	// Captions
	CaptionStyle    string
	CaptionPosition string
	CaptionFont     string
	CaptionFontSize int

	// Cache
	CacheDir      string
	CacheTTLHours int
	RedisAddr     string // empty disables redis, file cache is used
	RedisPassword string
	RedisDB       int

	// Server
	ServerAddr string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Width:        getEnvInt("A2M_WIDTH", 1280),
		Height:       getEnvInt("A2M_HEIGHT", 720),
		FPS:          getEnvInt("A2M_FPS", 30),
		Quality:      getEnv("A2M_QUALITY", "l"),
		Background:   getEnv("A2M_BACKGROUND", "BLACK"),
		ManimBinary:  getEnv("A2M_MANIM_BIN", "manim"),
		OutputDir:    getEnv("A2M_OUTPUT_DIR", "output"),
		Workers:      getEnvInt("A2M_WORKERS", 4),
		VideoEncoder: getEnv("A2M_VIDEO_ENCODER", ""),

		WhisperBinary: getEnv("A2M_WHISPER_BIN", "whisper"),
		WhisperModel:  getEnv("A2M_WHISPER_MODEL", "base"),
		Language:      getEnv("A2M_LANGUAGE", ""),

		CaptionStyle:    getEnv("A2M_CAPTION_STYLE", "sentence"),
		CaptionPosition: getEnv("A2M_CAPTION_POSITION", "bottom"),
		CaptionFont:     getEnv("A2M_CAPTION_FONT", "Arial"),
		CaptionFontSize: getEnvInt("A2M_CAPTION_FONT_SIZE", 48),

		CacheDir:      getEnv("A2M_CACHE_DIR", ""),
		CacheTTLHours: getEnvInt("A2M_CACHE_TTL_HOURS", 24*7),
		RedisAddr:     getEnv("A2M_REDIS_ADDR", ""),
		RedisPassword: getEnv("A2M_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("A2M_REDIS_DB", 0),

		ServerAddr: getEnv("A2M_SERVER_ADDR", ":8765"),

		LogLevel: getEnv("A2M_LOG_LEVEL", "info"),
		LogFile:  getEnv("A2M_LOG_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", c.FPS)
	}
	switch c.Quality {
	case "l", "m", "h", "k":
	default:
		return fmt.Errorf("invalid quality %q, expected one of l, m, h, k", c.Quality)
	}
	if c.Background == "" {
		c.Background = "BLACK"
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}

// Preset is a named render quality bundle loadable from YAML.
type Preset struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	FPS     int    `yaml:"fps"`
	Quality string `yaml:"quality"`
}

var builtinPresets = map[string]Preset{
	"preview":    {Width: 854, Height: 480, FPS: 15, Quality: "l"},
	"standard":   {Width: 1280, Height: 720, FPS: 30, Quality: "m"},
	"high":       {Width: 1920, Height: 1080, FPS: 60, Quality: "h"},
	"production": {Width: 3840, Height: 2160, FPS: 60, Quality: "k"},
}

// LoadPresets returns the built-in quality presets, overlaid with any
// definitions from the YAML file at path. An empty path returns just
// the built-ins.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := make(map[string]Preset, len(builtinPresets))
	for name, p := range builtinPresets {
		presets[name] = p
	}
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	var loaded map[string]Preset
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	for name, p := range loaded {
		presets[name] = p
	}
	return presets, nil
}

// ApplyPreset overwrites the render settings from a named preset.
func (c *Config) ApplyPreset(presets map[string]Preset, name string) error {
	p, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	if p.Width > 0 {
		c.Width = p.Width
	}
	if p.Height > 0 {
		c.Height = p.Height
	}
	if p.FPS > 0 {
		c.FPS = p.FPS
	}
	if p.Quality != "" {
		c.Quality = p.Quality
	}
	return c.validate()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
