package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lattice/audio2manim/internal/cache"
	"github.com/lattice/audio2manim/internal/codegen"
	"github.com/lattice/audio2manim/internal/config"
	"github.com/lattice/audio2manim/internal/logger"
	"github.com/lattice/audio2manim/internal/render"
	"github.com/lattice/audio2manim/internal/transcribe"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "audio2manim",
		Short:        "Turn narrated audio into synchronized Manim animations",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newDetectCmd(), newCompileCmd(), newRenderCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config, initializes logging, and builds the pipeline
// shared by all subcommands.
func setup(preset string) (*config.Config, *render.Pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if preset != "" {
		presets, err := config.LoadPresets(os.Getenv("A2M_PRESETS_FILE"))
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.ApplyPreset(presets, preset); err != nil {
			return nil, nil, err
		}
	}

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogFile,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 14,
	})

	store, err := buildCache(cfg)
	if err != nil {
		return nil, nil, err
	}

	transcriber := transcribe.NewWhisperCLI(cfg.WhisperModel, cfg.Language, store)
	transcriber.Binary = cfg.WhisperBinary
	generator := &codegen.RuleBased{Cache: store}
	return cfg, render.NewPipeline(cfg, transcriber, generator), nil
}

func buildCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cacheTTL(cfg))
		if err != nil {
			logger.Warn("redis unavailable, using file cache", logger.ErrorField(err))
		} else {
			return store, nil
		}
	}
	return cache.NewFileCache(cfg.CacheDir, cacheTTL(cfg))
}

func cacheTTL(cfg *config.Config) time.Duration {
	return time.Duration(cfg.CacheTTLHours) * time.Hour
}
