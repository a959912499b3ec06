// Package render runs generated Manim scripts through the manim CLI
// and decodes the resulting video into frame tensors.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/lattice/audio2manim/internal/config"
	"github.com/lattice/audio2manim/internal/logger"
	"github.com/lattice/audio2manim/internal/system"
	"github.com/lattice/audio2manim/internal/validate"
)

// minDiskBytes is the free-space floor before a render is attempted.
// High-quality manim output plus raw frame extraction is disk-hungry.
const minDiskBytes = 500 * 1024 * 1024

// Renderer executes Manim scripts.
type Renderer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// Result holds the outputs of a render.
type Result struct {
	VideoPath string
	Batch     *FrameBatch
	Elapsed   time.Duration
}

// Render validates the script, runs manim in a scratch directory, and
// decodes the output video. The video file is moved into the
// configured output directory before the scratch directory is removed.
func (r *Renderer) Render(ctx context.Context, script string) (*Result, error) {
	if err := validate.Script(script); err != nil {
		return nil, fmt.Errorf("script validation: %w", err)
	}
	if err := system.CheckDiskSpace(os.TempDir(), minDiskBytes); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "audio2manim-render-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	scriptPath := filepath.Join(tmpDir, "script.py")
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		return nil, err
	}

	start := time.Now()
	args := []string{
		"-q" + r.cfg.Quality,
		"--disable_caching",
		"--media_dir", tmpDir,
		"-r", fmt.Sprintf("%d,%d", r.cfg.Width, r.cfg.Height),
		"-o", "output",
		scriptPath,
	}
	logger.Info("starting manim render",
		logger.String("binary", r.cfg.ManimBinary),
		logger.String("quality", r.cfg.Quality),
		logger.String("resolution", fmt.Sprintf("%dx%d", r.cfg.Width, r.cfg.Height)))

	cmd := exec.CommandContext(ctx, r.cfg.ManimBinary, args...)
	cmd.Dir = tmpDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("manim render failed: %w: %s", err, tail(string(out), 2000))
	}

	// Manim nests output under media/videos/<script>/<quality>/.
	videoPath, err := system.FindLatestVideo(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("manim produced no video: %s", tail(string(out), 2000))
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}
	finalPath := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("render_%d.mp4", time.Now().UnixNano()))
	if err := moveFile(videoPath, finalPath); err != nil {
		return nil, err
	}

	batch, err := ExtractFrames(ctx, finalPath, r.cfg.Width, r.cfg.Height, r.cfg.Workers)
	if err != nil {
		return nil, err
	}

	if stats := Analyze(batch); stats.LooksBlank(batch.Frames) {
		logger.Warn("rendered video appears blank",
			logger.Int("frames", batch.Frames),
			logger.Float64("mean_luminance", stats.MeanLuminance))
	}

	elapsed := time.Since(start)
	logger.Info("render complete",
		logger.String("video", finalPath),
		logger.Int("frames", batch.Frames),
		logger.Duration("elapsed", elapsed))
	return &Result{VideoPath: finalPath, Batch: batch, Elapsed: elapsed}, nil
}

// MuxAudio combines a rendered video with the narration audio track.
// The video stream is copied; only the audio is encoded.
func (r *Renderer) MuxAudio(ctx context.Context, videoPath, audioPath, outPath string) error {
	encoder := r.cfg.VideoEncoder
	if encoder == "" {
		encoder, _ = system.GetBestH264Encoder()
	}
	args := []string{"-y", "-v", "error",
		"-i", videoPath, "-i", audioPath,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy", "-c:a", "aac",
		"-shortest", outPath,
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		// Some containers reject stream copy; retry with a real encode.
		logger.Warn("stream copy failed, re-encoding",
			logger.String("encoder", encoder), logger.ErrorField(err))
		args = []string{"-y", "-v", "error",
			"-i", videoPath, "-i", audioPath,
			"-map", "0:v:0", "-map", "1:a:0",
			"-c:v", encoder, "-c:a", "aac",
			"-shortest", outPath,
		}
		cmd = exec.CommandContext(ctx, "ffmpeg", args...)
		out, err = cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("mux audio: %w: %s", err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Rename fails across filesystems; fall back to copy.
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
