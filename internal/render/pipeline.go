package render

import (
	"context"
	"fmt"
	"os"

	"github.com/lattice/audio2manim/internal/caption"
	"github.com/lattice/audio2manim/internal/codegen"
	"github.com/lattice/audio2manim/internal/compiler"
	"github.com/lattice/audio2manim/internal/config"
	"github.com/lattice/audio2manim/internal/dataviz"
	"github.com/lattice/audio2manim/internal/logger"
	"github.com/lattice/audio2manim/internal/segment"
	"github.com/lattice/audio2manim/internal/system"
	"github.com/lattice/audio2manim/internal/timeline"
	"github.com/lattice/audio2manim/internal/transcribe"
)

// EmptyTimelineError is returned when a render is requested for a
// timeline with no scenes and no transcription to derive them from.
type EmptyTimelineError struct {
	AudioPath string
}

func (e *EmptyTimelineError) Error() string {
	if e.AudioPath != "" {
		return fmt.Sprintf("timeline is empty and no scenes could be derived from %s", e.AudioPath)
	}
	return "timeline is empty: add scenes or provide audio for auto-detection"
}

// Pipeline orchestrates the full audio-to-animation flow.
type Pipeline struct {
	cfg         *config.Config
	renderer    *Renderer
	transcriber transcribe.Transcriber
	generator   codegen.Generator
}

func NewPipeline(cfg *config.Config, t transcribe.Transcriber, g codegen.Generator) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		renderer:    New(cfg),
		transcriber: t,
		generator:   g,
	}
}

// Renderer exposes the underlying renderer for callers that already
// hold a compiled script.
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// PrepareTimeline returns a timeline ready for compilation. When tl
// already has scenes it is returned as is; otherwise scenes are
// detected from the audio's word timestamps. A nil tl starts empty.
func (p *Pipeline) PrepareTimeline(ctx context.Context, tl *timeline.Timeline, audioPath string) (*timeline.Timeline, []transcribe.Word, error) {
	var words []transcribe.Word
	if audioPath != "" {
		var err error
		words, err = p.transcriber.Transcribe(ctx, audioPath)
		if err != nil {
			return nil, nil, fmt.Errorf("transcribe %s: %w", audioPath, err)
		}
	}

	if tl == nil {
		tl = timeline.New(0)
	}
	if audioPath != "" {
		duration, err := system.GetAudioDuration(ctx, audioPath)
		if err != nil {
			logger.Warn("audio duration probe failed, using word timestamps",
				logger.ErrorField(err))
			duration = transcribe.TotalDuration(words)
		}
		tl.ExtendAudioDuration(duration)
	}

	if tl.Len() > 0 {
		return tl, words, nil
	}

	if len(words) == 0 {
		return nil, nil, &EmptyTimelineError{AudioPath: audioPath}
	}

	candidates, err := segment.Detect(words, segment.MethodSentence, tl.AudioDuration)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range candidates {
		tl.AddScene(c)
	}
	logger.Info("scenes auto-detected", logger.Int("count", tl.Len()))

	if tl.Len() == 0 {
		return nil, nil, &EmptyTimelineError{AudioPath: audioPath}
	}
	return tl, words, nil
}

// FillManimCode generates code for every scene that has none, using
// the scene prompt. A generator failure is recovered with a
// placeholder fragment so one bad scene never blocks compilation.
func (p *Pipeline) FillManimCode(tl *timeline.Timeline) error {
	for _, layer := range tl.Layers() {
		if layer.ManimCode != "" {
			continue
		}
		var code string
		var err error
		if layer.VisualType == timeline.VisualDataViz {
			code, err = dataviz.ForLayer(layer)
		} else {
			code, err = p.generator.Generate(layer.Prompt, layer.VisualType)
		}
		if err != nil {
			logger.Warn("code generation failed, using placeholder",
				logger.Int("scene", layer.ID), logger.ErrorField(err))
			code = ""
		}
		if code == "" {
			code = compiler.PlaceholderFragment(layer)
		}
		layer.ManimCode = code
	}
	return nil
}

// Run executes the full pipeline: transcription, scene detection, code
// generation, compilation, rendering, and audio muxing. The returned
// result's VideoPath points at the muxed file when audio was supplied.
func (p *Pipeline) Run(ctx context.Context, tl *timeline.Timeline, audioPath string) (*Result, error) {
	tl, words, err := p.PrepareTimeline(ctx, tl, audioPath)
	if err != nil {
		return nil, err
	}
	if err := p.FillManimCode(tl); err != nil {
		return nil, err
	}

	opts := compiler.Options{
		TimedDispatch: true,
		FrameRate:     p.cfg.FPS,
		Background:    p.cfg.Background,
	}
	if len(words) > 0 && p.cfg.CaptionStyle != "" && p.cfg.CaptionStyle != "none" {
		captions, err := caption.Generate(words,
			caption.Style(p.cfg.CaptionStyle),
			caption.Position(p.cfg.CaptionPosition),
			caption.Config{
				Font:      p.cfg.CaptionFont,
				FontSize:  p.cfg.CaptionFontSize,
				TextColor: "WHITE",
			})
		if err != nil {
			return nil, err
		}
		opts.Captions = captions
	}

	script := compiler.Compile(tl, opts)
	result, err := p.renderer.Render(ctx, script)
	if err != nil {
		return nil, err
	}

	if audioPath != "" {
		muxed := result.VideoPath + ".muxed.mp4"
		if err := p.renderer.MuxAudio(ctx, result.VideoPath, audioPath, muxed); err != nil {
			return nil, err
		}
		if err := os.Rename(muxed, result.VideoPath); err != nil {
			return nil, err
		}
	}
	return result, nil
}
