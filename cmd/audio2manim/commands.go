package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lattice/audio2manim/internal/compiler"
	"github.com/lattice/audio2manim/internal/segment"
	"github.com/lattice/audio2manim/internal/server"
	"github.com/lattice/audio2manim/internal/system"
	"github.com/lattice/audio2manim/internal/timeline"
)

// newDetectCmd transcribes audio and writes the detected timeline as
// JSON.
func newDetectCmd() *cobra.Command {
	var (
		method string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "detect [audio file or directory]",
		Short: "Detect scene boundaries from narration audio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pipeline, err := setup("")
			if err != nil {
				return err
			}
			audioPath, err := resolveAudio(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			tl, words, err := pipeline.PrepareTimeline(ctx, nil, audioPath)
			if err != nil {
				return err
			}
			if method != string(segment.MethodSentence) {
				redone := timeline.New(tl.AudioDuration)
				candidates, err := segment.Detect(words, segment.Method(method), tl.AudioDuration)
				if err != nil {
					return err
				}
				for _, c := range candidates {
					redone.AddScene(c)
				}
				tl = redone
			}

			data, err := tl.Serialize()
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Println(string(data))
				return nil
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&method, "method", string(segment.MethodSentence), "segmentation method: sentence or time")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write timeline JSON to file instead of stdout")
	return cmd
}

// newCompileCmd turns a timeline JSON file into a Manim script.
func newCompileCmd() *cobra.Command {
	var (
		out        string
		sequential bool
		preset     string
	)
	cmd := &cobra.Command{
		Use:   "compile <timeline.json>",
		Short: "Compile a timeline into a Manim script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pipeline, err := setup(preset)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tl, err := timeline.Deserialize(data)
			if err != nil {
				return err
			}
			if err := pipeline.FillManimCode(tl); err != nil {
				return err
			}

			script := compiler.Compile(tl, compiler.Options{
				TimedDispatch: !sequential,
				FrameRate:     cfg.FPS,
				Background:    cfg.Background,
			})
			if out == "" {
				fmt.Print(script)
				return nil
			}
			return os.WriteFile(out, []byte(script), 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write script to file instead of stdout")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "emit sequential playback instead of timed dispatch")
	cmd.Flags().StringVar(&preset, "preset", "", "quality preset: preview, standard, high, production")
	return cmd
}

// newRenderCmd runs the full pipeline against an audio file, an
// optional timeline, or both.
func newRenderCmd() *cobra.Command {
	var (
		timelinePath string
		preset       string
	)
	cmd := &cobra.Command{
		Use:   "render [audio file or directory]",
		Short: "Render audio and/or a timeline into a video",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pipeline, err := setup(preset)
			if err != nil {
				return err
			}
			system.InitResourceLimits()

			var audioPath string
			if len(args) > 0 || timelinePath == "" {
				audioPath, err = resolveAudio(args)
				if err != nil {
					return err
				}
			}

			var tl *timeline.Timeline
			if timelinePath != "" {
				data, err := os.ReadFile(timelinePath)
				if err != nil {
					return err
				}
				tl, err = timeline.Deserialize(data)
				if err != nil {
					return err
				}
			}

			result, err := pipeline.Run(cmd.Context(), tl, audioPath)
			if err != nil {
				return err
			}
			fmt.Printf("rendered %d frames to %s in %s\n",
				result.Batch.Frames, result.VideoPath, result.Elapsed.Round(100*time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&timelinePath, "timeline", "t", "", "timeline JSON file; scenes are auto-detected when omitted")
	cmd.Flags().StringVar(&preset, "preset", "", "quality preset: preview, standard, high, production")
	return cmd
}

// newServeCmd runs the HTTP API until interrupted.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, pipeline, err := setup("")
			if err != nil {
				return err
			}
			system.InitResourceLimits()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, pipeline).ListenAndServe(ctx)
		},
	}
}

// resolveAudio accepts an explicit path or scans the current directory
// for the newest audio file.
func resolveAudio(args []string) (string, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return system.FindLatestAudio(target)
	}
	return target, nil
}
