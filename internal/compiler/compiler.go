// Package compiler renders a timeline into a single Manim script.
// Layers' code fragments are embedded verbatim; syntactic correctness
// of the result is the validator's job, not the compiler's.
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lattice/audio2manim/internal/timeline"
)

// Options controls script generation. The same timeline with the same
// options always compiles to byte-identical output.
type Options struct {
	// TimedDispatch selects the timed-dispatch strategy: scene
	// callables registered in a start-time map handed to an external
	// scheduler. When false, layers play sequentially back-to-back.
	TimedDispatch bool
	// FrameRate is embedded into the script's Manim config.
	FrameRate int
	// Background is the scene background color, a Manim color name or
	// a hex string. Empty defaults to BLACK.
	Background string
	// Captions is opaque caption code spliced in before the playback
	// trailer. Empty means no captions.
	Captions string
}

const scriptHeader = `from manim import *
try:
    from manim_play_timeline import play_timeline
    HAS_TIMELINE = True
except ImportError:
    HAS_TIMELINE = False
    print("Warning: manim-play-timeline not installed. Using sequential playback.")

`

// Compile generates the full Manim script for the timeline.
func Compile(tl *timeline.Timeline, opts Options) string {
	var b strings.Builder
	b.WriteString(scriptHeader)
	fmt.Fprintf(&b, "config.frame_rate = %d\n", frameRate(opts))
	fmt.Fprintf(&b, "config.background_color = %s\n\n", background(opts))
	b.WriteString("class TimelineScene(Scene):\n")
	b.WriteString("    def construct(self):\n")

	layers := tl.Layers()
	if len(layers) == 0 {
		b.WriteString("        # No scenes in timeline\n        pass\n")
		return b.String()
	}

	if opts.TimedDispatch {
		writeTimedDispatch(&b, layers, opts.Captions)
	} else {
		writeSequential(&b, layers, opts.Captions)
	}
	return b.String()
}

// writeTimedDispatch wraps each layer in a named callable and registers
// it in a map keyed by start time. The trailer hands the map to the
// external scheduler, or walks the keys in order when the library turns
// out to be missing at run time.
func writeTimedDispatch(b *strings.Builder, layers []*timeline.SceneLayer, captions string) {
	b.WriteString("        timeline = {}\n")

	for _, layer := range layers {
		code := layer.ManimCode
		if code == "" {
			code = PlaceholderFragment(layer)
		}

		fmt.Fprintf(b, "\n        # Scene %d at %.2fs\n", layer.ID, layer.StartTime)
		fmt.Fprintf(b, "        def scene_%d_exec():\n", layer.ID)
		b.WriteString(Indent(code, 12))
		b.WriteString("\n")
		fmt.Fprintf(b, "        timeline[%s] = scene_%d_exec\n", pyFloat(layer.StartTime), layer.ID)
	}

	writeCaptions(b, captions)

	b.WriteString(`
        # Play timeline
        if HAS_TIMELINE:
            play_timeline(self, timeline)
        else:
            # Fallback: sequential playback
            for time_key in sorted(timeline.keys()):
                timeline[time_key]()
`)
}

// writeSequential emits each layer's code in sorted order followed by a
// wait matching its duration.
func writeSequential(b *strings.Builder, layers []*timeline.SceneLayer, captions string) {
	b.WriteString("        # Sequential scene playback (timed dispatch unavailable)\n")
	for _, layer := range layers {
		code := layer.ManimCode
		if code == "" {
			code = PlaceholderFragment(layer)
		}
		fmt.Fprintf(b, "\n        # Scene %d\n", layer.ID)
		b.WriteString(Indent(code, 8))
		b.WriteString("\n")
		fmt.Fprintf(b, "        self.wait(%.2f)\n", layer.Duration())
	}
	writeCaptions(b, captions)
}

func writeCaptions(b *strings.Builder, captions string) {
	if captions == "" {
		return
	}
	b.WriteString("\n        # Captions\n")
	b.WriteString(Indent(captions, 8))
	b.WriteString("\n")
}

// PlaceholderFragment builds the neutral fallback snippet for a layer
// without generated code: a circle reveal sized to the layer's clamped
// duration. It keeps the compiled script well-formed even for entirely
// empty layers.
func PlaceholderFragment(layer *timeline.SceneLayer) string {
	return fmt.Sprintf(`# Scene %d: %s
# Auto-generated placeholder
circle = Circle(radius=1, color=BLUE)
self.add(circle)
self.play(Create(circle), run_time=%.2f)`, layer.ID, promptLabel(layer.Prompt), layer.Duration())
}

// Indent shifts every non-empty line of a fragment right by the given
// number of spaces. Blank lines stay blank so the script never carries
// trailing-whitespace-only lines.
func Indent(code string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// pyFloat formats a float as a Python literal without trailing noise.
func pyFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func promptLabel(prompt string) string {
	if prompt == "" {
		return "Untitled"
	}
	if runes := []rune(prompt); len(runes) > 50 {
		return string(runes[:50])
	}
	return prompt
}

// background renders the color option as a Python expression: Manim
// color constants stay bare identifiers, anything else is quoted.
func background(opts Options) string {
	color := opts.Background
	if color == "" {
		color = "BLACK"
	}
	for _, r := range color {
		if (r < 'A' || r > 'Z') && r != '_' {
			return fmt.Sprintf("%q", color)
		}
	}
	return color
}

func frameRate(opts Options) int {
	if opts.FrameRate <= 0 {
		return 30
	}
	return opts.FrameRate
}
