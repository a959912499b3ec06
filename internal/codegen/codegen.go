// Package codegen turns free-form scene prompts into Manim code
// fragments. The rule-based generator is deterministic; callers that
// need richer output can provide their own Generator.
package codegen

import (
	"fmt"
	"strings"

	"github.com/lattice/audio2manim/internal/cache"
	"github.com/lattice/audio2manim/internal/logger"
	"github.com/lattice/audio2manim/internal/presets"
)

// Generator produces a Manim code fragment for a prompt. A failure is
// recoverable: the compiler substitutes a placeholder fragment.
type Generator interface {
	Generate(prompt, visualType string) (string, error)
}

// RuleBased matches shape, color, animation and position keywords in
// the prompt against the preset tables. Same prompt, same output.
type RuleBased struct {
	Cache cache.Cache // optional
}

// NewRuleBased creates a generator; the cache may be nil.
func NewRuleBased(c cache.Cache) *RuleBased {
	return &RuleBased{Cache: c}
}

// Generate builds a code fragment from the prompt.
func (g *RuleBased) Generate(prompt, visualType string) (string, error) {
	key := cache.Key("codegen", prompt, visualType)
	if g.Cache != nil {
		if data, ok := g.Cache.Get(key); ok {
			logger.Debug("using cached code fragment", logger.String("prompt", truncate(prompt, 50)))
			return string(data), nil
		}
	}

	code := g.build(prompt)

	if g.Cache != nil {
		if err := g.Cache.Set(key, []byte(code)); err != nil {
			logger.Warn("failed to cache code fragment", logger.ErrorField(err))
		}
	}
	return code, nil
}

func (g *RuleBased) build(prompt string) string {
	lower := strings.ToLower(prompt)

	color := detectColor(lower)
	shapeCode := detectShape(lower, color)
	position := detectPosition(lower)
	animations := detectAnimations(lower)

	var b strings.Builder
	fmt.Fprintf(&b, "# Generated from prompt: %q\n", truncate(prompt, 80))
	fmt.Fprintf(&b, "obj = %s\n", shapeCode)
	fmt.Fprintf(&b, "obj.%s\n", position)
	b.WriteString("self.add(obj)\n")

	if len(animations) == 0 {
		b.WriteString("self.play(Create(obj))")
		return b.String()
	}
	for i, anim := range animations {
		fmt.Fprintf(&b, "self.play(%s)", anim)
		if i < len(animations)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// detectColor returns the first preset color mentioned in the prompt,
// defaulting to BLUE.
func detectColor(lower string) string {
	for _, c := range presets.Colors {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return "BLUE"
}

// shapeOrder fixes the match priority so that a prompt naming several
// shapes always resolves the same way.
var shapeOrder = []string{
	"circle", "square", "rectangle", "triangle", "polygon", "star",
	"ellipse", "line", "arrow",
	"sphere", "cube", "torus", "cylinder", "cone", "prism",
}

// detectShape returns a construction snippet for the first shape named
// in the prompt, defaulting to a circle.
func detectShape(lower, color string) string {
	for _, name := range shapeOrder {
		if strings.Contains(lower, name) {
			code, _ := presets.Shape(name, color)
			return code
		}
	}
	code, _ := presets.Shape("circle", color)
	return code
}

func detectPosition(lower string) string {
	switch {
	case strings.Contains(lower, "left"):
		return "to_edge(LEFT)"
	case strings.Contains(lower, "right"):
		return "to_edge(RIGHT)"
	case strings.Contains(lower, "top"):
		return "to_edge(UP)"
	case strings.Contains(lower, "bottom"):
		return "to_edge(DOWN)"
	default:
		return "move_to(ORIGIN)"
	}
}

func detectAnimations(lower string) []string {
	var anims []string
	if strings.Contains(lower, "rotate") || strings.Contains(lower, "spinning") {
		anims = append(anims, "Rotate(obj, PI, run_time=2)")
	}
	if strings.Contains(lower, "fade") || strings.Contains(lower, "appear") {
		anims = append(anims, "FadeIn(obj)")
	}
	if strings.Contains(lower, "scale") || strings.Contains(lower, "grow") {
		anims = append(anims, "obj.animate.scale(1.5)")
	}
	if strings.Contains(lower, "move") || strings.Contains(lower, "shift") {
		switch {
		case strings.Contains(lower, "left"):
			anims = append(anims, "obj.animate.shift(LEFT*2)")
		case strings.Contains(lower, "right"):
			anims = append(anims, "obj.animate.shift(RIGHT*2)")
		case strings.Contains(lower, "up"):
			anims = append(anims, "obj.animate.shift(UP*2)")
		case strings.Contains(lower, "down"):
			anims = append(anims, "obj.animate.shift(DOWN*2)")
		}
	}
	return anims
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
