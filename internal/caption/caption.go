// Package caption generates Manim overlay code that displays the
// transcribed narration, synchronized to word timings. The output is
// an opaque fragment the compiler splices in before the playback
// trailer.
package caption

import (
	"fmt"
	"strings"

	"github.com/lattice/audio2manim/internal/transcribe"
)

// Style selects the caption animation.
type Style string

const (
	StyleWordByWord Style = "word_by_word"
	StyleSentence   Style = "sentence"
	StyleHybrid     Style = "hybrid"
)

// Position anchors the captions on screen.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionCenter Position = "center"
)

// Config bundles font and color settings.
type Config struct {
	Font      string
	FontSize  int
	TextColor string
	BGColor   string // empty or TRANSPARENT disables the backdrop
}

// DefaultConfig returns the caption defaults: Arial 48 white, no
// backdrop.
func DefaultConfig() Config {
	return Config{Font: "Arial", FontSize: 48, TextColor: "WHITE"}
}

// minWordDuration keeps transforms visible even for clipped words.
const minWordDuration = 0.1

// Generate builds the caption fragment for the given style.
func Generate(words []transcribe.Word, style Style, pos Position, cfg Config) (string, error) {
	switch style {
	case StyleWordByWord:
		return wordByWord(words, pos, cfg), nil
	case StyleSentence:
		return sentences(words, pos, cfg), nil
	case StyleHybrid:
		return hybrid(words, pos, cfg), nil
	default:
		return "", fmt.Errorf("unknown caption style %q", style)
	}
}

// wordByWord builds karaoke-style captions: the displayed text grows a
// word at a time via ReplacementTransform.
func wordByWord(words []transcribe.Word, pos Position, cfg Config) string {
	valid := nonEmpty(words)
	if len(valid) == 0 {
		return "# No words to display\n"
	}

	var b strings.Builder
	b.WriteString("# Word-by-word caption animation\n")
	fmt.Fprintf(&b, "caption_text = Text(\"\", font=%q, font_size=%d, color=%s)\n", cfg.Font, cfg.FontSize, cfg.TextColor)
	fmt.Fprintf(&b, "caption_text.%s\n", place(pos, 0.5))
	writeBackdrop(&b, pos, cfg, cfg.FontSize+cfg.FontSize/2)
	b.WriteString("self.add(caption_text)\n")

	shown := make([]string, 0, len(valid))
	for i, word := range valid {
		shown = append(shown, strings.TrimSpace(word.Word))
		duration := word.End - word.Start
		if duration < minWordDuration {
			duration = minWordDuration
		}

		fmt.Fprintf(&b, "\n# Word %d: %q (%.2fs - %.2fs)\n", i, strings.TrimSpace(word.Word), word.Start, word.End)
		fmt.Fprintf(&b, "next_caption = Text(\"%s\", font=%q, font_size=%d, color=%s)\n",
			escape(strings.Join(shown, " ")), cfg.Font, cfg.FontSize, cfg.TextColor)
		fmt.Fprintf(&b, "next_caption.%s\n", place(pos, 0.5))
		fmt.Fprintf(&b, "self.play(ReplacementTransform(caption_text, next_caption), run_time=%.3f)\n", duration)
		b.WriteString("caption_text = next_caption\n")
	}
	return b.String()
}

// sentences shows a full sentence at a time for the span its words
// cover.
func sentences(words []transcribe.Word, pos Position, cfg Config) string {
	groups := groupSentences(words)
	if len(groups) == 0 {
		return "# No words to display\n"
	}

	var b strings.Builder
	b.WriteString("# Sentence captions\n")
	fmt.Fprintf(&b, "caption_text = Text(\"\", font=%q, font_size=%d, color=%s)\n", cfg.Font, cfg.FontSize, cfg.TextColor)
	fmt.Fprintf(&b, "caption_text.%s\n", place(pos, 0.5))
	writeBackdrop(&b, pos, cfg, cfg.FontSize*2)
	b.WriteString("self.add(caption_text)\n")

	for i, group := range groups {
		text := joinWords(group)
		duration := group[len(group)-1].End - group[0].Start
		if duration < minWordDuration {
			duration = minWordDuration
		}

		fmt.Fprintf(&b, "\n# Sentence %d (%.2fs - %.2fs)\n", i, group[0].Start, group[len(group)-1].End)
		fmt.Fprintf(&b, "sentence_obj = Text(\"%s\", font=%q, font_size=%d, color=%s)\n",
			escape(text), cfg.Font, cfg.FontSize, cfg.TextColor)
		fmt.Fprintf(&b, "sentence_obj.%s\n", place(pos, 0.5))
		fmt.Fprintf(&b, "self.play(ReplacementTransform(caption_text, sentence_obj), run_time=%.3f)\n", duration)
		b.WriteString("caption_text = sentence_obj\n")
		b.WriteString("self.wait(0.1)\n")
	}
	return b.String()
}

// hybrid stacks a highlighted current word under the full sentence.
func hybrid(words []transcribe.Word, pos Position, cfg Config) string {
	groups := groupSentences(words)
	if len(groups) == 0 {
		return "# No words to display\n"
	}

	var b strings.Builder
	b.WriteString("# Hybrid captions (word-by-word + sentence)\n")
	fmt.Fprintf(&b, "sentence_text = Text(\"\", font=%q, font_size=%d, color=%s)\n", cfg.Font, cfg.FontSize, cfg.TextColor)
	fmt.Fprintf(&b, "word_text = Text(\"\", font=%q, font_size=%d, color=YELLOW)\n", cfg.Font, cfg.FontSize*7/10)
	fmt.Fprintf(&b, "sentence_text.%s\n", place(pos, 0.7))
	fmt.Fprintf(&b, "word_text.%s\n", place(pos, 0.3))
	writeBackdrop(&b, pos, cfg, cfg.FontSize*3)
	b.WriteString("self.add(sentence_text, word_text)\n")

	for _, group := range groups {
		sentence := escape(joinWords(group))
		for _, word := range group {
			text := strings.TrimSpace(word.Word)
			duration := word.End - word.Start
			if duration < minWordDuration {
				duration = minWordDuration
			}

			fmt.Fprintf(&b, "\n# Word %q\n", text)
			fmt.Fprintf(&b, "word_obj = Text(\"%s\", font=%q, font_size=%d, color=YELLOW)\n",
				escape(text), cfg.Font, cfg.FontSize*7/10)
			fmt.Fprintf(&b, "sentence_obj = Text(\"%s\", font=%q, font_size=%d, color=%s)\n",
				sentence, cfg.Font, cfg.FontSize, cfg.TextColor)
			fmt.Fprintf(&b, "word_obj.%s\n", place(pos, 0.3))
			fmt.Fprintf(&b, "sentence_obj.%s\n", place(pos, 0.7))
			fmt.Fprintf(&b, "self.play(ReplacementTransform(word_text, word_obj), ReplacementTransform(sentence_text, sentence_obj), run_time=%.3f)\n", duration)
			b.WriteString("word_text = word_obj\n")
			b.WriteString("sentence_text = sentence_obj\n")
		}
	}
	return b.String()
}

func writeBackdrop(b *strings.Builder, pos Position, cfg Config, heightPx int) {
	if cfg.BGColor == "" || cfg.BGColor == "TRANSPARENT" {
		return
	}
	b.WriteString("bg_rect = Rectangle(\n")
	b.WriteString("    width=config.frame_width * 0.9,\n")
	fmt.Fprintf(b, "    height=%d / config.pixel_height * config.frame_height,\n", heightPx)
	fmt.Fprintf(b, "    fill_opacity=0.7,\n    fill_color=%s,\n    stroke_width=0\n)\n", cfg.BGColor)
	fmt.Fprintf(b, "bg_rect.%s\n", place(pos, 0.3))
	b.WriteString("self.add(bg_rect)\n")
}

// groupSentences splits on sentence-final punctuation; a trailing
// partial sentence is kept. Empty words are dropped first.
func groupSentences(words []transcribe.Word) [][]transcribe.Word {
	var groups [][]transcribe.Word
	var current []transcribe.Word
	for _, w := range nonEmpty(words) {
		current = append(current, w)
		text := strings.TrimSpace(w.Word)
		if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
			groups = append(groups, current)
			current = nil
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func nonEmpty(words []transcribe.Word) []transcribe.Word {
	var out []transcribe.Word
	for _, w := range words {
		if strings.TrimSpace(w.Word) != "" {
			out = append(out, w)
		}
	}
	return out
}

func joinWords(words []transcribe.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strings.TrimSpace(w.Word)
	}
	return strings.Join(parts, " ")
}

// place returns the Python method call that positions a mobject at
// the given screen anchor.
func place(pos Position, buff float64) string {
	switch pos {
	case PositionTop:
		return fmt.Sprintf("to_edge(UP, buff=%.1f)", buff)
	case PositionCenter:
		return "move_to(ORIGIN)"
	default:
		return fmt.Sprintf("to_edge(DOWN, buff=%.1f)", buff)
	}
}

// escape prepares text for embedding in a double-quoted Python string.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
