// Package segment derives scene boundaries from word-level
// transcription timestamps. It produces candidate layers only; the
// timeline decides whether to insert them and assigns their IDs.
package segment

import (
	"fmt"
	"strings"

	"github.com/lattice/audio2manim/internal/timeline"
	"github.com/lattice/audio2manim/internal/transcribe"
)

// Method selects a boundary-detection strategy.
type Method string

const (
	// MethodSentence closes a group when a word ends with sentence
	// punctuation.
	MethodSentence Method = "sentence"
	// MethodInterval partitions the audio into fixed-width windows and
	// needs no word data.
	MethodInterval Method = "time"
)

// IntervalWidth is the default window size for MethodInterval, seconds.
const IntervalWidth = 5.0

// sentenceTerminators close a word group when the trimmed word text
// ends with any of them.
var sentenceTerminators = []string{".", "!", "?", ":", ";"}

// Detect converts word timestamps into candidate scene layers using the
// given method. Candidates carry no IDs and are not inserted anywhere.
// audioDuration is only consulted by MethodInterval.
func Detect(words []transcribe.Word, method Method, audioDuration float64) ([]*timeline.SceneLayer, error) {
	switch method {
	case MethodSentence:
		return detectSentences(words), nil
	case MethodInterval:
		return detectIntervals(audioDuration), nil
	default:
		return nil, fmt.Errorf("unknown detection method %q", method)
	}
}

// detectSentences groups words into sentences. Words whose trimmed text
// is empty contribute to no group. A word whose text is only
// punctuation (a lone ".") is still a valid group member and closes the
// group like any other terminator.
func detectSentences(words []transcribe.Word) []*timeline.SceneLayer {
	var layers []*timeline.SceneLayer
	var group []transcribe.Word

	closeGroup := func() {
		if len(group) == 0 {
			return
		}
		parts := make([]string, len(group))
		for i, w := range group {
			parts[i] = strings.TrimSpace(w.Word)
		}
		layer := timeline.NewSceneLayer(group[0].Start, group[len(group)-1].End, strings.Join(parts, " "))
		layer.AutoGenerated = true
		layers = append(layers, layer)
		group = nil
	}

	for _, w := range words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		group = append(group, w)
		if endsWithTerminator(text) {
			closeGroup()
		}
	}
	// Trailing words with no terminator still form a sentence.
	closeGroup()

	return layers
}

// detectIntervals partitions [0, audioDuration) into IntervalWidth
// windows; the last window is clamped to the audio end.
func detectIntervals(audioDuration float64) []*timeline.SceneLayer {
	var layers []*timeline.SceneLayer
	for start := 0.0; start < audioDuration; start += IntervalWidth {
		end := start + IntervalWidth
		if end > audioDuration {
			end = audioDuration
		}
		layer := timeline.NewSceneLayer(start, end, "")
		layer.AutoGenerated = true
		layers = append(layers, layer)
	}
	return layers
}

func endsWithTerminator(word string) bool {
	for _, p := range sentenceTerminators {
		if strings.HasSuffix(word, p) {
			return true
		}
	}
	return false
}
