// Package transcribe exposes speech-to-text as a collaborator
// interface. The core consumes word timings only; which engine
// produced them is an implementation detail.
package transcribe

import "context"

// Word is a single transcribed word with its timing.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Transcriber turns an audio file into word-level timestamps.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]Word, error)
}

// TotalDuration returns the end time of the last word, or zero for an
// empty transcription.
func TotalDuration(words []Word) float64 {
	max := 0.0
	for _, w := range words {
		if w.End > max {
			max = w.End
		}
	}
	return max
}
