package transcribe

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lattice/audio2manim/internal/cache"
)

func TestParseWhisperJSON(t *testing.T) {
	data := []byte(`{
		"text": " Hello world.",
		"segments": [
			{"id": 0, "words": [
				{"word": " Hello", "start": 0.0, "end": 0.48, "probability": 0.97},
				{"word": " world.", "start": 0.52, "end": 1.1, "probability": 0.92}
			]},
			{"id": 1, "words": [
				{"word": " Bye.", "start": 1.5, "end": 2.0, "probability": 0.88}
			]}
		]
	}`)

	words, err := ParseWhisperJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 3 {
		t.Fatalf("words = %d, want 3", len(words))
	}
	// Leading whitespace from the model is stripped.
	if words[0].Word != "Hello" {
		t.Errorf("word[0] = %q", words[0].Word)
	}
	if words[1].Word != "world." || words[1].Start != 0.52 {
		t.Errorf("word[1] = %+v", words[1])
	}
	if words[2].Confidence != 0.88 {
		t.Errorf("confidence = %f", words[2].Confidence)
	}
}

func TestParseWhisperJSONMalformed(t *testing.T) {
	if _, err := ParseWhisperJSON([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseWhisperJSONEmpty(t *testing.T) {
	words, err := ParseWhisperJSON([]byte(`{"segments": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 0 {
		t.Errorf("words = %d, want 0", len(words))
	}
}

func TestTotalDuration(t *testing.T) {
	words := []Word{
		{Word: "a", Start: 0, End: 1},
		{Word: "b", Start: 1, End: 3.5},
		{Word: "c", Start: 2, End: 2.5},
	}
	if got := TotalDuration(words); got != 3.5 {
		t.Errorf("TotalDuration = %f, want 3.5", got)
	}
	if got := TotalDuration(nil); got != 0 {
		t.Errorf("TotalDuration(nil) = %f, want 0", got)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	w := NewWhisperCLI("base", "", nil)
	if _, err := w.Transcribe(context.Background(), "/does/not/exist.wav"); err == nil {
		t.Fatal("expected error for missing audio file")
	}
}

func TestTranscribeServedFromCache(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	w := NewWhisperCLI("base", "en", store)

	audio := writeTempAudio(t)
	key, err := w.cacheKey(audio)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(key, []byte(`[{"word": "cached", "start": 0, "end": 1, "confidence": 1}]`)); err != nil {
		t.Fatal(err)
	}

	words, err := w.Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 1 || words[0].Word != "cached" {
		t.Fatalf("words = %+v, want cached entry", words)
	}
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "*.wav")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("RIFF fake wav payload"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}
