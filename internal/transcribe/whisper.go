package transcribe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lattice/audio2manim/internal/cache"
	"github.com/lattice/audio2manim/internal/logger"
)

// WhisperCLI transcribes audio by invoking the whisper executable with
// word-level timestamps and JSON output. Results are cached keyed on
// the audio content hash plus model and language, so re-rendering the
// same narration skips the model entirely.
type WhisperCLI struct {
	Binary   string // defaults to "whisper"
	Model    string // tiny, base, small, medium, large
	Language string // e.g. "en"; empty lets the model detect
	Cache    cache.Cache
}

// NewWhisperCLI creates an adapter with the given model size. The
// cache may be nil to disable caching.
func NewWhisperCLI(model, language string, c cache.Cache) *WhisperCLI {
	return &WhisperCLI{
		Binary:   "whisper",
		Model:    model,
		Language: language,
		Cache:    c,
	}
}

// whisperOutput mirrors the JSON document the whisper CLI writes.
type whisperOutput struct {
	Segments []struct {
		Words []struct {
			Word        string  `json:"word"`
			Start       float64 `json:"start"`
			End         float64 `json:"end"`
			Probability float64 `json:"probability"`
		} `json:"words"`
	} `json:"segments"`
}

// Transcribe runs the model against the audio file and returns the
// flattened word sequence.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) ([]Word, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	key, err := w.cacheKey(audioPath)
	if err == nil && w.Cache != nil {
		if data, ok := w.Cache.Get(key); ok {
			var words []Word
			if json.Unmarshal(data, &words) == nil {
				logger.Info("using cached transcription",
					logger.String("audio", filepath.Base(audioPath)))
				return words, nil
			}
		}
	}

	logger.Info("transcribing audio",
		logger.String("audio", filepath.Base(audioPath)),
		logger.String("model", w.Model))

	outDir, err := os.MkdirTemp("", "audio2manim_whisper_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	args := []string{
		audioPath,
		"--model", w.Model,
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", outDir,
	}
	if w.Language != "" {
		args = append(args, "--language", w.Language)
	}

	binary := w.Binary
	if binary == "" {
		binary = "whisper"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w, output: %s", err, string(out))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("whisper output not found: %w", err)
	}

	words, err := ParseWhisperJSON(data)
	if err != nil {
		return nil, err
	}

	if w.Cache != nil && key != "" {
		if encoded, err := json.Marshal(words); err == nil {
			if err := w.Cache.Set(key, encoded); err != nil {
				logger.Warn("failed to cache transcription", logger.ErrorField(err))
			}
		}
	}

	return words, nil
}

// ParseWhisperJSON flattens the segments of a whisper JSON document
// into the word sequence the segmentation engine consumes.
func ParseWhisperJSON(data []byte) ([]Word, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	var words []Word
	for _, seg := range out.Segments {
		for _, w := range seg.Words {
			words = append(words, Word{
				Word:       strings.TrimSpace(w.Word),
				Start:      w.Start,
				End:        w.End,
				Confidence: w.Probability,
			})
		}
	}
	return words, nil
}

func (w *WhisperCLI) cacheKey(audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return cache.Key("transcription", hex.EncodeToString(h.Sum(nil)), w.Model, w.Language), nil
}
