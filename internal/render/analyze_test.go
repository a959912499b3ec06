package render

import (
	"math"
	"testing"
)

func TestAnalyzeBlankBatch(t *testing.T) {
	b := NewFrameBatch(3, 4, 4) // all zeros
	stats := Analyze(b)
	if stats.BlankFrames != 3 {
		t.Errorf("blank frames = %d, want 3", stats.BlankFrames)
	}
	if !stats.LooksBlank(b.Frames) {
		t.Error("all-black batch should look blank")
	}
	if stats.MeanLuminance != 0 {
		t.Errorf("mean luminance = %f", stats.MeanLuminance)
	}
}

func TestAnalyzeContentfulBatch(t *testing.T) {
	b := NewFrameBatch(2, 4, 4)
	// Paint half of frame 0 white.
	frame := b.frameSlice(0)
	for i := 0; i < len(frame)/2; i++ {
		frame[i] = 1
	}
	stats := Analyze(b)
	if stats.BlankFrames != 1 {
		t.Errorf("blank frames = %d, want 1", stats.BlankFrames)
	}
	if stats.LooksBlank(b.Frames) {
		t.Error("batch with content should not look blank")
	}
	if stats.Variance <= 0 {
		t.Errorf("variance = %f, want > 0", stats.Variance)
	}
}

func TestAnalyzeUniformGray(t *testing.T) {
	b := NewFrameBatch(1, 2, 2)
	for i := range b.Data {
		b.Data[i] = 0.5
	}
	stats := Analyze(b)
	if math.Abs(stats.MeanLuminance-0.5) > 1e-6 {
		t.Errorf("mean luminance = %f, want 0.5", stats.MeanLuminance)
	}
	// Uniform non-black frames are still blank: nothing is drawn.
	if stats.BlankFrames != 1 {
		t.Errorf("blank frames = %d, want 1", stats.BlankFrames)
	}
}

func TestAnalyzeNil(t *testing.T) {
	stats := Analyze(nil)
	if stats.LooksBlank(0) {
		t.Error("empty input should not report blank")
	}
}
