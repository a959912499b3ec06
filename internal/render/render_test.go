package render

import (
	"math"
	"strings"
	"testing"
)

func TestFrameBatchLayout(t *testing.T) {
	b := NewFrameBatch(2, 3, 4)
	if len(b.Data) != 2*3*4*3 {
		t.Fatalf("data length = %d", len(b.Data))
	}
	b.Data[((1*3+2)*4+3)*3+1] = 0.5
	if b.At(1, 2, 3, 1) != 0.5 {
		t.Error("At does not match layout")
	}
}

func TestMaskAllOnes(t *testing.T) {
	b := NewFrameBatch(2, 2, 2)
	mask := b.Mask()
	if len(mask) != 2*2*2 {
		t.Fatalf("mask length = %d", len(mask))
	}
	for i, v := range mask {
		if v != 1 {
			t.Fatalf("mask[%d] = %f", i, v)
		}
	}
}

func TestConvertFrameNoResize(t *testing.T) {
	// 2x1 frame: one black pixel, one white pixel.
	raw := []byte{0, 0, 0, 255, 255, 255}
	dst := make([]float32, 6)
	convertFrame(raw, 2, 1, dst, 2, 1)
	if dst[0] != 0 || dst[3] != 1 {
		t.Errorf("normalization wrong: %v", dst)
	}
}

func TestConvertFrameResize(t *testing.T) {
	// Uniform gray 4x4 downscaled to 2x2 stays uniform gray.
	raw := make([]byte, 4*4*3)
	for i := range raw {
		raw[i] = 128
	}
	dst := make([]float32, 2*2*3)
	convertFrame(raw, 4, 4, dst, 2, 2)
	for i, v := range dst {
		if math.Abs(float64(v)-128.0/255.0) > 0.02 {
			t.Fatalf("dst[%d] = %f, want ~%f", i, v, 128.0/255.0)
		}
	}
}

func TestConvertFrameResizeOverwritesPooledBuffer(t *testing.T) {
	raw := make([]byte, 4*4*3) // all black
	dst := make([]float32, 2*2*3)
	for i := range dst {
		dst[i] = 0.75
	}
	convertFrame(raw, 4, 4, dst, 2, 2)
	for i, v := range dst {
		if v > 0.01 {
			t.Fatalf("dst[%d] = %f, stale data leaked through", i, v)
		}
	}
}

func TestEmptyTimelineErrorMessage(t *testing.T) {
	err := &EmptyTimelineError{}
	if !strings.Contains(err.Error(), "timeline is empty") {
		t.Errorf("message: %s", err)
	}
	err = &EmptyTimelineError{AudioPath: "talk.wav"}
	if !strings.Contains(err.Error(), "talk.wav") {
		t.Errorf("message should name the audio file: %s", err)
	}
}

func TestTail(t *testing.T) {
	if got := tail("short", 10); got != "short" {
		t.Errorf("tail short = %q", got)
	}
	got := tail("abcdefghij", 4)
	if got != "...ghij" {
		t.Errorf("tail long = %q", got)
	}
}
