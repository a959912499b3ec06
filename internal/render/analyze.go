package render

import "math"

// FrameStats summarizes the visual content of a frame batch.
type FrameStats struct {
	MeanLuminance float64
	Variance      float64
	BlankFrames   int // frames with near-zero internal variance
}

// blankVariance is the per-frame variance below which a frame is
// considered empty. Manim renders that fail silently produce uniform
// black frames.
const blankVariance = 1e-4

// Analyze computes luminance statistics over the batch. Rec. 601
// weights approximate perceived brightness.
func Analyze(b *FrameBatch) FrameStats {
	var stats FrameStats
	if b == nil || b.Frames == 0 {
		return stats
	}

	pixels := b.Height * b.Width
	var totalSum, totalSq float64
	for f := 0; f < b.Frames; f++ {
		frame := b.frameSlice(f)
		var sum, sq float64
		for i := 0; i < len(frame); i += channels {
			lum := 0.299*float64(frame[i]) + 0.587*float64(frame[i+1]) + 0.114*float64(frame[i+2])
			sum += lum
			sq += lum * lum
		}
		mean := sum / float64(pixels)
		variance := sq/float64(pixels) - mean*mean
		if variance < blankVariance {
			stats.BlankFrames++
		}
		totalSum += sum
		totalSq += sq
	}

	n := float64(b.Frames * pixels)
	stats.MeanLuminance = totalSum / n
	stats.Variance = math.Max(0, totalSq/n-stats.MeanLuminance*stats.MeanLuminance)
	return stats
}

// LooksBlank reports whether the batch is visually empty: every frame
// uniform with nothing drawn.
func (s FrameStats) LooksBlank(frames int) bool {
	return frames > 0 && s.BlankFrames == frames
}
