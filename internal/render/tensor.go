package render

// FrameBatch holds decoded video frames as a dense float32 tensor in
// [frame, y, x, channel] layout with RGB values normalized to [0, 1].
type FrameBatch struct {
	Data   []float32
	Frames int
	Height int
	Width  int
}

const channels = 3

// NewFrameBatch allocates a zeroed batch.
func NewFrameBatch(frames, height, width int) *FrameBatch {
	return &FrameBatch{
		Data:   make([]float32, frames*height*width*channels),
		Frames: frames,
		Height: height,
		Width:  width,
	}
}

// At returns the channel value at (frame, y, x, c).
func (b *FrameBatch) At(frame, y, x, c int) float32 {
	return b.Data[((frame*b.Height+y)*b.Width+x)*channels+c]
}

// frameSlice returns the writable sub-slice for one frame.
func (b *FrameBatch) frameSlice(frame int) []float32 {
	size := b.Height * b.Width * channels
	return b.Data[frame*size : (frame+1)*size]
}

// Mask returns an all-ones mask tensor in [frame, y, x] layout,
// matching the batch dimensions.
func (b *FrameBatch) Mask() []float32 {
	mask := make([]float32, b.Frames*b.Height*b.Width)
	for i := range mask {
		mask[i] = 1
	}
	return mask
}
