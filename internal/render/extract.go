package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/lattice/audio2manim/internal/system"
)

// videoDimensions probes the stream resolution via ffprobe.
func videoDimensions(ctx context.Context, path string) (width, height int, err error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%dx%d", &width, &height)
	if err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe dimensions %q: %w", strings.TrimSpace(string(out)), err)
	}
	return width, height, nil
}

// ExtractFrames decodes every frame of the video into a FrameBatch at
// the target resolution. Decoding streams raw RGB from ffmpeg; frames
// are resized and normalized in parallel across workers.
func ExtractFrames(ctx context.Context, videoPath string, targetWidth, targetHeight, workers int) (*FrameBatch, error) {
	srcW, srcH, err := videoDimensions(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-v", "error",
		"-i", videoPath,
		"-f", "rawvideo", "-pix_fmt", "rgb24", "-")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	frameBytes := srcW * srcH * channels
	var raw [][]byte
	for {
		buf := make([]byte, frameBytes)
		_, err := io.ReadFull(stdout, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			_ = cmd.Wait()
			return nil, fmt.Errorf("read frame %d: %w", len(raw), err)
		}
		raw = append(raw, buf)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w: %s", videoPath, err, strings.TrimSpace(stderr.String()))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no frames extracted from %s", videoPath)
	}

	if workers <= 0 {
		workers = 1
	}
	batch := NewFrameBatch(len(raw), targetHeight, targetWidth)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, buf := range raw {
		i, buf := i, buf
		g.Go(func() error {
			convertFrame(buf, srcW, srcH, batch.frameSlice(i), targetWidth, targetHeight)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

// convertFrame normalizes one raw RGB frame into dst, resizing when
// the source resolution differs from the target.
func convertFrame(raw []byte, srcW, srcH int, dst []float32, dstW, dstH int) {
	if srcW == dstW && srcH == dstH {
		for i, v := range raw {
			dst[i] = float32(v) / 255
		}
		return
	}

	src := system.GetImage(image.Rect(0, 0, srcW, srcH))
	defer system.PutImage(src)
	for y := 0; y < srcH; y++ {
		for x := 0; x < srcW; x++ {
			o := (y*srcW + x) * channels
			p := src.PixOffset(x, y)
			src.Pix[p] = raw[o]
			src.Pix[p+1] = raw[o+1]
			src.Pix[p+2] = raw[o+2]
			src.Pix[p+3] = 0xff
		}
	}

	scaled := system.GetImage(image.Rect(0, 0, dstW, dstH))
	defer system.PutImage(scaled)
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			p := scaled.PixOffset(x, y)
			o := (y*dstW + x) * channels
			dst[o] = float32(scaled.Pix[p]) / 255
			dst[o+1] = float32(scaled.Pix[p+1]) / 255
			dst[o+2] = float32(scaled.Pix[p+2]) / 255
		}
	}
}
