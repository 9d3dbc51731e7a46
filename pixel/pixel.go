// Package pixel provides the dense multi-channel raster type shared by
// the filter, composite, and pass packages.
//
// A Buffer stores width*height*channels float32 samples interleaved in
// scanline order: the sample for pixel (x, y) channel c lives at offset
// (y*width+x)*channels+c. Values are unbounded (HDR); operations that
// require [0, 1] clamp explicitly.
package pixel

import "github.com/chewxy/math32"

// Buffer is a dense float32 raster with interleaved channels.
//
// Accessors are bounds-tolerant: At returns 0 for out-of-range
// coordinates and Set drops the write. Hot loops should use Index with
// Data to avoid the per-sample checks.
type Buffer struct {
	width    int
	height   int
	channels int
	data     []float32
}

// New creates a zero-filled buffer with the given dimensions.
// Negative dimensions are treated as zero.
func New(width, height, channels int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if channels < 0 {
		channels = 0
	}
	return &Buffer{
		width:    width,
		height:   height,
		channels: channels,
		data:     make([]float32, width*height*channels),
	}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Channels returns the number of channels per pixel.
func (b *Buffer) Channels() int { return b.channels }

// Len returns the total number of samples (width * height * channels).
func (b *Buffer) Len() int { return len(b.data) }

// IsEmpty returns true if the buffer holds no pixels.
func (b *Buffer) IsEmpty() bool { return b.width == 0 || b.height == 0 }

// Data returns the backing sample slice in interleaved scanline order.
// Mutating it mutates the buffer.
func (b *Buffer) Data() []float32 { return b.data }

// Index returns the offset of sample (x, y, c) in Data.
// The coordinates are not checked.
func (b *Buffer) Index(x, y, c int) int {
	return (y*b.width+x)*b.channels + c
}

// At returns the sample at (x, y, c), or 0 if out of range.
func (b *Buffer) At(x, y, c int) float32 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height || c < 0 || c >= b.channels {
		return 0
	}
	return b.data[b.Index(x, y, c)]
}

// Set stores v at (x, y, c). Out-of-range writes are dropped.
func (b *Buffer) Set(x, y, c int, v float32) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height || c < 0 || c >= b.channels {
		return
	}
	b.data[b.Index(x, y, c)] = v
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		width:    b.width,
		height:   b.height,
		channels: b.channels,
		data:     make([]float32, len(b.data)),
	}
	copy(out.data, b.data)
	return out
}

// Fill sets every sample to v.
func (b *Buffer) Fill(v float32) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Luminance returns a single-channel buffer holding the Rec.601 luma
// of the first three channels. Returns nil if the buffer has fewer
// than three channels.
func (b *Buffer) Luminance() *Buffer {
	if b.channels < 3 {
		return nil
	}
	out := New(b.width, b.height, 1)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			i := b.Index(x, y, 0)
			out.data[y*b.width+x] = 0.299*b.data[i] + 0.587*b.data[i+1] + 0.114*b.data[i+2]
		}
	}
	return out
}

// Resize returns a new buffer scaled to newWidth x newHeight using
// bilinear interpolation. Source coordinates are x*(srcW/newW),
// y*(srcH/newH) with neighbor indices clamped to the source range.
func (b *Buffer) Resize(newWidth, newHeight int) *Buffer {
	out := New(newWidth, newHeight, b.channels)
	if out.IsEmpty() || b.IsEmpty() {
		return out
	}

	xRatio := float32(b.width) / float32(newWidth)
	yRatio := float32(b.height) / float32(newHeight)

	for y := 0; y < newHeight; y++ {
		for x := 0; x < newWidth; x++ {
			srcX := float32(x) * xRatio
			srcY := float32(y) * yRatio

			x1 := int(srcX)
			y1 := int(srcY)
			x2 := min(x1+1, b.width-1)
			y2 := min(y1+1, b.height-1)

			fx := srcX - float32(x1)
			fy := srcY - float32(y1)

			for c := 0; c < b.channels; c++ {
				v := (1-fx)*(1-fy)*b.data[b.Index(x1, y1, c)] +
					fx*(1-fy)*b.data[b.Index(x2, y1, c)] +
					(1-fx)*fy*b.data[b.Index(x1, y2, c)] +
					fx*fy*b.data[b.Index(x2, y2, c)]
				out.data[out.Index(x, y, c)] = v
			}
		}
	}
	return out
}

// MinMax returns the smallest and largest sample in the buffer.
// Returns (0, 0) for an empty buffer.
func (b *Buffer) MinMax() (minVal, maxVal float32) {
	if len(b.data) == 0 {
		return 0, 0
	}
	minVal, maxVal = b.data[0], b.data[0]
	for _, v := range b.data[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// Clamp01 clamps v to the [0, 1] range.
func Clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
