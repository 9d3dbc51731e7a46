// Package composite implements per-pixel blend-mode arithmetic and
// alpha premultiplication for pixel buffers.
//
// Blend values are treated as [0, 1]; results are clamped. Inputs with
// differing channel counts are blended over the union of channels, with
// absent channels reading as zero.
package composite

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/mrjoshuak/exrproc/internal/parallel"
	"github.com/mrjoshuak/exrproc/pixel"
)

// Compositing errors
var (
	ErrDimensionMismatch = errors.New("composite: buffer dimensions do not match")
)

// BlendMode selects the per-channel function combining a base and an
// overlay sample.
type BlendMode int

const (
	// BlendNormal replaces the base with the overlay.
	BlendNormal BlendMode = iota
	// BlendMultiply darkens: base * overlay.
	BlendMultiply
	// BlendScreen lightens: 1 - (1-base)*(1-overlay).
	BlendScreen
	// BlendOverlay multiplies or screens depending on the base value.
	BlendOverlay
	// BlendSoftLight is a gentler overlay keyed on the overlay value.
	BlendSoftLight
	// BlendHardLight multiplies or screens depending on the overlay value.
	BlendHardLight
	// BlendColorDodge brightens the base toward the overlay.
	BlendColorDodge
	// BlendColorBurn darkens the base toward the overlay.
	BlendColorBurn
	// BlendLinearDodge adds base and overlay.
	BlendLinearDodge
	// BlendLinearBurn adds base and overlay, shifted down by one.
	BlendLinearBurn
)

// String returns the blend mode name used by the CLI tools.
func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	case BlendOverlay:
		return "overlay"
	case BlendSoftLight:
		return "softlight"
	case BlendHardLight:
		return "hardlight"
	case BlendColorDodge:
		return "dodge"
	case BlendColorBurn:
		return "burn"
	case BlendLinearDodge:
		return "lineardodge"
	case BlendLinearBurn:
		return "linearburn"
	default:
		return "unknown"
	}
}

// ParseBlendMode parses a blend mode name as produced by String.
func ParseBlendMode(s string) (BlendMode, error) {
	for m := BlendNormal; m <= BlendLinearBurn; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return BlendNormal, fmt.Errorf("composite: unknown blend mode %q", s)
}

// blendValue applies the per-channel blend function for mode.
func blendValue(base, overlay float32, mode BlendMode) float32 {
	switch mode {
	case BlendNormal:
		return overlay
	case BlendMultiply:
		return base * overlay
	case BlendScreen:
		return 1 - (1-base)*(1-overlay)
	case BlendOverlay:
		if base < 0.5 {
			return 2 * base * overlay
		}
		return 1 - 2*(1-base)*(1-overlay)
	case BlendSoftLight:
		if overlay < 0.5 {
			return 2*base*overlay + base*base*(1-2*overlay)
		}
		return 2*base*(1-overlay) + math32.Sqrt(base)*(2*overlay-1)
	case BlendHardLight:
		if overlay < 0.5 {
			return 2 * base * overlay
		}
		return 1 - 2*(1-base)*(1-overlay)
	case BlendColorDodge:
		if overlay < 1 {
			return base / (1 - overlay)
		}
		return 1
	case BlendColorBurn:
		if overlay > 0 {
			return 1 - (1-base)/overlay
		}
		return 0
	case BlendLinearDodge:
		return base + overlay
	case BlendLinearBurn:
		return base + overlay - 1
	default:
		return base
	}
}

// Blend combines base and overlay into a new buffer using the given
// mode and opacity. The inputs must share width and height; otherwise
// ErrDimensionMismatch is returned and no output is produced. The
// result has max(base.Channels, overlay.Channels) channels, with
// channels absent from one input reading as zero. Each sample is
// base*(1-opacity) + blended*opacity, clamped to [0, 1].
func Blend(base, overlay *pixel.Buffer, mode BlendMode, opacity float32) (*pixel.Buffer, error) {
	if base.Width() != overlay.Width() || base.Height() != overlay.Height() {
		return nil, ErrDimensionMismatch
	}

	w, h := base.Width(), base.Height()
	ch := max(base.Channels(), overlay.Channels())
	out := pixel.New(w, h, ch)
	data := out.Data()

	parallel.For(h, func(y int) {
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				b := base.At(x, y, c)
				o := overlay.At(x, y, c)
				v := blendValue(b, o, mode)
				v = b*(1-opacity) + v*opacity
				data[out.Index(x, y, c)] = pixel.Clamp01(v)
			}
		}
	})
	return out, nil
}

// Add accumulates src into dst additively with the given opacity,
// clamping each sample to [0, 1]. Only the overlapping region and the
// channels common to both buffers are touched. An empty dst is replaced
// by a copy of src.
func Add(dst, src *pixel.Buffer, opacity float32) *pixel.Buffer {
	if dst.IsEmpty() {
		return src.Clone()
	}

	w := min(dst.Width(), src.Width())
	h := min(dst.Height(), src.Height())
	ch := min(dst.Channels(), src.Channels())
	data := dst.Data()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				i := dst.Index(x, y, c)
				data[i] = pixel.Clamp01(data[i] + src.At(x, y, c)*opacity)
			}
		}
	}
	return dst
}

// Lerp linearly interpolates between a and b per channel: a*(1-t) + b*t.
// The inputs must share width and height; the result has
// max(a.Channels, b.Channels) channels with absent channels reading as
// zero. The output is not clamped.
func Lerp(a, b *pixel.Buffer, t float32) (*pixel.Buffer, error) {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return nil, ErrDimensionMismatch
	}

	w, h := a.Width(), a.Height()
	ch := max(a.Channels(), b.Channels())
	out := pixel.New(w, h, ch)
	data := out.Data()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				data[out.Index(x, y, c)] = a.At(x, y, c)*(1-t) + b.At(x, y, c)*t
			}
		}
	}
	return out, nil
}

// PremultiplyAlpha scales the first three channels of each pixel by its
// alpha (channel index 3) in place. Buffers with fewer than four
// channels are left unchanged.
func PremultiplyAlpha(b *pixel.Buffer) {
	if b.Channels() < 4 {
		return
	}

	data := b.Data()
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			i := b.Index(x, y, 0)
			alpha := data[i+3]
			data[i] *= alpha
			data[i+1] *= alpha
			data[i+2] *= alpha
		}
	}
}

// UnpremultiplyAlpha divides the first three channels of each pixel by
// its alpha (channel index 3) in place, undoing PremultiplyAlpha.
// Pixels with zero alpha are left unchanged. Buffers with fewer than
// four channels are left unchanged.
func UnpremultiplyAlpha(b *pixel.Buffer) {
	if b.Channels() < 4 {
		return
	}

	data := b.Data()
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			i := b.Index(x, y, 0)
			alpha := data[i+3]
			if alpha > 0 {
				data[i] /= alpha
				data[i+1] /= alpha
				data[i+2] /= alpha
			}
		}
	}
}
