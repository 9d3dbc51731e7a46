// Package filter implements the image filter library: Gaussian blur,
// sharpening, edge detection, unsharp masking, tone mapping, sRGB
// conversion, and normalization.
//
// All filters operate in place on a pixel.Buffer. Filters with channel
// requirements (edge detection needs at least three channels) are
// silent no-ops when the requirement is not met.
package filter

import (
	"github.com/chewxy/math32"

	"github.com/mrjoshuak/exrproc/internal/parallel"
	"github.com/mrjoshuak/exrproc/pixel"
)

// alphaChannel is the channel index left untouched by tone mapping and
// color-space conversion.
const alphaChannel = 3

// Sharpen sharpens b in place using an unsharp mask against a sigma=1
// Gaussian blur: out = orig + strength*(orig - blurred), clamped to [0, 1].
func Sharpen(b *pixel.Buffer, strength float32) {
	blurred := b.Clone()
	GaussianBlur(blurred, 1.0)

	data := b.Data()
	blur := blurred.Data()
	for i := range data {
		data[i] = pixel.Clamp01(data[i] + strength*(data[i]-blur[i]))
	}
}

// KernelSharpen sharpens b in place with the 3x3 kernel
//
//	 0   -s    0
//	-s  1+4s  -s
//	 0   -s    0
//
// applied through the generic convolution path, clamping each sample to
// [0, 1]. A strength of zero or less leaves the buffer unchanged.
func KernelSharpen(b *pixel.Buffer, strength float32) {
	if strength <= 0 {
		return
	}
	kernel := []float32{
		0, -strength, 0,
		-strength, 1 + 4*strength, -strength,
		0, -strength, 0,
	}
	Convolve(b, kernel, 3)

	data := b.Data()
	for i := range data {
		data[i] = pixel.Clamp01(data[i])
	}
}

// Sobel 3x3 gradient kernels.
var (
	sobelX = [9]float32{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}
	sobelY = [9]float32{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}
)

// SobelEdges replaces b with its Sobel edge magnitude, broadcast to all
// channels. The image is first reduced to Rec.601 luminance; the
// magnitude sqrt(gx*gx+gy*gy) is clamped to at most 1. Kernel taps
// outside the image are skipped. Buffers with fewer than three channels
// are left unchanged.
func SobelEdges(b *pixel.Buffer) {
	if b.Channels() < 3 || b.IsEmpty() {
		return
	}

	gray := b.Luminance()
	w, h := b.Width(), b.Height()
	lum := gray.Data()
	out := b.Data()
	ch := b.Channels()

	parallel.For(h, func(y int) {
		for x := 0; x < w; x++ {
			var gx, gy float32
			for ky := 0; ky < 3; ky++ {
				py := y + ky - 1
				if py < 0 || py >= h {
					continue
				}
				for kx := 0; kx < 3; kx++ {
					px := x + kx - 1
					if px < 0 || px >= w {
						continue
					}
					v := lum[py*w+px]
					gx += v * sobelX[ky*3+kx]
					gy += v * sobelY[ky*3+kx]
				}
			}
			mag := math32.Min(1, math32.Sqrt(gx*gx+gy*gy))
			i := b.Index(x, y, 0)
			for c := 0; c < ch; c++ {
				out[i+c] = mag
			}
		}
	})
}

// laplacian is the 3x3 edge kernel used by LaplacianEdges.
var laplacian = [9]float32{
	0, -1, 0,
	-1, 4, -1,
	0, -1, 0,
}

// LaplacianEdges replaces b with the absolute Laplacian response of its
// luminance, broadcast to all channels. Kernel taps outside the image
// are skipped. Buffers with fewer than three channels are left
// unchanged.
func LaplacianEdges(b *pixel.Buffer) {
	if b.Channels() < 3 || b.IsEmpty() {
		return
	}

	gray := b.Luminance()
	w, h := b.Width(), b.Height()
	lum := gray.Data()
	out := b.Data()
	ch := b.Channels()

	parallel.For(h, func(y int) {
		for x := 0; x < w; x++ {
			var sum float32
			for ky := 0; ky < 3; ky++ {
				py := y + ky - 1
				if py < 0 || py >= h {
					continue
				}
				for kx := 0; kx < 3; kx++ {
					px := x + kx - 1
					if px < 0 || px >= w {
						continue
					}
					sum += lum[py*w+px] * laplacian[ky*3+kx]
				}
			}
			v := math32.Abs(sum)
			i := b.Index(x, y, 0)
			for c := 0; c < ch; c++ {
				out[i+c] = v
			}
		}
	})
}

// UnsharpMask sharpens b in place: samples whose difference from a
// radius-sigma blur is at least threshold become orig + amount*diff,
// clamped to [0, 1]; samples below the threshold are left unchanged.
func UnsharpMask(b *pixel.Buffer, radius, amount, threshold float32) {
	blurred := b.Clone()
	GaussianBlur(blurred, radius)

	data := b.Data()
	blur := blurred.Data()
	for i := range data {
		diff := data[i] - blur[i]
		if math32.Abs(diff) >= threshold {
			data[i] = pixel.Clamp01(data[i] + amount*diff)
		}
	}
}

// ToneMap applies exposure compensation and gamma correction in place:
// v = (1 - exp(-v*exposure))^(1/gamma). The alpha channel (index 3) is
// left untouched.
func ToneMap(b *pixel.Buffer, exposure, gamma float32) {
	ch := b.Channels()
	data := b.Data()
	invGamma := 1 / gamma

	for i := range data {
		if i%ch == alphaChannel {
			continue
		}
		v := 1 - math32.Exp(-data[i]*exposure)
		data[i] = math32.Pow(v, invGamma)
	}
}

// ToLinear converts b from sRGB to linear light in place using the
// standard piecewise transfer function. The alpha channel (index 3) is
// left untouched.
func ToLinear(b *pixel.Buffer) {
	ch := b.Channels()
	data := b.Data()

	for i := range data {
		if i%ch == alphaChannel {
			continue
		}
		v := data[i]
		if v <= 0.04045 {
			data[i] = v / 12.92
		} else {
			data[i] = math32.Pow((v+0.055)/1.055, 2.4)
		}
	}
}

// ToSRGB converts b from linear light to sRGB in place using the
// standard piecewise transfer function. The alpha channel (index 3) is
// left untouched.
func ToSRGB(b *pixel.Buffer) {
	ch := b.Channels()
	data := b.Data()

	for i := range data {
		if i%ch == alphaChannel {
			continue
		}
		v := data[i]
		if v <= 0.0031308 {
			data[i] = 12.92 * v
		} else {
			data[i] = 1.055*math32.Pow(v, 1/2.4) - 0.055
		}
	}
}

// Normalize rescales all samples linearly so the global minimum maps to
// 0 and the global maximum to 1. A uniform buffer is left unchanged.
func Normalize(b *pixel.Buffer) {
	minVal, maxVal := b.MinMax()
	if maxVal <= minVal {
		return
	}

	scale := 1 / (maxVal - minVal)
	data := b.Data()
	for i := range data {
		data[i] = (data[i] - minVal) * scale
	}
}
