package filter

import (
	"github.com/chewxy/math32"

	"github.com/mrjoshuak/exrproc/internal/parallel"
	"github.com/mrjoshuak/exrproc/pixel"
)

// Convolve applies a square 2D kernel of odd dimension size to every
// channel of b in place. kernel holds size*size weights in row-major
// order. Taps that fall outside the buffer contribute nothing; they are
// skipped, not clamped or wrapped.
func Convolve(b *pixel.Buffer, kernel []float32, size int) {
	if b.IsEmpty() || size <= 0 || size%2 == 0 || len(kernel) < size*size {
		return
	}

	src := b.Clone()
	w, h, ch := b.Width(), b.Height(), b.Channels()
	half := size / 2
	in := src.Data()
	out := b.Data()

	parallel.For(h, func(y int) {
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				var sum float32
				for ky := 0; ky < size; ky++ {
					py := y + ky - half
					if py < 0 || py >= h {
						continue
					}
					for kx := 0; kx < size; kx++ {
						px := x + kx - half
						if px < 0 || px >= w {
							continue
						}
						sum += in[src.Index(px, py, c)] * kernel[ky*size+kx]
					}
				}
				out[b.Index(x, y, c)] = sum
			}
		}
	})
}

// gaussianKernel builds a normalized 1D Gaussian kernel of the given
// size. The weight at offset i from the center is exp(-i*i/(2*sigma*sigma));
// the weights sum to 1.
func gaussianKernel(sigma float32, size int) []float32 {
	kernel := make([]float32, size)
	center := size / 2
	var sum float32

	for i := 0; i < size; i++ {
		x := float32(i - center)
		kernel[i] = math32.Exp(-(x * x) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// defaultKernelSize returns the kernel size used when the caller does
// not supply one: ceil(2*sigma)*2 + 1.
func defaultKernelSize(sigma float32) int {
	return int(math32.Ceil(2*sigma))*2 + 1
}

// GaussianBlur blurs b in place with a separable Gaussian: a horizontal
// 1D pass followed by a vertical one. The optional kernelSize overrides
// the default ceil(2*sigma)*2+1; it must be odd and positive. A sigma
// of zero or less leaves the buffer unchanged.
func GaussianBlur(b *pixel.Buffer, sigma float32, kernelSize ...int) {
	if sigma <= 0 || b.IsEmpty() {
		return
	}

	size := defaultKernelSize(sigma)
	if len(kernelSize) > 0 && kernelSize[0] > 0 && kernelSize[0]%2 == 1 {
		size = kernelSize[0]
	}
	kernel := gaussianKernel(sigma, size)

	w, h, ch := b.Width(), b.Height(), b.Channels()
	half := size / 2
	tmp := pixel.New(w, h, ch)
	in := b.Data()
	mid := tmp.Data()

	// Horizontal pass. Out-of-range taps are skipped and the result is
	// rescaled by the in-range weight, so a constant field stays
	// constant up to the image edge.
	parallel.For(h, func(y int) {
		for x := 0; x < w; x++ {
			var wsum float32
			for k := 0; k < size; k++ {
				if px := x + k - half; px >= 0 && px < w {
					wsum += kernel[k]
				}
			}
			for c := 0; c < ch; c++ {
				var sum float32
				for k := 0; k < size; k++ {
					px := x + k - half
					if px >= 0 && px < w {
						sum += in[b.Index(px, y, c)] * kernel[k]
					}
				}
				mid[tmp.Index(x, y, c)] = sum / wsum
			}
		}
	})

	// Vertical pass.
	out := b.Data()
	parallel.For(h, func(y int) {
		var wsum float32
		for k := 0; k < size; k++ {
			if py := y + k - half; py >= 0 && py < h {
				wsum += kernel[k]
			}
		}
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				var sum float32
				for k := 0; k < size; k++ {
					py := y + k - half
					if py >= 0 && py < h {
						sum += mid[tmp.Index(x, py, c)] * kernel[k]
					}
				}
				out[b.Index(x, y, c)] = sum / wsum
			}
		}
	})
}
