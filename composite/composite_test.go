package composite

import (
	"math"
	"testing"

	"github.com/mrjoshuak/exrproc/pixel"
)

// solid builds a 1x1 buffer with the given channel values.
func solid(t *testing.T, values ...float32) *pixel.Buffer {
	t.Helper()
	b := pixel.New(1, 1, len(values))
	copy(b.Data(), values)
	return b
}

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestBlendNormalFullOpacity(t *testing.T) {
	base := solid(t, 0.2, 0.4, 0.6, 1)
	overlay := solid(t, 0.9, 0.1, 0.5, 1)

	out, err := Blend(base, overlay, BlendNormal, 1)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	for c := 0; c < 4; c++ {
		if got, want := out.At(0, 0, c), overlay.At(0, 0, c); got != want {
			t.Errorf("channel %d = %v, want %v", c, got, want)
		}
	}
}

func TestBlendMultiply(t *testing.T) {
	base := solid(t, 1, 0, 0, 1)
	overlay := solid(t, 0, 1, 0, 1)

	out, err := Blend(base, overlay, BlendMultiply, 1)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	want := []float32{0, 0, 0, 1}
	for c, w := range want {
		if got := out.At(0, 0, c); got != w {
			t.Errorf("channel %d = %v, want %v", c, got, w)
		}
	}
}

func TestBlendOpacityMix(t *testing.T) {
	base := solid(t, 0.2)
	overlay := solid(t, 0.8)

	out, err := Blend(base, overlay, BlendNormal, 0.5)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if got := out.At(0, 0, 0); !near(got, 0.5, 1e-6) {
		t.Errorf("At(0,0,0) = %v, want 0.5", got)
	}
}

func TestBlendZeroOpacityKeepsBase(t *testing.T) {
	base := solid(t, 0.3, 0.6, 0.9)
	overlay := solid(t, 1, 1, 1)

	out, err := Blend(base, overlay, BlendScreen, 0)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	for c := 0; c < 3; c++ {
		if got, want := out.At(0, 0, c), base.At(0, 0, c); !near(got, want, 1e-6) {
			t.Errorf("channel %d = %v, want %v", c, got, want)
		}
	}
}

func TestBlendDimensionMismatch(t *testing.T) {
	base := pixel.New(2, 2, 4)
	overlay := pixel.New(3, 2, 4)

	if _, err := Blend(base, overlay, BlendNormal, 1); err != ErrDimensionMismatch {
		t.Errorf("Blend error = %v, want ErrDimensionMismatch", err)
	}
}

func TestBlendChannelUnion(t *testing.T) {
	base := solid(t, 0.5, 0.5, 0.5)
	overlay := solid(t, 0.2, 0.2, 0.2, 0.8)

	out, err := Blend(base, overlay, BlendNormal, 1)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if out.Channels() != 4 {
		t.Fatalf("Channels() = %d, want 4", out.Channels())
	}
	// The base has no fourth channel; it reads as zero.
	if got := out.At(0, 0, 3); !near(got, 0.8, 1e-6) {
		t.Errorf("channel 3 = %v, want 0.8", got)
	}
}

func TestColorDodge(t *testing.T) {
	if got := blendValue(0.4, 0.5, BlendColorDodge); !near(got, 0.8, 1e-6) {
		t.Errorf("dodge(0.4, 0.5) = %v, want 0.8", got)
	}
	if got := blendValue(0.4, 1, BlendColorDodge); got != 1 {
		t.Errorf("dodge(0.4, 1) = %v, want 1", got)
	}
}

func TestColorBurn(t *testing.T) {
	if got := blendValue(0.5, 0.5, BlendColorBurn); !near(got, 0, 1e-6) {
		t.Errorf("burn(0.5, 0.5) = %v, want 0", got)
	}
	if got := blendValue(0.8, 0, BlendColorBurn); got != 0 {
		t.Errorf("burn(0.8, 0) = %v, want 0", got)
	}
}

func TestSoftLight(t *testing.T) {
	// overlay < 0.5: 2*b*o + b*b*(1-2*o)
	if got := blendValue(0.5, 0.25, BlendSoftLight); !near(got, 0.375, 1e-6) {
		t.Errorf("softlight(0.5, 0.25) = %v, want 0.375", got)
	}
	// overlay >= 0.5: 2*b*(1-o) + sqrt(b)*(2*o-1)
	want := 2*0.25*0.25 + 0.5*0.5
	if got := blendValue(0.25, 0.75, BlendSoftLight); !near(got, float32(want), 1e-6) {
		t.Errorf("softlight(0.25, 0.75) = %v, want %v", got, want)
	}
}

func TestOverlayAndHardLight(t *testing.T) {
	// Overlay keys on the base, hard light on the overlay.
	if got := blendValue(0.25, 0.8, BlendOverlay); !near(got, 0.4, 1e-6) {
		t.Errorf("overlay(0.25, 0.8) = %v, want 0.4", got)
	}
	if got := blendValue(0.8, 0.25, BlendHardLight); !near(got, 0.4, 1e-6) {
		t.Errorf("hardlight(0.8, 0.25) = %v, want 0.4", got)
	}
}

func TestLinearBurnClampsToZero(t *testing.T) {
	base := solid(t, 0.2)
	overlay := solid(t, 0.3)

	out, err := Blend(base, overlay, BlendLinearBurn, 1)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if got := out.At(0, 0, 0); got != 0 {
		t.Errorf("At(0,0,0) = %v, want 0", got)
	}
}

func TestLinearDodgeClampsToOne(t *testing.T) {
	base := solid(t, 0.7)
	overlay := solid(t, 0.7)

	out, err := Blend(base, overlay, BlendLinearDodge, 1)
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if got := out.At(0, 0, 0); got != 1 {
		t.Errorf("At(0,0,0) = %v, want 1", got)
	}
}

func TestBlendModeStringParseRoundTrip(t *testing.T) {
	for m := BlendNormal; m <= BlendLinearBurn; m++ {
		got, err := ParseBlendMode(m.String())
		if err != nil {
			t.Errorf("ParseBlendMode(%q): %v", m.String(), err)
			continue
		}
		if got != m {
			t.Errorf("ParseBlendMode(%q) = %v, want %v", m.String(), got, m)
		}
	}
}

func TestParseBlendModeUnknown(t *testing.T) {
	if _, err := ParseBlendMode("darken"); err == nil {
		t.Error("ParseBlendMode(\"darken\") succeeded, want error")
	}
}

func TestAddAccumulatesAndClamps(t *testing.T) {
	dst := solid(t, 0.4, 0.8)
	src := solid(t, 0.5, 0.5)

	out := Add(dst, src, 1)
	if out != dst {
		t.Error("Add did not return dst")
	}
	if got := dst.At(0, 0, 0); !near(got, 0.9, 1e-6) {
		t.Errorf("channel 0 = %v, want 0.9", got)
	}
	if got := dst.At(0, 0, 1); got != 1 {
		t.Errorf("channel 1 = %v, want 1 (clamped)", got)
	}
}

func TestAddOpacityScalesSource(t *testing.T) {
	dst := solid(t, 0.2)
	src := solid(t, 0.6)

	Add(dst, src, 0.5)
	if got := dst.At(0, 0, 0); !near(got, 0.5, 1e-6) {
		t.Errorf("At(0,0,0) = %v, want 0.5", got)
	}
}

func TestAddEmptyDstCopiesSource(t *testing.T) {
	dst := pixel.New(0, 0, 0)
	src := solid(t, 0.3, 0.6)

	out := Add(dst, src, 1)
	if out.Width() != 1 || out.Height() != 1 || out.Channels() != 2 {
		t.Fatalf("dimensions = %dx%dx%d, want 1x1x2", out.Width(), out.Height(), out.Channels())
	}
	out.Set(0, 0, 0, 0.9)
	if got := src.At(0, 0, 0); got != 0.3 {
		t.Errorf("source mutated through Add result: At(0,0,0) = %v, want 0.3", got)
	}
}

func TestAddCommonChannelsOnly(t *testing.T) {
	dst := solid(t, 0.1, 0.2, 0.3, 0.4)
	src := solid(t, 0.5)

	Add(dst, src, 1)
	if got := dst.At(0, 0, 0); !near(got, 0.6, 1e-6) {
		t.Errorf("channel 0 = %v, want 0.6", got)
	}
	for c := 1; c < 4; c++ {
		want := []float32{0, 0.2, 0.3, 0.4}[c]
		if got := dst.At(0, 0, c); got != want {
			t.Errorf("channel %d = %v, want %v", c, got, want)
		}
	}
}

func TestLerpEndpoints(t *testing.T) {
	a := solid(t, 0.2, 0.4)
	b := solid(t, 0.8, 0.6)

	out0, err := Lerp(a, b, 0)
	if err != nil {
		t.Fatalf("Lerp: %v", err)
	}
	out1, err := Lerp(a, b, 1)
	if err != nil {
		t.Fatalf("Lerp: %v", err)
	}
	outHalf, err := Lerp(a, b, 0.5)
	if err != nil {
		t.Fatalf("Lerp: %v", err)
	}

	if got := out0.At(0, 0, 0); !near(got, 0.2, 1e-6) {
		t.Errorf("t=0 channel 0 = %v, want 0.2", got)
	}
	if got := out1.At(0, 0, 0); !near(got, 0.8, 1e-6) {
		t.Errorf("t=1 channel 0 = %v, want 0.8", got)
	}
	if got := outHalf.At(0, 0, 1); !near(got, 0.5, 1e-6) {
		t.Errorf("t=0.5 channel 1 = %v, want 0.5", got)
	}
}

func TestLerpDimensionMismatch(t *testing.T) {
	a := pixel.New(2, 2, 1)
	b := pixel.New(2, 3, 1)

	if _, err := Lerp(a, b, 0.5); err != ErrDimensionMismatch {
		t.Errorf("Lerp error = %v, want ErrDimensionMismatch", err)
	}
}

func TestPremultiplyRoundTrip(t *testing.T) {
	b := solid(t, 0.8, 0.6, 0.4, 0.5)

	PremultiplyAlpha(b)
	want := []float32{0.4, 0.3, 0.2, 0.5}
	for c, w := range want {
		if got := b.At(0, 0, c); !near(got, w, 1e-6) {
			t.Errorf("premultiplied channel %d = %v, want %v", c, got, w)
		}
	}

	UnpremultiplyAlpha(b)
	orig := []float32{0.8, 0.6, 0.4, 0.5}
	for c, w := range orig {
		if got := b.At(0, 0, c); !near(got, w, 1e-6) {
			t.Errorf("round-tripped channel %d = %v, want %v", c, got, w)
		}
	}
}

func TestUnpremultiplySkipsZeroAlpha(t *testing.T) {
	b := solid(t, 0.8, 0.6, 0.4, 0)
	UnpremultiplyAlpha(b)

	want := []float32{0.8, 0.6, 0.4, 0}
	for c, w := range want {
		if got := b.At(0, 0, c); got != w {
			t.Errorf("channel %d = %v, want %v", c, got, w)
		}
	}
}

func TestPremultiplyFewChannelsNoOp(t *testing.T) {
	b := solid(t, 0.8, 0.6, 0.4)
	PremultiplyAlpha(b)
	UnpremultiplyAlpha(b)

	want := []float32{0.8, 0.6, 0.4}
	for c, w := range want {
		if got := b.At(0, 0, c); got != w {
			t.Errorf("channel %d = %v, want %v", c, got, w)
		}
	}
}
