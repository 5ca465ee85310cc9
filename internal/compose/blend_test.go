package compose

import (
	"image"
	"image/color"
	"testing"
)

func uniformNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestVividLightDodgeSaturates(t *testing.T) {
	base := uniformNRGBA(4, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 200})
	blend := uniformNRGBA(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := VividLight(base, blend)
	got := out.NRGBAAt(1, 1)
	if got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("white blend over mid gray = %+v, want full white", got)
	}
	if got.A != 200 {
		t.Errorf("alpha = %d, want base alpha 200 preserved", got.A)
	}
}

func TestVividLightBurnCrushes(t *testing.T) {
	base := uniformNRGBA(4, 4, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	blend := uniformNRGBA(4, 4, color.NRGBA{A: 255})

	out := VividLight(base, blend)
	if got := out.NRGBAAt(0, 0); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("black blend over mid gray = %+v, want black", got)
	}
}

func TestVividLightNearNeutral(t *testing.T) {
	// A blend value right at the dodge/burn boundary barely changes the
	// base: divisor ~1 on either side.
	base := uniformNRGBA(2, 2, color.NRGBA{R: 100, G: 150, B: 200, A: 255})
	blend := uniformNRGBA(2, 2, color.NRGBA{R: 127, G: 127, B: 127, A: 255})

	out := VividLight(base, blend)
	got := out.NRGBAAt(0, 0)
	for i, pair := range [][2]uint8{{got.R, 100}, {got.G, 150}, {got.B, 200}} {
		diff := int(pair[0]) - int(pair[1])
		if diff < -3 || diff > 3 {
			t.Errorf("channel %d = %d, want within 3 of %d", i, pair[0], pair[1])
		}
	}
}

func TestVividLightResizesBlendLayer(t *testing.T) {
	base := uniformNRGBA(8, 8, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	blend := uniformNRGBA(2, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := VividLight(base, blend)
	if got := out.Bounds(); got.Dx() != 8 || got.Dy() != 8 {
		t.Errorf("output bounds = %v, want 8x8", got)
	}
	if got := out.NRGBAAt(7, 7).R; got != 255 {
		t.Errorf("corner = %d, want dodged to 255", got)
	}
}
