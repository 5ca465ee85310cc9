package compose

import (
	"image"
	"image/color"
	"testing"
)

// logoOnCanvas paints a solid block with a contrasting outline on a
// transparent canvas so edge detection has something to find.
func logoOnCanvas(w, h int, block image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			onEdge := x < block.Min.X+2 || x >= block.Max.X-2 || y < block.Min.Y+2 || y >= block.Max.Y-2
			if onEdge {
				c = color.NRGBA{A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDetectContentBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 30; y < 60; y++ {
		for x := 40; x < 80; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}

	got := DetectContentBounds(img, 16, 0)
	want := image.Rect(40, 30, 80, 60)
	if got != want {
		t.Errorf("DetectContentBounds() = %v, want %v", got, want)
	}

	padded := DetectContentBounds(img, 16, 5)
	if padded != image.Rect(35, 25, 85, 65) {
		t.Errorf("padded bounds = %v", padded)
	}
}

func TestDetectContentBoundsEmpty(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	if got := DetectContentBounds(img, 16, 5); got != image.Rect(0, 0, 50, 50) {
		t.Errorf("empty image bounds = %v, want full image", got)
	}
}

func TestDetectLogoRegion(t *testing.T) {
	block := image.Rect(60, 70, 140, 130)
	img := logoOnCanvas(200, 200, block)

	region, ok := DetectLogoRegion(img)
	if !ok {
		t.Fatal("DetectLogoRegion() found nothing")
	}
	// The detected region must cover the block's outline, padding included.
	if !block.In(region.Inset(-15)) {
		t.Errorf("region %v does not cover block %v", region, block)
	}
}

func TestDetectLogoRegionBlank(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	if _, ok := DetectLogoRegion(img); ok {
		t.Error("DetectLogoRegion() = ok for fully transparent image")
	}
}

func TestCropLogo(t *testing.T) {
	block := image.Rect(60, 60, 170, 160)
	img := logoOnCanvas(256, 256, block)

	out := CropLogo(img, DefaultLogoOptions())
	if out.Bounds().Dx() >= 256 || out.Bounds().Dy() >= 256 {
		t.Errorf("crop did not shrink image: %v", out.Bounds())
	}
	// Cropped area stays above the minimum content gate.
	area := float64(out.Bounds().Dx()*out.Bounds().Dy()) / float64(256*256)
	if area < 0.15*0.9 {
		t.Errorf("crop area ratio %.3f below minimum gate", area)
	}
}

func TestCropLogoRejectsTinyCrop(t *testing.T) {
	// A 10x10 block in a 256x256 canvas is under the 15% minimum; the
	// original image must come back untouched.
	img := logoOnCanvas(256, 256, image.Rect(100, 100, 110, 110))
	out := CropLogo(img, DefaultLogoOptions())
	if out.Bounds().Dx() != 256 || out.Bounds().Dy() != 256 {
		t.Errorf("tiny crop accepted: %v", out.Bounds())
	}
}

func TestCropLogoRejectsFullFrameCrop(t *testing.T) {
	// Content filling nearly the whole frame: cropping gains nothing, so
	// the gate keeps the original.
	img := logoOnCanvas(100, 100, image.Rect(2, 2, 98, 98))
	out := CropLogo(img, DefaultLogoOptions())
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
		t.Errorf("full-frame crop accepted: %v", out.Bounds())
	}
}
