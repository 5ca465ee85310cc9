package compose

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Metrics reports how the fitted artwork sat inside the crop.
type Metrics struct {
	Centering  Centering
	Centroid   Centroid
	DeviationX float64
	DeviationY float64
}

// OffCenter reports whether either axis of the content centroid deviates
// from center by more than the tolerance, in either direction.
func (m Metrics) OffCenter(tolerance float64) bool {
	return math.Abs(m.DeviationX) > tolerance || math.Abs(m.DeviationY) > tolerance
}

// ComposeWithBorder fits the artwork into a size×size square at the given
// anchor, clips it to the border's corner mask, and lays the border on top.
// The returned metrics describe the fitted artwork's content balance so
// callers can flag off-center results for review.
func ComposeWithBorder(src, border image.Image, size int, c Centering) (*image.NRGBA, Metrics) {
	base := CenterCrop(src, size, c)

	cen := ContentCentroid(base, defaultAlphaThreshold, defaultMarginPct)
	metrics := Metrics{
		Centering:  c,
		Centroid:   cen,
		DeviationX: math.Abs(cen.X - 0.5),
		DeviationY: math.Abs(cen.Y - 0.5),
	}

	b := imaging.Clone(border)
	if b.Bounds().Dx() != size || b.Bounds().Dy() != size {
		b = imaging.Resize(border, size, size, imaging.Lanczos)
	}

	mask := MaskFromBorder(b, DefaultMaskOptions())
	ApplyMask(base, mask)
	return imaging.Overlay(base, b, image.Pt(0, 0), 1.0), metrics
}
