package compose

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const (
	defaultAlphaThreshold = 16
	defaultMarginPct      = 0.06
)

// Centering is a crop anchor in [0,1] per axis; {0.5, 0.5} is dead center.
type Centering struct {
	X float64
	Y float64
}

// Centered is the neutral anchor.
var Centered = Centering{X: 0.5, Y: 0.5}

// Centroid is the mean position of visible content, normalized to [0,1],
// with the number of contributing pixels.
type Centroid struct {
	X      float64
	Y      float64
	Pixels int
}

// CenterCrop scales img so it covers a size×size square and crops using the
// given anchor: anchor 0 keeps the left/top edge, 1 keeps the right/bottom.
func CenterCrop(img image.Image, size int, c Centering) *image.NRGBA {
	cx := clamp01(c.X)
	cy := clamp01(c.Y)

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || size <= 0 {
		return imaging.New(maxInt(size, 1), maxInt(size, 1), color.NRGBA{})
	}

	scale := float64(size) / float64(minInt(w, h))
	nw := maxInt(size, int(math.Round(float64(w)*scale)))
	nh := maxInt(size, int(math.Round(float64(h)*scale)))
	resized := imaging.Resize(img, nw, nh, imaging.Lanczos)

	left := int(math.Round(float64(nw-size) * cx))
	top := int(math.Round(float64(nh-size) * cy))
	return imaging.Crop(resized, image.Rect(left, top, left+size, top+size))
}

// ContentCentroid computes the centroid of pixels whose alpha exceeds
// alphaThreshold, ignoring a marginPct band at every edge so border bleed
// does not skew the result. Coordinates are normalized against the full
// image, not the inspected region. A fully transparent region yields the
// image center with zero pixels.
func ContentCentroid(img image.Image, alphaThreshold uint8, marginPct float64) Centroid {
	n := imaging.Clone(img)
	w, h := n.Bounds().Dx(), n.Bounds().Dy()
	if w <= 1 || h <= 1 {
		return Centroid{X: 0.5, Y: 0.5}
	}

	mx := int(math.Round(float64(w) * marginPct))
	my := int(math.Round(float64(h) * marginPct))
	x1, y1 := mx, my
	x2 := maxInt(x1+1, w-mx)
	y2 := maxInt(y1+1, h-my)

	var sx, sy float64
	count := 0
	for y := y1; y < y2; y++ {
		row := n.Pix[y*n.Stride:]
		for x := x1; x < x2; x++ {
			if row[x*4+3] > alphaThreshold {
				sx += float64(x)
				sy += float64(y)
				count++
			}
		}
	}
	if count == 0 {
		return Centroid{X: 0.5, Y: 0.5}
	}
	return Centroid{
		X:      (sx / float64(count)) / math.Max(1, float64(w-1)),
		Y:      (sy / float64(count)) / math.Max(1, float64(h-1)),
		Pixels: count,
	}
}

// CenterOptions tunes the auto-centering search.
type CenterOptions struct {
	Steps          int     // grid points per axis
	Span           float64 // max offset from 0.5 per axis
	AlphaThreshold uint8
	MarginPct      float64
	Tolerance      float64 // per-axis centroid deviation before review
}

// DefaultCenterOptions returns the tuning used for boxart sources.
func DefaultCenterOptions() CenterOptions {
	return CenterOptions{
		Steps:          5,
		Span:           0.22,
		AlphaThreshold: defaultAlphaThreshold,
		MarginPct:      defaultMarginPct,
		Tolerance:      0.06,
	}
}

// BestCentering searches a Steps×Steps grid of crop anchors around center
// and returns the anchor whose crop leaves the content centroid closest to
// the middle, together with that crop's centroid. Empty crops are heavily
// penalized so any anchor that keeps content wins.
func BestCentering(img image.Image, size int, opts CenterOptions) (Centering, Centroid) {
	steps := maxInt(1, opts.Steps)
	span := math.Max(0, math.Min(0.49, opts.Span))

	if steps == 1 {
		fitted := CenterCrop(img, size, Centered)
		return Centered, ContentCentroid(fitted, opts.AlphaThreshold, opts.MarginPct)
	}

	offsets := make([]float64, steps)
	for i := range offsets {
		offsets[i] = -span + (2*span)*float64(i)/float64(steps-1)
	}

	best := Centered
	bestCentroid := Centroid{X: 0.5, Y: 0.5}
	bestScore := math.Inf(1)

	for _, oy := range offsets {
		for _, ox := range offsets {
			c := Centering{X: clamp01(0.5 + ox), Y: clamp01(0.5 + oy)}
			fitted := CenterCrop(img, size, c)
			cen := ContentCentroid(fitted, opts.AlphaThreshold, opts.MarginPct)
			score := (cen.X-0.5)*(cen.X-0.5) + (cen.Y-0.5)*(cen.Y-0.5)
			if cen.Pixels == 0 {
				score += 10
			}
			if score < bestScore {
				bestScore = score
				best = c
				bestCentroid = cen
			}
		}
	}
	return best, bestCentroid
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
