package compose

import (
	"image"

	"github.com/disintegration/imaging"
)

// MaskOptions tunes silhouette extraction from a border bitmap.
type MaskOptions struct {
	Threshold uint8   // alpha level that counts as opaque
	Shrink    int     // erosion radius in pixels
	Feather   float64 // Gaussian sigma for edge softening
}

// DefaultMaskOptions returns the values tuned against the stock border set.
func DefaultMaskOptions() MaskOptions {
	return MaskOptions{Threshold: 18, Shrink: 8, Feather: 0.8}
}

// MaskFromBorder derives the crop mask implied by a border's silhouette.
// The border alpha is thresholded to a hard shape, the interior hole is
// flood-filled from the center (artwork shows through there, so the raw
// alpha is transparent in the middle), then the shape is eroded so the
// artwork tucks under the border edge and feathered for anti-aliasing.
func MaskFromBorder(border image.Image, opts MaskOptions) *image.Gray {
	n := imaging.Clone(border)
	w, h := n.Bounds().Dx(), n.Bounds().Dy()

	hard := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := n.Pix[y*n.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4+3] >= opts.Threshold {
				hard.Pix[y*hard.Stride+x] = 255
			}
		}
	}

	fillCenterHole(hard)
	if opts.Shrink > 0 {
		hard = erodeGray(hard, opts.Shrink)
	}
	if opts.Feather > 0 {
		hard = blurGray(hard, opts.Feather)
	}
	return hard
}

// ApplyMask multiplies the image's alpha channel by the mask in place.
// Mask dimensions must match the image.
func ApplyMask(img *image.NRGBA, mask *image.Gray) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		mrow := mask.Pix[y*mask.Stride:]
		for x := 0; x < w; x++ {
			a := uint16(row[x*4+3]) * uint16(mrow[x])
			row[x*4+3] = uint8(a / 255)
		}
	}
}

// fillCenterHole flood-fills zero pixels reachable from the image center.
// A border silhouette is a ring; the fill turns the see-through middle
// opaque so the mask covers the whole artwork region.
func fillCenterHole(mask *image.Gray) {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}
	cx, cy := w/2, h/2
	if mask.Pix[cy*mask.Stride+cx] != 0 {
		return
	}

	type point struct{ x, y int }
	queue := []point{{cx, cy}}
	mask.Pix[cy*mask.Stride+cx] = 255
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, n := range [4]point{{p.x - 1, p.y}, {p.x + 1, p.y}, {p.x, p.y - 1}, {p.x, p.y + 1}} {
			if n.x < 0 || n.x >= w || n.y < 0 || n.y >= h {
				continue
			}
			idx := n.y*mask.Stride + n.x
			if mask.Pix[idx] == 0 {
				mask.Pix[idx] = 255
				queue = append(queue, n)
			}
		}
	}
}

// erodeGray applies a square minimum filter of the given radius, run as two
// separable passes. Out-of-bounds samples replicate the edge pixel.
func erodeGray(src *image.Gray, radius int) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	horiz := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		out := horiz.Pix[y*horiz.Stride:]
		for x := 0; x < w; x++ {
			m := uint8(255)
			for dx := -radius; dx <= radius; dx++ {
				v := row[clampInt(x+dx, 0, w-1)]
				if v < m {
					m = v
				}
			}
			out[x] = m
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			m := uint8(255)
			for dy := -radius; dy <= radius; dy++ {
				v := horiz.Pix[clampInt(y+dy, 0, h-1)*horiz.Stride+x]
				if v < m {
					m = v
				}
			}
			out[x] = m
		}
	}
	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// blurGray Gaussian-blurs a grayscale mask by round-tripping through NRGBA.
func blurGray(src *image.Gray, sigma float64) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < w; x++ {
			v := src.Pix[y*src.Stride+x]
			row[x*4] = v
			row[x*4+1] = v
			row[x*4+2] = v
			row[x*4+3] = 255
		}
	}
	blurred := imaging.Blur(rgba, sigma)

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x] = row[x*4]
		}
	}
	return dst
}
