package compose

import (
	"image"

	"github.com/disintegration/imaging"
)

// vividEpsilon guards the division in both blend halves.
const vividEpsilon = 0.001

// VividLight blends the two images per RGB channel in normalized [0,1]
// space: blend values above 0.5 color-dodge the base, values at or below
// 0.5 color-burn it. The base alpha channel is carried through unchanged.
// The blend layer is resized to the base dimensions if they differ.
func VividLight(base *image.NRGBA, blend image.Image) *image.NRGBA {
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	layer := imaging.Clone(blend)
	if layer.Bounds().Dx() != w || layer.Bounds().Dy() != h {
		layer = imaging.Resize(blend, w, h, imaging.Lanczos)
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		brow := base.Pix[y*base.Stride:]
		lrow := layer.Pix[y*layer.Stride:]
		orow := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			for ch := 0; ch < 3; ch++ {
				b := float64(brow[x*4+ch]) / 255
				l := float64(lrow[x*4+ch]) / 255

				var v float64
				if l > 0.5 {
					div := 1 - 2*(l-0.5)
					if div < vividEpsilon {
						div = vividEpsilon
					}
					v = b / div
				} else {
					div := 2 * l
					if div < vividEpsilon {
						div = vividEpsilon
					}
					v = 1 - (1-b)/div
				}
				orow[x*4+ch] = uint8(clamp01(v)*255 + 0.5)
			}
			orow[x*4+3] = brow[x*4+3]
		}
	}
	return out
}
