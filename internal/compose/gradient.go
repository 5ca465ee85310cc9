package compose

import (
	"image"
	"image/color"
	"math"
)

// GradientAngles are the supported two-color gradient directions in degrees.
var GradientAngles = []int{0, 45, 90, 135, 225, 315}

// Gradient renders a linear two-color gradient. Angle 0 runs left to right,
// 90 top to bottom; the diagonal angles interpolate along (x±y)/(w+h).
// Unsupported angles render as 315.
func Gradient(width, height int, c1, c2 color.NRGBA, angle int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fw := float64(width)
	fh := float64(height)
	diag := fw + fh

	for y := 0; y < height; y++ {
		fy := float64(y)
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			fx := float64(x)
			var t float64
			switch angle {
			case 0:
				t = fx / fw
			case 90:
				t = fy / fh
			case 45:
				t = (fx + (fh - fy)) / diag
			case 135:
				t = (fx + fy) / diag
			case 225:
				t = ((fw - fx) + fy) / diag
			default:
				t = ((fw - fx) + (fh - fy)) / diag
			}
			t = clamp01(t)

			row[x*4] = lerpChannel(c1.R, c2.R, t)
			row[x*4+1] = lerpChannel(c1.G, c2.G, t)
			row[x*4+2] = lerpChannel(c1.B, c2.B, t)
			row[x*4+3] = 255
		}
	}
	return img
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Max(0, math.Min(255, float64(a)+(float64(b)-float64(a))*t)))
}
