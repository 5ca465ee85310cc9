package compose

import (
	"image"

	"github.com/disintegration/imaging"
)

// LogoOptions tunes logo-region detection and the crop acceptance gates.
type LogoOptions struct {
	AlphaThreshold  uint8
	EdgePadding     int
	MinContentRatio float64 // reject crops smaller than this share of the image
	MaxCropRatio    float64 // reject crops that barely shrink the image
}

// DefaultLogoOptions returns the tuning used for logo and boxart sources.
func DefaultLogoOptions() LogoOptions {
	return LogoOptions{
		AlphaThreshold:  defaultAlphaThreshold,
		EdgePadding:     10,
		MinContentRatio: 0.15,
		MaxCropRatio:    0.85,
	}
}

var (
	sobelX = [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	sobelY = [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// edgeThreshold is the minimum combined Sobel response that counts as an
// edge pixel.
const edgeThreshold = 64

// DetectContentBounds returns the tightest rectangle containing pixels
// whose alpha exceeds the threshold, expanded by padding and clipped to the
// image. A fully transparent image yields the full bounds.
func DetectContentBounds(img image.Image, alphaThreshold uint8, padding int) image.Rectangle {
	n := imaging.Clone(img)
	w, h := n.Bounds().Dx(), n.Bounds().Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := n.Pix[y*n.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4+3] > alphaThreshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < 0 {
		return image.Rect(0, 0, w, h)
	}
	return image.Rect(
		maxInt(0, minX-padding),
		maxInt(0, minY-padding),
		minInt(w, maxX+padding+1),
		minInt(h, maxY+padding+1),
	)
}

// DetectLogoRegion finds the dominant logo area via edge detection: Sobel
// gradients restricted to visible pixels, dilated to connect strokes, then
// the bounding box of the largest connected component. Returns false when
// the image has no usable edges.
func DetectLogoRegion(img image.Image) (image.Rectangle, bool) {
	n := imaging.Clone(img)
	w, h := n.Bounds().Dx(), n.Bounds().Dy()
	if w == 0 || h == 0 {
		return image.Rectangle{}, false
	}

	gray := imaging.Grayscale(n)
	abs := &imaging.ConvolveOptions{Abs: true}
	gx := imaging.Convolve3x3(gray, sobelX, abs)
	gy := imaging.Convolve3x3(gray, sobelY, abs)

	edges := make([]bool, w*h)
	found := false
	for y := 0; y < h; y++ {
		arow := n.Pix[y*n.Stride:]
		xrow := gx.Pix[y*gx.Stride:]
		yrow := gy.Pix[y*gy.Stride:]
		for x := 0; x < w; x++ {
			if arow[x*4+3] <= defaultAlphaThreshold {
				continue
			}
			if int(xrow[x*4])+int(yrow[x*4]) >= edgeThreshold {
				edges[y*w+x] = true
				found = true
			}
		}
	}
	if !found {
		return image.Rectangle{}, false
	}

	dilated := dilate(edges, w, h, 2)
	dilated = dilate(dilated, w, h, 2)
	region, ok := largestComponent(dilated, w, h)
	if !ok {
		return image.Rectangle{}, false
	}

	const padding = 10
	return image.Rect(
		maxInt(0, region.Min.X-padding),
		maxInt(0, region.Min.Y-padding),
		minInt(w, region.Max.X+padding),
		minInt(h, region.Max.Y+padding),
	), true
}

// CropLogo crops the image to its detected logo region, falling back to the
// alpha bounding box when edge detection finds nothing. The crop is
// discarded when it keeps too little of the image (over-aggressive) or
// nearly all of it (pointless).
func CropLogo(img image.Image, opts LogoOptions) *image.NRGBA {
	n := imaging.Clone(img)
	w, h := n.Bounds().Dx(), n.Bounds().Dy()
	if w == 0 || h == 0 {
		return n
	}

	region, ok := DetectLogoRegion(n)
	if !ok {
		region = DetectContentBounds(n, opts.AlphaThreshold, opts.EdgePadding)
	}

	cw, ch := region.Dx(), region.Dy()
	if cw <= 0 || ch <= 0 {
		return n
	}
	ratio := float64(cw*ch) / float64(w*h)
	if ratio < opts.MinContentRatio {
		return n
	}
	if float64(cw) > float64(w)*opts.MaxCropRatio && float64(ch) > float64(h)*opts.MaxCropRatio {
		return n
	}
	return imaging.Crop(n, region)
}

func dilate(mask []bool, w, h, radius int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					xx := x + dx
					if xx >= 0 && xx < w {
						out[yy*w+xx] = true
					}
				}
			}
		}
	}
	return out
}

// largestComponent returns the bounding box of the biggest 4-connected
// region of set pixels.
func largestComponent(mask []bool, w, h int) (image.Rectangle, bool) {
	visited := make([]bool, len(mask))
	var best image.Rectangle
	bestArea := 0

	type point struct{ x, y int }
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			idx := sy*w + sx
			if !mask[idx] || visited[idx] {
				continue
			}
			minX, minY, maxX, maxY := sx, sy, sx, sy
			area := 0
			queue := []point{{sx, sy}}
			visited[idx] = true
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				area++
				if p.x < minX {
					minX = p.x
				}
				if p.x > maxX {
					maxX = p.x
				}
				if p.y < minY {
					minY = p.y
				}
				if p.y > maxY {
					maxY = p.y
				}
				for _, nb := range [4]point{{p.x - 1, p.y}, {p.x + 1, p.y}, {p.x, p.y - 1}, {p.x, p.y + 1}} {
					if nb.x < 0 || nb.x >= w || nb.y < 0 || nb.y >= h {
						continue
					}
					ni := nb.y*w + nb.x
					if mask[ni] && !visited[ni] {
						visited[ni] = true
						queue = append(queue, nb)
					}
				}
			}
			cand := image.Rect(minX, minY, maxX+1, maxY+1)
			if area > bestArea {
				bestArea = area
				best = cand
			}
		}
	}
	if bestArea == 0 {
		return image.Rectangle{}, false
	}
	return best, true
}
