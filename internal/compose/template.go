package compose

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Template exposes a layered border/cover document as flattened RGBA
// bitmaps addressed by layer path (e.g. "Game Template", "Border Group").
// The binary format behind the layers is the implementation's concern.
type Template interface {
	LayerComposite(path ...string) (image.Image, error)
}

// DirTemplate serves layer composites from a directory of pre-flattened PNG
// files, one per layer path with path elements joined by "__":
// "Game Template__Border Group.png".
type DirTemplate struct {
	dir string
}

var _ Template = (*DirTemplate)(nil)

// OpenDirTemplate validates the directory and returns a template over it.
func OpenDirTemplate(dir string) (*DirTemplate, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open template directory: %s is not a directory", dir)
	}
	return &DirTemplate{dir: dir}, nil
}

// LayerComposite loads the flattened bitmap for a layer path.
func (t *DirTemplate) LayerComposite(path ...string) (image.Image, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("template layer path required")
	}
	name := strings.Join(path, "__") + ".png"
	img, err := imaging.Open(filepath.Join(t.dir, name), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("load template layer %q: %w", strings.Join(path, "/"), err)
	}
	return img, nil
}

// BorderSpec describes a generated border: a two-color gradient filling the
// template's border silhouette, with an optional platform glyph rendered in
// white inside the icon box.
type BorderSpec struct {
	Color1        color.NRGBA
	Color2        color.NRGBA
	GradientAngle int
	Icon          image.Image
	IconScale     int // percent of the icon box, 100 fills it
	IconCentering Centering
}

// Icon box geometry within the 1024px border template.
const (
	borderTemplateSize = 1024
	iconBoxOffset      = 43
	iconBoxSize        = 93
)

// RenderBorder builds a border bitmap from the template's border group:
// the group's alpha silhouette is filled with the gradient, then the
// whitened icon is pasted into the icon box. Geometry scales with the
// template's actual size.
func RenderBorder(tpl Template, spec BorderSpec) (*image.NRGBA, error) {
	layer, err := tpl.LayerComposite("Game Template", "Border Group")
	if err != nil {
		return nil, err
	}
	group := imaging.Clone(layer)
	w, h := group.Bounds().Dx(), group.Bounds().Dy()

	grad := Gradient(w, h, spec.Color1, spec.Color2, spec.GradientAngle)

	// Gradient everywhere the border silhouette is visible, transparent
	// elsewhere.
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		grow := group.Pix[y*group.Stride:]
		crow := grad.Pix[y*grad.Stride:]
		orow := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			orow[x*4] = crow[x*4]
			orow[x*4+1] = crow[x*4+1]
			orow[x*4+2] = crow[x*4+2]
			orow[x*4+3] = grow[x*4+3]
		}
	}

	if spec.Icon != nil {
		scale := spec.IconScale
		if scale <= 0 {
			scale = 100
		}
		boxOffset := iconBoxOffset * w / borderTemplateSize
		boxSize := iconBoxSize * w / borderTemplateSize
		maxSize := boxSize * scale / 100
		if maxSize > 0 {
			icon := WhitenIcon(spec.Icon)
			icon = imaging.Fit(icon, maxSize, maxSize, imaging.Lanczos)

			iw, ih := icon.Bounds().Dx(), icon.Bounds().Dy()
			px := boxOffset + int(float64(boxSize-iw)*clamp01(spec.IconCentering.X))
			py := boxOffset + int(float64(boxSize-ih)*clamp01(spec.IconCentering.Y))
			out = imaging.Overlay(out, icon, image.Pt(px, py), 1.0)
		}
	}
	return out, nil
}

// WhitenIcon recolors every pixel white while preserving the alpha channel,
// so glyphs of any color render uniformly on the border.
func WhitenIcon(img image.Image) *image.NRGBA {
	n := imaging.Clone(img)
	for i := 0; i+3 < len(n.Pix); i += 4 {
		n.Pix[i] = 255
		n.Pix[i+1] = 255
		n.Pix[i+2] = 255
	}
	return n
}
