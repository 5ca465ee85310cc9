// Package output owns the on-disk result tree: slug generation, the
// per-game directory layout consumed by downstream sync tooling, and
// format-aware image export.
package output

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

// maxSlugLen caps slug length so deep output paths stay under common
// filesystem limits.
const maxSlugLen = 180

var (
	slugStripPattern = regexp.MustCompile(`[^\w\- ]+`)
	slugSpacePattern = regexp.MustCompile(`\s+`)
)

// Slug converts a game title into a filesystem-safe directory name:
// word characters, dashes, and spaces survive, runs of whitespace become a
// single underscore, and the result is length-limited.
func Slug(title string) string {
	s := strings.TrimSpace(title)
	s = slugStripPattern.ReplaceAllString(s, "")
	s = slugSpacePattern.ReplaceAllString(s, "_")
	if r := []rune(s); len(r) > maxSlugLen {
		s = string(r[:maxSlugLen])
	}
	return s
}

// Format selects the export encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
)

// ParseFormat accepts the config spellings "png", "jpg", and "jpeg".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return FormatPNG, fmt.Errorf("unknown export format %q", s)
	}
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

func (f Format) String() string {
	if f == FormatJPEG {
		return "jpeg"
	}
	return "png"
}

// Layout resolves paths inside the output tree. Each game owns the
// directory <root>/<platformFolder>/<slug>/, so concurrent tasks never
// write into each other's files.
type Layout struct {
	Root string
}

// GameDir returns the directory a single game's assets live in.
func (l Layout) GameDir(platformFolder, slug string) string {
	return filepath.Join(l.Root, platformFolder, slug)
}

// IconPath is the primary composited icon.
func (l Layout) IconPath(platformFolder, slug string, f Format) string {
	return filepath.Join(l.GameDir(platformFolder, slug), "icon."+f.Ext())
}

// TitlePath is the optional logo (or duplicate boxart) sibling.
func (l Layout) TitlePath(platformFolder, slug string, f Format) string {
	return filepath.Join(l.GameDir(platformFolder, slug), "title."+f.Ext())
}

// HeroPath is the n-th banner image, 1-based.
func (l Layout) HeroPath(platformFolder, slug string, n int, f Format) string {
	return filepath.Join(l.GameDir(platformFolder, slug), fmt.Sprintf("hero_%d.%s", n, f.Ext()))
}

// SlidePath is the n-th screenshot slide, 1-based.
func (l Layout) SlidePath(platformFolder, slug string, n int, f Format) string {
	return filepath.Join(l.GameDir(platformFolder, slug), fmt.Sprintf("slide_%d.%s", n, f.Ext()))
}

// Save encodes img to path in the given format, creating parent
// directories. JPEG cannot carry an alpha channel, so transparent pixels
// are flattened onto white first.
func Save(img image.Image, path string, f Format, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	switch f {
	case FormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = 95
		}
		flattened := FlattenOnWhite(img)
		if err := imaging.Save(flattened, path, imaging.JPEGQuality(quality)); err != nil {
			return fmt.Errorf("save jpeg: %w", err)
		}
	default:
		if err := imaging.Save(img, path); err != nil {
			return fmt.Errorf("save png: %w", err)
		}
	}
	return nil
}

// FlattenOnWhite composites img over an opaque white background.
func FlattenOnWhite(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
