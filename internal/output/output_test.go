package output

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Super Mario World", "Super_Mario_World"},
		{"Mario & Luigi: Superstar Saga", "Mario_Luigi_Superstar_Saga"},
		{"  Ico  ", "Ico"},
		{"F-Zero", "F-Zero"},
		{"Ecco: The Tides of Time!?", "Ecco_The_Tides_of_Time"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugLimitsLength(t *testing.T) {
	long := strings.Repeat("a", 400)
	if got := Slug(long); len(got) != maxSlugLen {
		t.Errorf("len(Slug(long)) = %d, want %d", len(got), maxSlugLen)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"jpg", "JPEG", " jpeg "} {
		f, err := ParseFormat(s)
		if err != nil || f != FormatJPEG {
			t.Errorf("ParseFormat(%q) = %v, %v", s, f, err)
		}
	}
	if f, err := ParseFormat("png"); err != nil || f != FormatPNG {
		t.Errorf("ParseFormat(png) = %v, %v", f, err)
	}
	if _, err := ParseFormat("webp"); err == nil {
		t.Error("ParseFormat(webp) succeeded, want error")
	}
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: "/out"}
	slug := Slug("Super Mario World")

	if got, want := l.IconPath("snes", slug, FormatJPEG), filepath.Join("/out", "snes", "Super_Mario_World", "icon.jpg"); got != want {
		t.Errorf("IconPath = %q, want %q", got, want)
	}
	if got, want := l.TitlePath("snes", slug, FormatPNG), filepath.Join("/out", "snes", "Super_Mario_World", "title.png"); got != want {
		t.Errorf("TitlePath = %q, want %q", got, want)
	}
	if got, want := l.HeroPath("snes", slug, 2, FormatPNG), filepath.Join("/out", "snes", "Super_Mario_World", "hero_2.png"); got != want {
		t.Errorf("HeroPath = %q, want %q", got, want)
	}
	if got, want := l.SlidePath("snes", slug, 1, FormatJPEG), filepath.Join("/out", "snes", "Super_Mario_World", "slide_1.jpg"); got != want {
		t.Errorf("SlidePath = %q, want %q", got, want)
	}
}

func TestSavePNGRoundTrip(t *testing.T) {
	img := imaging.New(48, 48, color.NRGBA{R: 10, G: 200, B: 30, A: 255})
	path := filepath.Join(t.TempDir(), "nested", "icon.png")

	if err := Save(img, path, FormatPNG, 0); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	back, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if back.Bounds().Dx() != 48 || back.Bounds().Dy() != 48 {
		t.Errorf("decoded size = %v", back.Bounds())
	}
}

func TestSaveJPEGFlattensAlpha(t *testing.T) {
	// Fully transparent image: flattened JPEG must come back white, not
	// black (the result of dropping alpha without compositing).
	img := imaging.New(32, 32, color.NRGBA{})
	path := filepath.Join(t.TempDir(), "icon.jpg")

	if err := Save(img, path, FormatJPEG, 90); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	back, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	r, g, b, _ := back.At(16, 16).RGBA()
	if r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
		t.Errorf("flattened pixel = (%d,%d,%d), want near white", r>>8, g>>8, b>>8)
	}
}

func TestFlattenOnWhiteBlends(t *testing.T) {
	img := imaging.New(8, 8, color.NRGBA{R: 0, G: 0, B: 0, A: 128})
	flat := FlattenOnWhite(img)

	c := flat.NRGBAAt(4, 4)
	if c.A != 255 {
		t.Errorf("alpha = %d, want opaque", c.A)
	}
	// Half-transparent black over white lands near mid gray.
	if c.R < 110 || c.R > 145 {
		t.Errorf("R = %d, want ~127", c.R)
	}
}
