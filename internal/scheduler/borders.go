package scheduler

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// DirBorders loads border overlays from a directory of PNG files, keyed by
// the border name configured on each platform. Loaded borders are cached
// because many tasks share one platform border.
type DirBorders struct {
	dir string

	mu     sync.Mutex
	loaded map[string]image.Image
}

// NewDirBorders creates a border source rooted at dir.
func NewDirBorders(dir string) *DirBorders {
	return &DirBorders{dir: dir, loaded: make(map[string]image.Image)}
}

// Border implements BorderSource.
func (d *DirBorders) Border(name string) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img, ok := d.loaded[name]; ok {
		return img, nil
	}
	path := filepath.Join(d.dir, name+".png")
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open border %q: %w", name, err)
	}
	d.loaded[name] = img
	return img, nil
}
