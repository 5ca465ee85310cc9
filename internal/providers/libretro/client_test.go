package libretro

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gridsmith/internal/artcache"
	"gridsmith/internal/providers"
	"gridsmith/internal/titles"
)

const playlist = "Nintendo - Super Nintendo Entertainment System"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cache, err := artcache.Open(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("artcache.Open() error = %v", err)
	}
	return New(server.URL, map[string]string{"snes": playlist}, cache, nil)
}

func TestAvailableRequiresPlaylist(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	if !client.Available("snes") {
		t.Error("Available(snes) = false with a playlist mapping")
	}
	if client.Available("dos") {
		t.Error("Available(dos) = true without a playlist mapping")
	}
}

func TestFetchBestDirectHit(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/"+playlist+"/Named_Boxarts/Super Mario World.png" {
			w.Write([]byte("boxart-bytes"))
			return
		}
		http.NotFound(w, r)
	}))

	opt, err := client.FetchBest(context.Background(), titles.Normalize("Super Mario World (USA).sfc"), "snes", providers.StylePrefs{})
	if err != nil {
		t.Fatalf("FetchBest() error = %v", err)
	}
	if string(opt.Bytes) != "boxart-bytes" {
		t.Errorf("bytes = %q", opt.Bytes)
	}
	if opt.SourceTag != "libretro_boxart" {
		t.Errorf("SourceTag = %q", opt.SourceTag)
	}
}

func TestFetchBestIndexFallback(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/" + playlist + "/Named_Boxarts/":
			// Directory listing with a filename none of the direct
			// candidates guess (extra revision tag).
			w.Write([]byte(`<html><a href="Chrono%20Trigger%20(USA)%20(Rev%201).png">x</a>` +
				`<a href="Battletoads%20(USA).png">y</a></html>`))
		case "/" + playlist + "/Named_Boxarts/Chrono Trigger (USA) (Rev 1).png":
			w.Write([]byte("rev1-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))

	opt, err := client.FetchBest(context.Background(), titles.Normalize("Chrono Trigger"), "snes", providers.StylePrefs{})
	if err != nil {
		t.Fatalf("FetchBest() error = %v", err)
	}
	if string(opt.Bytes) != "rev1-bytes" {
		t.Errorf("bytes = %q, want the fuzzy index match", opt.Bytes)
	}
}

func TestFetchBestNoMatch(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	_, err := client.FetchBest(context.Background(), titles.Normalize("Unknown Game"), "snes", providers.StylePrefs{})
	if !errors.Is(err, providers.ErrNoArtwork) {
		t.Errorf("FetchBest() error = %v, want ErrNoArtwork", err)
	}
}

func TestFetchScreenshotsSnap(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/"+playlist+"/Named_Snaps/Super Mario World.png" {
			w.Write([]byte("snap-bytes"))
			return
		}
		http.NotFound(w, r)
	}))

	opts, err := client.FetchScreenshots(context.Background(), titles.Normalize("Super Mario World"), "snes", 3)
	if err != nil {
		t.Fatalf("FetchScreenshots() error = %v", err)
	}
	if len(opts) != 1 || string(opts[0].Bytes) != "snap-bytes" {
		t.Errorf("FetchScreenshots() = %+v", opts)
	}
	if opts[0].SourceTag != "libretro_snap" {
		t.Errorf("SourceTag = %q", opts[0].SourceTag)
	}
}
