package thegamesdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gridsmith/internal/artcache"
	"gridsmith/internal/providers"
	"gridsmith/internal/titles"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cache, err := artcache.Open(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("artcache.Open() error = %v", err)
	}
	return New("test-key", server.URL, "", map[string]int{"snes": 6}, cache, nil)
}

// apiHandler is a minimal stand-in for the ByGameName/Images/CDN trio used
// by the fetch tests. imageRows is interpolated into the Images payload.
func apiHandler(t *testing.T, imageRows string) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/Games/ByGameName", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "test-key" {
			t.Errorf("apikey = %q", q.Get("apikey"))
		}
		if q.Get("filter[platform]") != "6" {
			t.Errorf("filter[platform] = %q", q.Get("filter[platform]"))
		}
		fmt.Fprint(w, `{"data":{"games":[
			{"id":7,"game_title":"Chrono Cross","release_date":"1999-11-18"},
			{"id":3,"game_title":"Chrono Trigger","release_date":"1995-03-11"}
		]}}`)
	})
	mux.HandleFunc("/Games/Images", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("games_id"); got != "3" {
			t.Errorf("games_id = %q, want the best-matching game", got)
		}
		base := "http://" + r.Host + "/cdn/"
		fmt.Fprintf(w, `{"data":{"base_url":{"original":%q},"images":{"3":[%s]}}}`, base, imageRows)
	})
	mux.HandleFunc("/cdn/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "bytes-of-%s", r.URL.Path[len("/cdn/"):])
	})
	return mux
}

func TestAvailable(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	if !client.Available("snes") {
		t.Error("Available(snes) = false with key and platform mapping")
	}
	if client.Available("dos") {
		t.Error("Available(dos) = true without a platform mapping")
	}

	keyless := New("", "http://example.invalid", "", map[string]int{"snes": 6}, client.cache, nil)
	if keyless.Available("snes") {
		t.Error("Available(snes) = true without an api key")
	}
}

func TestFetchBestPrefersBoxart(t *testing.T) {
	client := newTestClient(t, apiHandler(t,
		`{"id":1,"type":"fanart","filename":"fanart/3.jpg"},
		 {"id":2,"type":"boxart","filename":"boxart/3.jpg"}`))

	opt, err := client.FetchBest(context.Background(), titles.Normalize("Chrono Trigger"), "snes", providers.StylePrefs{})
	if err != nil {
		t.Fatalf("FetchBest() error = %v", err)
	}
	if string(opt.Bytes) != "bytes-of-boxart/3.jpg" {
		t.Errorf("bytes = %q, want the boxart image", opt.Bytes)
	}
	if opt.SourceTag != "thegamesdb_boxart" {
		t.Errorf("SourceTag = %q", opt.SourceTag)
	}
}

func TestFetchBestFallsBackToFirstImage(t *testing.T) {
	client := newTestClient(t, apiHandler(t,
		`{"id":1,"type":"fanart","filename":"fanart/3.jpg"},
		 {"id":2,"type":"screenshot","filename":"screenshots/3.jpg"}`))

	opt, err := client.FetchBest(context.Background(), titles.Normalize("Chrono Trigger"), "snes", providers.StylePrefs{})
	if err != nil {
		t.Fatalf("FetchBest() error = %v", err)
	}
	if string(opt.Bytes) != "bytes-of-fanart/3.jpg" {
		t.Errorf("bytes = %q, want the first image", opt.Bytes)
	}
	if opt.SourceTag != "thegamesdb_fanart" {
		t.Errorf("SourceTag = %q", opt.SourceTag)
	}
}

func TestFetchBestNoImages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Games/ByGameName", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"games":[]}}`)
	})
	client := newTestClient(t, mux)

	_, err := client.FetchBest(context.Background(), titles.Normalize("Chrono Trigger"), "snes", providers.StylePrefs{})
	if err != providers.ErrNoArtwork {
		t.Errorf("FetchBest() error = %v, want ErrNoArtwork", err)
	}
}

func TestFetchScreenshots(t *testing.T) {
	client := newTestClient(t, apiHandler(t,
		`{"id":1,"type":"screenshot","filename":"screenshots/a.jpg"},
		 {"id":2,"type":"boxart","filename":"boxart/3.jpg"},
		 {"id":3,"type":"screenshot","filename":"screenshots/b.jpg"}`))

	opts, err := client.FetchScreenshots(context.Background(), titles.Normalize("Chrono Trigger"), "snes", 1)
	if err != nil {
		t.Fatalf("FetchScreenshots() error = %v", err)
	}
	if len(opts) != 1 {
		t.Fatalf("len(options) = %d, want maxResults cap of 1", len(opts))
	}
	if string(opts[0].Bytes) != "bytes-of-screenshots/a.jpg" {
		t.Errorf("bytes = %q", opts[0].Bytes)
	}
	if opts[0].SourceTag != "thegamesdb_screenshot" {
		t.Errorf("SourceTag = %q", opts[0].SourceTag)
	}
}
