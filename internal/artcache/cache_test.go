package artcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchCachesSecondRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	cache, err := Open(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	ctx := context.Background()
	first, err := cache.Fetch(ctx, server.URL+"/grid.png")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	second, err := cache.Fetch(ctx, server.URL+"/grid.png")
	if err != nil {
		t.Fatalf("Fetch() second error = %v", err)
	}
	if string(first) != "image-bytes" || string(second) != "image-bytes" {
		t.Errorf("Fetch() bytes = %q, %q", first, second)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (second fetch must be a cache hit)", got)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	cache, err := Open(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := cache.Fetch(context.Background(), server.URL+"/missing.png"); err == nil {
		t.Error("Fetch() error = nil for 404 response")
	}
}

func TestStoreIsImmutable(t *testing.T) {
	cache, err := Open(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	url := "https://example.invalid/a.png"
	if err := cache.Store(url, []byte("first")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := cache.Store(url, []byte("second")); err != nil {
		t.Fatalf("Store() second error = %v", err)
	}
	got, ok := cache.Lookup(url)
	if !ok || string(got) != "first" {
		t.Errorf("Lookup() = %q, %v; want original bytes retained", got, ok)
	}
}

func TestOpenPrunesStaleEntries(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, Key("https://example.invalid/old.png")+".bin")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("age stale entry: %v", err)
	}

	if _, err := Open(dir, 24*time.Hour, nil); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale entry still present after prune: %v", err)
	}
}

func TestOpenRequiresDirectory(t *testing.T) {
	if _, err := Open("", 0, nil); err == nil {
		t.Error("Open(\"\") error = nil")
	}
}
