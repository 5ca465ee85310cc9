package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"gridsmith/internal/logging"
	"gridsmith/internal/match"
	"gridsmith/internal/titles"
)

type fakeProvider struct {
	id         string
	available  bool
	best       *Option
	all        []Option
	err        error
	delay      time.Duration
	fetchCalls int
}

func (f *fakeProvider) ID() string            { return f.id }
func (f *fakeProvider) Available(string) bool { return f.available }

func (f *fakeProvider) Search(context.Context, titles.Title, string) ([]match.Candidate, error) {
	return nil, nil
}

func (f *fakeProvider) FetchBest(ctx context.Context, _ titles.Title, _ string, _ StylePrefs) (*Option, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.best == nil {
		return nil, ErrNoArtwork
	}
	return f.best, nil
}

func (f *fakeProvider) FetchAll(ctx context.Context, _ titles.Title, _ string, _ StylePrefs, _ int) ([]Option, error) {
	f.fetchCalls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.all, f.err
}

func TestFetchFirstFallsThroughFailures(t *testing.T) {
	broken := &fakeProvider{id: "broken", available: true, err: errors.New("boom")}
	empty := &fakeProvider{id: "empty", available: true}
	working := &fakeProvider{id: "working", available: true, best: &Option{
		Bytes: []byte("art"), SourceTag: "working_square", ProviderID: "working",
	}}

	o := NewOrchestrator([]Provider{broken, empty, working}, logging.NewNop())
	opt, err := o.FetchFirst(context.Background(), titles.Normalize("Chrono Trigger"), "snes", StylePrefs{})
	if err != nil {
		t.Fatalf("FetchFirst() error = %v", err)
	}
	if opt.ProviderID != "working" {
		t.Errorf("ProviderID = %q, want the last provider after failures", opt.ProviderID)
	}
	if broken.fetchCalls != 1 || empty.fetchCalls != 1 {
		t.Errorf("earlier providers not tried: broken=%d empty=%d", broken.fetchCalls, empty.fetchCalls)
	}
}

func TestFetchFirstSkipsUnavailable(t *testing.T) {
	locked := &fakeProvider{id: "locked", available: false, best: &Option{Bytes: []byte("x")}}
	o := NewOrchestrator([]Provider{locked}, logging.NewNop())

	_, err := o.FetchFirst(context.Background(), titles.Normalize("Doom"), "dos", StylePrefs{})
	if !errors.Is(err, ErrNoArtwork) {
		t.Errorf("FetchFirst() error = %v, want ErrNoArtwork", err)
	}
	if locked.fetchCalls != 0 {
		t.Errorf("unavailable provider was called %d times", locked.fetchCalls)
	}
}

func TestFetchFirstHonorsCancellation(t *testing.T) {
	working := &fakeProvider{id: "working", available: true, best: &Option{Bytes: []byte("x")}}
	o := NewOrchestrator([]Provider{working}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.FetchFirst(ctx, titles.Normalize("Doom"), "dos", StylePrefs{}); !errors.Is(err, context.Canceled) {
		t.Errorf("FetchFirst() error = %v, want context.Canceled", err)
	}
	if working.fetchCalls != 0 {
		t.Error("provider called after cancellation")
	}
}

func TestFetchAllMergesInDeclarationOrder(t *testing.T) {
	slow := &fakeProvider{id: "slow", available: true, delay: 30 * time.Millisecond, all: []Option{
		{SourceTag: "slow_1", ProviderID: "slow"},
	}}
	fast := &fakeProvider{id: "fast", available: true, all: []Option{
		{SourceTag: "fast_1", ProviderID: "fast"},
		{SourceTag: "fast_2", ProviderID: "fast"},
	}}

	o := NewOrchestrator([]Provider{slow, fast}, logging.NewNop())
	got := o.FetchAll(context.Background(), titles.Normalize("Zelda"), "snes", StylePrefs{}, 5)

	want := []string{"slow_1", "fast_1", "fast_2"}
	if len(got) != len(want) {
		t.Fatalf("FetchAll() returned %d options, want %d", len(got), len(want))
	}
	for i, tag := range want {
		if got[i].SourceTag != tag {
			t.Errorf("option[%d] = %q, want %q (declaration order)", i, got[i].SourceTag, tag)
		}
	}
}

func TestFetchAllIsolatesFaults(t *testing.T) {
	broken := &fakeProvider{id: "broken", available: true, err: errors.New("boom")}
	working := &fakeProvider{id: "working", available: true, all: []Option{
		{SourceTag: "working_1", ProviderID: "working"},
	}}

	o := NewOrchestrator([]Provider{broken, working}, logging.NewNop())
	got := o.FetchAll(context.Background(), titles.Normalize("Zelda"), "snes", StylePrefs{}, 5)
	if len(got) != 1 || got[0].SourceTag != "working_1" {
		t.Errorf("FetchAll() = %+v, want only the working provider's option", got)
	}
}

func TestFetchAllJoinTimeout(t *testing.T) {
	stuck := &fakeProvider{id: "stuck", available: true, delay: time.Second, all: []Option{
		{SourceTag: "late"},
	}}
	fast := &fakeProvider{id: "fast", available: true, all: []Option{
		{SourceTag: "fast_1", ProviderID: "fast"},
	}}

	o := NewOrchestrator([]Provider{stuck, fast}, logging.NewNop(), WithJoinTimeout(50*time.Millisecond))
	start := time.Now()
	got := o.FetchAll(context.Background(), titles.Normalize("Zelda"), "snes", StylePrefs{}, 5)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("FetchAll() took %v, join timeout not applied", elapsed)
	}
	if len(got) != 1 || got[0].SourceTag != "fast_1" {
		t.Errorf("FetchAll() = %+v, want only the fast provider's option", got)
	}
}
