package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecordsForRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	runID := uuid.NewString()

	records := []Record{
		{RunID: runID, Platform: "snes", Title: "Super Mario World", Slug: "Super_Mario_World", Status: StatusDone, SourceTag: "steamgriddb_square"},
		{RunID: runID, Platform: "snes", Title: "Obscure Game", Slug: "Obscure_Game", Status: StatusFailed, ErrorMessage: "no artwork found"},
		{RunID: uuid.NewString(), Platform: "snes", Title: "Other Run", Slug: "Other_Run", Status: StatusDone},
	}
	for _, rec := range records {
		if _, err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.RecordsForRun(ctx, runID)
	if err != nil {
		t.Fatalf("RecordsForRun() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(got))
	}
	if got[0].Title != "Super Mario World" || got[0].Status != StatusDone {
		t.Errorf("first record = %+v", got[0])
	}
	if got[0].SourceTag != "steamgriddb_square" {
		t.Errorf("SourceTag = %q", got[0].SourceTag)
	}
	if got[1].ErrorMessage != "no artwork found" {
		t.Errorf("ErrorMessage = %q", got[1].ErrorMessage)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestSummaries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	runID := uuid.NewString()

	seed := []Record{
		{RunID: runID, Platform: "snes", Title: "A", Slug: "A", Status: StatusDone},
		{RunID: runID, Platform: "snes", Title: "B", Slug: "B", Status: StatusDone},
		{RunID: runID, Platform: "snes", Title: "C", Slug: "C", Status: StatusFailed},
		{RunID: runID, Platform: "genesis", Title: "D", Slug: "D", Status: StatusSkipped},
	}
	for _, rec := range seed {
		if _, err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	summaries, err := store.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	if summaries[0].Platform != "genesis" || summaries[0].Skipped != 1 {
		t.Errorf("genesis summary = %+v", summaries[0])
	}
	if summaries[1].Platform != "snes" || summaries[1].Done != 2 || summaries[1].Failed != 1 {
		t.Errorf("snes summary = %+v", summaries[1])
	}
}

func TestLatestOutcome(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.LatestOutcome(ctx, "snes", "Never_Seen"); err != nil || ok {
		t.Fatalf("LatestOutcome(unseen) = ok=%v, err=%v", ok, err)
	}

	first := Record{RunID: uuid.NewString(), Platform: "snes", Title: "Game", Slug: "Game", Status: StatusFailed, ErrorMessage: "no artwork found"}
	second := Record{RunID: uuid.NewString(), Platform: "snes", Title: "Game", Slug: "Game", Status: StatusDone, SourceTag: "igdb_cover"}
	for _, rec := range []Record{first, second} {
		if _, err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	rec, ok, err := store.LatestOutcome(ctx, "snes", "Game")
	if err != nil || !ok {
		t.Fatalf("LatestOutcome() = ok=%v, err=%v", ok, err)
	}
	if rec.Status != StatusDone || rec.SourceTag != "igdb_cover" {
		t.Errorf("latest record = %+v, want the second append", rec)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	if _, err := store.Append(context.Background(), Record{RunID: "r", Platform: "snes", Title: "A", Slug: "A", Status: StatusDone}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.RecordsForRun(context.Background(), "r")
	if err != nil {
		t.Fatalf("RecordsForRun() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len(records) after reopen = %d, want 1", len(got))
	}
}
