package checkpoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	cp := Checkpoint{
		Position: "review",
		Record: ticket.Record{
			Subject:     "Password reset not working on mobile",
			Description: "User cannot reset password on iOS app.",
			Category:    ticket.CategoryTechnical,
			Context:     []string{"step one"},
			Draft:       "draft 1",
			Attempts:    1,
			Failures:    []ticket.Failure{{Draft: "draft 0", Feedback: "cite context"}},
			Review:      &ticket.Review{Feedback: "cite context"},
		},
		UpdatedAt: time.Now(),
	}
	if err := store.Put(ctx, "session-1", cp); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "session-1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%t err=%v", ok, err)
	}
	if got.Position != cp.Position {
		t.Errorf("Position: expected %q, got %q", cp.Position, got.Position)
	}
	if got.Record.Subject != cp.Record.Subject || got.Record.Attempts != 1 {
		t.Errorf("Record mismatch: %+v", got.Record)
	}
	if len(got.Record.Failures) != 1 || got.Record.Failures[0].Feedback != "cite context" {
		t.Errorf("Failures not preserved: %+v", got.Record.Failures)
	}
	if got.Record.Review == nil || got.Record.Review.Feedback != "cite context" {
		t.Errorf("Review not preserved: %+v", got.Record.Review)
	}
}

func TestSQLiteStoreMissingSession(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, ok, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected miss for unknown session")
	}
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	store.Put(ctx, "s", Checkpoint{Position: "draft", UpdatedAt: time.Now()})
	store.Put(ctx, "s", Checkpoint{Position: "done", UpdatedAt: time.Now()})

	got, ok, err := store.Get(ctx, "s")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%t err=%v", ok, err)
	}
	if got.Position != "done" {
		t.Errorf("Expected latest checkpoint, got %q", got.Position)
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	store.Put(ctx, "s", Checkpoint{Position: "done", UpdatedAt: time.Now()})
	if err := store.Delete(ctx, "s"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "s"); ok {
		t.Error("Expected session gone after delete")
	}
}

func TestSQLiteStorePrune(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	store.Put(ctx, "stale", Checkpoint{Position: "done", UpdatedAt: old})
	store.Put(ctx, "fresh", Checkpoint{Position: "done", UpdatedAt: time.Now()})

	pruned, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("Expected 1 pruned row, got %d", pruned)
	}
	if _, ok, _ := store.Get(ctx, "stale"); ok {
		t.Error("Expected stale session pruned")
	}
	if _, ok, _ := store.Get(ctx, "fresh"); !ok {
		t.Error("Expected fresh session retained")
	}
}
