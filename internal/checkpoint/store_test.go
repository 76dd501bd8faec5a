package checkpoint

import (
	"context"
	"fmt"
	"testing"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	cp := Checkpoint{
		Position: "review",
		Record:   ticket.Record{Subject: "s", Description: "d", Attempts: 1},
	}
	if err := store.Put(ctx, "session-1", cp); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "session-1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%t err=%v", ok, err)
	}
	if got.Position != "review" || got.Record.Attempts != 1 {
		t.Errorf("Round trip mismatch: %+v", got)
	}

	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Error("Expected miss for unknown session")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	store.Put(ctx, "s", Checkpoint{Position: "draft"})
	store.Put(ctx, "s", Checkpoint{Position: "done"})

	got, _, _ := store.Get(ctx, "s")
	if got.Position != "done" {
		t.Errorf("Expected latest checkpoint, got %q", got.Position)
	}
	if store.Len() != 1 {
		t.Errorf("Overwrite grew the store: %d entries", store.Len())
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	store.Put(ctx, "s", Checkpoint{Position: "done"})
	if err := store.Delete(ctx, "s"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "s"); ok {
		t.Error("Expected session gone after delete")
	}
	if err := store.Delete(ctx, "s"); err != nil {
		t.Errorf("Deleting absent session should be a no-op, got %v", err)
	}
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		store.Put(ctx, fmt.Sprintf("session-%d", i), Checkpoint{Position: "classify"})
	}

	if store.Len() != 3 {
		t.Fatalf("Expected 3 entries after eviction, got %d", store.Len())
	}
	if _, ok, _ := store.Get(ctx, "session-0"); ok {
		t.Error("Expected oldest session evicted")
	}
	if _, ok, _ := store.Get(ctx, "session-3"); !ok {
		t.Error("Expected newest session retained")
	}
}

func TestMemoryStoreRefreshOnOverwrite(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	store.Put(ctx, "a", Checkpoint{Position: "classify"})
	store.Put(ctx, "b", Checkpoint{Position: "classify"})
	// Rewriting "a" makes "b" the oldest.
	store.Put(ctx, "a", Checkpoint{Position: "retrieve"})
	store.Put(ctx, "c", Checkpoint{Position: "classify"})

	if _, ok, _ := store.Get(ctx, "b"); ok {
		t.Error("Expected b evicted as oldest")
	}
	if _, ok, _ := store.Get(ctx, "a"); !ok {
		t.Error("Expected refreshed a retained")
	}
}
