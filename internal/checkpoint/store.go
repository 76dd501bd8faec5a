// Package checkpoint persists per-session snapshots of the ticket record so a
// run can be resumed after a crash between any two steps, or inspected once
// terminal. Stores are keyed by session id; writes for different sessions are
// independent and concurrent writes to the same session are not supported.
package checkpoint

import (
	"context"
	"sync"
	"time"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// Checkpoint is the latest record snapshot for a session plus the position in
// the step sequence the run should continue from.
type Checkpoint struct {
	Position  string        `json:"position"` // next step to execute
	Record    ticket.Record `json:"record"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Store is the persistence interface for session checkpoints.
type Store interface {
	// Put saves or replaces the checkpoint for a session.
	Put(ctx context.Context, sessionID string, cp Checkpoint) error
	// Get retrieves the checkpoint for a session. The bool reports presence.
	Get(ctx context.Context, sessionID string) (Checkpoint, bool, error)
	// Delete removes a session's checkpoint. Deleting an absent session is a no-op.
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process Store bounded to maxEntries sessions; once
// full, the least recently written session is evicted. Retention beyond that
// bound is the operator's concern, not the engine's.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]Checkpoint
	order      []string // session ids, oldest write first
}

// DefaultMaxEntries bounds the in-memory store when no cap is given.
const DefaultMaxEntries = 1024

// NewMemoryStore creates a bounded in-memory checkpoint store. A maxEntries
// of zero or less falls back to DefaultMaxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		entries:    make(map[string]Checkpoint),
	}
}

// Put saves or replaces the checkpoint for a session.
func (s *MemoryStore) Put(_ context.Context, sessionID string, cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[sessionID]; exists {
		// Move to the back of the eviction order.
		for i, id := range s.order {
			if id == sessionID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	} else if len(s.entries) >= s.maxEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}

	s.entries[sessionID] = cp
	s.order = append(s.order, sessionID)
	return nil
}

// Get retrieves the checkpoint for a session.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (Checkpoint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.entries[sessionID]
	return cp, ok, nil
}

// Delete removes a session's checkpoint.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[sessionID]; !ok {
		return nil
	}
	delete(s.entries, sessionID)
	for i, id := range s.order {
		if id == sessionID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports how many sessions are currently checkpointed.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
