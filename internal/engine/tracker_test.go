package engine

import (
	"testing"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

func TestTrackAppendsFailureAndIncrements(t *testing.T) {
	rec := ticket.Record{
		Draft:    "first draft",
		Review:   &ticket.Review{Feedback: "Mention mobile iOS steps."},
		Attempts: 0,
	}

	tracked := rec.Apply(Track(rec))

	if tracked.Attempts != 1 {
		t.Errorf("Expected attempts 1, got %d", tracked.Attempts)
	}
	if len(tracked.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(tracked.Failures))
	}
	if tracked.Failures[0].Draft != "first draft" {
		t.Errorf("Failure captured wrong draft: %q", tracked.Failures[0].Draft)
	}
	if tracked.Failures[0].Feedback != "Mention mobile iOS steps." {
		t.Errorf("Failure captured wrong feedback: %q", tracked.Failures[0].Feedback)
	}
}

func TestTrackKeepsFailuresEqualToAttempts(t *testing.T) {
	rec := ticket.Record{Draft: "d1", Review: &ticket.Review{Feedback: "f1"}}

	for i := 1; i <= 3; i++ {
		rec = rec.Apply(Track(rec))
		if len(rec.Failures) != rec.Attempts {
			t.Fatalf("After %d tracks: failures=%d attempts=%d", i, len(rec.Failures), rec.Attempts)
		}
	}
}

func TestTrackDoesNotAliasHistory(t *testing.T) {
	rec := ticket.Record{
		Draft:    "d1",
		Review:   &ticket.Review{Feedback: "f1"},
		Failures: []ticket.Failure{{Draft: "d0", Feedback: "f0"}},
	}

	tracked := rec.Apply(Track(rec))
	tracked.Failures[0].Draft = "mutated"

	if rec.Failures[0].Draft != "d0" {
		t.Error("Track shares backing array with the input record")
	}
}
