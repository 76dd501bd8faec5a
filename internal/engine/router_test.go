package engine

import (
	"testing"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

func TestAfterReview(t *testing.T) {
	if got := AfterReview(ticket.Record{Approved: true}); got != ReviewTerminate {
		t.Errorf("Expected ReviewTerminate for approved record, got %v", got)
	}
	if got := AfterReview(ticket.Record{Approved: false}); got != ReviewRetry {
		t.Errorf("Expected ReviewRetry for rejected record, got %v", got)
	}
}

func TestAfterTracking(t *testing.T) {
	cases := []struct {
		attempts int
		want     TrackDecision
	}{
		{attempts: 0, want: TrackRefine},
		{attempts: 1, want: TrackRefine},
		{attempts: 2, want: TrackEscalate},
		{attempts: 3, want: TrackEscalate},
	}
	for _, tc := range cases {
		got := AfterTracking(ticket.Record{Attempts: tc.attempts})
		if got != tc.want {
			t.Errorf("attempts=%d: expected %v, got %v", tc.attempts, tc.want, got)
		}
	}
}
