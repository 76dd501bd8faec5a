package engine

import "github.com/tuannvm/ticket-triage/internal/ticket"

// MaxAttempts is the retry ceiling: after this many rejected reviews a ticket
// is escalated. One ticket therefore sees at most MaxAttempts+1 review cycles.
const MaxAttempts = 2

// ReviewDecision is the outcome of the post-review routing point.
type ReviewDecision int

const (
	// ReviewTerminate ends the run: the draft was approved.
	ReviewTerminate ReviewDecision = iota
	// ReviewRetry hands the record to the attempt tracker.
	ReviewRetry
)

// TrackDecision is the outcome of the post-tracking routing point.
type TrackDecision int

const (
	// TrackRefine re-enters the pipeline at the refine step.
	TrackRefine TrackDecision = iota
	// TrackEscalate hands the record to the escalation sink and terminates.
	TrackEscalate
)

// AfterReview decides whether the run terminates or retries. Pure.
func AfterReview(rec ticket.Record) ReviewDecision {
	if rec.Approved {
		return ReviewTerminate
	}
	return ReviewRetry
}

// AfterTracking decides between another refine pass and escalation. Pure.
func AfterTracking(rec ticket.Record) TrackDecision {
	if rec.Attempts < MaxAttempts {
		return TrackRefine
	}
	return TrackEscalate
}
