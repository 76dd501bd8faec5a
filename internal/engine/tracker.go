package engine

import "github.com/tuannvm/ticket-triage/internal/ticket"

// Track records one rejected review: it bumps the attempt counter and appends
// the rejected draft/feedback pair to the failure history. It is the sole
// writer of the attempts and failures fields and is only invoked on the retry
// path, so an approved first-pass ticket keeps an empty history.
//
// The returned patch copies the failure slice rather than appending in place
// so a caller holding the pre-track record never sees it mutate.
func Track(rec ticket.Record) ticket.Patch {
	attempts := rec.Attempts + 1
	failures := make([]ticket.Failure, 0, len(rec.Failures)+1)
	failures = append(failures, rec.Failures...)
	failures = append(failures, ticket.Failure{
		Draft:    rec.Draft,
		Feedback: rec.Feedback(),
	})
	return ticket.Patch{Attempts: &attempts, Failures: &failures}
}
