package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

func TestReviewParsesApproval(t *testing.T) {
	review := NewReview(fakeLLM{completion: `{"approved": true, "feedback": "Well grounded."}`})

	approved, rev := review.Review(context.Background(), ticket.Record{Draft: "d"})
	if !approved {
		t.Error("Expected approval")
	}
	if rev.Feedback != "Well grounded." {
		t.Errorf("Unexpected feedback: %q", rev.Feedback)
	}
}

func TestReviewParsesRejection(t *testing.T) {
	review := NewReview(fakeLLM{completion: `{"approved": false, "feedback": "Cite the context."}`})

	approved, rev := review.Review(context.Background(), ticket.Record{Draft: "d"})
	if approved {
		t.Error("Expected rejection")
	}
	if rev.Feedback != "Cite the context." {
		t.Errorf("Unexpected feedback: %q", rev.Feedback)
	}
}

func TestReviewDefaultsFeedbackWhenMissing(t *testing.T) {
	cases := []struct {
		name       string
		completion string
		approved   bool
	}{
		{name: "approved without feedback", completion: `{"approved": true}`, approved: true},
		{name: "rejected without feedback", completion: `{"approved": false}`, approved: false},
		{name: "not JSON at all", completion: `I think it looks fine`, approved: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			review := NewReview(fakeLLM{completion: tc.completion})
			approved, rev := review.Review(context.Background(), ticket.Record{Draft: "d"})
			if approved != tc.approved {
				t.Errorf("Expected approved=%t, got %t", tc.approved, approved)
			}
			if rev.Feedback == "" {
				t.Error("Feedback must never be empty")
			}
		})
	}
}

func TestReviewHeuristicApprovesCitedDraft(t *testing.T) {
	review := NewReview(nil)

	rec := ticket.Record{Draft: templateDraft([]string{"step one"})}
	approved, rev := review.Review(context.Background(), rec)
	if !approved {
		t.Errorf("Expected heuristic approval for cited draft, feedback: %q", rev.Feedback)
	}
}

func TestReviewHeuristicRejectsUncitedDraft(t *testing.T) {
	review := NewReview(nil)

	rec := ticket.Record{Draft: templateDraft(nil)}
	approved, rev := review.Review(context.Background(), rec)
	if approved {
		t.Error("Expected heuristic rejection for uncited draft")
	}
	if rev.Feedback == "" {
		t.Error("Feedback must never be empty")
	}
}

func TestReviewFallsBackOnLLMError(t *testing.T) {
	review := NewReview(fakeLLM{err: errors.New("timeout")})

	rec := ticket.Record{Draft: templateDraft([]string{"step one"})}
	approved, rev := review.Review(context.Background(), rec)
	if !approved {
		t.Error("Expected heuristic fallback approval")
	}
	if rev.Feedback == "" {
		t.Error("Feedback must never be empty")
	}
}
