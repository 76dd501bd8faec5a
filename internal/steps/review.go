package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tuannvm/ticket-triage/internal/common"
	"github.com/tuannvm/ticket-triage/internal/llm"
	log "github.com/tuannvm/ticket-triage/internal/logging"
	"github.com/tuannvm/ticket-triage/internal/ticket"
)

const reviewSystemPrompt = `You are a strict support reply reviewer. ` +
	`Assess the assistant draft against four checks:
1) Groundedness: Only uses given context; cites concrete steps.
2) Policy: No refunds/promises beyond policy; no security leaks.
3) Tone: Empathetic, concise, professional.
4) Actionability: Clear next steps or questions.

Return ONLY JSON with keys: approved (true/false) and feedback (string). ` +
	`Feedback must be short, actionable, and explain what to change if not approved.`

const reviewUserTemplate = `Ticket
------
Subject: %s
Description: %s
Category: %s

Context (retrieved snippets):
%s

Draft reply from assistant:
---------------------------
%s
`

// Review gates the draft. The approve/reject boolean is final at the engine
// boundary; any leniency lives here, not in the state machine.
type Review struct {
	llm llm.CompletionClient
}

// NewReview creates the reviewer. A nil client means heuristic-only mode.
func NewReview(client llm.CompletionClient) *Review {
	return &Review{llm: client}
}

// Review implements engine.Reviewer. Feedback is always non-empty; every
// failure mode degrades to the deterministic citation heuristic.
func (s *Review) Review(ctx context.Context, rec ticket.Record) (bool, ticket.Review) {
	if s.llm != nil {
		prompt := reviewSystemPrompt + "\n\n" + fmt.Sprintf(reviewUserTemplate,
			rec.Subject, rec.Description, rec.Category, bulletList(rec.Context), rec.Draft)
		if completion, err := s.llm.Complete(ctx, prompt); err == nil {
			return parseReviewJSON(completion)
		} else {
			log.Warnf("Reviewer LLM call failed, falling back to heuristic: %v", err)
		}
	}
	return heuristicReview(rec)
}

// parseReviewJSON parses the reviewer response with defensive defaults: an
// unusable response rejects with actionable feedback rather than stalling.
func parseReviewJSON(raw string) (bool, ticket.Review) {
	approved := false
	feedback := "Automatic fallback: unable to parse review; please ensure the draft cites context steps."

	if jsonStr, err := common.ExtractJSON(raw); err == nil {
		var parsed struct {
			Approved *bool  `json:"approved"`
			Feedback string `json:"feedback"`
		}
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err == nil {
			if parsed.Approved != nil {
				approved = *parsed.Approved
			}
			if fb := strings.TrimSpace(parsed.Feedback); fb != "" {
				feedback = fb
			} else if approved {
				feedback = "Looks good."
			} else {
				feedback = "Please ground the reply in the provided context and add clear next steps."
			}
		}
	}
	return approved, ticket.Review{Feedback: feedback}
}

// heuristicReview approves a draft iff it cites retrieval context.
func heuristicReview(rec ticket.Record) (bool, ticket.Review) {
	if strings.Contains(rec.Draft, "Context:\n-") {
		return true, ticket.Review{Feedback: "Looks good."}
	}
	return false, ticket.Review{Feedback: "Please include at least one concrete step from retrieval context."}
}
