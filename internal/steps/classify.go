// Package steps implements the pipeline collaborators: classify, retrieve,
// draft, review and refine. Every step honors the same failure posture — when
// the LLM service is disabled, unreachable or returns something unusable, the
// step falls back to a deterministic local heuristic so the engine always
// receives an in-contract value.
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

const classifySystemPrompt = `You are a precise support ticket classifier. ` +
	`Choose exactly ONE category from this allowed set: Billing, Technical, Security, General. ` +
	`Return ONLY valid JSON like {"category":"Technical"} with no commentary.`

const classifyUserTemplate = `Subject: %s
Description: %s

Rules:
- Pick one of: Billing, Technical, Security, General
- If unsure, choose the closest fit (never respond with Unknown).
`

// Classify maps ticket text to one label from the fixed category set.
type Classify struct {
	llm llm.CompletionClient
}

// NewClassify creates the classifier. A nil client means heuristic-only mode.
func NewClassify(client llm.CompletionClient) *Classify {
	return &Classify{llm: client}
}

// Classify implements engine.Classifier. It never returns a label outside the
// fixed set: LLM errors and unparseable responses fall back to the keyword
// heuristic, which itself falls back to General.
func (s *Classify) Classify(ctx context.Context, rec ticket.Record) ticket.Category {
	if s.llm != nil {
		prompt := classifySystemPrompt + "\n\n" +
			fmt.Sprintf(classifyUserTemplate, rec.Subject, rec.Description)
		if completion, err := s.llm.Complete(ctx, prompt); err == nil {
			if cat, ok := parseCategoryJSON(completion); ok {
				return cat
			}
			log.Warnf("Classifier returned unusable response, falling back to heuristic")
		} else {
			log.Warnf("Classifier LLM call failed, falling back to heuristic: %v", err)
		}
	}
	return heuristicCategory(rec)
}

// parseCategoryJSON extracts {"category": "..."} from a model response and
// validates the label against the fixed set.
func parseCategoryJSON(raw string) (ticket.Category, bool) {
	jsonStr, err := common.ExtractJSON(raw)
	if err != nil {
		return "", false
	}
	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return "", false
	}
	cat := ticket.Category(strings.TrimSpace(parsed.Category))
	if !cat.Valid() {
		return "", false
	}
	return cat, true
}

var categoryKeywords = map[ticket.Category][]string{
	ticket.CategoryBilling:  {"invoice", "refund", "charge", "payment", "billing", "subscription", "price"},
	ticket.CategorySecurity: {"mfa", "2fa", "phishing", "breach", "suspicious", "unauthorized", "compromised"},
	ticket.CategoryTechnical: {
		"error", "crash", "bug", "password", "reset", "login", "install",
		"update", "app", "sync", "timeout",
	},
}

// heuristicCategory picks a label by keyword match over subject+description,
// checking Billing, then Security, then Technical. No match means General.
func heuristicCategory(rec ticket.Record) ticket.Category {
	text := strings.ToLower(rec.Subject + " " + rec.Description)
	for _, cat := range []ticket.Category{ticket.CategoryBilling, ticket.CategorySecurity, ticket.CategoryTechnical} {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(text, kw) {
				return cat
			}
		}
	}
	return ticket.CategoryGeneral
}
