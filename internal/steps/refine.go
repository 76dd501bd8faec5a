package steps

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// stopwords cleans signal from the keyword extraction without external deps.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"if": true, "then": true, "else": true, "so": true, "to": true, "for": true,
	"of": true, "on": true, "in": true, "at": true, "by": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true, "being": true,
	"it": true, "this": true, "that": true, "these": true, "those": true,
	"with": true, "without": true, "from": true, "as": true, "about": true,
	"into": true, "over": true, "under": true, "again": true, "further": true,
	"can": true, "cannot": true, "could": true, "should": true, "would": true,
	"will": true, "wont": true, "dont": true, "does": true, "did": true, "done": true,
	"user": true, "customer": true, "please": true, "thanks": true, "thank": true,
	"hi": true, "hello": true, "issue": true, "problem": true, "error": true,
}

var tokenRe = regexp.MustCompile(`[A-Za-z0-9+#\-_/]{3,}`)

const maxHintTerms = 10

// Refine converts reviewer feedback plus the ticket's own text into a
// retrieval hint for the next pass. The derivation is a pure function: same
// record, same hint.
type Refine struct{}

// NewRefine creates the refine step.
func NewRefine() *Refine {
	return &Refine{}
}

// Refine implements engine.Refiner. When no signal can be extracted the hint
// falls back to the ticket's category, then to "general".
func (s *Refine) Refine(_ context.Context, rec ticket.Record) string {
	terms := keywords([]string{rec.Feedback(), rec.Subject, rec.Description, string(rec.Category)}, maxHintTerms)
	if len(terms) > 0 {
		return strings.Join(terms, " ")
	}
	if rec.Category != "" {
		return string(rec.Category)
	}
	return "general"
}

func tokenize(text string) []string {
	matches := tokenRe.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(m))
	}
	return out
}

// keywords extracts the top-N unique high-signal terms across the corpus.
// Longer tokens and tokens carrying digits or symbols (2fa, ios,
// reset_password) score higher; ties keep order of first appearance.
func keywords(texts []string, keep int) []string {
	type scoredTerm struct {
		term  string
		score float64
	}
	seen := make(map[string]bool)
	var scored []scoredTerm
	for _, text := range texts {
		for _, tok := range tokenize(text) {
			if stopwords[tok] || seen[tok] {
				continue
			}
			score := float64(len(tok))
			if strings.ContainsAny(tok, "0123456789") {
				score += 2.0
			}
			if strings.ContainsAny(tok, "+#_/-") {
				score += 1.5
			}
			scored = append(scored, scoredTerm{term: tok, score: score})
			seen[tok] = true
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > keep {
		scored = scored[:keep]
	}
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.term)
	}
	return out
}
