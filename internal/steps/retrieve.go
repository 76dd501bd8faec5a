package steps

import (
	"context"
	"sort"
	"strings"

	"github.com/tuannvm/ticket-triage/internal/corpus"
	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// topK is the maximum number of snippets a retrieval pass may return.
const topK = 3

// Retrieve searches the category-partitioned corpus for the snippets most
// relevant to the ticket, steered by the refine hint after a rejection. The
// scoring is plain keyword overlap; ranking quality is a heuristic concern,
// the contract is only "at most three non-empty snippets, never empty unless
// the bucket itself is".
type Retrieve struct {
	corpus *corpus.Corpus
}

// NewRetrieve creates the retriever over the given corpus.
func NewRetrieve(c *corpus.Corpus) *Retrieve {
	return &Retrieve{corpus: c}
}

// Retrieve implements engine.Retriever.
func (s *Retrieve) Retrieve(_ context.Context, rec ticket.Record) []string {
	bucket := s.corpus.Snippets(rec.Category)
	if len(bucket) == 0 {
		return nil
	}

	query := buildQuery(rec)
	terms := make(map[string]bool)
	for _, tok := range tokenize(query) {
		terms[tok] = true
	}

	type scored struct {
		snippet string
		score   int
	}
	ranked := make([]scored, 0, len(bucket))
	for _, snippet := range bucket {
		score := 0
		for _, tok := range tokenize(snippet) {
			if terms[tok] {
				score++
			}
		}
		ranked = append(ranked, scored{snippet: snippet, score: score})
	}
	// Stable sort keeps corpus order among equal scores, so the same record
	// always retrieves the same context.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]string, 0, topK)
	for _, r := range ranked {
		if len(out) == topK {
			break
		}
		if strings.TrimSpace(r.snippet) != "" {
			out = append(out, r.snippet)
		}
	}
	return out
}

// buildQuery composes the retrieval query from the ticket fields plus the
// refine hint. Order matters slightly for term weighting downstream.
func buildQuery(rec ticket.Record) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{rec.Subject, rec.Description, rec.RefineHint} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
