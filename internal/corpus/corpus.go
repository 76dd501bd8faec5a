// Package corpus holds the category-partitioned knowledge base the retriever
// searches. Snippets are loaded from a YAML file when one is configured and
// fall back to a small built-in set so retrieval never comes back empty while
// the on-disk corpus is missing or still being ingested.
package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// Corpus is an immutable snapshot of per-category knowledge snippets.
type Corpus struct {
	buckets map[ticket.Category][]string
}

// builtin mirrors the minimal in-memory buckets used when no corpus file is
// available, keyed by category.
var builtin = map[ticket.Category][]string{
	ticket.CategoryTechnical: {
		"Reset your password from Settings > Account > Reset Password.",
		"Ensure app version is latest; try clearing cache and retry.",
		"If email not received, check spam and rate limits.",
	},
	ticket.CategoryBilling: {
		"Invoices are sent on the 1st of each month.",
		"Refunds follow policy section 3.2 (no partial refunds after 14 days).",
	},
	ticket.CategorySecurity: {
		"MFA required for admin roles; see Security Policy section 4.",
		"Password rules: 12+ chars, mixed case, symbol.",
	},
	ticket.CategoryGeneral: {
		"Thanks for contacting support; we're here to help.",
		"Share screenshots to speed up troubleshooting.",
	},
}

// Builtin returns the built-in fallback corpus.
func Builtin() *Corpus {
	buckets := make(map[ticket.Category][]string, len(builtin))
	for cat, snippets := range builtin {
		buckets[cat] = append([]string(nil), snippets...)
	}
	return &Corpus{buckets: buckets}
}

// Load reads a YAML corpus file mapping category names to snippet lists.
// Unknown category keys are rejected so ingestion mistakes surface early.
// Categories absent from the file fall back to the built-in bucket.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}

	c := Builtin()
	for name, snippets := range raw {
		cat := ticket.Category(name)
		if !cat.Valid() {
			return nil, fmt.Errorf("corpus file %s: unknown category %q", path, name)
		}
		cleaned := make([]string, 0, len(snippets))
		for _, s := range snippets {
			if s != "" {
				cleaned = append(cleaned, s)
			}
		}
		if len(cleaned) > 0 {
			c.buckets[cat] = cleaned
		}
	}
	return c, nil
}

// Snippets returns the bucket for the given category. An invalid or empty
// category falls back to the General bucket.
func (c *Corpus) Snippets(cat ticket.Category) []string {
	if !cat.Valid() {
		cat = ticket.CategoryGeneral
	}
	if snippets, ok := c.buckets[cat]; ok && len(snippets) > 0 {
		return snippets
	}
	return c.buckets[ticket.CategoryGeneral]
}
