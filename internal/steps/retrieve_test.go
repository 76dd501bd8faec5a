package steps

import (
	"context"
	"testing"

	"github.com/tuannvm/ticket-triage/internal/corpus"
	"github.com/tuannvm/ticket-triage/internal/ticket"
)

func TestRetrieveReturnsAtMostThree(t *testing.T) {
	retrieve := NewRetrieve(corpus.Builtin())

	rec := ticket.Record{
		Subject:     "Password reset not working on mobile",
		Description: "User cannot reset password on iOS app.",
		Category:    ticket.CategoryTechnical,
	}
	got := retrieve.Retrieve(context.Background(), rec)

	if len(got) == 0 || len(got) > 3 {
		t.Fatalf("Expected 1-3 snippets, got %d", len(got))
	}
	for _, s := range got {
		if s == "" {
			t.Error("Retrieved an empty snippet")
		}
	}
}

func TestRetrieveRanksMatchingSnippetsFirst(t *testing.T) {
	retrieve := NewRetrieve(corpus.Builtin())

	rec := ticket.Record{
		Subject:     "Cannot reset password",
		Description: "The reset password email never arrives.",
		Category:    ticket.CategoryTechnical,
	}
	got := retrieve.Retrieve(context.Background(), rec)

	if len(got) == 0 {
		t.Fatal("Expected snippets")
	}
	// The password-reset snippet shares the most terms with the query.
	if got[0] != "Reset your password from Settings > Account > Reset Password." {
		t.Errorf("Expected password snippet first, got %q", got[0])
	}
}

func TestRetrieveUnsetCategoryFallsBackToGeneral(t *testing.T) {
	retrieve := NewRetrieve(corpus.Builtin())

	rec := ticket.Record{Subject: "Hello", Description: "A question with no keywords at all."}
	got := retrieve.Retrieve(context.Background(), rec)

	if len(got) == 0 {
		t.Fatal("Expected fallback snippets for unset category")
	}
	if len(got) > 3 {
		t.Errorf("Expected at most 3 snippets, got %d", len(got))
	}
}

func TestRetrieveIsDeterministic(t *testing.T) {
	retrieve := NewRetrieve(corpus.Builtin())

	rec := ticket.Record{
		Subject:     "App crashes on update",
		Description: "Crash after latest version update.",
		Category:    ticket.CategoryTechnical,
		RefineHint:  "clearing cache version",
	}
	first := retrieve.Retrieve(context.Background(), rec)
	second := retrieve.Retrieve(context.Background(), rec)

	if len(first) != len(second) {
		t.Fatalf("Non-deterministic retrieval: %d vs %d snippets", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Snippet %d differs between runs", i)
		}
	}
}
