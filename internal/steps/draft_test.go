package steps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

func TestDraftTemplateCitesContext(t *testing.T) {
	draft := NewDraft(nil)

	rec := ticket.Record{Context: []string{"step one", "step two"}}
	got := draft.Draft(context.Background(), rec)

	if got == "" {
		t.Fatal("Expected non-empty draft")
	}
	if !strings.Contains(got, "Context:\n- step one\n- step two") {
		t.Errorf("Expected context citation in draft, got:\n%s", got)
	}
}

func TestDraftTemplateWithoutContext(t *testing.T) {
	draft := NewDraft(nil)

	got := draft.Draft(context.Background(), ticket.Record{})

	if got == "" {
		t.Fatal("Expected non-empty draft even without context")
	}
	if strings.Contains(got, "Context:") {
		t.Errorf("Draft cites context it does not have:\n%s", got)
	}
}

func TestDraftUsesLLMCompletion(t *testing.T) {
	draft := NewDraft(fakeLLM{completion: "Here is a tailored reply."})

	got := draft.Draft(context.Background(), ticket.Record{Context: []string{"step"}})
	if got != "Here is a tailored reply." {
		t.Errorf("Expected LLM completion, got %q", got)
	}
}

func TestDraftFallsBackOnLLMFailure(t *testing.T) {
	cases := []struct {
		name string
		llm  fakeLLM
	}{
		{name: "error", llm: fakeLLM{err: errors.New("down")}},
		{name: "blank completion", llm: fakeLLM{completion: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := NewDraft(tc.llm)
			got := draft.Draft(context.Background(), ticket.Record{Context: []string{"step"}})
			if got == "" {
				t.Fatal("Expected non-empty fallback draft")
			}
			if !strings.Contains(got, "Context:\n- step") {
				t.Errorf("Expected template draft, got %q", got)
			}
		})
	}
}
