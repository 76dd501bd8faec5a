package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/tuannvm/ticket-triage/internal/llm"
	log "github.com/tuannvm/ticket-triage/internal/logging"
	"github.com/tuannvm/ticket-triage/internal/ticket"
)

const draftPrompt = `You are a support agent writing a reply to a customer ticket.
Use ONLY the context snippets below; cite concrete steps from them. Be
empathetic, concise and professional, and end with a clear question or next
step. Return only the reply text.

Subject: %s
Description: %s

Context:
%s
`

// Draft generates the reply text from the retrieved context. The draft is
// regenerated on every pass; nothing is carried over from a rejected one.
type Draft struct {
	llm llm.CompletionClient
}

// NewDraft creates the drafter. A nil client means template-only mode.
func NewDraft(client llm.CompletionClient) *Draft {
	return &Draft{llm: client}
}

// Draft implements engine.Drafter. The template path guarantees a non-empty
// reply whenever the LLM is disabled or fails.
func (s *Draft) Draft(ctx context.Context, rec ticket.Record) string {
	if s.llm != nil {
		prompt := fmt.Sprintf(draftPrompt, rec.Subject, rec.Description, bulletList(rec.Context))
		if completion, err := s.llm.Complete(ctx, prompt); err == nil && strings.TrimSpace(completion) != "" {
			return completion
		} else if err != nil {
			log.Warnf("Drafter LLM call failed, falling back to template: %v", err)
		}
	}
	return templateDraft(rec.Context)
}

// templateDraft is the deterministic reply used without an LLM.
func templateDraft(context []string) string {
	return "Hi there, thanks for reaching out.\n\n" +
		"I understand you're facing an issue. Here are steps that often resolve it:" +
		formatContext(context) +
		"\n\nIf this doesn't help, please reply with your OS/app version so we can dig deeper."
}

func formatContext(context []string) string {
	if len(context) == 0 {
		return ""
	}
	return "\n\nContext:\n- " + strings.Join(context, "\n- ")
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return "- " + strings.Join(items, "\n- ")
}
