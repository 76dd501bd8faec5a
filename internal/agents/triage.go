// Package agents exposes the triage pipeline over the A2A protocol. The
// TriageAgent is a thin TaskProcessor shell: it parses the submission, hands
// it to the engine, and reports the terminal record back as task artifacts.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/tuannvm/ticket-triage/internal/common"
	"github.com/tuannvm/ticket-triage/internal/config"
	"github.com/tuannvm/ticket-triage/internal/engine"
	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// TriageAgent implements the TaskProcessor interface from trpc-a2a-go,
// running one triage session per task.
type TriageAgent struct {
	config *config.Config
	engine *engine.Engine
}

// NewTriageAgent creates a new TriageAgent around a wired engine.
func NewTriageAgent(cfg *config.Config, eng *engine.Engine) *TriageAgent {
	return &TriageAgent{
		config: cfg,
		engine: eng,
	}
}

// Skills describes the agent's capabilities for the agent card.
func (a *TriageAgent) Skills() []server.AgentSkill {
	return []server.AgentSkill{
		{
			ID:          "triage-ticket",
			Name:        "Triage support ticket",
			Description: common.StringPtr("Classifies a ticket, drafts a grounded reply, reviews it, and escalates after exhausted retries"),
			InputModes:  []string{"text", "data"},
			OutputModes: []string{"text", "data"},
		},
	}
}

// Process implements the TaskProcessor interface from trpc-a2a-go
func (a *TriageAgent) Process(ctx context.Context, taskID string, message protocol.Message, handle taskmanager.TaskHandle) error {
	log.Printf("Received task with ID: %s", taskID)

	if err := handle.UpdateStatus(protocol.TaskState("processing"), nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	// Extract the submission from the message
	var sub ticket.Submission
	if err := common.ExtractSubmission(message, &sub); err != nil {
		log.Printf("Failed to extract submission: %v", err)
		return fmt.Errorf("failed to extract submission: %w", err)
	}
	if sub.SessionID == "" {
		sub.SessionID = taskID
	}

	log.Printf("Triaging ticket for session %s: %s", sub.SessionID, sub.Subject)
	if err := handle.UpdateStatus(protocol.TaskState("triaging"), nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	// Run the pipeline to its terminal state
	rec, err := a.engine.Submit(ctx, sub.Subject, sub.Description, sub.SessionID)
	if err != nil {
		// Persistence failures must not be reported as success; surface them.
		log.Printf("Triage run failed for session %s: %v", sub.SessionID, err)
		return fmt.Errorf("triage run failed: %w", err)
	}

	result := ticket.Result{
		SessionID: sub.SessionID,
		Record:    rec,
		Escalated: !rec.Approved,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal triage result: %w", err)
	}

	// Record the terminal record as an artifact
	artifact := protocol.Artifact{
		Name:        common.StringPtr("triage-result"),
		Description: common.StringPtr("Terminal ticket record"),
		Parts:       []protocol.Part{protocol.NewTextPart(string(resultJSON))},
		Metadata: map[string]interface{}{
			"sessionId": sub.SessionID,
			"approved":  rec.Approved,
			"attempts":  rec.Attempts,
		},
	}
	if err := handle.AddArtifact(artifact); err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}

	responseMsg := &protocol.Message{
		Parts: []protocol.Part{protocol.NewTextPart(string(resultJSON))},
	}
	if err := handle.UpdateStatus(protocol.TaskState("completed"), responseMsg); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	log.Printf("Task %s completed: approved=%t attempts=%d", taskID, rec.Approved, rec.Attempts)
	return nil
}

// IsEscalationFailure reports whether a run error means the escalation record
// could not be durably written.
func IsEscalationFailure(err error) bool {
	return errors.Is(err, engine.ErrEscalationWrite)
}
