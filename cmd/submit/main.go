package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/tuannvm/ticket-triage/internal/common"
	"github.com/tuannvm/ticket-triage/internal/config"
	"github.com/tuannvm/ticket-triage/internal/ticket"
)

func main() {
	subject := flag.String("subject", "", "ticket subject")
	description := flag.String("description", "", "ticket description")
	sessionID := flag.String("session", "", "session id (generated when empty)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall request timeout")
	flag.Parse()

	if *subject == "" || *description == "" {
		log.Fatal("both -subject and -description are required")
	}

	cfg := config.NewConfig()

	a2aClient, err := common.SetupA2AClient(cfg, cfg.AgentURL)
	if err != nil {
		log.Fatalf("Failed to create A2A client: %v", err)
	}

	sub := ticket.Submission{
		Subject:     *subject,
		Description: *description,
		SessionID:   *sessionID,
	}
	if sub.SessionID == "" {
		sub.SessionID = uuid.NewString()
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		log.Fatalf("Failed to marshal submission: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Printf("Submitting ticket (session %s)...", sub.SessionID)
	msg, err := common.SendTask(ctx, a2aClient, protocol.SendTaskParams{
		Message: protocol.Message{
			Parts: []protocol.Part{protocol.NewTextPart(string(payload))},
		},
	})
	if err != nil {
		log.Fatalf("Failed to submit ticket: %v", err)
	}

	var result ticket.Result
	for _, part := range msg.Parts {
		if tp, ok := part.(*protocol.TextPart); ok && tp != nil {
			if err := json.Unmarshal([]byte(tp.Text), &result); err == nil && result.SessionID != "" {
				break
			}
		}
	}
	if result.SessionID == "" {
		log.Fatalf("No triage result found in response")
	}

	rec := result.Record
	if rec.Approved {
		fmt.Printf("Approved after %d retries (category %s)\n\n%s\n", rec.Attempts, rec.Category, rec.Draft)
		return
	}
	fmt.Printf("Escalated after %d attempts (category %s)\n", rec.Attempts, rec.Category)
	fmt.Printf("Last feedback: %s\n", rec.Feedback())
}
