package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tuannvm/ticket-triage/internal/agents"
	"github.com/tuannvm/ticket-triage/internal/checkpoint"
	"github.com/tuannvm/ticket-triage/internal/common"
	"github.com/tuannvm/ticket-triage/internal/config"
	"github.com/tuannvm/ticket-triage/internal/corpus"
	"github.com/tuannvm/ticket-triage/internal/engine"
	"github.com/tuannvm/ticket-triage/internal/escalation"
	"github.com/tuannvm/ticket-triage/internal/llm"
	"github.com/tuannvm/ticket-triage/internal/steps"
)

func main() {
	// Create a new configuration
	cfg := config.NewConfig()

	// Ensure agent name is set correctly
	cfg.AgentName = config.TriageAgentName

	// Update agent URL to match the port
	cfg.AgentURL = fmt.Sprintf("http://%s:%d", cfg.ServerHost, cfg.ServerPort)

	log.Printf("TicketTriageAgent configured with port: %d", cfg.ServerPort)

	// LLM client is optional; without it every step runs its deterministic fallback
	var completions llm.CompletionClient
	if cfg.LLMEnabled {
		client, err := llm.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to create LLM client: %v", err)
		}
		completions = client
	} else {
		log.Println("LLM disabled; running with heuristic collaborators")
	}

	// Knowledge corpus: file-backed when configured, built-in buckets otherwise
	kb := corpus.Builtin()
	if cfg.CorpusPath != "" {
		loaded, err := corpus.Load(cfg.CorpusPath)
		if err != nil {
			log.Fatalf("Failed to load corpus: %v", err)
		}
		kb = loaded
	}

	// Checkpoint store: SQLite when a path is configured, bounded memory otherwise
	var checkpoints checkpoint.Store
	if cfg.CheckpointDBPath != "" {
		store, err := checkpoint.NewSQLiteStore(cfg.CheckpointDBPath)
		if err != nil {
			log.Fatalf("Failed to open checkpoint store: %v", err)
		}
		defer store.Close()
		checkpoints = store
	} else {
		checkpoints = checkpoint.NewMemoryStore(0)
	}

	// Escalation sinks: the CSV log is mandatory, Jira mirroring optional
	var sink engine.EscalationSink = escalation.NewCSVSink(cfg.EscalationLogPath)
	if cfg.JiraBaseURL != "" {
		sink = escalation.NewMultiSink(
			escalation.NewCSVSink(cfg.EscalationLogPath),
			escalation.NewJiraSink(cfg),
		)
	}

	eng := engine.New(
		steps.NewClassify(completions),
		steps.NewRetrieve(kb),
		steps.NewDraft(completions),
		steps.NewReview(completions),
		steps.NewRefine(),
		sink,
		checkpoints,
	)

	agent := agents.NewTriageAgent(cfg, eng)

	srv, err := common.SetupServer(common.SetupServerOptions{
		AgentName:    cfg.AgentName,
		AgentVersion: cfg.AgentVersion,
		AgentURL:     cfg.AgentURL,
		AuthType:     cfg.AuthType,
		JWTSecret:    cfg.JWTSecret,
		APIKey:       cfg.APIKey,
		Processor:    agent,
		Skills:       agent.Skills(),
	})
	if err != nil {
		log.Fatalf("Failed to set up server: %v", err)
	}

	fmt.Println("Starting TicketTriageAgent server...")
	fmt.Printf("Server will listen on %s:%d\n", cfg.ServerHost, cfg.ServerPort)

	// Create a context that will be canceled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := common.StartServer(ctx, srv, cfg.ServerHost, cfg.ServerPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}
