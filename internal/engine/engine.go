// Package engine drives a support ticket through the bounded
// classify/retrieve/draft/review loop and decides, after each rejected
// review, between another refine pass and durable escalation. The engine owns
// the step sequence, the record merges, the attempt accounting and the
// checkpointing; everything that reads or writes ticket text is an injected
// collaborator with a narrow contract.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuannvm/ticket-triage/internal/checkpoint"
	log "github.com/tuannvm/ticket-triage/internal/logging"
	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// Collaborator contracts. Every implementation must degrade internally — a
// collaborator never returns an out-of-contract value to the engine, even
// when its backing service is down (see the fallback paths in the steps
// package). Violations are programming bugs and abort the run.
type (
	// Classifier maps ticket text to exactly one category from the fixed set.
	Classifier interface {
		Classify(ctx context.Context, rec ticket.Record) ticket.Category
	}

	// Retriever returns up to three non-empty knowledge snippets for the
	// ticket's category, steered by the refine hint when one is present.
	Retriever interface {
		Retrieve(ctx context.Context, rec ticket.Record) []string
	}

	// Drafter produces a non-empty reply draft from the retrieved context.
	Drafter interface {
		Draft(ctx context.Context, rec ticket.Record) string
	}

	// Reviewer gates the draft: approved plus always-non-empty feedback.
	Reviewer interface {
		Review(ctx context.Context, rec ticket.Record) (bool, ticket.Review)
	}

	// Refiner derives the retrieval hint for the next pass. Deterministic.
	Refiner interface {
		Refine(ctx context.Context, rec ticket.Record) string
	}

	// EscalationSink durably records a ticket that exhausted its retries.
	EscalationSink interface {
		Escalate(ctx context.Context, rec ticket.Record) error
	}
)

// Step positions as persisted in checkpoints. A checkpoint's position names
// the next step to execute, so a crash between steps replays from exactly
// where the run left off.
const (
	PhaseClassify = "classify"
	PhaseRetrieve = "retrieve"
	PhaseDraft    = "draft"
	PhaseReview   = "review"
	PhaseTrack    = "track"
	PhaseRefine   = "refine"
	PhaseEscalate = "escalate"
	PhaseDone     = "done"
)

// Persistence failures are distinct from pipeline outcomes: a run that
// cannot write its mandated side effect must not report logical success.
var (
	ErrCheckpointWrite = errors.New("checkpoint write failed")
	ErrEscalationWrite = errors.New("escalation write failed")
	ErrUnknownSession  = errors.New("unknown session")
)

// Engine executes the triage step sequence for one ticket at a time. A single
// Engine is safe for concurrent use by independent sessions; the escalation
// sink serializes its own writes.
type Engine struct {
	classifier  Classifier
	retriever   Retriever
	drafter     Drafter
	reviewer    Reviewer
	refiner     Refiner
	sink        EscalationSink
	checkpoints checkpoint.Store // nil disables checkpointing
}

// New wires an engine from its collaborators. The checkpoint store is
// optional; all other collaborators are required.
func New(classifier Classifier, retriever Retriever, drafter Drafter, reviewer Reviewer, refiner Refiner, sink EscalationSink, checkpoints checkpoint.Store) *Engine {
	return &Engine{
		classifier:  classifier,
		retriever:   retriever,
		drafter:     drafter,
		reviewer:    reviewer,
		refiner:     refiner,
		sink:        sink,
		checkpoints: checkpoints,
	}
}

// Submit runs a fresh ticket to its terminal state and returns the final
// record. A blank sessionID gets a generated one. The returned record is
// terminal: either Approved, or rejected with Attempts == MaxAttempts and an
// escalation row durably written.
func (e *Engine) Submit(ctx context.Context, subject, description, sessionID string) (ticket.Record, error) {
	if subject == "" || description == "" {
		return ticket.Record{}, fmt.Errorf("subject and description must be non-empty")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	rec := ticket.Record{
		Subject:     subject,
		Description: description,
		Approved:    false,
		Attempts:    0,
	}
	return e.run(ctx, sessionID, PhaseClassify, rec)
}

// Resume continues a checkpointed session from its saved position. Sessions
// already terminal return their final record unchanged.
func (e *Engine) Resume(ctx context.Context, sessionID string) (ticket.Record, error) {
	if e.checkpoints == nil {
		return ticket.Record{}, fmt.Errorf("resume %s: no checkpoint store configured", sessionID)
	}
	cp, ok, err := e.checkpoints.Get(ctx, sessionID)
	if err != nil {
		return ticket.Record{}, fmt.Errorf("resume %s: %w", sessionID, err)
	}
	if !ok {
		return ticket.Record{}, fmt.Errorf("resume %s: %w", sessionID, ErrUnknownSession)
	}
	if cp.Position == PhaseDone {
		return cp.Record, nil
	}
	return e.run(ctx, sessionID, cp.Position, cp.Record)
}

// Inspect returns the latest checkpointed record for a session without
// advancing it.
func (e *Engine) Inspect(ctx context.Context, sessionID string) (ticket.Record, error) {
	if e.checkpoints == nil {
		return ticket.Record{}, fmt.Errorf("inspect %s: no checkpoint store configured", sessionID)
	}
	cp, ok, err := e.checkpoints.Get(ctx, sessionID)
	if err != nil {
		return ticket.Record{}, fmt.Errorf("inspect %s: %w", sessionID, err)
	}
	if !ok {
		return ticket.Record{}, fmt.Errorf("inspect %s: %w", sessionID, ErrUnknownSession)
	}
	return cp.Record, nil
}

// run executes the step sequence from the given position to a terminal state.
// Each iteration runs one step, merges its patch, persists a checkpoint, then
// moves to the next position. A canceled context stops the run between steps;
// the last checkpoint remains the recoverable state.
func (e *Engine) run(ctx context.Context, sessionID, phase string, rec ticket.Record) (ticket.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return rec, err
		}

		var next string
		var patch ticket.Patch

		switch phase {
		case PhaseClassify:
			cat := e.classifier.Classify(ctx, rec)
			if !cat.Valid() {
				return rec, fmt.Errorf("classifier contract violation: category %q", cat)
			}
			patch = ticket.Patch{Category: &cat}
			next = PhaseRetrieve

		case PhaseRetrieve:
			snippets := e.retriever.Retrieve(ctx, rec)
			if len(snippets) > 3 {
				return rec, fmt.Errorf("retriever contract violation: %d snippets", len(snippets))
			}
			patch = ticket.Patch{Context: &snippets}
			next = PhaseDraft

		case PhaseDraft:
			draft := e.drafter.Draft(ctx, rec)
			if draft == "" {
				return rec, fmt.Errorf("drafter contract violation: empty draft")
			}
			patch = ticket.Patch{Draft: &draft}
			next = PhaseReview

		case PhaseReview:
			approved, review := e.reviewer.Review(ctx, rec)
			if review.Feedback == "" {
				return rec, fmt.Errorf("reviewer contract violation: empty feedback")
			}
			patch = ticket.Patch{Approved: &approved, Review: &review}
			if AfterReview(rec.Apply(patch)) == ReviewTerminate {
				next = PhaseDone
			} else {
				next = PhaseTrack
			}

		case PhaseTrack:
			patch = Track(rec)
			if AfterTracking(rec.Apply(patch)) == TrackRefine {
				next = PhaseRefine
			} else {
				next = PhaseEscalate
			}

		case PhaseRefine:
			hint := e.refiner.Refine(ctx, rec)
			// Stale context from the rejected pass must never survive into
			// the next retrieval.
			empty := []string{}
			patch = ticket.Patch{RefineHint: &hint, Context: &empty}
			next = PhaseRetrieve

		case PhaseEscalate:
			if err := e.sink.Escalate(ctx, rec); err != nil {
				return rec, fmt.Errorf("%w: %v", ErrEscalationWrite, err)
			}
			log.Warnf("Ticket escalated after %d attempts: %s", rec.Attempts, rec.Subject)
			patch = ticket.Patch{}
			next = PhaseDone

		default:
			return rec, fmt.Errorf("corrupt checkpoint position %q for session %s", phase, sessionID)
		}

		rec = rec.Apply(patch)
		if err := e.saveCheckpoint(ctx, sessionID, next, rec); err != nil {
			return rec, err
		}

		if next == PhaseDone {
			log.Infof("Session %s terminal: approved=%t attempts=%d", sessionID, rec.Approved, rec.Attempts)
			return rec, nil
		}
		phase = next
	}
}

func (e *Engine) saveCheckpoint(ctx context.Context, sessionID, position string, rec ticket.Record) error {
	if e.checkpoints == nil {
		return nil
	}
	cp := checkpoint.Checkpoint{
		Position:  position,
		Record:    rec,
		UpdatedAt: time.Now(),
	}
	if err := e.checkpoints.Put(ctx, sessionID, cp); err != nil {
		return fmt.Errorf("%w: session %s at %s: %v", ErrCheckpointWrite, sessionID, position, err)
	}
	return nil
}
