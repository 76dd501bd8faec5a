// Package escalation provides the durable sinks for tickets that exhausted
// their retries. The CSV log is the mandated record; the Jira sink optionally
// mirrors each escalation into an issue for the on-call queue.
package escalation

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// csvHeader is the fixed column order of the escalation log.
var csvHeader = []string{"subject", "description", "category", "attempts", "last_feedback"}

// CSVSink appends escalated tickets to a UTF-8 CSV file, header written once.
// The mutex serializes appends across concurrent ticket sessions so a row is
// always written whole.
type CSVSink struct {
	mu   sync.Mutex
	path string
}

// NewCSVSink creates a sink appending to the given file path. The file is
// created on first escalation, not here.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Escalate implements engine.EscalationSink. Each call appends exactly one
// row; prior entries are never rewritten.
func (s *CSVSink) Escalate(_ context.Context, rec ticket.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeHeader := false
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		writeHeader = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open escalation log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write escalation log header: %w", err)
		}
	}
	row := []string{
		rec.Subject,
		rec.Description,
		string(rec.Category),
		strconv.Itoa(rec.Attempts),
		rec.Feedback(),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write escalation row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush escalation log: %w", err)
	}
	return nil
}
