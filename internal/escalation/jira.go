package escalation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tuannvm/ticket-triage/internal/config"
	log "github.com/tuannvm/ticket-triage/internal/logging"
	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// JiraSink mirrors each escalated ticket into a Jira issue so the on-call
// queue sees it without tailing the CSV log.
type JiraSink struct {
	config     *config.Config
	httpClient *http.Client
}

// NewJiraSink creates a Jira-backed sink from the Jira fields of the config.
func NewJiraSink(cfg *config.Config) *JiraSink {
	return &JiraSink{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
	}
}

// Escalate implements engine.EscalationSink by creating one Jira issue per
// escalated ticket.
func (s *JiraSink) Escalate(ctx context.Context, rec ticket.Record) error {
	url := fmt.Sprintf("%s/rest/api/2/issue", s.config.JiraBaseURL)

	payload := map[string]interface{}{
		"fields": map[string]interface{}{
			"project":     map[string]string{"key": s.config.JiraProjectKey},
			"issuetype":   map[string]string{"name": "Task"},
			"summary":     fmt.Sprintf("[Escalated] %s", rec.Subject),
			"description": s.describeEscalation(rec),
			"labels":      []string{"triage-escalation", strings.ToLower(string(rec.Category))},
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.addAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to create issue: status %d, body: %s", resp.StatusCode, string(body))
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	log.Infof("Escalation mirrored to Jira issue %s", created.Key)
	return nil
}

func (s *JiraSink) describeEscalation(rec ticket.Record) string {
	var sb strings.Builder
	sb.WriteString("*Escalated support ticket*\n\n")
	sb.WriteString(fmt.Sprintf("Category: %s\n", rec.Category))
	sb.WriteString(fmt.Sprintf("Attempts: %d\n\n", rec.Attempts))
	sb.WriteString(fmt.Sprintf("Description:\n%s\n", rec.Description))
	if fb := rec.Feedback(); fb != "" {
		sb.WriteString(fmt.Sprintf("\nLast reviewer feedback:\n%s\n", fb))
	}
	for i, f := range rec.Failures {
		sb.WriteString(fmt.Sprintf("\nRejected draft %d feedback: %s\n", i+1, f.Feedback))
	}
	return sb.String()
}

// addAuthHeader adds basic authentication to the request
func (s *JiraSink) addAuthHeader(req *http.Request) {
	auth := fmt.Sprintf("%s:%s", s.config.JiraUsername, s.config.JiraAPIToken)
	encoded := base64.StdEncoding.EncodeToString([]byte(auth))
	req.Header.Set("Authorization", fmt.Sprintf("Basic %s", encoded))
}

// Sink is the contract shared by all escalation targets.
type Sink interface {
	Escalate(ctx context.Context, rec ticket.Record) error
}

// MultiSink fans an escalation out to several sinks in order. Every sink must
// accept the write for the escalation to count as durable; a failing mirror
// fails the whole escalation rather than dropping it silently.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks; put the mandated CSV log first.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Escalate implements engine.EscalationSink.
func (m *MultiSink) Escalate(ctx context.Context, rec ticket.Record) error {
	for _, s := range m.sinks {
		if err := s.Escalate(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
