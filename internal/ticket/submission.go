package ticket

// Submission is the wire payload a caller sends to open a triage session.
type Submission struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	SessionID   string `json:"sessionId,omitempty"`
}

// Result is the wire payload returned once a session is terminal.
type Result struct {
	SessionID string `json:"sessionId"`
	Record    Record `json:"record"`
	Escalated bool   `json:"escalated"`
}
