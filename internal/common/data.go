package common

import (
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/tuannvm/ticket-triage/internal/ticket"
)

// ExtractSubmission extracts a ticket submission from a message. Callers send
// either a DataPart or a TextPart holding JSON; both shapes are accepted.
func ExtractSubmission(message protocol.Message, sub *ticket.Submission) error {
	if len(message.Parts) == 0 {
		return fmt.Errorf("message has no parts")
	}

	for _, part := range message.Parts {
		// Try DataPart first (value or pointer)
		var dp *protocol.DataPart
		switch v := part.(type) {
		case protocol.DataPart:
			dp = &v
		case *protocol.DataPart:
			dp = v
		}
		if dp != nil {
			raw, err := json.Marshal(dp.Data)
			if err != nil {
				continue
			}
			if err := json.Unmarshal(raw, sub); err == nil && sub.Subject != "" && sub.Description != "" {
				return nil
			}
			var dataMap map[string]interface{}
			if err := json.Unmarshal(raw, &dataMap); err == nil {
				if err := extractFromMap(dataMap, sub); err == nil {
					return nil
				}
			}
		}

		// Try TextPart (value or pointer)
		var textPart *protocol.TextPart
		switch v := part.(type) {
		case protocol.TextPart:
			textPart = &v
		case *protocol.TextPart:
			textPart = v
		}
		if textPart != nil && textPart.Text != "" {
			if err := json.Unmarshal([]byte(textPart.Text), sub); err == nil {
				if sub.Subject != "" && sub.Description != "" {
					return nil
				}
			}
			var dataMap map[string]interface{}
			if err := json.Unmarshal([]byte(textPart.Text), &dataMap); err == nil {
				if err := extractFromMap(dataMap, sub); err == nil {
					return nil
				}
			}
		}
	}

	return fmt.Errorf("could not extract ticket submission from message")
}

// extractFromMap pulls submission fields out of a loosely keyed map.
func extractFromMap(data map[string]interface{}, sub *ticket.Submission) error {
	subject, ok := GetStringValue(data, "subject", "summary", "title")
	if !ok {
		return fmt.Errorf("no subject found in data")
	}
	description, ok := GetStringValue(data, "description", "desc", "body")
	if !ok {
		return fmt.Errorf("no description found in data")
	}
	sub.Subject = subject
	sub.Description = description

	if sessionID, ok := GetStringValue(data, "sessionId", "session_id", "session"); ok {
		sub.SessionID = sessionID
	}
	return nil
}
