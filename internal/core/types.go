// Package core runs story progression for a session: it applies the
// director's untrusted output to the session's arcs and reports arc states.
package core

import (
	"time"
)

// EventType identifies the type of event.
type EventType string

const (
	EventSessionCreated   EventType = "session_created"
	EventUnlocksAccepted  EventType = "unlocks_accepted"
	EventOutputMalformed  EventType = "output_malformed"
	EventProposalAccepted EventType = "proposal_accepted"
	EventProposalRejected EventType = "proposal_rejected"
)

// Event represents something that happened during progression.
type Event struct {
	Type      EventType
	SessionID string
	Data      interface{}
	Timestamp time.Time
}

// UnlocksData contains data for unlock events.
type UnlocksData struct {
	Unlocks []string `json:"unlocks"`
}

// MalformedData contains the raw text that could not be parsed.
type MalformedData struct {
	Raw string `json:"raw"`
}

// ProposalData contains data for proposal events.
type ProposalData struct {
	Decision Decision `json:"decision"`
}
