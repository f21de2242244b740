package events

import (
	"time"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketReclassified  EventType = "ticket_reclassified"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventCompletionRefreshed EventType = "completion_refreshed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketKey string      `json:"ticket_key,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Outlet      string            `json:"outlet"`
	SubmittedBy string            `json:"submitted_by"`
	Type        domain.TicketType `json:"type"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo   *string `json:"assigned_to,omitempty"`
	AutoAssigned bool    `json:"auto_assigned"`
}

// TicketReclassifiedPayload payload.
type TicketReclassifiedPayload struct {
	OldType domain.TicketType `json:"old_type"`
	NewType domain.TicketType `json:"new_type"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	ActionTaken string              `json:"action_taken,omitempty"`
}

// CompletionRefreshedPayload payload.
type CompletionRefreshedPayload struct {
	Date         string `json:"date"`
	OutletCount  int    `json:"outlet_count"`
	FromSchedule bool   `json:"from_schedule"`
}
