package dto

import (
	"time"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// CreateTicketRequest is the intake-bot payload for a new ticket.
type CreateTicketRequest struct {
	TicketKey        string  `json:"ticket_key"`
	Date             string  `json:"date"`
	SubmittedBy      string  `json:"submitted_by"`
	Outlet           string  `json:"outlet"`
	IssueDescription string  `json:"issue_description"`
	ImageLink        *string `json:"image_link"`
	Category         *string `json:"category"`
	Subcategory      *string `json:"subcategory"`
}

// ReclassifyRequest changes a ticket's normalized type.
type ReclassifyRequest struct {
	Type string `json:"type"`
}

// ManualAssignRequest hands a ticket to a named employee.
type ManualAssignRequest struct {
	Employee string `json:"employee"`
}

// UpdateStatusRequest moves a ticket through its lifecycle.
type UpdateStatusRequest struct {
	Status      string `json:"status"`
	ActionTaken string `json:"action_taken"`
}

// TicketSummary is the dashboard row representation.
type TicketSummary struct {
	ID               string              `json:"id"`
	TicketKey        string              `json:"ticket_key"`
	Date             string              `json:"date"`
	SubmittedBy      string              `json:"submitted_by"`
	Outlet           string              `json:"outlet"`
	IssueDescription string              `json:"issue_description"`
	ImageLink        *string             `json:"image_link,omitempty"`
	Category         *string             `json:"category,omitempty"`
	Subcategory      *string             `json:"subcategory,omitempty"`
	Type             domain.TicketType   `json:"type"`
	AssignedTo       *string             `json:"assigned_to,omitempty"`
	AutoAssigned     bool                `json:"auto_assigned"`
	Status           domain.TicketStatus `json:"status"`
	ActionTaken      string              `json:"action_taken,omitempty"`
	DaysPending      int                 `json:"days_pending"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	ClosedAt         *time.Time          `json:"closed_at,omitempty"`
}

// TicketMutationResponse pairs a mutation with its notification
// outcome.
type TicketMutationResponse struct {
	Ticket           TicketSummary `json:"ticket"`
	NotificationSent bool          `json:"notification_sent"`
}

// TicketHistoryResponse is one audit trail entry.
type TicketHistoryResponse struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	ChangedBy  string                  `json:"changed_by"`
	OldValue   map[string]any          `json:"old_value,omitempty"`
	NewValue   map[string]any          `json:"new_value,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}
