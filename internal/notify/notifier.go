// Package notify delivers assignment notices and approval requests to
// employees. Delivery is best-effort: callers treat a failed send as a
// secondary outcome, never as a failure of the operation that
// triggered it.
package notify

import "context"

// MessageKind distinguishes the two notification flavors the ticket
// engine emits.
type MessageKind string

const (
	KindAssignmentNotice MessageKind = "ASSIGNMENT_NOTICE"
	KindApprovalRequest  MessageKind = "APPROVAL_REQUEST"
)

// Request describes one notification to deliver. Channel is the
// recipient's registered delivery address; recipients without a
// channel never reach a Notifier.
type Request struct {
	Recipient string      `json:"recipient"`
	Channel   string      `json:"channel"`
	Kind      MessageKind `json:"kind"`
	TicketKey string      `json:"ticket_key"`
	Message   string      `json:"message"`
}

// Notifier sends a single notification.
type Notifier interface {
	Send(ctx context.Context, req Request) error
}
