package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketType is the normalized classification derived from the raw
// category/subcategory labels sent by the intake bot.
type TicketType string

const (
	TypeRepairAndMaintenance TicketType = "REPAIR_AND_MAINTENANCE"
	TypeDifficultyInOrder    TicketType = "DIFFICULTY_IN_ORDER"
	TypeStockItems           TicketType = "STOCK_ITEMS"
	TypeHousekeeping         TicketType = "HOUSEKEEPING"
	TypeOthers               TicketType = "OTHERS"
)

// TicketTypes lists every normalized type. Rule tables must cover all of them.
func TicketTypes() []TicketType {
	return []TicketType{
		TypeRepairAndMaintenance,
		TypeDifficultyInOrder,
		TypeStockItems,
		TypeHousekeeping,
		TypeOthers,
	}
}

// Ticket is the aggregate for outlet support requests.
type Ticket struct {
	ID               string
	TicketKey        string
	Date             time.Time
	SubmittedBy      string
	Outlet           string
	IssueDescription string
	ImageLink        *string
	Category         *string
	Subcategory      *string
	Type             TicketType
	AssignedTo       *string
	AutoAssigned     bool
	Status           TicketStatus
	ActionTaken      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ClosedAt         *time.Time
}

// DaysPending reports whole days elapsed since the ticket date.
func (t *Ticket) DaysPending(now time.Time) int {
	if now.Before(t.Date) {
		return 0
	}
	return int(now.Sub(t.Date).Hours() / 24)
}

// Assigned reports whether the ticket has an owner.
func (t *Ticket) Assigned() bool {
	return t.AssignedTo != nil && *t.AssignedTo != ""
}
