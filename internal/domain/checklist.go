package domain

import "time"

// SubmissionRecord is one checklist submission row from an outlet.
// Records are append-only; the feed may deliver several rows for the
// same outlet and slot on one day.
type SubmissionRecord struct {
	ID          string
	Outlet      string
	TimeSlot    string
	SubmittedBy string
	Timestamp   time.Time
	CreatedAt   time.Time
}

// ScheduledEmployee is a roster entry for a given date: who is expected
// to cover an outlet during a time slot.
type ScheduledEmployee struct {
	ID         string
	Outlet     string
	TimeSlot   string
	EmployeeID string
	StartTime  string
	EndTime    string
	Date       time.Time
	CreatedAt  time.Time
}

// Employee is the directory entry used for ticket routing and
// notification delivery. NotifyChannel is empty when the employee has
// no registered channel.
type Employee struct {
	ID            string
	Name          string
	NotifyChannel string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
