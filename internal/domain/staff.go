package domain

import "time"

// StaffRole enumerates dashboard operator roles.
type StaffRole string

const (
	StaffRoleViewer  StaffRole = "VIEWER"
	StaffRoleManager StaffRole = "MANAGER"
	StaffRoleAdmin   StaffRole = "ADMIN"
)

// StaffMember models a dashboard operator account.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
