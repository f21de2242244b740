package domain

import "time"

// SlotStatus is the per-slot completion state.
type SlotStatus string

const (
	SlotCompleted    SlotStatus = "COMPLETED"
	SlotNotSubmitted SlotStatus = "NOT_SUBMITTED"
)

// OverallStatus is the outlet-level roll-up of slot states.
type OverallStatus string

const (
	OverallCompleted OverallStatus = "COMPLETED"
	OverallPartial   OverallStatus = "PARTIAL"
	OverallPending   OverallStatus = "PENDING"
)

// TimeSlotStatus describes one expected slot for an outlet on a day.
// SubmittedBy/SubmittedAt come from the most recent submission when the
// slot saw more than one.
type TimeSlotStatus struct {
	TimeSlot           string
	Status             SlotStatus
	SubmittedBy        string
	SubmittedAt        *time.Time
	ScheduledEmployees []ScheduledEmployee
}

// OutletCompletionView is the derived completion state for one outlet
// on one day. Recomputed on every query, never persisted.
type OutletCompletionView struct {
	Outlet               string
	OutletCode           string
	OutletType           string
	Date                 string
	Slots                []TimeSlotStatus
	OverallStatus        OverallStatus
	CompletionPercentage float64
	LastSubmissionAt     *time.Time
}

// DailyReport partitions outlets by completion and tracks who submitted.
type DailyReport struct {
	Date                  string
	TotalOutlets          int
	CompletedOutlets      []string
	PartialOutlets        []string
	PendingOutlets        []string
	OverallCompletionRate float64
	SubmittedEmployees    []string
	MissingEmployees      []string
}

// OutletWeekly summarizes one outlet across the reporting period.
type OutletWeekly struct {
	OutletCode           string
	Outlet               string
	WeeklyCompletionRate float64
	ConsistencyScore     float64
	BestDay              string
	WorstDay             string
	DailyRates           map[string]float64
}

// EmployeeWeekly aggregates submissions per employee over the period.
type EmployeeWeekly struct {
	Employee            string
	TotalSubmissions    int
	AvgDailySubmissions float64
}

// WeeklyReport is the cross-outlet roll-up for a date range.
type WeeklyReport struct {
	StartDate        string
	EndDate          string
	Days             int
	Outlets          []OutletWeekly
	TopPerformers    []OutletWeekly
	BottomPerformers []OutletWeekly
	Employees        []EmployeeWeekly
}
