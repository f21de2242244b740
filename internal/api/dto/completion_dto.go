package dto

import (
	"time"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// SubmissionRequest is one checklist submission row from the feed.
type SubmissionRequest struct {
	Outlet      string `json:"outlet"`
	TimeSlot    string `json:"time_slot"`
	SubmittedBy string `json:"submitted_by"`
	Timestamp   string `json:"timestamp"`
}

// RosterEntryRequest is one scheduled-employee row from the feed.
type RosterEntryRequest struct {
	Outlet     string `json:"outlet"`
	TimeSlot   string `json:"time_slot"`
	EmployeeID string `json:"employee_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Date       string `json:"date"`
}

// ScheduledEmployeeResponse is a roster entry attached to a slot.
type ScheduledEmployeeResponse struct {
	EmployeeID string `json:"employee_id"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
}

// SlotStatusResponse is one expected slot for an outlet. SubmittedAt is
// rendered as wall-clock time in the reporting time zone.
type SlotStatusResponse struct {
	TimeSlot           string                      `json:"time_slot"`
	Status             domain.SlotStatus           `json:"status"`
	SubmittedBy        string                      `json:"submitted_by,omitempty"`
	SubmittedAt        string                      `json:"submitted_at,omitempty"`
	ScheduledEmployees []ScheduledEmployeeResponse `json:"scheduled_employees,omitempty"`
}

// OutletCompletionResponse is the per-outlet dashboard card.
type OutletCompletionResponse struct {
	Outlet               string               `json:"outlet"`
	OutletCode           string               `json:"outlet_code"`
	OutletType           string               `json:"outlet_type"`
	Date                 string               `json:"date"`
	Slots                []SlotStatusResponse `json:"slots"`
	OverallStatus        domain.OverallStatus `json:"overall_status"`
	CompletionPercentage float64              `json:"completion_percentage"`
	LastSubmissionAt     string               `json:"last_submission_at,omitempty"`
}

// CompletionSummaryResponse aggregates the overview counters.
type CompletionSummaryResponse struct {
	TotalOutlets     int     `json:"total_outlets"`
	CompletedOutlets int     `json:"completed_outlets"`
	PartialOutlets   int     `json:"partial_outlets"`
	PendingOutlets   int     `json:"pending_outlets"`
	OverallRate      float64 `json:"overall_rate"`
}

// CompletionOverviewResponse is the dashboard payload for one date.
// Degraded results carry the storage time of the snapshot they were
// served from plus the upstream error.
type CompletionOverviewResponse struct {
	Date     string                     `json:"date"`
	Summary  CompletionSummaryResponse  `json:"summary"`
	Outlets  []OutletCompletionResponse `json:"outlets"`
	Degraded bool                       `json:"degraded"`
	AsOf     *time.Time                 `json:"as_of,omitempty"`
	Error    string                     `json:"error,omitempty"`
}

// DailyReportResponse is the end-of-day summary.
type DailyReportResponse struct {
	Date                  string   `json:"date"`
	TotalOutlets          int      `json:"total_outlets"`
	CompletedOutlets      []string `json:"completed_outlets"`
	PartialOutlets        []string `json:"partial_outlets"`
	PendingOutlets        []string `json:"pending_outlets"`
	OverallCompletionRate float64  `json:"overall_completion_rate"`
	SubmittedEmployees    []string `json:"submitted_employees"`
	MissingEmployees      []string `json:"missing_employees"`
}

// OutletWeeklyResponse summarizes one outlet across the period.
type OutletWeeklyResponse struct {
	OutletCode           string             `json:"outlet_code"`
	Outlet               string             `json:"outlet"`
	WeeklyCompletionRate float64            `json:"weekly_completion_rate"`
	ConsistencyScore     float64            `json:"consistency_score"`
	BestDay              string             `json:"best_day"`
	WorstDay             string             `json:"worst_day"`
	DailyRates           map[string]float64 `json:"daily_rates"`
}

// EmployeeWeeklyResponse aggregates submissions per employee.
type EmployeeWeeklyResponse struct {
	Employee            string  `json:"employee"`
	TotalSubmissions    int     `json:"total_submissions"`
	AvgDailySubmissions float64 `json:"avg_daily_submissions"`
}

// WeeklyReportResponse is the cross-outlet roll-up for a date range.
type WeeklyReportResponse struct {
	StartDate        string                   `json:"start_date"`
	EndDate          string                   `json:"end_date"`
	Days             int                      `json:"days"`
	Outlets          []OutletWeeklyResponse   `json:"outlets"`
	TopPerformers    []OutletWeeklyResponse   `json:"top_performers"`
	BottomPerformers []OutletWeeklyResponse   `json:"bottom_performers"`
	Employees        []EmployeeWeeklyResponse `json:"employees"`
}
