package completion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

func TestBuildDailyReport(t *testing.T) {
	engine := newTestEngine(t)
	day := at(t, "2026-08-24T00:00:00Z")

	views := []domain.OutletCompletionView{
		{
			OutletCode:    "BLN",
			OverallStatus: domain.OverallCompleted,
			Slots: []domain.TimeSlotStatus{
				{SubmittedBy: "Kim", ScheduledEmployees: []domain.ScheduledEmployee{{EmployeeID: "Kim"}}},
				{SubmittedBy: "Kim"},
				{SubmittedBy: "Nishat", ScheduledEmployees: []domain.ScheduledEmployee{{EmployeeID: "Ravi"}}},
			},
		},
		{
			OutletCode:    "IND",
			OverallStatus: domain.OverallPartial,
			Slots: []domain.TimeSlotStatus{
				{SubmittedBy: "Ajay"},
				{},
				{},
			},
		},
		{
			OutletCode:    "KOR",
			OverallStatus: domain.OverallPending,
			Slots: []domain.TimeSlotStatus{
				{ScheduledEmployees: []domain.ScheduledEmployee{{EmployeeID: "Sana"}}},
				{},
				{},
			},
		},
	}

	report := engine.BuildDailyReport(day, views)

	assert.Equal(t, "2026-08-24", report.Date)
	assert.Equal(t, 3, report.TotalOutlets)
	assert.Equal(t, []string{"BLN"}, report.CompletedOutlets)
	assert.Equal(t, []string{"IND"}, report.PartialOutlets)
	assert.Equal(t, []string{"KOR"}, report.PendingOutlets)
	assert.Equal(t, 33.3, report.OverallCompletionRate)
	assert.Equal(t, []string{"Ajay", "Kim", "Nishat"}, report.SubmittedEmployees)
	assert.Equal(t, []string{"Ravi", "Sana"}, report.MissingEmployees)
}

func TestBuildWeeklyReportRatesAndWorstDay(t *testing.T) {
	engine := newTestEngine(t)

	// outlet IND daily completion: 100,100,50,100,100,0,100
	rates := []float64{100, 100, 50, 100, 100, 0, 100}
	viewsByDate := map[string][]domain.OutletCompletionView{}
	for i, rate := range rates {
		date := time.Date(2026, 8, 17+i, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		status := domain.OverallPartial
		switch rate {
		case 100:
			status = domain.OverallCompleted
		case 0:
			status = domain.OverallPending
		}
		viewsByDate[date] = []domain.OutletCompletionView{
			{OutletCode: "IND", CompletionPercentage: rate, OverallStatus: status},
		}
	}

	report := engine.BuildWeeklyReport(viewsByDate)

	assert.Equal(t, 7, report.Days)
	assert.Equal(t, "2026-08-17", report.StartDate)
	assert.Equal(t, "2026-08-23", report.EndDate)

	var ind *domain.OutletWeekly
	for i := range report.Outlets {
		if report.Outlets[i].OutletCode == "IND" {
			ind = &report.Outlets[i]
		}
	}
	require.NotNil(t, ind)
	assert.Equal(t, 78.6, ind.WeeklyCompletionRate)
	assert.Equal(t, "2026-08-22", ind.WorstDay)
	assert.Equal(t, "2026-08-17", ind.BestDay)
}

func TestBuildWeeklyReportConsistencyMonotonic(t *testing.T) {
	engine := newTestEngine(t)

	steady := map[string][]domain.OutletCompletionView{}
	jumpy := map[string][]domain.OutletCompletionView{}
	steadyRates := []float64{80, 80, 80, 80, 80, 80, 80}
	jumpyRates := []float64{100, 20, 100, 60, 100, 100, 80}
	for i := 0; i < 7; i++ {
		date := time.Date(2026, 8, 17+i, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		steady[date] = []domain.OutletCompletionView{{OutletCode: "BLN", CompletionPercentage: steadyRates[i]}}
		jumpy[date] = []domain.OutletCompletionView{{OutletCode: "BLN", CompletionPercentage: jumpyRates[i]}}
	}

	steadyScore := engine.BuildWeeklyReport(steady).Outlets[0].ConsistencyScore
	jumpyScore := engine.BuildWeeklyReport(jumpy).Outlets[0].ConsistencyScore
	// both outlets average 80; the steadier one must score higher
	assert.Greater(t, steadyScore, jumpyScore)
	assert.GreaterOrEqual(t, steadyScore, 0.0)
	assert.LessOrEqual(t, steadyScore, 100.0)
}

func TestBuildWeeklyReportPerformersAndEmployees(t *testing.T) {
	engine := newTestEngine(t)

	date := "2026-08-17"
	viewsByDate := map[string][]domain.OutletCompletionView{
		date: {
			{OutletCode: "BLN", CompletionPercentage: 100, Slots: []domain.TimeSlotStatus{{SubmittedBy: "Kim"}, {SubmittedBy: "Kim"}, {SubmittedBy: "Ajay"}}},
			{OutletCode: "IND", CompletionPercentage: 50, Slots: []domain.TimeSlotStatus{{SubmittedBy: "Nishat"}}},
			{OutletCode: "KOR", CompletionPercentage: 0},
		},
	}

	report := engine.BuildWeeklyReport(viewsByDate)

	require.Len(t, report.TopPerformers, 3)
	assert.Equal(t, "BLN", report.TopPerformers[0].OutletCode)
	require.Len(t, report.BottomPerformers, 3)
	assert.Equal(t, "KOR", report.BottomPerformers[0].OutletCode)

	require.Len(t, report.Employees, 3)
	assert.Equal(t, "Kim", report.Employees[0].Employee)
	assert.Equal(t, 2, report.Employees[0].TotalSubmissions)
	assert.Equal(t, 2.0, report.Employees[0].AvgDailySubmissions)
}

func TestBuildWeeklyReportEmpty(t *testing.T) {
	engine := newTestEngine(t)
	report := engine.BuildWeeklyReport(nil)
	assert.Zero(t, report.Days)
	assert.Empty(t, report.Outlets)
}
