package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/outlet-ops/internal/completion"
	"github.com/spec-kit/outlet-ops/internal/domain"
	apperrors "github.com/spec-kit/outlet-ops/pkg/util"
)

type stubSubmissionRepo struct {
	records []domain.SubmissionRecord
	failRW  bool
}

func (r *stubSubmissionRepo) Create(_ context.Context, record *domain.SubmissionRecord) error {
	if r.failRW {
		return errors.New("connection refused")
	}
	record.ID = "sub-1"
	r.records = append(r.records, *record)
	return nil
}

func (r *stubSubmissionRepo) ListByRange(_ context.Context, from, to time.Time) ([]domain.SubmissionRecord, error) {
	if r.failRW {
		return nil, errors.New("connection refused")
	}
	var result []domain.SubmissionRecord
	for _, record := range r.records {
		if !record.Timestamp.Before(from) && record.Timestamp.Before(to) {
			result = append(result, record)
		}
	}
	return result, nil
}

type stubRosterRepo struct {
	entries []domain.ScheduledEmployee
	failRW  bool
}

func (r *stubRosterRepo) Create(_ context.Context, entry *domain.ScheduledEmployee) error {
	if r.failRW {
		return errors.New("connection refused")
	}
	entry.ID = "ros-1"
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubRosterRepo) ListByDate(ctx context.Context, date time.Time) ([]domain.ScheduledEmployee, error) {
	return r.ListByRange(ctx, date, date.AddDate(0, 0, 1))
}

func (r *stubRosterRepo) ListByRange(_ context.Context, from, to time.Time) ([]domain.ScheduledEmployee, error) {
	if r.failRW {
		return nil, errors.New("connection refused")
	}
	var result []domain.ScheduledEmployee
	for _, entry := range r.entries {
		if !entry.Date.Before(from) && entry.Date.Before(to) {
			result = append(result, entry)
		}
	}
	return result, nil
}

func testEngine(t *testing.T) *completion.Engine {
	t.Helper()
	engine, err := completion.NewEngine(
		[]string{"Morning", "Mid Day", "Closing"},
		[]completion.OutletRef{
			{Code: "BLN", Name: "Bellandur", Type: "DINE_IN"},
			{Code: "IND", Name: "Indiranagar", Type: "DINE_IN"},
			{Code: "KOR", Name: "Koramangala", Type: "CLOUD"},
		},
		time.UTC,
	)
	require.NoError(t, err)
	return engine
}

type completionFixture struct {
	service     *CompletionService
	submissions *stubSubmissionRepo
	roster      *stubRosterRepo
}

func newCompletionFixture(t *testing.T) *completionFixture {
	t.Helper()
	fixture := &completionFixture{
		submissions: &stubSubmissionRepo{},
		roster:      &stubRosterRepo{},
	}
	fixture.service = NewCompletionService(CompletionDependencies{
		SubmissionRepo: fixture.submissions,
		RosterRepo:     fixture.roster,
		Engine:         testEngine(t),
		Logger:         zap.NewNop(),
		Location:       time.UTC,
	})
	return fixture
}

func TestOverviewComputesSummary(t *testing.T) {
	fixture := newCompletionFixture(t)
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for _, slot := range []string{"Morning", "Mid Day", "Closing"} {
		fixture.submissions.records = append(fixture.submissions.records, domain.SubmissionRecord{
			Outlet:      "BLN",
			TimeSlot:    slot,
			SubmittedBy: "Kim",
			Timestamp:   day.Add(9 * time.Hour),
		})
	}
	fixture.submissions.records = append(fixture.submissions.records, domain.SubmissionRecord{
		Outlet:      "IND",
		TimeSlot:    "Morning",
		SubmittedBy: "Ajay",
		Timestamp:   day.Add(10 * time.Hour),
	})

	overview, err := fixture.service.Overview(context.Background(), "2026-08-20")
	require.NoError(t, err)
	assert.False(t, overview.Degraded)
	assert.Equal(t, "2026-08-20", overview.Date)
	assert.Equal(t, 3, overview.Summary.TotalOutlets)
	assert.Equal(t, 1, overview.Summary.CompletedOutlets)
	assert.Equal(t, 1, overview.Summary.PartialOutlets)
	assert.Equal(t, 1, overview.Summary.PendingOutlets)
	assert.InDelta(t, 33.3, overview.Summary.OverallRate, 0.01)

	// Ranked worst-first: the dark outlet leads, the complete one trails.
	require.Len(t, overview.Views, 3)
	assert.Equal(t, "KOR", overview.Views[0].OutletCode)
	assert.Equal(t, "BLN", overview.Views[2].OutletCode)
}

func TestOverviewRejectsMalformedDate(t *testing.T) {
	fixture := newCompletionFixture(t)
	_, err := fixture.service.Overview(context.Background(), "20-08-2026")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestOverviewDegradesWhenFeedUnavailable(t *testing.T) {
	fixture := newCompletionFixture(t)
	fixture.submissions.failRW = true

	overview, err := fixture.service.Overview(context.Background(), "2026-08-20")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", domainErr.Code)
	assert.True(t, overview.Degraded)
	assert.Empty(t, overview.Views)
}

func TestDailyReportCountsMissingEmployees(t *testing.T) {
	fixture := newCompletionFixture(t)
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	fixture.submissions.records = append(fixture.submissions.records, domain.SubmissionRecord{
		Outlet:      "BLN",
		TimeSlot:    "Morning",
		SubmittedBy: "Kim",
		Timestamp:   day.Add(9 * time.Hour),
	})
	fixture.roster.entries = append(fixture.roster.entries,
		domain.ScheduledEmployee{Outlet: "BLN", TimeSlot: "Morning", EmployeeID: "Kim", Date: day},
		domain.ScheduledEmployee{Outlet: "IND", TimeSlot: "Morning", EmployeeID: "Ajay", Date: day},
	)

	report, err := fixture.service.DailyReport(context.Background(), "2026-08-20")
	require.NoError(t, err)
	assert.Equal(t, []string{"Kim"}, report.SubmittedEmployees)
	assert.Equal(t, []string{"Ajay"}, report.MissingEmployees)
	assert.Equal(t, 3, report.TotalOutlets)
	assert.Empty(t, report.CompletedOutlets)
}

func TestWeeklyReportSpansRange(t *testing.T) {
	fixture := newCompletionFixture(t)
	start := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	for dayOffset := 0; dayOffset < 7; dayOffset++ {
		day := start.AddDate(0, 0, dayOffset)
		for _, slot := range []string{"Morning", "Mid Day", "Closing"} {
			fixture.submissions.records = append(fixture.submissions.records, domain.SubmissionRecord{
				Outlet:      "BLN",
				TimeSlot:    slot,
				SubmittedBy: "Kim",
				Timestamp:   day.Add(9 * time.Hour),
			})
		}
	}

	report, err := fixture.service.WeeklyReport(context.Background(), "2026-08-23", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Days)
	assert.Equal(t, "2026-08-17", report.StartDate)
	assert.Equal(t, "2026-08-23", report.EndDate)

	var bln domain.OutletWeekly
	for _, outlet := range report.Outlets {
		if outlet.OutletCode == "BLN" {
			bln = outlet
		}
	}
	assert.InDelta(t, 100.0, bln.WeeklyCompletionRate, 0.01)
	assert.InDelta(t, 100.0, bln.ConsistencyScore, 0.01)
	require.NotEmpty(t, report.Employees)
	assert.Equal(t, "Kim", report.Employees[0].Employee)
	assert.Equal(t, 21, report.Employees[0].TotalSubmissions)
	assert.InDelta(t, 3.0, report.Employees[0].AvgDailySubmissions, 0.01)
}

func TestRecordSubmissionValidation(t *testing.T) {
	fixture := newCompletionFixture(t)
	err := fixture.service.RecordSubmission(context.Background(), &domain.SubmissionRecord{Outlet: "BLN"})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	err = fixture.service.RecordSubmission(context.Background(), &domain.SubmissionRecord{
		Outlet:      "BLN",
		TimeSlot:    "Morning",
		SubmittedBy: "Kim",
	})
	require.NoError(t, err)
	require.Len(t, fixture.submissions.records, 1)
	assert.False(t, fixture.submissions.records[0].Timestamp.IsZero())
}
