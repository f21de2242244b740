package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/outlet-ops/internal/cache"
	"github.com/spec-kit/outlet-ops/internal/completion"
	"github.com/spec-kit/outlet-ops/internal/domain"
	"github.com/spec-kit/outlet-ops/internal/events"
	"github.com/spec-kit/outlet-ops/internal/repository"
	apperrors "github.com/spec-kit/outlet-ops/pkg/util"
)

// CompletionService fetches submission and roster feeds and runs the
// completion engine over them. When a feed is unavailable it serves
// the last cached snapshot for the date, flagged stale, instead of
// failing the dashboard outright.
type CompletionService struct {
	submissions repository.SubmissionRepository
	roster      repository.RosterRepository
	engine      *completion.Engine
	cache       *cache.CompletionCache
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	loc         *time.Location
}

// CompletionDependencies bundles collaborators for the completion
// service.
type CompletionDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	RosterRepo     repository.RosterRepository
	Engine         *completion.Engine
	Cache          *cache.CompletionCache
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Location       *time.Location
}

// CompletionOverview is the dashboard payload for one business date.
// Degraded marks a result built from a cached snapshot after a feed
// failure; AsOf then carries the snapshot's storage time.
type CompletionOverview struct {
	Date     string
	Views    []domain.OutletCompletionView
	Summary  CompletionSummary
	Degraded bool
	AsOf     time.Time
}

// CompletionSummary aggregates the overview counters.
type CompletionSummary struct {
	TotalOutlets     int
	CompletedOutlets int
	PartialOutlets   int
	PendingOutlets   int
	OverallRate      float64
}

// NewCompletionService constructs the service.
func NewCompletionService(deps CompletionDependencies) *CompletionService {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &CompletionService{
		submissions: deps.SubmissionRepo,
		roster:      deps.RosterRepo,
		engine:      deps.Engine,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		loc:         loc,
	}
}

// Overview computes the ranked completion views for a date. On feed
// failure the returned overview may still carry a cached snapshot
// (Degraded=true) alongside the non-nil error, so callers can decide
// between serving stale data and propagating the failure.
func (s *CompletionService) Overview(ctx context.Context, date string) (CompletionOverview, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return CompletionOverview{}, err
	}
	dateKey := day.Format(completion.DateLayout)

	views, fetchErr := s.computeDay(ctx, day)
	if fetchErr != nil {
		s.logger.Warn("completion feed unavailable", zap.String("date", dateKey), zap.Error(fetchErr))
		overview := CompletionOverview{Date: dateKey, Views: []domain.OutletCompletionView{}, Degraded: true}
		if snapshot, ok := s.cache.Get(ctx, dateKey); ok {
			overview.Views = snapshot.Views
			overview.Summary = summarize(snapshot.Views)
			overview.AsOf = snapshot.StoredAt
		}
		return overview, apperrors.NewUnavailable("completion data source unavailable", fetchErr)
	}

	if err := s.cache.Put(ctx, cache.Snapshot{Date: dateKey, Views: views}); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.String("date", dateKey), zap.Error(err))
	}
	return CompletionOverview{
		Date:    dateKey,
		Views:   views,
		Summary: summarize(views),
		AsOf:    time.Now(),
	}, nil
}

// DailyReport builds the end-of-day summary for a date.
func (s *CompletionService) DailyReport(ctx context.Context, date string) (domain.DailyReport, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return domain.DailyReport{}, err
	}
	views, fetchErr := s.computeDay(ctx, day)
	if fetchErr != nil {
		return domain.DailyReport{}, apperrors.NewUnavailable("completion data source unavailable", fetchErr)
	}
	return s.engine.BuildDailyReport(day, views), nil
}

// WeeklyReport rolls up the `days` dates ending at endDate inclusive.
func (s *CompletionService) WeeklyReport(ctx context.Context, endDate string, days int) (domain.WeeklyReport, error) {
	if days <= 0 {
		days = 7
	}
	end, err := s.parseDate(endDate)
	if err != nil {
		return domain.WeeklyReport{}, err
	}
	start := end.AddDate(0, 0, -(days - 1))

	subs, err := s.submissions.ListByRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return domain.WeeklyReport{}, apperrors.NewUnavailable("submission feed unavailable", err)
	}
	roster, err := s.roster.ListByRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return domain.WeeklyReport{}, apperrors.NewUnavailable("roster feed unavailable", err)
	}

	viewsByDate := make(map[string][]domain.OutletCompletionView, days)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		viewsByDate[day.Format(completion.DateLayout)] = s.engine.ComputeAll(day, subs, roster)
	}
	return s.engine.BuildWeeklyReport(viewsByDate), nil
}

// Refresh recomputes and caches today's snapshot. The background
// worker calls this on its tick.
func (s *CompletionService) Refresh(ctx context.Context) error {
	today := time.Now().In(s.loc).Format(completion.DateLayout)
	overview, err := s.Overview(ctx, today)
	if err != nil {
		return err
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCompletionRefreshed,
			Timestamp: time.Now(),
			Payload: events.CompletionRefreshedPayload{
				Date:         overview.Date,
				OutletCount:  len(overview.Views),
				FromSchedule: true,
			},
		})
	}
	return nil
}

// RecordSubmission ingests one checklist submission row.
func (s *CompletionService) RecordSubmission(ctx context.Context, record *domain.SubmissionRecord) error {
	if record.Outlet == "" || record.TimeSlot == "" || record.SubmittedBy == "" {
		return apperrors.NewValidationError("outlet, time_slot and submitted_by required", nil)
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := s.submissions.Create(ctx, record); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// RecordRosterEntry ingests one scheduled-employee row.
func (s *CompletionService) RecordRosterEntry(ctx context.Context, entry *domain.ScheduledEmployee) error {
	if entry.Outlet == "" || entry.TimeSlot == "" || entry.EmployeeID == "" {
		return apperrors.NewValidationError("outlet, time_slot and employee_id required", nil)
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().In(s.loc)
	}
	if err := s.roster.Create(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CompletionService) computeDay(ctx context.Context, day time.Time) ([]domain.OutletCompletionView, error) {
	subs, err := s.submissions.ListByRange(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return s.engine.ComputeAll(day, subs, roster), nil
}

func (s *CompletionService) parseDate(date string) (time.Time, error) {
	if date == "" {
		now := time.Now().In(s.loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc), nil
	}
	day, err := time.ParseInLocation(completion.DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid date, expected YYYY-MM-DD", map[string]any{"date": date})
	}
	return day, nil
}

func summarize(views []domain.OutletCompletionView) CompletionSummary {
	summary := CompletionSummary{TotalOutlets: len(views)}
	for _, view := range views {
		switch view.OverallStatus {
		case domain.OverallCompleted:
			summary.CompletedOutlets++
		case domain.OverallPartial:
			summary.PartialOutlets++
		default:
			summary.PendingOutlets++
		}
	}
	if summary.TotalOutlets > 0 {
		summary.OverallRate = completion.Round1(float64(summary.CompletedOutlets) / float64(summary.TotalOutlets) * 100)
	}
	return summary
}
