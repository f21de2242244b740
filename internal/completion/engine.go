// Package completion derives checklist completion state from raw
// submission and roster rows. Everything here is a pure function over
// in-memory slices; fetching, caching and refresh belong to callers.
package completion

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// DateLayout is the business-date format used across views and reports.
const DateLayout = "2006-01-02"

// OutletRef is one whitelist entry. The whitelist is ordered; its
// position doubles as the ranking tiebreak.
type OutletRef struct {
	Code string
	Name string
	Type string
}

// Engine computes completion views for a fixed slot order and outlet
// whitelist. Outlets outside the whitelist never appear in any output,
// so summary statistics always reflect whitelisted outlets only.
type Engine struct {
	slots     []string
	whitelist []OutletRef
	index     map[string]int
	loc       *time.Location
}

// NewEngine validates the static configuration.
func NewEngine(slots []string, whitelist []OutletRef, loc *time.Location) (*Engine, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("completion: at least one time slot required")
	}
	if len(whitelist) == 0 {
		return nil, fmt.Errorf("completion: outlet whitelist is empty")
	}
	if loc == nil {
		loc = time.Local
	}
	index := make(map[string]int, len(whitelist))
	for i, ref := range whitelist {
		if ref.Code == "" {
			return nil, fmt.Errorf("completion: whitelist entry %d has no code", i)
		}
		if _, dup := index[ref.Code]; dup {
			return nil, fmt.Errorf("completion: duplicate outlet code %s", ref.Code)
		}
		index[ref.Code] = i
	}
	return &Engine{
		slots:     slots,
		whitelist: whitelist,
		index:     index,
		loc:       loc,
	}, nil
}

// Whitelist returns the configured outlet references in order.
func (e *Engine) Whitelist() []OutletRef {
	out := make([]OutletRef, len(e.whitelist))
	copy(out, e.whitelist)
	return out
}

// Slots returns the configured slot order.
func (e *Engine) Slots() []string {
	out := make([]string, len(e.slots))
	copy(out, e.slots)
	return out
}

// ComputeAll builds ranked completion views for every whitelisted
// outlet on the given day. Submissions and roster rows for other
// outlets are dropped before anything is counted.
func (e *Engine) ComputeAll(day time.Time, submissions []domain.SubmissionRecord, roster []domain.ScheduledEmployee) []domain.OutletCompletionView {
	views := make([]domain.OutletCompletionView, 0, len(e.whitelist))
	for _, ref := range e.whitelist {
		views = append(views, e.ComputeOutletCompletion(ref, day, submissions, roster))
	}
	return e.RankOutlets(views)
}

// ComputeOutletCompletion derives the completion view for one outlet.
// When a slot has several submissions, the most recent one supplies
// the submitter and time. Scheduled employees attach to their slot
// regardless of submission state.
func (e *Engine) ComputeOutletCompletion(ref OutletRef, day time.Time, submissions []domain.SubmissionRecord, roster []domain.ScheduledEmployee) domain.OutletCompletionView {
	view := domain.OutletCompletionView{
		Outlet:     ref.Name,
		OutletCode: ref.Code,
		OutletType: ref.Type,
		Date:       day.In(e.loc).Format(DateLayout),
	}

	var daySubs []domain.SubmissionRecord
	var lastSubmission *time.Time
	for _, sub := range submissions {
		if sub.Outlet != ref.Code || !e.sameDay(sub.Timestamp, day) {
			continue
		}
		daySubs = append(daySubs, sub)
		if lastSubmission == nil || sub.Timestamp.After(*lastSubmission) {
			ts := sub.Timestamp
			lastSubmission = &ts
		}
	}

	completed := 0
	for _, slot := range e.slots {
		slotKey := normalizeSlot(slot)
		status := domain.TimeSlotStatus{
			TimeSlot: slot,
			Status:   domain.SlotNotSubmitted,
		}

		var latest *domain.SubmissionRecord
		for i := range daySubs {
			sub := &daySubs[i]
			if normalizeSlot(sub.TimeSlot) != slotKey {
				continue
			}
			if latest == nil || sub.Timestamp.After(latest.Timestamp) {
				latest = sub
			}
		}
		if latest != nil {
			status.Status = domain.SlotCompleted
			status.SubmittedBy = latest.SubmittedBy
			ts := latest.Timestamp.In(e.loc)
			status.SubmittedAt = &ts
			completed++
		}

		for _, entry := range roster {
			if entry.Outlet != ref.Code || normalizeSlot(entry.TimeSlot) != slotKey {
				continue
			}
			if !entry.Date.IsZero() && !e.sameDay(entry.Date, day) {
				continue
			}
			status.ScheduledEmployees = append(status.ScheduledEmployees, entry)
		}

		view.Slots = append(view.Slots, status)
	}

	total := len(e.slots)
	view.CompletionPercentage = Round1(float64(completed) / float64(total) * 100)
	switch {
	case completed == total:
		view.OverallStatus = domain.OverallCompleted
	case completed == 0:
		view.OverallStatus = domain.OverallPending
	default:
		view.OverallStatus = domain.OverallPartial
	}
	if lastSubmission != nil {
		ts := lastSubmission.In(e.loc)
		view.LastSubmissionAt = &ts
	}
	return view
}

// RankOutlets orders views worst-first: Pending before Partial before
// Completed, ties broken by whitelist position.
func (e *Engine) RankOutlets(views []domain.OutletCompletionView) []domain.OutletCompletionView {
	ranked := make([]domain.OutletCompletionView, len(views))
	copy(ranked, views)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := statusPriority(ranked[i].OverallStatus), statusPriority(ranked[j].OverallStatus)
		if pi != pj {
			return pi < pj
		}
		return e.whitelistIndex(ranked[i].OutletCode) < e.whitelistIndex(ranked[j].OutletCode)
	})
	return ranked
}

func (e *Engine) whitelistIndex(code string) int {
	if i, ok := e.index[code]; ok {
		return i
	}
	return len(e.whitelist)
}

func (e *Engine) sameDay(ts, day time.Time) bool {
	a := ts.In(e.loc)
	b := day.In(e.loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func statusPriority(status domain.OverallStatus) int {
	switch status {
	case domain.OverallPending:
		return 0
	case domain.OverallPartial:
		return 1
	default:
		return 2
	}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func normalizeSlot(slot string) string {
	return strings.ToLower(strings.Join(strings.Fields(slot), " "))
}
