package completion

import (
	"math"
	"sort"
	"time"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

const performerCount = 3

// BuildDailyReport partitions the day's views and derives who
// submitted versus who was scheduled but never submitted anywhere.
// Views are expected to come from ComputeAll, so only whitelisted
// outlets contribute to the counts.
func (e *Engine) BuildDailyReport(day time.Time, views []domain.OutletCompletionView) domain.DailyReport {
	report := domain.DailyReport{
		Date:         day.In(e.loc).Format(DateLayout),
		TotalOutlets: len(views),
	}

	submitted := map[string]bool{}
	scheduled := map[string]bool{}

	for _, view := range views {
		switch view.OverallStatus {
		case domain.OverallCompleted:
			report.CompletedOutlets = append(report.CompletedOutlets, view.OutletCode)
		case domain.OverallPending:
			report.PendingOutlets = append(report.PendingOutlets, view.OutletCode)
		default:
			report.PartialOutlets = append(report.PartialOutlets, view.OutletCode)
		}
		for _, slot := range view.Slots {
			if slot.SubmittedBy != "" {
				submitted[slot.SubmittedBy] = true
			}
			for _, entry := range slot.ScheduledEmployees {
				scheduled[entry.EmployeeID] = true
			}
		}
	}

	if report.TotalOutlets > 0 {
		report.OverallCompletionRate = Round1(float64(len(report.CompletedOutlets)) / float64(report.TotalOutlets) * 100)
	}
	report.SubmittedEmployees = sortedKeys(submitted)
	for _, name := range sortedKeys(scheduled) {
		if !submitted[name] {
			report.MissingEmployees = append(report.MissingEmployees, name)
		}
	}
	return report
}

// BuildWeeklyReport rolls up per-day views across a date range. Dates
// missing from the map count as zero-completion days, so a dark outlet
// drags its weekly rate down instead of vanishing from the report.
func (e *Engine) BuildWeeklyReport(viewsByDate map[string][]domain.OutletCompletionView) domain.WeeklyReport {
	dates := make([]string, 0, len(viewsByDate))
	for date := range viewsByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	report := domain.WeeklyReport{Days: len(dates)}
	if len(dates) == 0 {
		return report
	}
	report.StartDate = dates[0]
	report.EndDate = dates[len(dates)-1]

	rateByOutlet := map[string]map[string]float64{}
	submissionsByEmployee := map[string]int{}
	for date, views := range viewsByDate {
		for _, view := range views {
			rates, ok := rateByOutlet[view.OutletCode]
			if !ok {
				rates = map[string]float64{}
				rateByOutlet[view.OutletCode] = rates
			}
			rates[date] = view.CompletionPercentage
			for _, slot := range view.Slots {
				if slot.SubmittedBy != "" {
					submissionsByEmployee[slot.SubmittedBy]++
				}
			}
		}
	}

	for _, ref := range e.whitelist {
		rates := rateByOutlet[ref.Code]
		weekly := domain.OutletWeekly{
			OutletCode: ref.Code,
			Outlet:     ref.Name,
			DailyRates: map[string]float64{},
		}
		daily := make([]float64, 0, len(dates))
		for _, date := range dates {
			rate := rates[date]
			weekly.DailyRates[date] = rate
			daily = append(daily, rate)
			if weekly.BestDay == "" || rate > weekly.DailyRates[weekly.BestDay] {
				weekly.BestDay = date
			}
			if weekly.WorstDay == "" || rate < weekly.DailyRates[weekly.WorstDay] {
				weekly.WorstDay = date
			}
		}
		m := mean(daily)
		weekly.WeeklyCompletionRate = Round1(m)
		weekly.ConsistencyScore = Round1(clamp(m-stddev(daily, m), 0, 100))
		report.Outlets = append(report.Outlets, weekly)
	}

	byRate := make([]domain.OutletWeekly, len(report.Outlets))
	copy(byRate, report.Outlets)
	sort.SliceStable(byRate, func(i, j int) bool {
		return byRate[i].WeeklyCompletionRate > byRate[j].WeeklyCompletionRate
	})
	top := performerCount
	if top > len(byRate) {
		top = len(byRate)
	}
	report.TopPerformers = append(report.TopPerformers, byRate[:top]...)
	for i := len(byRate) - 1; i >= len(byRate)-top; i-- {
		report.BottomPerformers = append(report.BottomPerformers, byRate[i])
	}

	for _, name := range sortedCountKeys(submissionsByEmployee) {
		total := submissionsByEmployee[name]
		report.Employees = append(report.Employees, domain.EmployeeWeekly{
			Employee:            name,
			TotalSubmissions:    total,
			AvgDailySubmissions: Round1(float64(total) / float64(len(dates))),
		})
	}
	return report
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	return math.Sqrt(variance / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// sortedCountKeys orders by descending count, name as tiebreak.
func sortedCountKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
