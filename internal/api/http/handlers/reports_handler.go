package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/outlet-ops/internal/api/dto"
	"github.com/spec-kit/outlet-ops/internal/domain"
	"github.com/spec-kit/outlet-ops/internal/service"
)

// ReportsHandler serves daily and weekly completion reports.
type ReportsHandler struct {
	service *service.CompletionService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(completionService *service.CompletionService) *ReportsHandler {
	return &ReportsHandler{service: completionService}
}

// GetDailyReport GET /reports/daily.
func (h *ReportsHandler) GetDailyReport(c *fiber.Ctx) error {
	report, err := h.service.DailyReport(c.UserContext(), c.Query("date"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dailyReportResponse(report)})
}

// GetWeeklyReport GET /reports/weekly. Defaults to the 7 days ending
// at end_date (or today).
func (h *ReportsHandler) GetWeeklyReport(c *fiber.Ctx) error {
	days := parseInt(c.Query("days"), 7)
	report, err := h.service.WeeklyReport(c.UserContext(), c.Query("end_date"), days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": weeklyReportResponse(report)})
}

func dailyReportResponse(report domain.DailyReport) dto.DailyReportResponse {
	return dto.DailyReportResponse{
		Date:                  report.Date,
		TotalOutlets:          report.TotalOutlets,
		CompletedOutlets:      emptyIfNil(report.CompletedOutlets),
		PartialOutlets:        emptyIfNil(report.PartialOutlets),
		PendingOutlets:        emptyIfNil(report.PendingOutlets),
		OverallCompletionRate: report.OverallCompletionRate,
		SubmittedEmployees:    emptyIfNil(report.SubmittedEmployees),
		MissingEmployees:      emptyIfNil(report.MissingEmployees),
	}
}

func weeklyReportResponse(report domain.WeeklyReport) dto.WeeklyReportResponse {
	response := dto.WeeklyReportResponse{
		StartDate: report.StartDate,
		EndDate:   report.EndDate,
		Days:      report.Days,
	}
	for _, outlet := range report.Outlets {
		response.Outlets = append(response.Outlets, outletWeeklyResponse(outlet))
	}
	for _, outlet := range report.TopPerformers {
		response.TopPerformers = append(response.TopPerformers, outletWeeklyResponse(outlet))
	}
	for _, outlet := range report.BottomPerformers {
		response.BottomPerformers = append(response.BottomPerformers, outletWeeklyResponse(outlet))
	}
	for _, employee := range report.Employees {
		response.Employees = append(response.Employees, dto.EmployeeWeeklyResponse{
			Employee:            employee.Employee,
			TotalSubmissions:    employee.TotalSubmissions,
			AvgDailySubmissions: employee.AvgDailySubmissions,
		})
	}
	return response
}

func outletWeeklyResponse(outlet domain.OutletWeekly) dto.OutletWeeklyResponse {
	return dto.OutletWeeklyResponse{
		OutletCode:           outlet.OutletCode,
		Outlet:               outlet.Outlet,
		WeeklyCompletionRate: outlet.WeeklyCompletionRate,
		ConsistencyScore:     outlet.ConsistencyScore,
		BestDay:              outlet.BestDay,
		WorstDay:             outlet.WorstDay,
		DailyRates:           outlet.DailyRates,
	}
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
