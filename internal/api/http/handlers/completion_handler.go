package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/outlet-ops/internal/api/dto"
	"github.com/spec-kit/outlet-ops/internal/domain"
	"github.com/spec-kit/outlet-ops/internal/service"
	apperrors "github.com/spec-kit/outlet-ops/pkg/util"
)

// timeOfDayLayout renders submission times as wall-clock values for
// the dashboard.
const timeOfDayLayout = "15:04"

// CompletionHandler serves the checklist completion dashboard.
type CompletionHandler struct {
	service *service.CompletionService
}

// NewCompletionHandler constructs handler.
func NewCompletionHandler(completionService *service.CompletionService) *CompletionHandler {
	return &CompletionHandler{service: completionService}
}

// GetOverview GET /completion. When the feeds are down but a cached
// snapshot exists, the snapshot is served with degraded=true and the
// upstream error attached instead of failing the dashboard.
func (h *CompletionHandler) GetOverview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.UserContext(), c.Query("date"))
	if err != nil {
		var domainErr *apperrors.DomainError
		if !overview.Degraded || len(overview.Views) == 0 {
			return err
		}
		domainErr = apperrors.ToDomainError(err)
		response := overviewResponse(overview)
		response.Error = domainErr.Message
		return c.JSON(fiber.Map{"data": response})
	}
	return c.JSON(fiber.Map{"data": overviewResponse(overview)})
}

func overviewResponse(overview service.CompletionOverview) dto.CompletionOverviewResponse {
	response := dto.CompletionOverviewResponse{
		Date: overview.Date,
		Summary: dto.CompletionSummaryResponse{
			TotalOutlets:     overview.Summary.TotalOutlets,
			CompletedOutlets: overview.Summary.CompletedOutlets,
			PartialOutlets:   overview.Summary.PartialOutlets,
			PendingOutlets:   overview.Summary.PendingOutlets,
			OverallRate:      overview.Summary.OverallRate,
		},
		Outlets:  make([]dto.OutletCompletionResponse, 0, len(overview.Views)),
		Degraded: overview.Degraded,
	}
	if !overview.AsOf.IsZero() {
		asOf := overview.AsOf
		response.AsOf = &asOf
	}
	for _, view := range overview.Views {
		response.Outlets = append(response.Outlets, outletCompletionResponse(view))
	}
	return response
}

func outletCompletionResponse(view domain.OutletCompletionView) dto.OutletCompletionResponse {
	response := dto.OutletCompletionResponse{
		Outlet:               view.Outlet,
		OutletCode:           view.OutletCode,
		OutletType:           view.OutletType,
		Date:                 view.Date,
		Slots:                make([]dto.SlotStatusResponse, 0, len(view.Slots)),
		OverallStatus:        view.OverallStatus,
		CompletionPercentage: view.CompletionPercentage,
	}
	if view.LastSubmissionAt != nil {
		response.LastSubmissionAt = view.LastSubmissionAt.Format(timeOfDayLayout)
	}
	for _, slot := range view.Slots {
		slotResponse := dto.SlotStatusResponse{
			TimeSlot:    slot.TimeSlot,
			Status:      slot.Status,
			SubmittedBy: slot.SubmittedBy,
		}
		if slot.SubmittedAt != nil {
			slotResponse.SubmittedAt = slot.SubmittedAt.Format(timeOfDayLayout)
		}
		for _, entry := range slot.ScheduledEmployees {
			slotResponse.ScheduledEmployees = append(slotResponse.ScheduledEmployees, dto.ScheduledEmployeeResponse{
				EmployeeID: entry.EmployeeID,
				StartTime:  entry.StartTime,
				EndTime:    entry.EndTime,
			})
		}
		response.Slots = append(response.Slots, slotResponse)
	}
	return response
}
