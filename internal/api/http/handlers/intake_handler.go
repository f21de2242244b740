package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/outlet-ops/internal/api/dto"
	"github.com/spec-kit/outlet-ops/internal/completion"
	"github.com/spec-kit/outlet-ops/internal/domain"
	"github.com/spec-kit/outlet-ops/internal/service"
	apperrors "github.com/spec-kit/outlet-ops/pkg/util"
)

// IntakeHandler accepts the machine feeds: ticket-bot submissions,
// checklist submissions and roster sync rows.
type IntakeHandler struct {
	tickets    *service.TicketService
	completion *service.CompletionService
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(tickets *service.TicketService, completionService *service.CompletionService) *IntakeHandler {
	return &IntakeHandler{tickets: tickets, completion: completionService}
}

// CreateTicket POST /intake/tickets.
func (h *IntakeHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketIntakeInput{
		TicketKey:        req.TicketKey,
		SubmittedBy:      req.SubmittedBy,
		Outlet:           req.Outlet,
		IssueDescription: req.IssueDescription,
		ImageLink:        req.ImageLink,
		Category:         req.Category,
		Subcategory:      req.Subcategory,
	}
	if req.Date != "" {
		date, err := time.Parse(completion.DateLayout, req.Date)
		if err != nil {
			return apperrors.NewValidationError("invalid date, expected YYYY-MM-DD", map[string]any{"date": req.Date})
		}
		input.Date = date
	}

	result, err := h.tickets.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": mutationResponse(result)})
}

// CreateSubmission POST /intake/submissions.
func (h *IntakeHandler) CreateSubmission(c *fiber.Ctx) error {
	var req dto.SubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record := &domain.SubmissionRecord{
		Outlet:      req.Outlet,
		TimeSlot:    req.TimeSlot,
		SubmittedBy: req.SubmittedBy,
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return apperrors.NewValidationError("invalid timestamp, expected RFC3339", map[string]any{"timestamp": req.Timestamp})
		}
		record.Timestamp = ts
	}

	if err := h.completion.RecordSubmission(c.UserContext(), record); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": record.ID}})
}

// CreateRosterEntry POST /intake/roster.
func (h *IntakeHandler) CreateRosterEntry(c *fiber.Ctx) error {
	var req dto.RosterEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	entry := &domain.ScheduledEmployee{
		Outlet:     req.Outlet,
		TimeSlot:   req.TimeSlot,
		EmployeeID: req.EmployeeID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if req.Date != "" {
		date, err := time.Parse(completion.DateLayout, req.Date)
		if err != nil {
			return apperrors.NewValidationError("invalid date, expected YYYY-MM-DD", map[string]any{"date": req.Date})
		}
		entry.Date = date
	}

	if err := h.completion.RecordRosterEntry(c.UserContext(), entry); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": entry.ID}})
}
