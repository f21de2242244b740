package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/outlet-ops/internal/api/dto"
	"github.com/spec-kit/outlet-ops/internal/auth"
	"github.com/spec-kit/outlet-ops/internal/domain"
	"github.com/spec-kit/outlet-ops/internal/repository"
	"github.com/spec-kit/outlet-ops/internal/service"
	apperrors "github.com/spec-kit/outlet-ops/pkg/util"
)

// TicketsHandler serves the dashboard ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets. Closed tickets are excluded; the type
// query narrows to one dashboard tab.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListActive(c.UserContext(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// ListClosedTickets GET /tickets/closed.
func (h *TicketsHandler) ListClosedTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListClosed(c.UserContext(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// GetTicket GET /tickets/:key.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetByKey(c.UserContext(), c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// GetTicketHistory GET /tickets/:key/history.
func (h *TicketsHandler) GetTicketHistory(c *fiber.Ctx) error {
	entries, err := h.service.ListHistory(c.UserContext(), c.Params("key"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TicketHistoryResponse{
			ID:         entry.ID,
			ChangeType: entry.ChangeType,
			ChangedBy:  entry.ChangedBy,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ReclassifyTicket POST /tickets/:key/reclassify.
func (h *TicketsHandler) ReclassifyTicket(c *fiber.Ctx) error {
	var req dto.ReclassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Reclassify(c.UserContext(), actorName(c), c.Params("key"), domain.TicketType(strings.TrimSpace(req.Type)))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mutationResponse(result)})
}

// AssignTicket POST /tickets/:key/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	var req dto.ManualAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ManualAssign(c.UserContext(), actorName(c), c.Params("key"), req.Employee)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdateTicketStatus POST /tickets/:key/status.
func (h *TicketsHandler) UpdateTicketStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	switch status {
	case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed:
	default:
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	result, err := h.service.UpdateStatus(c.UserContext(), actorName(c), c.Params("key"), status, req.ActionTaken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": mutationResponse(result)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if typeStr := strings.TrimSpace(c.Query("type")); typeStr != "" {
		ticketType := domain.TicketType(strings.ToUpper(typeStr))
		filter.Type = &ticketType
	}
	if outlet := strings.TrimSpace(c.Query("outlet")); outlet != "" {
		filter.Outlet = &outlet
	}
	if assignee := strings.TrimSpace(c.Query("assigned_to")); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if c.Query("unassigned") == "true" {
		filter.Unassigned = true
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func mutationResponse(result *service.TicketResult) dto.TicketMutationResponse {
	return dto.TicketMutationResponse{
		Ticket:           ticketSummary(result.Ticket),
		NotificationSent: result.NotificationSent,
	}
}

func ticketSummaries(tickets []domain.Ticket) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return items
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:               ticket.ID,
		TicketKey:        ticket.TicketKey,
		Date:             ticket.Date.Format("2006-01-02"),
		SubmittedBy:      ticket.SubmittedBy,
		Outlet:           ticket.Outlet,
		IssueDescription: ticket.IssueDescription,
		ImageLink:        ticket.ImageLink,
		Category:         ticket.Category,
		Subcategory:      ticket.Subcategory,
		Type:             ticket.Type,
		AssignedTo:       ticket.AssignedTo,
		AutoAssigned:     ticket.AutoAssigned,
		Status:           ticket.Status,
		ActionTaken:      ticket.ActionTaken,
		DaysPending:      ticket.DaysPending(time.Now()),
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
		ClosedAt:         ticket.ClosedAt,
	}
}

// actorName identifies who performed a mutation for the audit trail.
func actorName(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Staff != nil {
		return principal.Staff.Name
	}
	return "system"
}
