package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/outlet-ops/internal/domain"
	"github.com/spec-kit/outlet-ops/internal/events"
	"github.com/spec-kit/outlet-ops/internal/notify"
	"github.com/spec-kit/outlet-ops/internal/repository"
	"github.com/spec-kit/outlet-ops/internal/routing"
	apperrors "github.com/spec-kit/outlet-ops/pkg/util"
)

// TicketService coordinates ticket intake, classification, assignment
// and status workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	employees  repository.EmployeeRepository
	rules      *routing.RuleTable
	notifier   notify.Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	HistoryRepo  repository.TicketHistoryRepository
	EmployeeRepo repository.EmployeeRepository
	Rules        *routing.RuleTable
	Notifier     notify.Notifier
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Rand         *rand.Rand
}

// TicketIntakeInput describes the payload from the ticket-creation bot.
type TicketIntakeInput struct {
	TicketKey        string
	Date             time.Time
	SubmittedBy      string
	Outlet           string
	IssueDescription string
	ImageLink        *string
	Category         *string
	Subcategory      *string
}

// TicketResult pairs a ticket mutation with its notification outcome.
// The primary operation succeeds independently of delivery.
type TicketResult struct {
	Ticket           *domain.Ticket
	NotificationSent bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		employees:  deps.EmployeeRepo,
		rules:      deps.Rules,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		rng:        rng,
	}
}

// CreateTicket ingests a new ticket: classify, draw an assignee per
// the rule table, persist, then attempt the assignment notice.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketIntakeInput) (*TicketResult, error) {
	if strings.TrimSpace(input.SubmittedBy) == "" || strings.TrimSpace(input.Outlet) == "" {
		return nil, apperrors.NewValidationError("submitted_by and outlet required", nil)
	}

	ticketType := routing.Classify(deref(input.Category), deref(input.Subcategory))
	assignee, assigned := s.drawAssignee(ticketType)

	ticket := &domain.Ticket{
		TicketKey:        strings.TrimSpace(input.TicketKey),
		Date:             input.Date,
		SubmittedBy:      strings.TrimSpace(input.SubmittedBy),
		Outlet:           strings.TrimSpace(input.Outlet),
		IssueDescription: strings.TrimSpace(input.IssueDescription),
		ImageLink:        input.ImageLink,
		Category:         input.Category,
		Subcategory:      input.Subcategory,
		Type:             ticketType,
		Status:           domain.TicketStatusOpen,
	}
	if ticket.TicketKey == "" {
		ticket.TicketKey = generateTicketKey()
	}
	if ticket.Date.IsZero() {
		ticket.Date = time.Now()
	}
	if assigned {
		ticket.AssignedTo = &assignee
		ticket.AutoAssigned = true
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if assigned {
		s.recordAssigneeChange(ctx, "auto-assignment", ticket, nil, ticket.AssignedTo)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketKey: ticket.TicketKey,
		Actor:     ticket.SubmittedBy,
		Payload: events.TicketCreatedPayload{
			Outlet:      ticket.Outlet,
			SubmittedBy: ticket.SubmittedBy,
			Type:        ticket.Type,
		},
	})
	if assigned {
		s.publishAssignmentEvent(ctx, ticket)
	}

	sent := false
	if assigned {
		sent = s.notifyEmployee(ctx, assignee, notify.KindAssignmentNotice, ticket.TicketKey,
			fmt.Sprintf("Ticket %s (%s) at %s has been assigned to you", ticket.TicketKey, ticket.Type, ticket.Outlet))
	}
	return &TicketResult{Ticket: ticket, NotificationSent: sent}, nil
}

// Reclassify changes the normalized type and re-runs assignment. The
// previous assignee is overwritten even when the new rule yields no
// candidate, putting the ticket back in the manual-assignment queue.
func (s *TicketService) Reclassify(ctx context.Context, actor, ticketKey string, newType domain.TicketType) (*TicketResult, error) {
	if !validTicketType(newType) {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": newType})
	}
	ticket, err := s.getTicket(ctx, ticketKey)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_key": ticketKey})
	}
	if ticket.Type == newType {
		return nil, apperrors.NewValidationError("ticket already has this type", map[string]any{"type": newType})
	}

	oldType := ticket.Type
	oldAssignee := ticket.AssignedTo
	assignee, assigned := s.drawAssignee(newType)

	ticket.Type = newType
	if assigned {
		ticket.AssignedTo = &assignee
		ticket.AutoAssigned = true
	} else {
		ticket.AssignedTo = nil
		ticket.AutoAssigned = false
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordHistory(ctx, actor, ticket, domain.ChangeTypeType,
		map[string]any{"type": oldType}, map[string]any{"type": newType})
	s.recordAssigneeChange(ctx, actor, ticket, oldAssignee, ticket.AssignedTo)
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketReclassified,
		TicketKey: ticket.TicketKey,
		Actor:     actor,
		Payload: events.TicketReclassifiedPayload{
			OldType: oldType,
			NewType: newType,
		},
	})
	s.publishAssignmentEvent(ctx, ticket)

	sent := false
	if assigned {
		sent = s.notifyEmployee(ctx, assignee, notify.KindAssignmentNotice, ticket.TicketKey,
			fmt.Sprintf("Ticket %s has been reclassified to %s and assigned to you", ticket.TicketKey, newType))
	}
	return &TicketResult{Ticket: ticket, NotificationSent: sent}, nil
}

// ManualAssign hands a ticket to a named employee. The ticket is
// forced to IN_PROGRESS regardless of its prior open-flow status, even
// from RESOLVED; the original dashboard behaved this way and active
// integrations depend on it.
func (s *TicketService) ManualAssign(ctx context.Context, actor, ticketKey, employeeName string) (*domain.Ticket, error) {
	employeeName = strings.TrimSpace(employeeName)
	if employeeName == "" {
		return nil, apperrors.NewValidationError("employee name required", nil)
	}
	ticket, err := s.getTicket(ctx, ticketKey)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_key": ticketKey})
	}

	oldAssignee := ticket.AssignedTo
	oldStatus := ticket.Status
	ticket.AssignedTo = &employeeName
	ticket.AutoAssigned = false
	ticket.Status = domain.TicketStatusInProgress

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordAssigneeChange(ctx, actor, ticket, oldAssignee, ticket.AssignedTo)
	if oldStatus != ticket.Status {
		s.recordHistory(ctx, actor, ticket, domain.ChangeTypeStatus,
			map[string]any{"status": oldStatus}, map[string]any{"status": ticket.Status})
	}
	s.publishAssignmentEvent(ctx, ticket)
	return ticket, nil
}

// UpdateStatus moves a ticket through its lifecycle and stores the
// action text verbatim. Resolving requests approval from the original
// submitter; closing is terminal.
func (s *TicketService) UpdateStatus(ctx context.Context, actor, ticketKey string, newStatus domain.TicketStatus, actionTaken string) (*TicketResult, error) {
	ticket, err := s.getTicket(ctx, ticketKey)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	ticket.ActionTaken = actionTaken
	if newStatus == domain.TicketStatusClosed {
		now := time.Now()
		ticket.ClosedAt = &now
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordHistory(ctx, actor, ticket, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus, "action_taken": actionTaken})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketStatusChanged,
		TicketKey: ticket.TicketKey,
		Actor:     actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus:   oldStatus,
			NewStatus:   newStatus,
			ActionTaken: actionTaken,
		},
	})

	sent := false
	if newStatus == domain.TicketStatusResolved {
		sent = s.notifyEmployee(ctx, ticket.SubmittedBy, notify.KindApprovalRequest, ticket.TicketKey,
			fmt.Sprintf("Ticket %s has been resolved: %s. Please confirm.", ticket.TicketKey, actionTaken))
	}
	return &TicketResult{Ticket: ticket, NotificationSent: sent}, nil
}

// GetByKey fetches one ticket.
func (s *TicketService) GetByKey(ctx context.Context, ticketKey string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketKey)
}

// ListActive returns non-closed tickets, optionally narrowed to one
// type tab.
func (s *TicketService) ListActive(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	filter.Statuses = nil
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListClosed returns the archived tab.
func (s *TicketService) ListClosed(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	filter.Statuses = []domain.TicketStatus{domain.TicketStatusClosed}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListHistory returns the audit trail for a ticket.
func (s *TicketService) ListHistory(ctx context.Context, ticketKey string) ([]domain.TicketHistory, error) {
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	ticket, err := s.getTicket(ctx, ticketKey)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketKey string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByKey(ctx, ticketKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_key": ticketKey})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// drawAssignee takes exactly one random draw per call; callers persist
// the outcome so reads never re-evaluate it.
func (s *TicketService) drawAssignee(ticketType domain.TicketType) (string, bool) {
	candidates := s.rules.Candidates(ticketType)
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return routing.ChooseAssignee(candidates, s.rng)
}

// notifyEmployee reports whether a notification actually went out.
// Missing employees, missing channels and delivery errors all land on
// false without affecting the caller's primary operation.
func (s *TicketService) notifyEmployee(ctx context.Context, name string, kind notify.MessageKind, ticketKey, message string) bool {
	if s.notifier == nil || s.employees == nil {
		return false
	}
	employee, err := s.employees.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("employee lookup failed", zap.String("employee", name), zap.Error(err))
		}
		return false
	}
	if employee.NotifyChannel == "" {
		return false
	}
	err = s.notifier.Send(ctx, notify.Request{
		Recipient: employee.Name,
		Channel:   employee.NotifyChannel,
		Kind:      kind,
		TicketKey: ticketKey,
		Message:   message,
	})
	if err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("employee", name),
			zap.String("ticket_key", ticketKey),
			zap.Error(err))
		return false
	}
	return true
}

func (s *TicketService) recordAssigneeChange(ctx context.Context, actor string, ticket *domain.Ticket, oldAssignee, newAssignee *string) {
	s.recordHistory(ctx, actor, ticket, domain.ChangeTypeAssignee,
		map[string]any{"assigned_to": oldAssignee},
		map[string]any{"assigned_to": newAssignee, "auto_assigned": ticket.AutoAssigned})
}

func (s *TicketService) recordHistory(ctx context.Context, actor string, ticket *domain.Ticket, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:   ticket.ID,
		ChangedBy:  actor,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("history write failed", zap.String("ticket_key", ticket.TicketKey), zap.Error(err))
	}
}

func (s *TicketService) publishAssignmentEvent(ctx context.Context, ticket *domain.Ticket) {
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketAssigned,
		TicketKey: ticket.TicketKey,
		Payload: events.TicketAssignedPayload{
			AssignedTo:   ticket.AssignedTo,
			AutoAssigned: ticket.AutoAssigned,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func validTicketType(tt domain.TicketType) bool {
	for _, known := range domain.TicketTypes() {
		if known == tt {
			return true
		}
	}
	return false
}

// allowedTransitions encodes the status machine: the forward chain
// plus administrative resets. CLOSED is reachable from anywhere and
// terminal.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved, domain.TicketStatusOpen, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusInProgress, domain.TicketStatusOpen, domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
