package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/outlet-ops/internal/domain"
	"github.com/spec-kit/outlet-ops/internal/notify"
	"github.com/spec-kit/outlet-ops/internal/repository"
	"github.com/spec-kit/outlet-ops/internal/routing"
	apperrors "github.com/spec-kit/outlet-ops/pkg/util"
)

type stubTicketRepo struct {
	byKey  map[string]*domain.Ticket
	nextID int
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{byKey: map[string]*domain.Ticket{}}
}

func (r *stubTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = fmt.Sprintf("id-%d", r.nextID)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.byKey[ticket.TicketKey] = &copied
	return nil
}

func (r *stubTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.byKey[ticket.TicketKey]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.byKey[ticket.TicketKey] = &copied
	return nil
}

func (r *stubTicketRepo) GetByKey(_ context.Context, key string) (*domain.Ticket, error) {
	ticket, ok := r.byKey[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *stubTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.byKey {
		if filter.Type != nil && ticket.Type != *filter.Type {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if ticket.Status == status {
					match = true
				}
			}
			if !match {
				continue
			}
		} else if ticket.Status == domain.TicketStatusClosed {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

type stubHistoryRepo struct {
	entries []domain.TicketHistory
}

func (r *stubHistoryRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.entries = append(r.entries, *history)
	return nil
}

func (r *stubHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type stubEmployeeRepo struct {
	byName map[string]*domain.Employee
}

func newStubEmployeeRepo(names ...string) *stubEmployeeRepo {
	repo := &stubEmployeeRepo{byName: map[string]*domain.Employee{}}
	for i, name := range names {
		repo.byName[name] = &domain.Employee{
			ID:            fmt.Sprintf("emp-%d", i+1),
			Name:          name,
			NotifyChannel: name + "@chat.local",
			Active:        true,
		}
	}
	return repo
}

func (r *stubEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	r.byName[employee.Name] = employee
	return nil
}

func (r *stubEmployeeRepo) Update(_ context.Context, employee *domain.Employee) error {
	r.byName[employee.Name] = employee
	return nil
}

func (r *stubEmployeeRepo) GetByName(_ context.Context, name string) (*domain.Employee, error) {
	employee, ok := r.byName[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return employee, nil
}

func (r *stubEmployeeRepo) List(_ context.Context) ([]domain.Employee, error) {
	var result []domain.Employee
	for _, employee := range r.byName {
		result = append(result, *employee)
	}
	return result, nil
}

type stubNotifier struct {
	sent    []notify.Request
	failAll bool
}

func (n *stubNotifier) Send(_ context.Context, req notify.Request) error {
	if n.failAll {
		return errors.New("delivery failed")
	}
	n.sent = append(n.sent, req)
	return nil
}

func testRules(t *testing.T) *routing.RuleTable {
	t.Helper()
	rules, err := routing.NewRuleTable(map[domain.TicketType][]string{
		domain.TypeRepairAndMaintenance: {"Fahim"},
		domain.TypeDifficultyInOrder:    {"Reyaz"},
		domain.TypeStockItems:           {"Nishat", "Ajay"},
		domain.TypeHousekeeping:         {"Nishat", "Ajay"},
		domain.TypeOthers:               {},
	})
	require.NoError(t, err)
	return rules
}

type ticketFixture struct {
	service   *TicketService
	tickets   *stubTicketRepo
	history   *stubHistoryRepo
	employees *stubEmployeeRepo
	notifier  *stubNotifier
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	fixture := &ticketFixture{
		tickets:   newStubTicketRepo(),
		history:   &stubHistoryRepo{},
		employees: newStubEmployeeRepo("Fahim", "Reyaz", "Nishat", "Ajay", "Kim"),
		notifier:  &stubNotifier{},
	}
	fixture.service = NewTicketService(TicketDependencies{
		TicketRepo:   fixture.tickets,
		HistoryRepo:  fixture.history,
		EmployeeRepo: fixture.employees,
		Rules:        testRules(t),
		Notifier:     fixture.notifier,
		Logger:       zap.NewNop(),
		Rand:         rand.New(rand.NewSource(42)),
	})
	return fixture
}

func strPtr(s string) *string { return &s }

func TestCreateTicketAutoAssignsStockItems(t *testing.T) {
	fixture := newTicketFixture(t)

	result, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy:      "Kim",
		Outlet:           "BLN",
		IssueDescription: "need sugar sachets",
		Category:         strPtr("Place an Order"),
		Subcategory:      strPtr("Stock Items"),
	})
	require.NoError(t, err)

	ticket := result.Ticket
	assert.Equal(t, domain.TypeStockItems, ticket.Type)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.True(t, ticket.Assigned())
	assert.Contains(t, []string{"Nishat", "Ajay"}, *ticket.AssignedTo)
	assert.True(t, ticket.AutoAssigned)
	assert.True(t, result.NotificationSent)
	require.Len(t, fixture.notifier.sent, 1)
	assert.Equal(t, notify.KindAssignmentNotice, fixture.notifier.sent[0].Kind)
}

func TestCreateTicketEmptyRuleLeavesUnassigned(t *testing.T) {
	fixture := newTicketFixture(t)

	result, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy:      "Kim",
		Outlet:           "BLN",
		IssueDescription: "misc request",
		Category:         strPtr("Something Unmapped"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TypeOthers, result.Ticket.Type)
	assert.False(t, result.Ticket.Assigned())
	assert.False(t, result.Ticket.AutoAssigned)
	assert.False(t, result.NotificationSent)
	assert.Empty(t, fixture.notifier.sent)
}

func TestCreateTicketRequiresSubmitterAndOutlet(t *testing.T) {
	fixture := newTicketFixture(t)

	_, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{Outlet: "BLN"})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestCreateTicketNotificationFailureDoesNotFail(t *testing.T) {
	fixture := newTicketFixture(t)
	fixture.notifier.failAll = true

	result, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Repair and Maintenance"),
	})
	require.NoError(t, err)
	assert.True(t, result.Ticket.Assigned())
	assert.False(t, result.NotificationSent)
}

func TestCreateTicketUniformDrawCoversAllCandidates(t *testing.T) {
	fixture := newTicketFixture(t)

	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		result, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
			SubmittedBy: "Kim",
			Outlet:      "BLN",
			Category:    strPtr("Place an Order"),
			Subcategory: strPtr("Stock Items"),
		})
		require.NoError(t, err)
		seen[*result.Ticket.AssignedTo]++
	}
	assert.Positive(t, seen["Nishat"])
	assert.Positive(t, seen["Ajay"])
}

func TestReclassifyRedrawsAssignee(t *testing.T) {
	fixture := newTicketFixture(t)
	created, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Repair and Maintenance"),
	})
	require.NoError(t, err)
	require.Equal(t, "Fahim", *created.Ticket.AssignedTo)

	result, err := fixture.service.Reclassify(context.Background(), "manager", created.Ticket.TicketKey, domain.TypeDifficultyInOrder)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeDifficultyInOrder, result.Ticket.Type)
	assert.Equal(t, "Reyaz", *result.Ticket.AssignedTo)
	assert.True(t, result.Ticket.AutoAssigned)
	assert.True(t, result.NotificationSent)
}

func TestReclassifySameTypeRejected(t *testing.T) {
	fixture := newTicketFixture(t)
	created, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Repair and Maintenance"),
	})
	require.NoError(t, err)

	_, err = fixture.service.Reclassify(context.Background(), "manager", created.Ticket.TicketKey, domain.TypeRepairAndMaintenance)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	stored, err := fixture.tickets.GetByKey(context.Background(), created.Ticket.TicketKey)
	require.NoError(t, err)
	assert.Equal(t, "Fahim", *stored.AssignedTo)
}

func TestReclassifyToEmptyRuleClearsAssignee(t *testing.T) {
	fixture := newTicketFixture(t)
	created, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Repair and Maintenance"),
	})
	require.NoError(t, err)

	result, err := fixture.service.Reclassify(context.Background(), "manager", created.Ticket.TicketKey, domain.TypeOthers)
	require.NoError(t, err)
	assert.False(t, result.Ticket.Assigned())
	assert.False(t, result.Ticket.AutoAssigned)
	assert.False(t, result.NotificationSent)
}

func TestReclassifyUnknownTypeRejected(t *testing.T) {
	fixture := newTicketFixture(t)
	_, err := fixture.service.Reclassify(context.Background(), "manager", "TKT-X", domain.TicketType("SOMETHING_ELSE"))
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestManualAssignForcesInProgress(t *testing.T) {
	fixture := newTicketFixture(t)
	created, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Difficulty in Order"),
	})
	require.NoError(t, err)

	key := created.Ticket.TicketKey
	_, err = fixture.service.UpdateStatus(context.Background(), "Reyaz", key, domain.TicketStatusResolved, "retrained staff")
	require.NoError(t, err)

	ticket, err := fixture.service.ManualAssign(context.Background(), "manager", key, "Nishat")
	require.NoError(t, err)
	assert.Equal(t, "Nishat", *ticket.AssignedTo)
	assert.False(t, ticket.AutoAssigned)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
}

func TestManualAssignRequiresName(t *testing.T) {
	fixture := newTicketFixture(t)
	_, err := fixture.service.ManualAssign(context.Background(), "manager", "TKT-X", "   ")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestResolveSendsApprovalRequestToSubmitter(t *testing.T) {
	fixture := newTicketFixture(t)
	created, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Repair and Maintenance"),
	})
	require.NoError(t, err)
	fixture.notifier.sent = nil

	result, err := fixture.service.UpdateStatus(context.Background(), "Fahim", created.Ticket.TicketKey, domain.TicketStatusResolved, "replaced the valve")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, result.Ticket.Status)
	assert.Equal(t, "replaced the valve", result.Ticket.ActionTaken)
	assert.True(t, result.NotificationSent)
	require.Len(t, fixture.notifier.sent, 1)
	assert.Equal(t, notify.KindApprovalRequest, fixture.notifier.sent[0].Kind)
	assert.Equal(t, "Kim", fixture.notifier.sent[0].Recipient)

	// Resolved tickets stay in the active listing until closed.
	active, err := fixture.service.ListActive(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.TicketStatusResolved, active[0].Status)
}

func TestCloseIsTerminal(t *testing.T) {
	fixture := newTicketFixture(t)
	created, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Repair and Maintenance"),
	})
	require.NoError(t, err)
	key := created.Ticket.TicketKey

	result, err := fixture.service.UpdateStatus(context.Background(), "manager", key, domain.TicketStatusClosed, "done")
	require.NoError(t, err)
	require.NotNil(t, result.Ticket.ClosedAt)

	_, err = fixture.service.UpdateStatus(context.Background(), "manager", key, domain.TicketStatusOpen, "")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	_, err = fixture.service.ManualAssign(context.Background(), "manager", key, "Nishat")
	require.Error(t, err)
	_, err = fixture.service.Reclassify(context.Background(), "manager", key, domain.TypeOthers)
	require.Error(t, err)

	closed, err := fixture.service.ListClosed(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, closed, 1)

	active, err := fixture.service.ListActive(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestUpdateStatusAdminResets(t *testing.T) {
	fixture := newTicketFixture(t)
	created, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Repair and Maintenance"),
	})
	require.NoError(t, err)
	key := created.Ticket.TicketKey

	_, err = fixture.service.UpdateStatus(context.Background(), "admin", key, domain.TicketStatusResolved, "fixed")
	require.NoError(t, err)
	result, err := fixture.service.UpdateStatus(context.Background(), "admin", key, domain.TicketStatusInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, result.Ticket.Status)
	result, err = fixture.service.UpdateStatus(context.Background(), "admin", key, domain.TicketStatusOpen, "")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, result.Ticket.Status)
}

func TestUpdateStatusUnknownTicket(t *testing.T) {
	fixture := newTicketFixture(t)
	_, err := fixture.service.UpdateStatus(context.Background(), "manager", "TKT-MISSING", domain.TicketStatusClosed, "")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestHistoryRecordsLifecycle(t *testing.T) {
	fixture := newTicketFixture(t)
	created, err := fixture.service.CreateTicket(context.Background(), TicketIntakeInput{
		SubmittedBy: "Kim",
		Outlet:      "BLN",
		Category:    strPtr("Repair and Maintenance"),
	})
	require.NoError(t, err)
	key := created.Ticket.TicketKey

	_, err = fixture.service.UpdateStatus(context.Background(), "Fahim", key, domain.TicketStatusInProgress, "")
	require.NoError(t, err)
	_, err = fixture.service.Reclassify(context.Background(), "manager", key, domain.TypeStockItems)
	require.NoError(t, err)

	entries, err := fixture.service.ListHistory(context.Background(), key)
	require.NoError(t, err)

	types := map[domain.TicketChangeType]int{}
	for _, entry := range entries {
		types[entry.ChangeType]++
	}
	assert.Equal(t, 1, types[domain.ChangeTypeStatus])
	assert.Equal(t, 1, types[domain.ChangeTypeType])
	assert.Equal(t, 2, types[domain.ChangeTypeAssignee])
}
