package service

import (
	"context"
	"time"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/domain/entity"
)

// Func-field mocks: each method delegates to an optional func field and
// records the call so tests can assert on ordering and counts.

type mockLogger struct {
	infoCalls  []string
	warnCalls  []string
	errorCalls []string
}

func (m *mockLogger) Info(msg string, _ ...interface{})  { m.infoCalls = append(m.infoCalls, msg) }
func (m *mockLogger) Warn(msg string, _ ...interface{})  { m.warnCalls = append(m.warnCalls, msg) }
func (m *mockLogger) Error(msg string, _ ...interface{}) { m.errorCalls = append(m.errorCalls, msg) }

type mockClaimRepo struct {
	createFn     func(ctx context.Context, claim *entity.Claim) error
	getByIDFn    func(ctx context.Context, id int64, scope entity.TenantScope) (*entity.Claim, error)
	updateFn     func(ctx context.Context, claim *entity.Claim) error
	listFn       func(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.Claim, error)
	setDeletedFn func(ctx context.Context, id int64, scope entity.TenantScope, deleted bool) error

	created []*entity.Claim
	updated []entity.Claim
}

var _ port.ClaimRepository = (*mockClaimRepo)(nil)

func (m *mockClaimRepo) Create(ctx context.Context, claim *entity.Claim) error {
	if claim.ID == 0 {
		claim.ID = int64(len(m.created) + 1)
	}
	m.created = append(m.created, claim)
	if m.createFn != nil {
		return m.createFn(ctx, claim)
	}
	return nil
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id int64, scope entity.TenantScope) (*entity.Claim, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id, scope)
	}
	return nil, nil
}

func (m *mockClaimRepo) Update(ctx context.Context, claim *entity.Claim) error {
	m.updated = append(m.updated, *claim)
	if m.updateFn != nil {
		return m.updateFn(ctx, claim)
	}
	return nil
}

func (m *mockClaimRepo) List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.Claim, error) {
	if m.listFn != nil {
		return m.listFn(ctx, scope, limit, offset)
	}
	return nil, nil
}

func (m *mockClaimRepo) SetDeleted(ctx context.Context, id int64, scope entity.TenantScope, deleted bool) error {
	if m.setDeletedFn != nil {
		return m.setDeletedFn(ctx, id, scope, deleted)
	}
	return nil
}

type mockLeaveRepo struct {
	createFn          func(ctx context.Context, leave *entity.LeaveRequest) error
	getByIDFn         func(ctx context.Context, id int64, scope entity.TenantScope) (*entity.LeaveRequest, error)
	updateFn          func(ctx context.Context, leave *entity.LeaveRequest) error
	listFn            func(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.LeaveRequest, error)
	setDeletedFn      func(ctx context.Context, id int64, scope entity.TenantScope, deleted bool) error
	findOverlappingFn func(ctx context.Context, ownerID int64, start, end time.Time, statuses []string) ([]*entity.LeaveRequest, error)

	created []*entity.LeaveRequest
	updated []entity.LeaveRequest
}

var _ port.LeaveRepository = (*mockLeaveRepo)(nil)

func (m *mockLeaveRepo) Create(ctx context.Context, leave *entity.LeaveRequest) error {
	if leave.ID == 0 {
		// Start above any fixture-seeded IDs so created records never collide
		// with records the tests seed directly.
		leave.ID = int64(len(m.created) + 1001)
	}
	m.created = append(m.created, leave)
	if m.createFn != nil {
		return m.createFn(ctx, leave)
	}
	return nil
}

func (m *mockLeaveRepo) GetByID(ctx context.Context, id int64, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id, scope)
	}
	return nil, nil
}

func (m *mockLeaveRepo) Update(ctx context.Context, leave *entity.LeaveRequest) error {
	m.updated = append(m.updated, *leave)
	if m.updateFn != nil {
		return m.updateFn(ctx, leave)
	}
	return nil
}

func (m *mockLeaveRepo) List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.LeaveRequest, error) {
	if m.listFn != nil {
		return m.listFn(ctx, scope, limit, offset)
	}
	return nil, nil
}

func (m *mockLeaveRepo) SetDeleted(ctx context.Context, id int64, scope entity.TenantScope, deleted bool) error {
	if m.setDeletedFn != nil {
		return m.setDeletedFn(ctx, id, scope, deleted)
	}
	return nil
}

func (m *mockLeaveRepo) FindOverlapping(ctx context.Context, ownerID int64, start, end time.Time, statuses []string) ([]*entity.LeaveRequest, error) {
	if m.findOverlappingFn != nil {
		return m.findOverlappingFn(ctx, ownerID, start, end, statuses)
	}
	return nil, nil
}

type mockUserRepo struct {
	users     map[int64]*entity.User
	adminsErr error

	adminScopes []entity.TenantScope
}

var _ port.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) ListAdmins(_ context.Context, scope entity.TenantScope) ([]*entity.User, error) {
	m.adminScopes = append(m.adminScopes, scope)
	if m.adminsErr != nil {
		return nil, m.adminsErr
	}
	var admins []*entity.User
	for _, u := range m.users {
		if u.IsAdmin() {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

type mockNotificationRepo struct {
	rows []*entity.Notification
}

var _ port.NotificationRepository = (*mockNotificationRepo)(nil)

func (m *mockNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	n.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, n)
	return nil
}

func (m *mockNotificationRepo) MarkSent(_ context.Context, _ int64) error { return nil }

func (m *mockNotificationRepo) GetByEntity(_ context.Context, entityType string, entityID int64) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range m.rows {
		if n.EntityType == entityType && n.EntityID == entityID {
			out = append(out, n)
		}
	}
	return out, nil
}

type mockApprovalClient struct {
	createFn func(ctx context.Context, req port.CreateApprovalRequest) (string, error)
	listFn   func(ctx context.Context, query port.ApprovalQuery) ([]port.Approval, error)

	createCalls   []port.CreateApprovalRequest
	withdrawCalls []port.WithdrawApprovalRequest
}

var _ port.ApprovalClient = (*mockApprovalClient)(nil)

func (m *mockApprovalClient) CreateApprovalRequest(ctx context.Context, req port.CreateApprovalRequest) (string, error) {
	m.createCalls = append(m.createCalls, req)
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return "approval-1", nil
}

func (m *mockApprovalClient) WithdrawApprovalRequest(_ context.Context, req port.WithdrawApprovalRequest) error {
	m.withdrawCalls = append(m.withdrawCalls, req)
	return nil
}

func (m *mockApprovalClient) ListActiveApprovals(ctx context.Context, query port.ApprovalQuery) ([]port.Approval, error) {
	if m.listFn != nil {
		return m.listFn(ctx, query)
	}
	// Default: the linked approval is still active
	if query.ApprovalID != "" {
		return []port.Approval{{
			ApprovalID: query.ApprovalID,
			EntityType: query.EntityType,
			EntityID:   query.EntityID,
			Status:     "PENDING",
		}}, nil
	}
	return nil, nil
}

type mockNotifier struct {
	emailFn func(ctx context.Context, emailType string, recipients []string, data map[string]interface{}) error

	emails          []string
	emailRecipients [][]string
	internals       []*entity.Notification
	internalRoles   [][]string
	pushes          []string
	pushRecipients  [][]int64
}

var _ port.NotificationPort = (*mockNotifier)(nil)

func (m *mockNotifier) SendEmail(ctx context.Context, emailType string, recipients []string, data map[string]interface{}) error {
	m.emails = append(m.emails, emailType)
	m.emailRecipients = append(m.emailRecipients, recipients)
	if m.emailFn != nil {
		return m.emailFn(ctx, emailType, recipients, data)
	}
	return nil
}

func (m *mockNotifier) SendInternal(_ context.Context, n *entity.Notification, roles []string) error {
	m.internals = append(m.internals, n)
	m.internalRoles = append(m.internalRoles, roles)
	return nil
}

func (m *mockNotifier) SendPush(_ context.Context, eventName string, recipientIDs []int64, _ map[string]interface{}, _ string) error {
	m.pushes = append(m.pushes, eventName)
	m.pushRecipients = append(m.pushRecipients, recipientIDs)
	return nil
}

type mockRewards struct {
	awardFn func(ctx context.Context, req port.AwardPointsRequest) error
	awards  []port.AwardPointsRequest
}

var _ port.RewardsClient = (*mockRewards)(nil)

func (m *mockRewards) AwardPoints(ctx context.Context, req port.AwardPointsRequest) error {
	m.awards = append(m.awards, req)
	if m.awardFn != nil {
		return m.awardFn(ctx, req)
	}
	return nil
}
