package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/domain/entity"
	"github.com/rivohq/opsflow/internal/domain/event"
)

type claimFixture struct {
	claims        *mockClaimRepo
	users         *mockUserRepo
	approvals     *mockApprovalClient
	notifier      *mockNotifier
	notifications *mockNotificationRepo
	rewards       *mockRewards
	logger        *mockLogger
	svc           ClaimService
}

func newClaimFixture() *claimFixture {
	f := &claimFixture{
		claims: &mockClaimRepo{},
		users: &mockUserRepo{users: map[int64]*entity.User{
			10: {ID: 10, OrganisationID: 1, BranchID: 2, Email: "owner@example.com", Role: entity.RoleEmployee},
			42: {ID: 42, OrganisationID: 1, BranchID: 2, Email: "admin@example.com", Role: entity.RoleAdmin},
		}},
		approvals:     &mockApprovalClient{},
		notifier:      &mockNotifier{},
		notifications: &mockNotificationRepo{},
		rewards:       &mockRewards{},
		logger:        &mockLogger{},
	}
	f.svc = NewClaimService(
		f.claims, f.users, f.approvals, f.notifier, f.notifications, f.rewards,
		NewTransitionEngine(nil, f.logger),
		DefaultSettings(), f.logger,
	)
	return f
}

// seed installs a stored claim that GetByID serves regardless of scope
func (f *claimFixture) seed(claim *entity.Claim) {
	f.claims.getByIDFn = func(_ context.Context, id int64, scope entity.TenantScope) (*entity.Claim, error) {
		if id != claim.ID || !claim.InScope(scope) {
			return nil, nil
		}
		return claim, nil
	}
}

func TestClaimService_Create(t *testing.T) {
	f := newClaimFixture()

	claim, err := f.svc.Create(context.Background(), CreateClaimInput{
		OwnerID:  10,
		Title:    "Conference travel",
		Category: entity.ClaimCategoryTravel,
		Amount:   350.00,
		Currency: "EUR",
	}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, claim.Status)
	assert.Equal(t, int64(1), claim.OrganisationID)
	assert.Equal(t, int64(2), claim.BranchID)
	assert.Equal(t, "approval-1", claim.LinkedApprovalID)

	require.Len(t, f.approvals.createCalls, 1)
	assert.Equal(t, entity.EntityTypeClaim, f.approvals.createCalls[0].EntityType)
	assert.Equal(t, claim.ID, f.approvals.createCalls[0].EntityID)

	require.Len(t, f.rewards.awards, 1)
	assert.Equal(t, int64(50), f.rewards.awards[0].Points)

	assert.Len(t, f.notifier.emails, 1)
	assert.Len(t, f.notifier.internals, 1)
	assert.Len(t, f.notifier.pushes, 1)
	assert.Equal(t, entity.NotificationKindRecordCreated, f.notifier.internals[0].Kind)
}

func TestClaimService_CreateSurvivesCollaboratorFailure(t *testing.T) {
	f := newClaimFixture()
	f.approvals.createFn = func(context.Context, port.CreateApprovalRequest) (string, error) {
		return "", errors.New("collaborator down")
	}
	f.rewards.awardFn = func(context.Context, port.AwardPointsRequest) error {
		return errors.New("rewards down")
	}
	f.notifier.emailFn = func(context.Context, string, []string, map[string]interface{}) error {
		return errors.New("smtp down")
	}

	claim, err := f.svc.Create(context.Background(), CreateClaimInput{
		OwnerID: 10, Title: "Lunch", Amount: 15.00,
	}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, claim.Status)
	assert.Empty(t, claim.LinkedApprovalID)
	assert.NotEmpty(t, f.logger.warnCalls)
}

func TestClaimService_CreateValidation(t *testing.T) {
	f := newClaimFixture()

	_, err := f.svc.Create(context.Background(), CreateClaimInput{OwnerID: 10, Amount: 0}, entity.TenantScope{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.Empty(t, f.claims.created)

	_, err = f.svc.Create(context.Background(), CreateClaimInput{OwnerID: 999, Amount: 10}, entity.TenantScope{})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestClaimService_ApproveNotifiesOnce(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, OrganisationID: 1, BranchID: 2, Status: entity.StatusPending},
		Amount:         100,
	}
	f.seed(claim)

	got, err := f.svc.Approve(context.Background(), 5, 42, entity.TenantScope{OrganisationID: 1, BranchID: 2})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, got.Status)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, int64(42), *got.ApproverID)
	require.Len(t, f.claims.updated, 1)
	assert.Equal(t, entity.StatusApproved, f.claims.updated[0].Status)

	assert.Len(t, f.notifier.emails, 1)
	assert.Len(t, f.notifier.internals, 1)
	assert.Len(t, f.notifier.pushes, 1)
}

func TestClaimService_ApproveFansOutToAdmins(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, OrganisationID: 1, BranchID: 2, Status: entity.StatusPending},
	}
	f.seed(claim)

	_, err := f.svc.Approve(context.Background(), 5, 42, entity.TenantScope{OrganisationID: 1, BranchID: 2})
	require.NoError(t, err)

	// Admins resolved within the record's tenant scope
	require.Len(t, f.users.adminScopes, 1)
	assert.Equal(t, entity.TenantScope{OrganisationID: 1, BranchID: 2}, f.users.adminScopes[0])

	require.Len(t, f.notifier.emailRecipients, 1)
	assert.ElementsMatch(t, []string{"owner@example.com", "admin@example.com"}, f.notifier.emailRecipients[0])
	require.Len(t, f.notifier.pushRecipients, 1)
	assert.ElementsMatch(t, []int64{10, 42}, f.notifier.pushRecipients[0])
	require.Len(t, f.notifier.internalRoles, 1)
	assert.Equal(t, []string{entity.RoleAdmin}, f.notifier.internalRoles[0])
}

func TestClaimService_ApproveSurvivesAdminLookupFailure(t *testing.T) {
	f := newClaimFixture()
	f.users.adminsErr = errors.New("users table locked")
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(claim)

	got, err := f.svc.Approve(context.Background(), 5, 42, entity.TenantScope{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)

	// Owner still notified on every channel
	require.Len(t, f.notifier.emailRecipients, 1)
	assert.Equal(t, []string{"owner@example.com"}, f.notifier.emailRecipients[0])
	require.Len(t, f.notifier.pushRecipients, 1)
	assert.Equal(t, []int64{10}, f.notifier.pushRecipients[0])
	assert.NotEmpty(t, f.logger.warnCalls)
}

func TestClaimService_NotificationTrail(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, OrganisationID: 1, BranchID: 2, Status: entity.StatusPending},
	}
	f.seed(claim)
	f.notifications.rows = []*entity.Notification{
		{ID: 1, EntityType: entity.EntityTypeClaim, EntityID: 5, Kind: entity.NotificationKindRecordCreated},
		{ID: 2, EntityType: entity.EntityTypeLeave, EntityID: 5, Kind: entity.NotificationKindRecordCreated},
	}

	trail, err := f.svc.Notifications(context.Background(), 5, entity.TenantScope{OrganisationID: 1, BranchID: 2})
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, int64(1), trail[0].ID)

	// The trail is scoped the same way the record itself is
	_, err = f.svc.Notifications(context.Background(), 5, entity.TenantScope{OrganisationID: 99})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestClaimService_DoubleApproveRejected(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(claim)

	_, err := f.svc.Approve(context.Background(), 5, 42, entity.TenantScope{})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), 5, 42, entity.TenantScope{})
	var terr *InvalidStateTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, entity.StatusApproved, terr.Current)

	// Only the first approval persisted and notified
	assert.Len(t, f.claims.updated, 1)
	assert.Len(t, f.notifier.internals, 1)
}

func TestClaimService_RejectRequiresReason(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(claim)

	_, err := f.svc.Reject(context.Background(), 5, "", 42, entity.TenantScope{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.claims.updated)

	got, err := f.svc.Reject(context.Background(), 5, "duplicate submission", 42, entity.TenantScope{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, got.Status)
	assert.Equal(t, "duplicate submission", got.DecisionReason)
}

func TestClaimService_CancelWithdrawsApprovalBeforePersist(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{
			ID: 5, OwnerID: 10, Status: entity.StatusApproved,
			LinkedApprovalID: "approval-7",
		},
	}
	f.seed(claim)

	var updatesAtWithdraw int
	f.approvals.listFn = func(_ context.Context, query port.ApprovalQuery) ([]port.Approval, error) {
		updatesAtWithdraw = len(f.claims.updated)
		return []port.Approval{{ApprovalID: query.ApprovalID, Status: "PENDING"}}, nil
	}

	got, err := f.svc.Cancel(context.Background(), 5, "no longer needed", 10, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCancelledByUser, got.Status)
	require.Len(t, f.approvals.withdrawCalls, 1)
	assert.Equal(t, "approval-7", f.approvals.withdrawCalls[0].ApprovalID)
	// Withdrawal ran before the status write landed
	assert.Equal(t, 0, updatesAtWithdraw)
	require.Len(t, f.claims.updated, 1)
	assert.Equal(t, entity.StatusCancelledByUser, f.claims.updated[0].Status)
}

func TestClaimService_CancelByAdmin(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(claim)

	got, err := f.svc.Cancel(context.Background(), 5, "policy violation", 42, entity.TenantScope{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelledByAdmin, got.Status)
}

func TestClaimService_UpdateOnlyWhilePending(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusApproved},
		Amount:         100,
	}
	f.seed(claim)

	newAmount := 200.0
	_, err := f.svc.Update(context.Background(), 5, UpdateClaimInput{Amount: &newAmount}, entity.TenantScope{})
	var terr *InvalidStateTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Empty(t, f.claims.updated)
}

func TestClaimService_UpdateCriticalFieldReopensApproval(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{
			ID: 5, OwnerID: 10, Status: entity.StatusPending,
			LinkedApprovalID: "approval-old",
		},
		Amount: 100,
	}
	f.seed(claim)

	newAmount := 250.0
	got, err := f.svc.Update(context.Background(), 5, UpdateClaimInput{Amount: &newAmount}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Equal(t, 250.0, got.Amount)
	// Old approval withdrawn, new one opened and linked
	require.Len(t, f.approvals.withdrawCalls, 1)
	assert.Equal(t, "approval-old", f.approvals.withdrawCalls[0].ApprovalID)
	require.Len(t, f.approvals.createCalls, 1)
	assert.Equal(t, "approval-1", got.LinkedApprovalID)
}

func TestClaimService_UpdateNonCriticalKeepsApproval(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{
			ID: 5, OwnerID: 10, Status: entity.StatusPending,
			LinkedApprovalID: "approval-old",
		},
		Amount: 100,
	}
	f.seed(claim)

	title := "Corrected title"
	got, err := f.svc.Update(context.Background(), 5, UpdateClaimInput{Title: &title}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, "Corrected title", got.Title)
	assert.Equal(t, "approval-old", got.LinkedApprovalID)
	assert.Empty(t, f.approvals.withdrawCalls)
	assert.Empty(t, f.approvals.createCalls)
}

func TestClaimService_ScopeIsolation(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, OrganisationID: 1, BranchID: 2, Status: entity.StatusPending},
	}
	f.seed(claim)

	_, err := f.svc.Get(context.Background(), 5, entity.TenantScope{OrganisationID: 99})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)

	got, err := f.svc.Get(context.Background(), 5, entity.TenantScope{OrganisationID: 1, BranchID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}

func TestClaimService_HandleApprovalAction(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(claim)

	evt := event.New(event.TypeApprovalActionPerformed, entity.EntityTypeClaim, 5, map[string]interface{}{
		"action":    event.ActionApprove,
		"action_by": int64(42),
	})
	require.NoError(t, f.svc.HandleApprovalAction(context.Background(), evt))

	assert.Equal(t, entity.StatusApproved, claim.Status)
	require.NotNil(t, claim.ApproverID)
	assert.Equal(t, int64(42), *claim.ApproverID)
}

func TestClaimService_HandleApprovalActionFiltersEntityType(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(claim)

	evt := event.New(event.TypeApprovalActionPerformed, entity.EntityTypeLeave, 5, map[string]interface{}{
		"action":    event.ActionApprove,
		"action_by": int64(42),
	})
	require.NoError(t, f.svc.HandleApprovalAction(context.Background(), evt))
	assert.Equal(t, entity.StatusPending, claim.Status)
}

func TestClaimService_HandleApprovalActionSwallowsErrors(t *testing.T) {
	f := newClaimFixture()
	// No claim seeded: the load fails, the handler logs and returns nil
	evt := event.New(event.TypeApprovalActionPerformed, entity.EntityTypeClaim, 404, map[string]interface{}{
		"action": event.ActionApprove,
	})
	require.NoError(t, f.svc.HandleApprovalAction(context.Background(), evt))
	assert.NotEmpty(t, f.logger.errorCalls)
}

func TestClaimService_HandleApprovalRejectEvent(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(claim)

	evt := event.New(event.TypeApprovalActionPerformed, entity.EntityTypeClaim, 5, map[string]interface{}{
		"action": event.ActionReject,
		"reason": "budget exceeded",
	})
	require.NoError(t, f.svc.HandleApprovalAction(context.Background(), evt))

	assert.Equal(t, entity.StatusRejected, claim.Status)
	assert.Equal(t, "budget exceeded", claim.DecisionReason)
}

func TestClaimService_HandleRequestInfoIsNoOp(t *testing.T) {
	f := newClaimFixture()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(claim)

	evt := event.New(event.TypeApprovalActionPerformed, entity.EntityTypeClaim, 5, map[string]interface{}{
		"action": event.ActionRequestInfo,
	})
	require.NoError(t, f.svc.HandleApprovalAction(context.Background(), evt))

	assert.Equal(t, entity.StatusPending, claim.Status)
	assert.Empty(t, f.claims.updated)
}
