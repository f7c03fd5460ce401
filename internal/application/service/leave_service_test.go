package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivohq/opsflow/internal/domain/entity"
	"github.com/rivohq/opsflow/internal/domain/event"
)

type leaveFixture struct {
	leaves        *mockLeaveRepo
	users         *mockUserRepo
	approvals     *mockApprovalClient
	notifier      *mockNotifier
	notifications *mockNotificationRepo
	logger        *mockLogger
	svc           LeaveService
}

func newLeaveFixture() *leaveFixture {
	f := &leaveFixture{
		leaves: &mockLeaveRepo{},
		users: &mockUserRepo{users: map[int64]*entity.User{
			10: {ID: 10, OrganisationID: 1, BranchID: 2, Email: "owner@example.com", Role: entity.RoleEmployee},
			42: {ID: 42, OrganisationID: 1, BranchID: 2, Email: "admin@example.com", Role: entity.RoleAdmin},
		}},
		approvals:     &mockApprovalClient{},
		notifier:      &mockNotifier{},
		notifications: &mockNotificationRepo{},
		logger:        &mockLogger{},
	}
	f.svc = NewLeaveService(
		f.leaves, f.users, f.approvals, f.notifier, f.notifications,
		NewTransitionEngine(nil, f.logger),
		DefaultSettings(), f.logger,
	)
	return f
}

func (f *leaveFixture) seed(leave *entity.LeaveRequest) {
	f.leaves.getByIDFn = func(_ context.Context, id int64, scope entity.TenantScope) (*entity.LeaveRequest, error) {
		if id != leave.ID || !leave.InScope(scope) {
			return nil, nil
		}
		return leave, nil
	}
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestLeaveService_Create(t *testing.T) {
	f := newLeaveFixture()

	leave, err := f.svc.Create(context.Background(), CreateLeaveInput{
		OwnerID:   10,
		LeaveType: entity.LeaveTypeAnnual,
		StartDate: day("2024-07-15"), // Monday
		EndDate:   day("2024-07-19"), // Friday
		Reason:    "summer holiday",
	}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, leave.Status)
	assert.Equal(t, 5.0, leave.Duration)
	assert.Equal(t, "approval-1", leave.LinkedApprovalID)
	require.Len(t, f.approvals.createCalls, 1)
	assert.Equal(t, entity.EntityTypeLeave, f.approvals.createCalls[0].EntityType)
	assert.Len(t, f.notifier.internals, 1)
}

func TestLeaveService_CreateHalfDay(t *testing.T) {
	f := newLeaveFixture()

	leave, err := f.svc.Create(context.Background(), CreateLeaveInput{
		OwnerID:   10,
		StartDate: day("2024-07-15"),
		EndDate:   day("2024-07-15"),
		HalfDay:   true,
	}, entity.TenantScope{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, leave.Duration)
}

func TestLeaveService_CreateValidation(t *testing.T) {
	f := newLeaveFixture()

	_, err := f.svc.Create(context.Background(), CreateLeaveInput{
		OwnerID:   10,
		StartDate: day("2024-07-19"),
		EndDate:   day("2024-07-15"),
	}, entity.TenantScope{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end_date", verr.Field)
	assert.Empty(t, f.leaves.created)
}

func TestLeaveService_CreateConflictAutoRejects(t *testing.T) {
	f := newLeaveFixture()
	existing := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 1, OwnerID: 10, Status: entity.StatusApproved},
		StartDate:      day("2024-07-15"),
		EndDate:        day("2024-07-20"),
	}
	f.leaves.findOverlappingFn = func(_ context.Context, ownerID int64, start, end time.Time, _ []string) ([]*entity.LeaveRequest, error) {
		if existing.Overlaps(start, end) {
			return []*entity.LeaveRequest{existing}, nil
		}
		return nil, nil
	}

	// Starts the day the existing leave ends: boundary touch conflicts
	leave, err := f.svc.Create(context.Background(), CreateLeaveInput{
		OwnerID:   10,
		StartDate: day("2024-07-20"),
		EndDate:   day("2024-07-25"),
	}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, leave.Status)
	assert.Contains(t, leave.DecisionReason, "overlaps existing active leave")
	assert.Contains(t, leave.DecisionReason, "1")
	require.NotNil(t, leave.RejectedAt)
	// A system auto-reject carries no actor
	assert.Nil(t, leave.ApproverID)

	// No approval opened for a dead-on-arrival request
	assert.Empty(t, f.approvals.createCalls)
	// The rejection is still notified
	assert.Len(t, f.notifier.internals, 1)
	assert.Equal(t, entity.NotificationKindRecordRejected, f.notifier.internals[0].Kind)
}

func TestLeaveService_CreateAdjacentDoesNotConflict(t *testing.T) {
	f := newLeaveFixture()
	existing := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 1, OwnerID: 10, Status: entity.StatusApproved},
		StartDate:      day("2024-07-15"),
		EndDate:        day("2024-07-20"),
	}
	f.leaves.findOverlappingFn = func(_ context.Context, _ int64, start, end time.Time, _ []string) ([]*entity.LeaveRequest, error) {
		if existing.Overlaps(start, end) {
			return []*entity.LeaveRequest{existing}, nil
		}
		return nil, nil
	}

	leave, err := f.svc.Create(context.Background(), CreateLeaveInput{
		OwnerID:   10,
		StartDate: day("2024-07-21"),
		EndDate:   day("2024-07-25"),
	}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, leave.Status)
	assert.Len(t, f.approvals.createCalls, 1)
}

func TestLeaveService_PendingRequestsDoNotBlockEachOther(t *testing.T) {
	f := newLeaveFixture()
	// Repository filters by active statuses; a PENDING sibling never comes back
	f.leaves.findOverlappingFn = func(_ context.Context, _ int64, _, _ time.Time, statuses []string) ([]*entity.LeaveRequest, error) {
		assert.NotContains(t, statuses, entity.StatusPending)
		return nil, nil
	}

	leave, err := f.svc.Create(context.Background(), CreateLeaveInput{
		OwnerID:   10,
		StartDate: day("2024-07-15"),
		EndDate:   day("2024-07-19"),
	}, entity.TenantScope{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, leave.Status)
}

func TestLeaveService_Approve(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
		StartDate:      day("2024-07-15"),
		EndDate:        day("2024-07-19"),
	}
	f.seed(leave)

	got, err := f.svc.Approve(context.Background(), 5, 42, entity.TenantScope{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Len(t, f.notifier.internals, 1)
}

func TestLeaveService_ApproveFansOutToAdmins(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, OrganisationID: 1, BranchID: 2, Status: entity.StatusPending},
		StartDate:      day("2024-07-15"),
		EndDate:        day("2024-07-19"),
	}
	f.seed(leave)

	_, err := f.svc.Approve(context.Background(), 5, 42, entity.TenantScope{OrganisationID: 1, BranchID: 2})
	require.NoError(t, err)

	require.Len(t, f.users.adminScopes, 1)
	assert.Equal(t, entity.TenantScope{OrganisationID: 1, BranchID: 2}, f.users.adminScopes[0])
	require.Len(t, f.notifier.emailRecipients, 1)
	assert.ElementsMatch(t, []string{"owner@example.com", "admin@example.com"}, f.notifier.emailRecipients[0])
	require.Len(t, f.notifier.pushRecipients, 1)
	assert.ElementsMatch(t, []int64{10, 42}, f.notifier.pushRecipients[0])
}

func TestLeaveService_NotificationTrail(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, OrganisationID: 1, BranchID: 2, Status: entity.StatusApproved},
	}
	f.seed(leave)
	f.notifications.rows = []*entity.Notification{
		{ID: 1, EntityType: entity.EntityTypeLeave, EntityID: 5, Kind: entity.NotificationKindRecordApproved},
	}

	trail, err := f.svc.Notifications(context.Background(), 5, entity.TenantScope{OrganisationID: 1, BranchID: 2})
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, entity.NotificationKindRecordApproved, trail[0].Kind)

	_, err = f.svc.Notifications(context.Background(), 5, entity.TenantScope{OrganisationID: 99})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestLeaveService_ApproveBlockedByNewConflict(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
		StartDate:      day("2024-07-15"),
		EndDate:        day("2024-07-19"),
	}
	f.seed(leave)

	// Another request was approved for the same dates after this one was filed
	f.leaves.findOverlappingFn = func(context.Context, int64, time.Time, time.Time, []string) ([]*entity.LeaveRequest, error) {
		return []*entity.LeaveRequest{{
			WorkflowRecord: entity.WorkflowRecord{ID: 6, OwnerID: 10, Status: entity.StatusApproved},
			StartDate:      day("2024-07-17"),
			EndDate:        day("2024-07-18"),
		}}, nil
	}

	_, err := f.svc.Approve(context.Background(), 5, 42, entity.TenantScope{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, entity.StatusPending, leave.Status)
	assert.Empty(t, f.leaves.updated)
}

func TestLeaveService_UpdateDatesRecomputesAndReopens(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{
			ID: 5, OwnerID: 10, Status: entity.StatusPending,
			LinkedApprovalID: "approval-old",
		},
		StartDate: day("2024-07-15"),
		EndDate:   day("2024-07-19"),
		Duration:  5,
	}
	f.seed(leave)

	newEnd := day("2024-07-17")
	got, err := f.svc.Update(context.Background(), 5, UpdateLeaveInput{EndDate: &newEnd}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Equal(t, 3.0, got.Duration)
	require.Len(t, f.approvals.withdrawCalls, 1)
	assert.Equal(t, "approval-old", f.approvals.withdrawCalls[0].ApprovalID)
	assert.Equal(t, "approval-1", got.LinkedApprovalID)
}

func TestLeaveService_UpdateReasonOnlyKeepsApproval(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{
			ID: 5, OwnerID: 10, Status: entity.StatusPending,
			LinkedApprovalID: "approval-old",
		},
		StartDate: day("2024-07-15"),
		EndDate:   day("2024-07-19"),
		Duration:  5,
	}
	f.seed(leave)

	reason := "updated reason"
	got, err := f.svc.Update(context.Background(), 5, UpdateLeaveInput{Reason: &reason}, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, 5.0, got.Duration)
	assert.Equal(t, "approval-old", got.LinkedApprovalID)
	assert.Empty(t, f.approvals.withdrawCalls)
	assert.Empty(t, f.approvals.createCalls)
}

func TestLeaveService_UpdateIntoConflictRejected(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
		StartDate:      day("2024-07-22"),
		EndDate:        day("2024-07-26"),
	}
	f.seed(leave)

	f.leaves.findOverlappingFn = func(context.Context, int64, time.Time, time.Time, []string) ([]*entity.LeaveRequest, error) {
		return []*entity.LeaveRequest{{
			WorkflowRecord: entity.WorkflowRecord{ID: 6, OwnerID: 10, Status: entity.StatusApproved},
			StartDate:      day("2024-07-15"),
			EndDate:        day("2024-07-19"),
		}}, nil
	}

	newStart := day("2024-07-17")
	_, err := f.svc.Update(context.Background(), 5, UpdateLeaveInput{StartDate: &newStart}, entity.TenantScope{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.leaves.updated)
}

func TestLeaveService_UpdateOnlyWhilePending(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusApproved},
		StartDate:      day("2024-07-15"),
		EndDate:        day("2024-07-19"),
	}
	f.seed(leave)

	newEnd := day("2024-07-17")
	_, err := f.svc.Update(context.Background(), 5, UpdateLeaveInput{EndDate: &newEnd}, entity.TenantScope{})
	var terr *InvalidStateTransitionError
	require.ErrorAs(t, err, &terr)
}

func TestLeaveService_CancelApprovedLeave(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{
			ID: 5, OwnerID: 10, Status: entity.StatusApproved,
			LinkedApprovalID: "approval-7",
		},
		StartDate: day("2024-07-15"),
		EndDate:   day("2024-07-19"),
	}
	f.seed(leave)

	got, err := f.svc.Cancel(context.Background(), 5, "plans changed", 10, entity.TenantScope{})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCancelledByUser, got.Status)
	require.Len(t, f.approvals.withdrawCalls, 1)
	require.Len(t, f.leaves.updated, 1)
	assert.Equal(t, entity.StatusCancelledByUser, f.leaves.updated[0].Status)
}

func TestLeaveService_MarkTaken(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusApproved},
	}
	f.seed(leave)

	got, err := f.svc.MarkTaken(context.Background(), 5, true, entity.TenantScope{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPartiallyTaken, got.Status)

	got, err = f.svc.MarkTaken(context.Background(), 5, false, entity.TenantScope{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusTaken, got.Status)

	// TAKEN is terminal
	_, err = f.svc.MarkTaken(context.Background(), 5, false, entity.TenantScope{})
	var terr *InvalidStateTransitionError
	require.ErrorAs(t, err, &terr)
}

func TestLeaveService_MarkTakenRequiresApproved(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(leave)

	_, err := f.svc.MarkTaken(context.Background(), 5, false, entity.TenantScope{})
	var terr *InvalidStateTransitionError
	require.ErrorAs(t, err, &terr)
}

func TestLeaveService_HandleApprovalAction(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
		StartDate:      day("2024-07-15"),
		EndDate:        day("2024-07-19"),
	}
	f.seed(leave)

	evt := event.New(event.TypeApprovalActionPerformed, entity.EntityTypeLeave, 5, map[string]interface{}{
		"action":    event.ActionApprove,
		"action_by": int64(42),
	})
	require.NoError(t, f.svc.HandleApprovalAction(context.Background(), evt))
	assert.Equal(t, entity.StatusApproved, leave.Status)
}

func TestLeaveService_HandleApprovalActionFiltersEntityType(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(leave)

	evt := event.New(event.TypeApprovalActionPerformed, entity.EntityTypeClaim, 5, map[string]interface{}{
		"action":    event.ActionApprove,
		"action_by": int64(42),
	})
	require.NoError(t, f.svc.HandleApprovalAction(context.Background(), evt))
	assert.Equal(t, entity.StatusPending, leave.Status)
}

func TestLeaveService_HandleWithdrawEvent(t *testing.T) {
	f := newLeaveFixture()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{ID: 5, OwnerID: 10, Status: entity.StatusPending},
	}
	f.seed(leave)

	evt := event.New(event.TypeApprovalActionPerformed, entity.EntityTypeLeave, 5, map[string]interface{}{
		"action":    event.ActionWithdraw,
		"action_by": int64(10),
	})
	require.NoError(t, f.svc.HandleApprovalAction(context.Background(), evt))

	// Withdrawal by the owner maps to the user cancellation sub-kind
	assert.Equal(t, entity.StatusCancelledByUser, leave.Status)
}
