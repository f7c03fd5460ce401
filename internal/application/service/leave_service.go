package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/domain/entity"
	"github.com/rivohq/opsflow/internal/domain/event"
	"github.com/rivohq/opsflow/internal/domain/workflow"
)

// CreateLeaveInput carries the client-supplied fields for a new leave
// request. Status is never taken from the client.
type CreateLeaveInput struct {
	OwnerID   int64     `json:"owner_id"`
	LeaveType string    `json:"leave_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	HalfDay   bool      `json:"half_day"`
	Reason    string    `json:"reason"`
	Priority  string    `json:"priority"`
}

// UpdateLeaveInput is a partial patch applied while a request is PENDING
type UpdateLeaveInput struct {
	LeaveType *string    `json:"leave_type"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	HalfDay   *bool      `json:"half_day"`
	Reason    *string    `json:"reason"`
}

// LeaveService is the workflow orchestrator for leave requests
type LeaveService interface {
	Create(ctx context.Context, input CreateLeaveInput, scope entity.TenantScope) (*entity.LeaveRequest, error)
	Get(ctx context.Context, id int64, scope entity.TenantScope) (*entity.LeaveRequest, error)
	List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.LeaveRequest, error)
	Update(ctx context.Context, id int64, patch UpdateLeaveInput, scope entity.TenantScope) (*entity.LeaveRequest, error)
	Approve(ctx context.Context, id, approverID int64, scope entity.TenantScope) (*entity.LeaveRequest, error)
	Reject(ctx context.Context, id int64, reason string, actorID int64, scope entity.TenantScope) (*entity.LeaveRequest, error)
	Cancel(ctx context.Context, id int64, reason string, actorID int64, scope entity.TenantScope) (*entity.LeaveRequest, error)
	Delete(ctx context.Context, id int64, scope entity.TenantScope) error

	// MarkTaken records that an approved leave was taken, fully or partially
	MarkTaken(ctx context.Context, id int64, partial bool, scope entity.TenantScope) (*entity.LeaveRequest, error)

	// Notifications returns the request's notification trail, newest first
	Notifications(ctx context.Context, id int64, scope entity.TenantScope) ([]*entity.Notification, error)

	// HandleApprovalAction consumes approval.action.performed events for
	// leave records. Consumer faults never propagate back to the dispatcher.
	HandleApprovalAction(ctx context.Context, evt *event.Event) error
}

type leaveServiceImpl struct {
	leaves        port.LeaveRepository
	users         port.UserRepository
	approvals     port.ApprovalClient
	notifier      port.NotificationPort
	notifications port.NotificationRepository
	engine        *TransitionEngine
	settings      Settings
	logger        Logger
}

// NewLeaveService creates a new LeaveService
func NewLeaveService(
	leaves port.LeaveRepository,
	users port.UserRepository,
	approvals port.ApprovalClient,
	notifier port.NotificationPort,
	notifications port.NotificationRepository,
	engine *TransitionEngine,
	settings Settings,
	logger Logger,
) LeaveService {
	return &leaveServiceImpl{
		leaves:        leaves,
		users:         users,
		approvals:     approvals,
		notifier:      notifier,
		notifications: notifications,
		engine:        engine,
		settings:      settings,
		logger:        logger,
	}
}

// Create validates and persists a new leave request, then runs conflict
// detection against the owner's active leave. A conflicting request is
// persisted first and immediately auto-rejected with a system-generated
// reason; approval is never initialized for it.
func (s *leaveServiceImpl) Create(ctx context.Context, input CreateLeaveInput, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	if input.OwnerID == 0 {
		return nil, &ValidationError{Field: "owner_id", Message: "owner is required"}
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, &ValidationError{Field: "start_date", Message: "start and end dates are required"}
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, &ValidationError{Field: "end_date", Message: "end date must not precede start date"}
	}

	owner, err := s.users.GetByID(ctx, input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	if owner == nil {
		return nil, &NotFoundError{Resource: "user", ID: input.OwnerID}
	}

	orgID, branchID := scope.OrganisationID, scope.BranchID
	if scope.IsZero() {
		orgID, branchID = owner.OrganisationID, owner.BranchID
	}

	leaveType := input.LeaveType
	if leaveType == "" {
		leaveType = entity.LeaveTypeAnnual
	}

	now := time.Now()
	leave := &entity.LeaveRequest{
		WorkflowRecord: entity.WorkflowRecord{
			OwnerID:        input.OwnerID,
			OrganisationID: orgID,
			BranchID:       branchID,
			Status:         entity.StatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		LeaveType: leaveType,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		HalfDay:   input.HalfDay,
		Reason:    input.Reason,
	}
	leave.ComputeDuration()

	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, fmt.Errorf("create leave request: %w", err)
	}

	result, err := s.detectConflict(ctx, leave)
	if err != nil {
		// Conflict detection failing open would admit double-booked leave;
		// fail the create instead and let the client retry.
		return nil, fmt.Errorf("conflict detection: %w", err)
	}
	if result.Conflict {
		effects, applyErr := s.engine.Apply(ctx, &leave.WorkflowRecord, ActionReject, nil, result.ConflictReason())
		if applyErr != nil {
			return nil, applyErr
		}
		if err := s.leaves.Update(ctx, leave); err != nil {
			return nil, fmt.Errorf("persist auto-rejection: %w", err)
		}
		s.processEffects(ctx, leave, effects)
		s.logger.Info("Leave auto-rejected on conflict",
			"leave_id", leave.ID,
			"owner_id", leave.OwnerID,
			"conflicts", len(result.Overlapping),
		)
		return leave, nil
	}

	if approvalID, ok := s.initApproval(ctx, leave, input.Priority); ok {
		leave.LinkedApprovalID = approvalID
		if err := s.leaves.Update(ctx, leave); err != nil {
			s.logger.Warn("Failed to persist linked approval id", "leave_id", leave.ID, "error", err)
		}
	}

	s.notifyCreated(ctx, owner, leave)

	s.logger.Info("Leave request created",
		"leave_id", leave.ID,
		"owner_id", leave.OwnerID,
		"duration", leave.Duration,
		"approval_linked", leave.LinkedApprovalID != "",
	)
	return leave, nil
}

// Get retrieves a leave request within the caller's tenant scope
func (s *leaveServiceImpl) Get(ctx context.Context, id int64, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	return s.load(ctx, id, scope)
}

// List retrieves leave requests within scope with pagination
func (s *leaveServiceImpl) List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.LeaveRequest, error) {
	if offset < 0 {
		offset = 0
	}
	return s.leaves.List(ctx, scope, s.settings.PageSize(limit), offset)
}

// Update applies a partial patch to a PENDING request. Changing dates, type
// or half-day flag recomputes the duration, re-runs conflict detection, and
// re-opens approval while the request stays PENDING.
func (s *leaveServiceImpl) Update(ctx context.Context, id int64, patch UpdateLeaveInput, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	leave, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if leave.Status != entity.StatusPending {
		return nil, &InvalidStateTransitionError{Current: leave.Status, Attempted: string(ActionModify)}
	}

	critical := false
	if patch.StartDate != nil && !patch.StartDate.Equal(leave.StartDate) {
		leave.StartDate = *patch.StartDate
		critical = true
	}
	if patch.EndDate != nil && !patch.EndDate.Equal(leave.EndDate) {
		leave.EndDate = *patch.EndDate
		critical = true
	}
	if patch.HalfDay != nil && *patch.HalfDay != leave.HalfDay {
		leave.HalfDay = *patch.HalfDay
		critical = true
	}
	if patch.LeaveType != nil && *patch.LeaveType != leave.LeaveType {
		leave.LeaveType = *patch.LeaveType
		critical = true
	}
	if patch.Reason != nil {
		leave.Reason = *patch.Reason
	}

	if leave.EndDate.Before(leave.StartDate) {
		return nil, &ValidationError{Field: "end_date", Message: "end date must not precede start date"}
	}

	if critical {
		leave.ComputeDuration()

		result, err := s.detectConflict(ctx, leave)
		if err != nil {
			return nil, fmt.Errorf("conflict detection: %w", err)
		}
		if result.Conflict {
			return nil, &ValidationError{Field: "start_date", Message: result.ConflictReason()}
		}
	}

	leave.UpdatedAt = time.Now()
	if err := s.leaves.Update(ctx, leave); err != nil {
		return nil, fmt.Errorf("update leave request: %w", err)
	}

	if critical {
		s.reopenApproval(ctx, leave)
	}

	return leave, nil
}

// Approve transitions a PENDING request to APPROVED. The transition fails
// when the request now overlaps leave approved since it was filed.
func (s *leaveServiceImpl) Approve(ctx context.Context, id, approverID int64, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	leave, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	approver, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		return nil, fmt.Errorf("resolve approver: %w", err)
	}
	if approver == nil {
		return nil, &NotFoundError{Resource: "user", ID: approverID}
	}

	result, err := s.detectConflict(ctx, leave)
	if err != nil {
		return nil, fmt.Errorf("conflict detection: %w", err)
	}
	if result.Conflict {
		return nil, &ValidationError{Field: "start_date", Message: result.ConflictReason()}
	}

	effects, err := s.engine.Apply(ctx, &leave.WorkflowRecord, ActionApprove, approver, "")
	if err != nil {
		return nil, err
	}
	if err := s.leaves.Update(ctx, leave); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}

	s.processEffects(ctx, leave, effects)
	return leave, nil
}

// Reject transitions a PENDING request to REJECTED with a mandatory reason
func (s *leaveServiceImpl) Reject(ctx context.Context, id int64, reason string, actorID int64, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	leave, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	effects, err := s.engine.Apply(ctx, &leave.WorkflowRecord, ActionReject, actor, reason)
	if err != nil {
		return nil, err
	}
	if err := s.leaves.Update(ctx, leave); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}

	s.processEffects(ctx, leave, effects)
	return leave, nil
}

// Cancel transitions a PENDING or APPROVED request to the cancellation
// sub-kind matching the actor. The linked approval is withdrawn before the
// new status is persisted.
func (s *leaveServiceImpl) Cancel(ctx context.Context, id int64, reason string, actorID int64, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	leave, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	effects, err := s.engine.Apply(ctx, &leave.WorkflowRecord, ActionCancel, actor, reason)
	if err != nil {
		return nil, err
	}

	s.withdrawApproval(ctx, &leave.WorkflowRecord, reason)
	if err := s.leaves.Update(ctx, leave); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}

	for _, ef := range effects {
		if ef.Kind != EffectWithdrawApproval {
			s.processEffect(ctx, leave, ef)
		}
	}
	return leave, nil
}

// Delete soft-deletes a leave request
func (s *leaveServiceImpl) Delete(ctx context.Context, id int64, scope entity.TenantScope) error {
	leave, err := s.load(ctx, id, scope)
	if err != nil {
		return err
	}
	return s.leaves.SetDeleted(ctx, leave.ID, scope, true)
}

// Notifications returns the request's notification trail
func (s *leaveServiceImpl) Notifications(ctx context.Context, id int64, scope entity.TenantScope) ([]*entity.Notification, error) {
	leave, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return s.notifications.GetByEntity(ctx, entity.EntityTypeLeave, leave.ID)
}

// MarkTaken moves an APPROVED request to TAKEN, or PARTIALLY_TAKEN when
// partial. A PARTIALLY_TAKEN request can still be completed to TAKEN.
func (s *leaveServiceImpl) MarkTaken(ctx context.Context, id int64, partial bool, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	leave, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	trigger := workflow.TriggerTake
	if partial {
		trigger = workflow.TriggerTakePart
	}

	machine := workflow.MachineFor(workflow.State(leave.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, &InvalidStateTransitionError{Current: leave.Status, Attempted: string(trigger)}
	}

	leave.Status = machine.State().String()
	leave.UpdatedAt = time.Now()
	if err := s.leaves.Update(ctx, leave); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}

	s.logger.Info("Leave marked taken", "leave_id", leave.ID, "status", leave.Status)
	return leave, nil
}

// HandleApprovalAction consumes the shared approval event stream
func (s *leaveServiceImpl) HandleApprovalAction(ctx context.Context, evt *event.Event) error {
	if evt.EntityType != entity.EntityTypeLeave {
		return nil
	}

	if err := s.applyApprovalAction(ctx, evt); err != nil {
		s.logger.Error("Approval action handling failed",
			"event_id", evt.ID,
			"leave_id", evt.EntityID,
			"error", err,
		)
	}
	return nil
}

func (s *leaveServiceImpl) applyApprovalAction(ctx context.Context, evt *event.Event) error {
	leave, err := s.leaves.GetByID(ctx, evt.EntityID, entity.TenantScope{})
	if err != nil {
		return fmt.Errorf("load leave request: %w", err)
	}
	if leave == nil {
		return &NotFoundError{Resource: "leave request", ID: evt.EntityID}
	}

	reason := evt.GetPayloadString("reason")
	if reason == "" {
		reason = evt.GetPayloadString("comments")
	}

	var action Action
	switch evt.GetPayloadString("action") {
	case event.ActionApprove:
		action = ActionApprove
	case event.ActionReject:
		action = ActionReject
		if reason == "" {
			reason = "rejected via approval workflow"
		}
	case event.ActionCancel, event.ActionWithdraw:
		action = ActionCancel
		if reason == "" {
			reason = "withdrawn via approval workflow"
		}
	case event.ActionRequestInfo:
		s.logger.Info("Approval requested additional information", "leave_id", leave.ID)
		return nil
	default:
		s.logger.Info("Ignoring unhandled approval action",
			"action", evt.GetPayloadString("action"),
			"leave_id", leave.ID,
		)
		return nil
	}

	var actor *entity.User
	if actionBy := evt.GetPayloadInt("action_by"); actionBy != 0 {
		if actor, err = s.users.GetByID(ctx, actionBy); err != nil {
			return fmt.Errorf("resolve actor: %w", err)
		}
	}
	if action == ActionApprove && actor == nil {
		return &ValidationError{Field: "action_by", Message: "approver could not be resolved"}
	}

	if action == ActionApprove {
		result, err := s.detectConflict(ctx, leave)
		if err != nil {
			return fmt.Errorf("conflict detection: %w", err)
		}
		if result.Conflict {
			return &ValidationError{Field: "start_date", Message: result.ConflictReason()}
		}
	}

	effects, err := s.engine.Apply(ctx, &leave.WorkflowRecord, action, actor, reason)
	if err != nil {
		return err
	}
	if err := s.leaves.Update(ctx, leave); err != nil {
		return fmt.Errorf("persist transition: %w", err)
	}

	s.processEffects(ctx, leave, effects)
	return nil
}

func (s *leaveServiceImpl) load(ctx context.Context, id int64, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	leave, err := s.leaves.GetByID(ctx, id, scope)
	if err != nil {
		return nil, fmt.Errorf("load leave request: %w", err)
	}
	if leave == nil || leave.IsDeleted {
		return nil, &NotFoundError{Resource: "leave request", ID: id}
	}
	return leave, nil
}

func (s *leaveServiceImpl) resolveActor(ctx context.Context, actorID int64) (*entity.User, error) {
	if actorID == 0 {
		return nil, nil
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	if actor == nil {
		return nil, &NotFoundError{Resource: "user", ID: actorID}
	}
	return actor, nil
}

// detectConflict loads the owner's active leave and checks the candidate's
// range against it.
func (s *leaveServiceImpl) detectConflict(ctx context.Context, leave *entity.LeaveRequest) (ConflictResult, error) {
	statuses := make([]string, 0, len(workflow.ActiveStates()))
	for _, st := range workflow.ActiveStates() {
		statuses = append(statuses, st.String())
	}

	existing, err := s.leaves.FindOverlapping(ctx,
		leave.OwnerID, leave.StartDate, leave.EndDate, statuses)
	if err != nil {
		return ConflictResult{}, err
	}
	return DetectConflict(leave, existing), nil
}

func (s *leaveServiceImpl) initApproval(ctx context.Context, leave *entity.LeaveRequest, priority string) (string, bool) {
	if priority == "" {
		priority = s.settings.DefaultPriority
	}

	approvalID, err := s.approvals.CreateApprovalRequest(ctx, port.CreateApprovalRequest{
		Title:       fmt.Sprintf("%s leave %s to %s", leave.LeaveType, leave.StartDate.Format("2006-01-02"), leave.EndDate.Format("2006-01-02")),
		Description: leave.Reason,
		Type:        "LEAVE_APPROVAL",
		Priority:    priority,
		FlowType:    s.settings.ApprovalFlowType,
		EntityType:  entity.EntityTypeLeave,
		EntityID:    leave.ID,
		Deadline:    time.Now().Add(s.settings.DeadlineFor(priority)),
		RequesterID: leave.OwnerID,
		Metadata: map[string]string{
			"leave_type": leave.LeaveType,
			"duration":   fmt.Sprintf("%.1f", leave.Duration),
		},
	})
	if err != nil {
		s.logger.Warn("Approval initialization failed",
			"leave_id", leave.ID,
			"error", err,
		)
		return "", false
	}
	return approvalID, true
}

func (s *leaveServiceImpl) reopenApproval(ctx context.Context, leave *entity.LeaveRequest) {
	s.withdrawApproval(ctx, &leave.WorkflowRecord, "superseded by modification")

	if approvalID, ok := s.initApproval(ctx, leave, s.settings.DefaultPriority); ok {
		leave.LinkedApprovalID = approvalID
		if err := s.leaves.Update(ctx, leave); err != nil {
			s.logger.Warn("Failed to persist re-opened approval id", "leave_id", leave.ID, "error", err)
		}
	}
}

func (s *leaveServiceImpl) withdrawApproval(ctx context.Context, rec *entity.WorkflowRecord, reason string) {
	if rec.LinkedApprovalID == "" {
		return
	}

	active, err := s.approvals.ListActiveApprovals(ctx, port.ApprovalQuery{
		EntityType: entity.EntityTypeLeave,
		EntityID:   rec.ID,
		ApprovalID: rec.LinkedApprovalID,
		Statuses:   approvalActiveStatuses,
	})
	if err != nil {
		s.logger.Warn("Failed to list active approvals", "record_id", rec.ID, "error", err)
		return
	}

	for _, approval := range active {
		if err := s.approvals.WithdrawApprovalRequest(ctx, port.WithdrawApprovalRequest{
			ApprovalID: approval.ApprovalID,
			Reason:     reason,
			Comments:   "withdrawn by leave workflow",
		}); err != nil {
			s.logger.Warn("Failed to withdraw approval",
				"record_id", rec.ID,
				"approval_id", approval.ApprovalID,
				"error", err,
			)
		}
	}
}

func (s *leaveServiceImpl) notifyCreated(ctx context.Context, owner *entity.User, leave *entity.LeaveRequest) {
	title := "New leave request"
	message := fmt.Sprintf("Leave request #%d (%s, %.1f days) was submitted and is awaiting approval.",
		leave.ID, leave.LeaveType, leave.Duration)
	s.emit(ctx, leave, owner, entity.NotificationKindRecordCreated, title, message)
}

func (s *leaveServiceImpl) processEffects(ctx context.Context, leave *entity.LeaveRequest, effects []Effect) {
	for _, ef := range effects {
		s.processEffect(ctx, leave, ef)
	}
}

func (s *leaveServiceImpl) processEffect(ctx context.Context, leave *entity.LeaveRequest, ef Effect) {
	switch ef.Kind {
	case EffectWithdrawApproval:
		s.withdrawApproval(ctx, &leave.WorkflowRecord, ef.Reason)

	case EffectNotifyApproval:
		s.notifyDecision(ctx, leave, entity.NotificationKindRecordApproved,
			"Leave approved",
			fmt.Sprintf("Leave request #%d was approved.", leave.ID))

	case EffectNotifyRejection:
		s.notifyDecision(ctx, leave, entity.NotificationKindRecordRejected,
			"Leave rejected",
			fmt.Sprintf("Leave request #%d was rejected: %s", leave.ID, ef.Reason))

	case EffectNotifyCancellation:
		s.notifyDecision(ctx, leave, entity.NotificationKindRecordCancelled,
			"Leave cancelled",
			fmt.Sprintf("Leave request #%d was cancelled: %s", leave.ID, ef.Reason))
	}
}

func (s *leaveServiceImpl) notifyDecision(ctx context.Context, leave *entity.LeaveRequest, kind, title, message string) {
	owner, err := s.users.GetByID(ctx, leave.OwnerID)
	if err != nil || owner == nil {
		s.logger.Warn("Notification owner lookup failed", "leave_id", leave.ID, "owner_id", leave.OwnerID, "error", err)
	}
	s.emit(ctx, leave, owner, kind, title, message)
}

// emit fans the notification out to the owner and the tenant's admins,
// fire-and-forget.
func (s *leaveServiceImpl) emit(ctx context.Context, leave *entity.LeaveRequest, owner *entity.User, kind, title, message string) {
	admins, err := s.users.ListAdmins(ctx, entity.TenantScope{
		OrganisationID: leave.OrganisationID,
		BranchID:       leave.BranchID,
	})
	if err != nil {
		s.logger.Warn("Admin recipient lookup failed", "leave_id", leave.ID, "error", err)
	}
	emails, pushIDs := collectRecipients(owner, admins)

	if err := s.notifier.SendEmail(ctx, kind, emails, map[string]interface{}{
		"leave_id":   leave.ID,
		"status":     leave.Status,
		"leave_type": leave.LeaveType,
		"start_date": leave.StartDate.Format("2006-01-02"),
		"end_date":   leave.EndDate.Format("2006-01-02"),
	}); err != nil {
		s.logger.Warn("Email notification failed", "leave_id", leave.ID, "error", err)
	}

	n := &entity.Notification{
		EntityType: entity.EntityTypeLeave,
		EntityID:   leave.ID,
		Kind:       kind,
		Title:      title,
		Message:    message,
		Status:     entity.NotificationStatusPending,
		OwnerID:    leave.OwnerID,
	}
	if err := s.notifier.SendInternal(ctx, n, []string{entity.RoleAdmin}); err != nil {
		s.logger.Warn("Internal notification failed", "leave_id", leave.ID, "error", err)
	}

	if err := s.notifier.SendPush(ctx, kind, pushIDs, map[string]interface{}{
		"leave_id": leave.ID,
		"status":   leave.Status,
	}, s.settings.DefaultPriority); err != nil {
		s.logger.Warn("Push notification failed", "leave_id", leave.ID, "error", err)
	}
}
