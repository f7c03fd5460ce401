package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/domain/entity"
	"github.com/rivohq/opsflow/internal/domain/event"
)

// CreateClaimInput carries the client-supplied fields for a new claim.
// Any client-supplied status is ignored: claims always start PENDING.
type CreateClaimInput struct {
	OwnerID     int64   `json:"owner_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Priority    string  `json:"priority"`
}

// UpdateClaimInput is a partial patch applied while a claim is PENDING
type UpdateClaimInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
}

// ClaimService is the workflow orchestrator for reimbursement claims
type ClaimService interface {
	Create(ctx context.Context, input CreateClaimInput, scope entity.TenantScope) (*entity.Claim, error)
	Get(ctx context.Context, id int64, scope entity.TenantScope) (*entity.Claim, error)
	List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.Claim, error)
	Update(ctx context.Context, id int64, patch UpdateClaimInput, scope entity.TenantScope) (*entity.Claim, error)
	Approve(ctx context.Context, id, approverID int64, scope entity.TenantScope) (*entity.Claim, error)
	Reject(ctx context.Context, id int64, reason string, actorID int64, scope entity.TenantScope) (*entity.Claim, error)
	Cancel(ctx context.Context, id int64, reason string, actorID int64, scope entity.TenantScope) (*entity.Claim, error)
	Delete(ctx context.Context, id int64, scope entity.TenantScope) error

	// Notifications returns the claim's notification trail, newest first
	Notifications(ctx context.Context, id int64, scope entity.TenantScope) ([]*entity.Notification, error)

	// HandleApprovalAction consumes approval.action.performed events. It
	// never returns an error for its own failures: the collaborator's event
	// pipeline must not break on a consumer fault.
	HandleApprovalAction(ctx context.Context, evt *event.Event) error
}

type claimServiceImpl struct {
	claims        port.ClaimRepository
	users         port.UserRepository
	approvals     port.ApprovalClient
	notifier      port.NotificationPort
	notifications port.NotificationRepository
	rewards       port.RewardsClient
	engine        *TransitionEngine
	settings      Settings
	logger        Logger
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claims port.ClaimRepository,
	users port.UserRepository,
	approvals port.ApprovalClient,
	notifier port.NotificationPort,
	notifications port.NotificationRepository,
	rewards port.RewardsClient,
	engine *TransitionEngine,
	settings Settings,
	logger Logger,
) ClaimService {
	return &claimServiceImpl{
		claims:        claims,
		users:         users,
		approvals:     approvals,
		notifier:      notifier,
		notifications: notifications,
		rewards:       rewards,
		engine:        engine,
		settings:      settings,
		logger:        logger,
	}
}

// Create validates and persists a new claim, then runs the best-effort side
// effects: approval initialization, reward points, creation notifications.
// None of the side effects can fail the creation.
func (s *claimServiceImpl) Create(ctx context.Context, input CreateClaimInput, scope entity.TenantScope) (*entity.Claim, error) {
	if input.OwnerID == 0 {
		return nil, &ValidationError{Field: "owner_id", Message: "owner is required"}
	}
	if input.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "amount must be positive"}
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

	currency := input.Currency
	if currency == "" {
		currency = s.settings.DefaultCurrency
	}
	category := input.Category
	if category == "" {
		category = entity.ClaimCategoryGeneral
	}

	now := time.Now()
	claim := &entity.Claim{
		WorkflowRecord: entity.WorkflowRecord{
			OwnerID:        input.OwnerID,
			OrganisationID: orgID,
			BranchID:       branchID,
			Status:         entity.StatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		Title:       input.Title,
		Description: input.Description,
		Category:    category,
		Amount:      input.Amount,
		Currency:    currency,
	}

	if err := s.claims.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("create claim: %w", err)
	}

	if approvalID, ok := s.initApproval(ctx, claim, input.Priority); ok {
		claim.LinkedApprovalID = approvalID
		if err := s.claims.Update(ctx, claim); err != nil {
			s.logger.Warn("Failed to persist linked approval id", "claim_id", claim.ID, "error", err)
		}
	}

	s.awardPoints(ctx, claim)
	s.notifyCreated(ctx, owner, claim)

	s.logger.Info("Claim created",
		"claim_id", claim.ID,
		"owner_id", claim.OwnerID,
		"amount", claim.Amount,
		"approval_linked", claim.LinkedApprovalID != "",
	)
	return claim, nil
}

// Get retrieves a claim within the caller's tenant scope
func (s *claimServiceImpl) Get(ctx context.Context, id int64, scope entity.TenantScope) (*entity.Claim, error) {
	return s.load(ctx, id, scope)
}

// List retrieves claims within scope with pagination
func (s *claimServiceImpl) List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.Claim, error) {
	if offset < 0 {
		offset = 0
	}
	return s.claims.List(ctx, scope, s.settings.PageSize(limit), offset)
}

// Update applies a partial patch to a PENDING claim. Changing amount or
// category re-opens approval: the outstanding request is withdrawn and a
// fresh one initialized while the claim stays PENDING.
func (s *claimServiceImpl) Update(ctx context.Context, id int64, patch UpdateClaimInput, scope entity.TenantScope) (*entity.Claim, error) {
	claim, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if claim.Status != entity.StatusPending {
		return nil, &InvalidStateTransitionError{Current: claim.Status, Attempted: string(ActionModify)}
	}

	critical := false
	if patch.Amount != nil {
		if *patch.Amount <= 0 {
			return nil, &ValidationError{Field: "amount", Message: "amount must be positive"}
		}
		if *patch.Amount != claim.Amount {
			claim.Amount = *patch.Amount
			critical = true
		}
	}
	if patch.Category != nil && *patch.Category != claim.Category {
		claim.Category = *patch.Category
		critical = true
	}
	if patch.Title != nil {
		claim.Title = *patch.Title
	}
	if patch.Description != nil {
		claim.Description = *patch.Description
	}

	claim.UpdatedAt = time.Now()
	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, fmt.Errorf("update claim: %w", err)
	}

	if critical {
		s.reopenApproval(ctx, claim)
	}

	return claim, nil
}

// Approve transitions a PENDING claim to APPROVED
func (s *claimServiceImpl) Approve(ctx context.Context, id, approverID int64, scope entity.TenantScope) (*entity.Claim, error) {
	claim, err := s.load(ctx, id, scope)
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

	effects, err := s.engine.Apply(ctx, &claim.WorkflowRecord, ActionApprove, approver, "")
	if err != nil {
		return nil, err
	}
	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}

	s.processEffects(ctx, claim, effects)
	return claim, nil
}

// Reject transitions a PENDING claim to REJECTED with a mandatory reason
func (s *claimServiceImpl) Reject(ctx context.Context, id int64, reason string, actorID int64, scope entity.TenantScope) (*entity.Claim, error) {
	claim, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	effects, err := s.engine.Apply(ctx, &claim.WorkflowRecord, ActionReject, actor, reason)
	if err != nil {
		return nil, err
	}
	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}

	s.processEffects(ctx, claim, effects)
	return claim, nil
}

// Cancel transitions a PENDING or APPROVED claim to the cancellation
// sub-kind matching the actor. Any still-active linked approval request is
// withdrawn before the new status is persisted.
func (s *claimServiceImpl) Cancel(ctx context.Context, id int64, reason string, actorID int64, scope entity.TenantScope) (*entity.Claim, error) {
	claim, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	effects, err := s.engine.Apply(ctx, &claim.WorkflowRecord, ActionCancel, actor, reason)
	if err != nil {
		return nil, err
	}

	s.withdrawApproval(ctx, &claim.WorkflowRecord, entity.EntityTypeClaim, reason)
	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, fmt.Errorf("persist transition: %w", err)
	}

	for _, ef := range effects {
		if ef.Kind != EffectWithdrawApproval {
			s.processEffect(ctx, claim, ef)
		}
	}
	return claim, nil
}

// Delete soft-deletes a claim; records are never hard-deleted
func (s *claimServiceImpl) Delete(ctx context.Context, id int64, scope entity.TenantScope) error {
	claim, err := s.load(ctx, id, scope)
	if err != nil {
		return err
	}
	return s.claims.SetDeleted(ctx, claim.ID, scope, true)
}

// Notifications returns the claim's notification trail
func (s *claimServiceImpl) Notifications(ctx context.Context, id int64, scope entity.TenantScope) ([]*entity.Notification, error) {
	claim, err := s.load(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return s.notifications.GetByEntity(ctx, entity.EntityTypeClaim, claim.ID)
}

// HandleApprovalAction consumes the shared approval event stream
func (s *claimServiceImpl) HandleApprovalAction(ctx context.Context, evt *event.Event) error {
	if evt.EntityType != entity.EntityTypeClaim {
		return nil
	}

	if err := s.applyApprovalAction(ctx, evt); err != nil {
		s.logger.Error("Approval action handling failed",
			"event_id", evt.ID,
			"claim_id", evt.EntityID,
			"error", err,
		)
	}
	return nil
}

func (s *claimServiceImpl) applyApprovalAction(ctx context.Context, evt *event.Event) error {
	claim, err := s.claims.GetByID(ctx, evt.EntityID, entity.TenantScope{})
	if err != nil {
		return fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		return &NotFoundError{Resource: "claim", ID: evt.EntityID}
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
		// Informational action, no status transition
		s.logger.Info("Approval requested additional information", "claim_id", claim.ID)
		return nil
	default:
		s.logger.Info("Ignoring unhandled approval action",
			"action", evt.GetPayloadString("action"),
			"claim_id", claim.ID,
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

	effects, err := s.engine.Apply(ctx, &claim.WorkflowRecord, action, actor, reason)
	if err != nil {
		return err
	}
	if err := s.claims.Update(ctx, claim); err != nil {
		return fmt.Errorf("persist transition: %w", err)
	}

	// Same side effects as the direct-action path
	s.processEffects(ctx, claim, effects)
	return nil
}

// load fetches a claim within scope, mapping an absent row to NotFound
func (s *claimServiceImpl) load(ctx context.Context, id int64, scope entity.TenantScope) (*entity.Claim, error) {
	claim, err := s.claims.GetByID(ctx, id, scope)
	if err != nil {
		return nil, fmt.Errorf("load claim: %w", err)
	}
	if claim == nil || claim.IsDeleted {
		return nil, &NotFoundError{Resource: "claim", ID: id}
	}
	return claim, nil
}

func (s *claimServiceImpl) resolveActor(ctx context.Context, actorID int64) (*entity.User, error) {
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

// initApproval opens an approval request at the collaborator. Best-effort:
// a failure is logged and the claim keeps an empty linked approval id.
func (s *claimServiceImpl) initApproval(ctx context.Context, claim *entity.Claim, priority string) (string, bool) {
	if priority == "" {
		priority = s.settings.DefaultPriority
	}

	approvalID, err := s.approvals.CreateApprovalRequest(ctx, port.CreateApprovalRequest{
		Title:       claim.Title,
		Description: claim.Description,
		Type:        "CLAIM_APPROVAL",
		Priority:    priority,
		FlowType:    s.settings.ApprovalFlowType,
		EntityType:  entity.EntityTypeClaim,
		EntityID:    claim.ID,
		Amount:      claim.Amount,
		Currency:    claim.Currency,
		Deadline:    time.Now().Add(s.settings.DeadlineFor(priority)),
		RequesterID: claim.OwnerID,
		Metadata:    map[string]string{"category": claim.Category},
	})
	if err != nil {
		s.logger.Warn("Approval initialization failed",
			"claim_id", claim.ID,
			"error", err,
		)
		return "", false
	}
	return approvalID, true
}

// reopenApproval withdraws the outstanding approval request and initializes
// a fresh one after a critical-field modification.
func (s *claimServiceImpl) reopenApproval(ctx context.Context, claim *entity.Claim) {
	s.withdrawApproval(ctx, &claim.WorkflowRecord, entity.EntityTypeClaim, "superseded by modification")

	if approvalID, ok := s.initApproval(ctx, claim, s.settings.DefaultPriority); ok {
		claim.LinkedApprovalID = approvalID
		if err := s.claims.Update(ctx, claim); err != nil {
			s.logger.Warn("Failed to persist re-opened approval id", "claim_id", claim.ID, "error", err)
		}
	}
}

func (s *claimServiceImpl) withdrawApproval(ctx context.Context, rec *entity.WorkflowRecord, entityType, reason string) {
	if rec.LinkedApprovalID == "" {
		return
	}

	active, err := s.approvals.ListActiveApprovals(ctx, port.ApprovalQuery{
		EntityType: entityType,
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
			Comments:   "withdrawn by claims workflow",
		}); err != nil {
			s.logger.Warn("Failed to withdraw approval",
				"record_id", rec.ID,
				"approval_id", approval.ApprovalID,
				"error", err,
			)
		}
	}
}

// awardPoints credits the fixed per-claim reward. Non-fatal on failure.
func (s *claimServiceImpl) awardPoints(ctx context.Context, claim *entity.Claim) {
	err := s.rewards.AwardPoints(ctx, port.AwardPointsRequest{
		OwnerID:        claim.OwnerID,
		Points:         s.settings.RewardPointsPerClaim,
		Action:         "CLAIM_SUBMITTED",
		Source:         entity.EntityTypeClaim,
		OrganisationID: claim.OrganisationID,
		BranchID:       claim.BranchID,
	})
	if err != nil {
		s.logger.Warn("Reward award failed", "claim_id", claim.ID, "error", err)
	}
}

func (s *claimServiceImpl) notifyCreated(ctx context.Context, owner *entity.User, claim *entity.Claim) {
	title := "New claim submitted"
	message := fmt.Sprintf("Claim #%d (%s %.2f) was submitted and is awaiting approval.", claim.ID, claim.Currency, claim.Amount)
	s.emit(ctx, claim, owner, entity.NotificationKindRecordCreated, title, message)
}

func (s *claimServiceImpl) processEffects(ctx context.Context, claim *entity.Claim, effects []Effect) {
	for _, ef := range effects {
		s.processEffect(ctx, claim, ef)
	}
}

func (s *claimServiceImpl) processEffect(ctx context.Context, claim *entity.Claim, ef Effect) {
	switch ef.Kind {
	case EffectWithdrawApproval:
		s.withdrawApproval(ctx, &claim.WorkflowRecord, entity.EntityTypeClaim, ef.Reason)

	case EffectNotifyApproval:
		s.notifyDecision(ctx, claim, entity.NotificationKindRecordApproved,
			"Claim approved",
			fmt.Sprintf("Claim #%d was approved.", claim.ID))

	case EffectNotifyRejection:
		s.notifyDecision(ctx, claim, entity.NotificationKindRecordRejected,
			"Claim rejected",
			fmt.Sprintf("Claim #%d was rejected: %s", claim.ID, ef.Reason))

	case EffectNotifyCancellation:
		s.notifyDecision(ctx, claim, entity.NotificationKindRecordCancelled,
			"Claim cancelled",
			fmt.Sprintf("Claim #%d was cancelled: %s", claim.ID, ef.Reason))
	}
}

func (s *claimServiceImpl) notifyDecision(ctx context.Context, claim *entity.Claim, kind, title, message string) {
	owner, err := s.users.GetByID(ctx, claim.OwnerID)
	if err != nil || owner == nil {
		s.logger.Warn("Notification owner lookup failed", "claim_id", claim.ID, "owner_id", claim.OwnerID, "error", err)
	}
	s.emit(ctx, claim, owner, kind, title, message)
}

// emit fans the notification out to the owner and the tenant's admins.
// Each send is fire-and-forget: failures are logged and never unwind into
// the transition's error path.
func (s *claimServiceImpl) emit(ctx context.Context, claim *entity.Claim, owner *entity.User, kind, title, message string) {
	admins, err := s.users.ListAdmins(ctx, entity.TenantScope{
		OrganisationID: claim.OrganisationID,
		BranchID:       claim.BranchID,
	})
	if err != nil {
		s.logger.Warn("Admin recipient lookup failed", "claim_id", claim.ID, "error", err)
	}
	emails, pushIDs := collectRecipients(owner, admins)

	if err := s.notifier.SendEmail(ctx, kind, emails, map[string]interface{}{
		"claim_id": claim.ID,
		"status":   claim.Status,
		"amount":   claim.Amount,
		"currency": claim.Currency,
	}); err != nil {
		s.logger.Warn("Email notification failed", "claim_id", claim.ID, "error", err)
	}

	n := &entity.Notification{
		EntityType: entity.EntityTypeClaim,
		EntityID:   claim.ID,
		Kind:       kind,
		Title:      title,
		Message:    message,
		Status:     entity.NotificationStatusPending,
		OwnerID:    claim.OwnerID,
	}
	if err := s.notifier.SendInternal(ctx, n, []string{entity.RoleAdmin}); err != nil {
		s.logger.Warn("Internal notification failed", "claim_id", claim.ID, "error", err)
	}

	if err := s.notifier.SendPush(ctx, kind, pushIDs, map[string]interface{}{
		"claim_id": claim.ID,
		"status":   claim.Status,
	}, s.settings.DefaultPriority); err != nil {
		s.logger.Warn("Push notification failed", "claim_id", claim.ID, "error", err)
	}
}
