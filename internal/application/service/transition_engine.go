package service

import (
	"context"
	"errors"
	"time"

	"github.com/rivohq/opsflow/internal/domain/entity"
	"github.com/rivohq/opsflow/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Action is the caller-facing transition vocabulary
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionDecline Action = "DECLINE"
	ActionReject  Action = "REJECT"
	ActionCancel  Action = "CANCEL"
	ActionModify  Action = "MODIFY"
)

// EffectKind identifies a side-effect intent produced by a transition
type EffectKind string

const (
	EffectNotifyApproval     EffectKind = "NOTIFY_APPROVAL"
	EffectNotifyRejection    EffectKind = "NOTIFY_REJECTION"
	EffectNotifyCancellation EffectKind = "NOTIFY_CANCELLATION"
	EffectWithdrawApproval   EffectKind = "WITHDRAW_APPROVAL"
	EffectReinitApproval     EffectKind = "REINIT_APPROVAL"
)

// Effect is a side-effect intent the orchestrator processes after persisting
// the transition. Effects are fire-and-forget relative to the transition.
type Effect struct {
	Kind   EffectKind
	Reason string
}

// TransitionEngine applies one validated transition to a workflow record and
// produces the side-effect intent list. Timestamps are wall-clock time at
// the moment of transition; repeating a terminal action on an already
// terminal record is rejected, never a no-op.
type TransitionEngine struct {
	now    func() time.Time
	logger Logger
}

// NewTransitionEngine creates a transition engine. A nil clock defaults to
// time.Now.
func NewTransitionEngine(now func() time.Time, logger Logger) *TransitionEngine {
	if now == nil {
		now = time.Now
	}
	return &TransitionEngine{now: now, logger: logger}
}

// Apply validates action against the record's current state, mutates the
// record in place (status, decision timestamp, actor, reason) and returns
// the effects to process. The actor may be nil only for system auto-actions
// (conflict auto-reject); APPROVE always requires a resolved actor.
func (e *TransitionEngine) Apply(ctx context.Context, rec *entity.WorkflowRecord, action Action, actor *entity.User, reason string) ([]Effect, error) {
	trigger, err := e.resolveTrigger(rec, action, actor, reason)
	if err != nil {
		return nil, err
	}

	machine := workflow.MachineFor(workflow.State(rec.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return nil, &InvalidStateTransitionError{Current: rec.Status, Attempted: string(action)}
		}
		return nil, err
	}

	now := e.now()
	rec.Status = machine.State().String()
	rec.UpdatedAt = now

	var effects []Effect
	switch action {
	case ActionApprove:
		rec.ApproverID = &actor.ID
		rec.ApprovedAt = &now
		effects = append(effects, Effect{Kind: EffectNotifyApproval})

	case ActionReject, ActionDecline:
		rec.RejectedAt = &now
		rec.DecisionReason = reason
		if actor != nil {
			rec.ApproverID = &actor.ID
		}
		effects = append(effects, Effect{Kind: EffectNotifyRejection, Reason: reason})

	case ActionCancel:
		rec.CancelledAt = &now
		rec.DecisionReason = reason
		effects = append(effects,
			Effect{Kind: EffectWithdrawApproval, Reason: reason},
			Effect{Kind: EffectNotifyCancellation, Reason: reason},
		)
	}

	e.logger.Info("Transition applied",
		"record_id", rec.ID,
		"action", string(action),
		"status", rec.Status,
	)

	return effects, nil
}

// resolveTrigger maps the action onto a state-machine trigger and enforces
// the action's input requirements.
func (e *TransitionEngine) resolveTrigger(rec *entity.WorkflowRecord, action Action, actor *entity.User, reason string) (workflow.Trigger, error) {
	switch action {
	case ActionApprove:
		if actor == nil {
			return "", &ValidationError{Field: "approver", Message: "approver is required"}
		}
		return workflow.TriggerApprove, nil

	case ActionDecline:
		if reason == "" {
			return "", &ValidationError{Field: "reason", Message: "reason is required"}
		}
		return workflow.TriggerDecline, nil

	case ActionReject:
		if reason == "" {
			return "", &ValidationError{Field: "reason", Message: "reason is required"}
		}
		return workflow.TriggerReject, nil

	case ActionCancel:
		if reason == "" {
			return "", &ValidationError{Field: "reason", Message: "reason is required"}
		}
		// Cancellation sub-kind follows actor identity
		if actor != nil && actor.ID == rec.OwnerID {
			return workflow.TriggerCancelByUser, nil
		}
		return workflow.TriggerCancelByAdmin, nil

	case ActionModify:
		return workflow.TriggerModify, nil

	default:
		return "", &ValidationError{Field: "action", Message: "unknown action " + string(action)}
	}
}
