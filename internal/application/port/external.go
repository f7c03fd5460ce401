package port

import (
	"context"
	"time"

	"github.com/rivohq/opsflow/internal/domain/entity"
)

// CreateApprovalRequest carries everything the approval collaborator needs
// to open a multi-step approval chain for a record.
type CreateApprovalRequest struct {
	Title       string
	Description string
	Type        string
	Priority    string
	FlowType    string
	EntityType  string
	EntityID    int64
	Amount      float64
	Currency    string
	Deadline    time.Time
	RequesterID int64
	Metadata    map[string]string
}

// WithdrawApprovalRequest revokes an outstanding approval request
type WithdrawApprovalRequest struct {
	ApprovalID string
	Reason     string
	Comments   string
}

// ApprovalQuery selects approvals at the collaborator
type ApprovalQuery struct {
	EntityType string
	EntityID   int64
	ApprovalID string
	Statuses   []string
}

// Approval is the collaborator's view of an approval request
type Approval struct {
	ApprovalID string
	EntityType string
	EntityID   int64
	Status     string
}

// ApprovalClient is the external approval workflow collaborator. Every call
// is best-effort from the orchestrator's point of view: failures are logged
// and never fail the primary record mutation.
type ApprovalClient interface {
	CreateApprovalRequest(ctx context.Context, req CreateApprovalRequest) (string, error)
	WithdrawApprovalRequest(ctx context.Context, req WithdrawApprovalRequest) error
	ListActiveApprovals(ctx context.Context, query ApprovalQuery) ([]Approval, error)
}

// NotificationPort fans workflow notifications out to delivery channels.
// One method per notification kind; callers treat every send as
// fire-and-forget (log failures, never roll back the transition).
type NotificationPort interface {
	SendEmail(ctx context.Context, emailType string, recipients []string, templateData map[string]interface{}) error
	SendInternal(ctx context.Context, n *entity.Notification, recipientRoles []string) error
	SendPush(ctx context.Context, eventName string, recipientIDs []int64, templateData map[string]interface{}, priority string) error
}

// AwardPointsRequest credits loyalty points to a record owner
type AwardPointsRequest struct {
	OwnerID        int64
	Points         int64
	Action         string
	Source         string
	OrganisationID int64
	BranchID       int64
}

// RewardsClient is the loyalty/points collaborator. Award failures are
// non-fatal to the workflow.
type RewardsClient interface {
	AwardPoints(ctx context.Context, req AwardPointsRequest) error
}
