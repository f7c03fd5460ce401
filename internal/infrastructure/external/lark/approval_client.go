package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkApproval "github.com/larksuite/oapi-sdk-go/v3/service/approval/v4"
	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/application/port"
)

// ApprovalClient implements port.ApprovalClient against the Lark approval
// API. One approval definition code covers both claim and leave requests;
// the form payload carries the entity discriminator.
type ApprovalClient struct {
	client *SDKClient
	logger *zap.Logger

	// userIDResolver maps internal user ids onto Lark user ids. Defaults to
	// plain formatting; installations with a directory sync override it.
	userIDResolver func(internalID int64) string
}

// NewApprovalClient creates a new Lark-backed approval client
func NewApprovalClient(client *SDKClient, logger *zap.Logger) *ApprovalClient {
	return &ApprovalClient{
		client: client,
		logger: logger,
		userIDResolver: func(internalID int64) string {
			return fmt.Sprintf("%d", internalID)
		},
	}
}

// WithUserIDResolver overrides the internal-to-Lark user id mapping
func (a *ApprovalClient) WithUserIDResolver(f func(internalID int64) string) *ApprovalClient {
	a.userIDResolver = f
	return a
}

// formField mirrors the widget-value JSON the approval form expects
type formField struct {
	ID    string      `json:"id"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// CreateApprovalRequest submits a new approval instance and returns its
// instance code.
func (a *ApprovalClient) CreateApprovalRequest(ctx context.Context, req port.CreateApprovalRequest) (string, error) {
	form := []formField{
		{ID: "title", Type: "input", Value: req.Title},
		{ID: "description", Type: "textarea", Value: req.Description},
		{ID: "entity_type", Type: "input", Value: req.EntityType},
		{ID: "entity_id", Type: "number", Value: req.EntityID},
		{ID: "priority", Type: "input", Value: req.Priority},
		{ID: "deadline", Type: "date", Value: req.Deadline.Format("2006-01-02T15:04:05Z07:00")},
	}
	if req.Amount > 0 {
		form = append(form,
			formField{ID: "amount", Type: "amount", Value: req.Amount},
			formField{ID: "currency", Type: "input", Value: req.Currency},
		)
	}
	for k, v := range req.Metadata {
		form = append(form, formField{ID: k, Type: "input", Value: v})
	}

	formJSON, err := json.Marshal(form)
	if err != nil {
		return "", fmt.Errorf("failed to marshal approval form: %w", err)
	}

	createReq := larkApproval.NewCreateInstanceReqBuilder().
		InstanceCreate(larkApproval.NewInstanceCreateBuilder().
			ApprovalCode(a.client.GetApprovalCode()).
			UserId(a.userIDResolver(req.RequesterID)).
			Form(string(formJSON)).
			Build()).
		Build()

	resp, err := a.client.client.Approval.Instance.Create(ctx, createReq)
	if err != nil {
		a.logger.Error("Failed to create approval instance",
			zap.String("entity_type", req.EntityType),
			zap.Int64("entity_id", req.EntityID),
			zap.Error(err))
		return "", fmt.Errorf("failed to create approval instance: %w", err)
	}

	if !resp.Success() {
		a.logger.Error("API returned failure creating approval instance",
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	if resp.Data == nil || resp.Data.InstanceCode == nil {
		return "", fmt.Errorf("approval instance created without instance code")
	}

	a.logger.Info("Approval instance created",
		zap.String("instance_code", *resp.Data.InstanceCode),
		zap.String("entity_type", req.EntityType),
		zap.Int64("entity_id", req.EntityID))
	return *resp.Data.InstanceCode, nil
}

// WithdrawApprovalRequest cancels an outstanding approval instance
func (a *ApprovalClient) WithdrawApprovalRequest(ctx context.Context, req port.WithdrawApprovalRequest) error {
	cancelReq := larkApproval.NewCancelInstanceReqBuilder().
		InstanceCancel(larkApproval.NewInstanceCancelBuilder().
			ApprovalCode(a.client.GetApprovalCode()).
			InstanceCode(req.ApprovalID).
			UserId("system").
			Build()).
		Build()

	resp, err := a.client.client.Approval.Instance.Cancel(ctx, cancelReq)
	if err != nil {
		a.logger.Error("Failed to cancel approval instance",
			zap.String("instance_code", req.ApprovalID),
			zap.Error(err))
		return fmt.Errorf("failed to cancel approval instance: %w", err)
	}

	if !resp.Success() {
		a.logger.Error("API returned failure cancelling approval instance",
			zap.String("instance_code", req.ApprovalID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	a.logger.Info("Approval instance cancelled",
		zap.String("instance_code", req.ApprovalID),
		zap.String("reason", req.Reason))
	return nil
}

// ListActiveApprovals resolves the linked instance and filters it by status.
// The workflow links at most one approval per record, so a point lookup on
// the instance code covers the query.
func (a *ApprovalClient) ListActiveApprovals(ctx context.Context, query port.ApprovalQuery) ([]port.Approval, error) {
	if query.ApprovalID == "" {
		return nil, nil
	}

	getReq := larkApproval.NewGetInstanceReqBuilder().
		InstanceId(query.ApprovalID).
		Build()

	resp, err := a.client.client.Approval.Instance.Get(ctx, getReq)
	if err != nil {
		a.logger.Error("Failed to get approval instance",
			zap.String("instance_code", query.ApprovalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get approval instance: %w", err)
	}

	if !resp.Success() {
		a.logger.Error("API returned failure getting approval instance",
			zap.String("instance_code", query.ApprovalID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return nil, fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	if resp.Data == nil || resp.Data.Status == nil {
		return nil, nil
	}

	status := mapInstanceStatus(*resp.Data.Status)
	if len(query.Statuses) > 0 && !containsStatus(query.Statuses, status) {
		return nil, nil
	}

	return []port.Approval{{
		ApprovalID: query.ApprovalID,
		EntityType: query.EntityType,
		EntityID:   query.EntityID,
		Status:     status,
	}}, nil
}

// mapInstanceStatus normalizes Lark instance statuses onto the workflow's
// approval status vocabulary.
func mapInstanceStatus(larkStatus string) string {
	switch larkStatus {
	case "PENDING":
		return "PENDING"
	case "APPROVED":
		return "APPROVED"
	case "REJECTED":
		return "REJECTED"
	case "CANCELED", "DELETED", "REVERTED":
		return "CANCELLED"
	default:
		return "IN_PROGRESS"
	}
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Verify interface compliance
var _ port.ApprovalClient = (*ApprovalClient)(nil)
