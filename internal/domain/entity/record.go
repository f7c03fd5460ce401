package entity

import "time"

// TenantScope is the organisation/branch pair every record access is
// filtered by. A zero value means "no scoping supplied".
type TenantScope struct {
	OrganisationID int64 `json:"organisation_id"`
	BranchID       int64 `json:"branch_id"`
}

// IsZero returns true when no tenant scoping was supplied
func (s TenantScope) IsZero() bool {
	return s.OrganisationID == 0 && s.BranchID == 0
}

// WorkflowRecord carries the fields shared by every record flowing through
// the approval status workflow. Claim and LeaveRequest embed it.
//
// Status is mutated only by the transition engine. At most one of
// ApprovedAt/RejectedAt/CancelledAt is ever non-nil.
type WorkflowRecord struct {
	ID             int64  `json:"id"`
	OwnerID        int64  `json:"owner_id"`
	OrganisationID int64  `json:"organisation_id"`
	BranchID       int64  `json:"branch_id"`
	Status         string `json:"status"`

	// ApproverID is set only when a human actor performs the terminal
	// transition; system auto-actions leave it nil.
	ApproverID     *int64 `json:"approver_id,omitempty"`
	DecisionReason string `json:"decision_reason,omitempty"`

	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// LinkedApprovalID references the approval request at the external
	// approval collaborator; empty when initialization failed (non-fatal).
	LinkedApprovalID string `json:"linked_approval_id,omitempty"`

	IsDeleted bool  `json:"is_deleted"`
	Version   int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scope returns the record's tenant scope
func (r *WorkflowRecord) Scope() TenantScope {
	return TenantScope{OrganisationID: r.OrganisationID, BranchID: r.BranchID}
}

// InScope reports whether the record belongs to the caller's tenant scope.
// An empty scope matches everything; the caller's context is trusted.
func (r *WorkflowRecord) InScope(scope TenantScope) bool {
	if scope.IsZero() {
		return true
	}
	if scope.OrganisationID != 0 && scope.OrganisationID != r.OrganisationID {
		return false
	}
	if scope.BranchID != 0 && scope.BranchID != r.BranchID {
		return false
	}
	return true
}

// DecisionTimestamps returns the terminal timestamps that are currently set
func (r *WorkflowRecord) DecisionTimestamps() []time.Time {
	var set []time.Time
	for _, ts := range []*time.Time{r.ApprovedAt, r.RejectedAt, r.CancelledAt} {
		if ts != nil {
			set = append(set, *ts)
		}
	}
	return set
}
