package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/domain/entity"
)

// LeaveRepository implements port.LeaveRepository over sqlite
type LeaveRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLeaveRepository creates a new leave repository
func NewLeaveRepository(db *sql.DB, logger *zap.Logger) port.LeaveRepository {
	return &LeaveRepository{
		db:     db,
		logger: logger,
	}
}

const leaveColumns = `
	id, owner_id, organisation_id, branch_id, status,
	approver_id, decision_reason, approved_at, rejected_at, cancelled_at,
	linked_approval_id, is_deleted, version,
	leave_type, start_date, end_date, half_day, duration, reason,
	created_at, updated_at
`

// Create inserts a new leave request
func (r *LeaveRepository) Create(ctx context.Context, leave *entity.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (
			owner_id, organisation_id, branch_id, status,
			decision_reason, linked_approval_id, is_deleted, version,
			leave_type, start_date, end_date, half_day, duration, reason,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		leave.OwnerID,
		leave.OrganisationID,
		leave.BranchID,
		leave.Status,
		leave.DecisionReason,
		leave.LinkedApprovalID,
		leave.IsDeleted,
		leave.LeaveType,
		leave.StartDate,
		leave.EndDate,
		leave.HalfDay,
		leave.Duration,
		leave.Reason,
		leave.CreatedAt,
		leave.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create leave request", zap.Error(err))
		return fmt.Errorf("failed to create leave request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	leave.ID = id
	leave.Version = 1
	return nil
}

// GetByID retrieves a leave request by ID within scope. Returns nil, nil
// when no row matches.
func (r *LeaveRepository) GetByID(ctx context.Context, id int64, scope entity.TenantScope) (*entity.LeaveRequest, error) {
	query := `SELECT` + leaveColumns + `FROM leave_requests WHERE id = ?` + scopeFilter(scope)
	args := append([]interface{}{id}, scopeArgs(scope)...)

	leave, err := r.scanLeave(getExecutor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get leave request by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}

	return leave, nil
}

// Update persists the leave request guarded by its version column
func (r *LeaveRepository) Update(ctx context.Context, leave *entity.LeaveRequest) error {
	query := `
		UPDATE leave_requests SET
			status = ?, approver_id = ?, decision_reason = ?,
			approved_at = ?, rejected_at = ?, cancelled_at = ?,
			linked_approval_id = ?, is_deleted = ?,
			leave_type = ?, start_date = ?, end_date = ?, half_day = ?,
			duration = ?, reason = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		leave.Status,
		leave.ApproverID,
		leave.DecisionReason,
		leave.ApprovedAt,
		leave.RejectedAt,
		leave.CancelledAt,
		leave.LinkedApprovalID,
		leave.IsDeleted,
		leave.LeaveType,
		leave.StartDate,
		leave.EndDate,
		leave.HalfDay,
		leave.Duration,
		leave.Reason,
		leave.UpdatedAt,
		leave.ID,
		leave.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update leave request", zap.Int64("id", leave.ID), zap.Error(err))
		return fmt.Errorf("failed to update leave request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return port.ErrVersionConflict
	}

	leave.Version++
	return nil
}

// List retrieves leave requests within scope with pagination, newest first
func (r *LeaveRepository) List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.LeaveRequest, error) {
	query := `SELECT` + leaveColumns + `FROM leave_requests WHERE is_deleted = 0` +
		scopeFilter(scope) + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args := append(scopeArgs(scope), limit, offset)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list leave requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// SetDeleted toggles the soft-delete flag
func (r *LeaveRepository) SetDeleted(ctx context.Context, id int64, scope entity.TenantScope, deleted bool) error {
	query := `UPDATE leave_requests SET is_deleted = ?, version = version + 1 WHERE id = ?` + scopeFilter(scope)
	args := append([]interface{}{deleted, id}, scopeArgs(scope)...)

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to set leave deleted flag", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set deleted flag: %w", err)
	}

	return nil
}

// FindOverlapping returns the owner's non-deleted requests in one of the
// given statuses whose inclusive date range overlaps [start, end].
func (r *LeaveRepository) FindOverlapping(ctx context.Context, ownerID int64, start, end time.Time, statuses []string) ([]*entity.LeaveRequest, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(statuses)-1) + "?"
	query := `SELECT` + leaveColumns + `FROM leave_requests
		WHERE owner_id = ?
		AND is_deleted = 0
		AND status IN (` + placeholders + `)
		AND start_date <= ?
		AND end_date >= ?`

	args := []interface{}{ownerID}
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, end, start)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to find overlapping leave", zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("failed to find overlapping leave: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *LeaveRepository) collect(rows *sql.Rows) ([]*entity.LeaveRequest, error) {
	var leaves []*entity.LeaveRequest
	for rows.Next() {
		leave, err := r.scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		leaves = append(leaves, leave)
	}
	return leaves, rows.Err()
}

func (r *LeaveRepository) scanLeave(row rowScanner) (*entity.LeaveRequest, error) {
	var leave entity.LeaveRequest
	var approverID sql.NullInt64
	var approvedAt, rejectedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&leave.ID,
		&leave.OwnerID,
		&leave.OrganisationID,
		&leave.BranchID,
		&leave.Status,
		&approverID,
		&leave.DecisionReason,
		&approvedAt,
		&rejectedAt,
		&cancelledAt,
		&leave.LinkedApprovalID,
		&leave.IsDeleted,
		&leave.Version,
		&leave.LeaveType,
		&leave.StartDate,
		&leave.EndDate,
		&leave.HalfDay,
		&leave.Duration,
		&leave.Reason,
		&leave.CreatedAt,
		&leave.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if approverID.Valid {
		leave.ApproverID = &approverID.Int64
	}
	if approvedAt.Valid {
		leave.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		leave.RejectedAt = &rejectedAt.Time
	}
	if cancelledAt.Valid {
		leave.CancelledAt = &cancelledAt.Time
	}

	return &leave, nil
}

// Verify interface compliance
var _ port.LeaveRepository = (*LeaveRepository)(nil)
