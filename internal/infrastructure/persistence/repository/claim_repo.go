package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/domain/entity"
)

// ClaimRepository implements port.ClaimRepository over sqlite
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

const claimColumns = `
	id, owner_id, organisation_id, branch_id, status,
	approver_id, decision_reason, approved_at, rejected_at, cancelled_at,
	linked_approval_id, is_deleted, version,
	title, description, category, amount, currency,
	created_at, updated_at
`

// Create inserts a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			owner_id, organisation_id, branch_id, status,
			decision_reason, linked_approval_id, is_deleted, version,
			title, description, category, amount, currency,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		claim.OwnerID,
		claim.OrganisationID,
		claim.BranchID,
		claim.Status,
		claim.DecisionReason,
		claim.LinkedApprovalID,
		claim.IsDeleted,
		claim.Title,
		claim.Description,
		claim.Category,
		claim.Amount,
		claim.Currency,
		claim.CreatedAt,
		claim.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	claim.ID = id
	claim.Version = 1
	return nil
}

// GetByID retrieves a claim by ID within scope. Returns nil, nil when no
// row matches; out-of-scope rows are indistinguishable from missing ones.
func (r *ClaimRepository) GetByID(ctx context.Context, id int64, scope entity.TenantScope) (*entity.Claim, error) {
	query := `SELECT` + claimColumns + `FROM claims WHERE id = ?` + scopeFilter(scope)
	args := append([]interface{}{id}, scopeArgs(scope)...)

	claim, err := r.scanClaim(getExecutor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return claim, nil
}

// Update persists the claim guarded by its version column. The guard missing
// means a concurrent writer got there first.
func (r *ClaimRepository) Update(ctx context.Context, claim *entity.Claim) error {
	query := `
		UPDATE claims SET
			status = ?, approver_id = ?, decision_reason = ?,
			approved_at = ?, rejected_at = ?, cancelled_at = ?,
			linked_approval_id = ?, is_deleted = ?,
			title = ?, description = ?, category = ?, amount = ?, currency = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		claim.Status,
		claim.ApproverID,
		claim.DecisionReason,
		claim.ApprovedAt,
		claim.RejectedAt,
		claim.CancelledAt,
		claim.LinkedApprovalID,
		claim.IsDeleted,
		claim.Title,
		claim.Description,
		claim.Category,
		claim.Amount,
		claim.Currency,
		claim.UpdatedAt,
		claim.ID,
		claim.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update claim", zap.Int64("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to update claim: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return port.ErrVersionConflict
	}

	claim.Version++
	return nil
}

// List retrieves claims within scope with pagination, newest first
func (r *ClaimRepository) List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.Claim, error) {
	query := `SELECT` + claimColumns + `FROM claims WHERE is_deleted = 0` +
		scopeFilter(scope) + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args := append(scopeArgs(scope), limit, offset)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*entity.Claim
	for rows.Next() {
		claim, err := r.scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

// SetDeleted toggles the soft-delete flag
func (r *ClaimRepository) SetDeleted(ctx context.Context, id int64, scope entity.TenantScope, deleted bool) error {
	query := `UPDATE claims SET is_deleted = ?, version = version + 1 WHERE id = ?` + scopeFilter(scope)
	args := append([]interface{}{deleted, id}, scopeArgs(scope)...)

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to set claim deleted flag", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set deleted flag: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ClaimRepository) scanClaim(row rowScanner) (*entity.Claim, error) {
	var claim entity.Claim
	var approverID sql.NullInt64
	var approvedAt, rejectedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&claim.ID,
		&claim.OwnerID,
		&claim.OrganisationID,
		&claim.BranchID,
		&claim.Status,
		&approverID,
		&claim.DecisionReason,
		&approvedAt,
		&rejectedAt,
		&cancelledAt,
		&claim.LinkedApprovalID,
		&claim.IsDeleted,
		&claim.Version,
		&claim.Title,
		&claim.Description,
		&claim.Category,
		&claim.Amount,
		&claim.Currency,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if approverID.Valid {
		claim.ApproverID = &approverID.Int64
	}
	if approvedAt.Valid {
		claim.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		claim.RejectedAt = &rejectedAt.Time
	}
	if cancelledAt.Valid {
		claim.CancelledAt = &cancelledAt.Time
	}

	return &claim, nil
}

// scopeFilter appends tenant predicates for the non-zero scope fields
func scopeFilter(scope entity.TenantScope) string {
	clause := ""
	if scope.OrganisationID != 0 {
		clause += ` AND organisation_id = ?`
	}
	if scope.BranchID != 0 {
		clause += ` AND branch_id = ?`
	}
	return clause
}

func scopeArgs(scope entity.TenantScope) []interface{} {
	var args []interface{}
	if scope.OrganisationID != 0 {
		args = append(args, scope.OrganisationID)
	}
	if scope.BranchID != 0 {
		args = append(args, scope.BranchID)
	}
	return args
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
