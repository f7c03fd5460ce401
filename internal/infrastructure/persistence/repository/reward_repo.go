package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/application/port"
)

// RewardRepository implements port.RewardsClient over a local ledger table.
// Points are append-only; the balance is the sum of a user's transactions.
type RewardRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRewardRepository creates a new reward ledger repository
func NewRewardRepository(db *sql.DB, logger *zap.Logger) *RewardRepository {
	return &RewardRepository{
		db:     db,
		logger: logger,
	}
}

// AwardPoints appends a credit transaction to the ledger
func (r *RewardRepository) AwardPoints(ctx context.Context, req port.AwardPointsRequest) error {
	query := `
		INSERT INTO reward_transactions (
			owner_id, points, action, source,
			organisation_id, branch_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		req.OwnerID,
		req.Points,
		req.Action,
		req.Source,
		req.OrganisationID,
		req.BranchID,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to award points", zap.Int64("owner_id", req.OwnerID), zap.Error(err))
		return fmt.Errorf("failed to award points: %w", err)
	}

	return nil
}

// Balance sums a user's ledger
func (r *RewardRepository) Balance(ctx context.Context, ownerID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(points), 0) FROM reward_transactions WHERE owner_id = ?`

	var balance int64
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, ownerID).Scan(&balance)
	if err != nil {
		r.logger.Error("Failed to get reward balance", zap.Int64("owner_id", ownerID), zap.Error(err))
		return 0, fmt.Errorf("failed to get reward balance: %w", err)
	}

	return balance, nil
}

// Verify interface compliance
var _ port.RewardsClient = (*RewardRepository)(nil)
