package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/domain/entity"
)

// NotificationRepository implements port.NotificationRepository over sqlite
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a notification trace record
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			entity_type, entity_id, kind, title, message,
			status, recipient_roles, owner_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		n.EntityType,
		n.EntityID,
		n.Kind,
		n.Title,
		n.Message,
		n.Status,
		n.RecipientRoles,
		n.OwnerID,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	n.ID = id
	n.CreatedAt = now
	n.UpdatedAt = now
	return nil
}

// MarkSent records successful delivery
func (r *NotificationRepository) MarkSent(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET status = ?, sent_at = ?, updated_at = ? WHERE id = ?`

	now := time.Now()
	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, entity.NotificationStatusSent, now, now, id)
	if err != nil {
		r.logger.Error("Failed to mark notification sent", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return nil
}

// GetByEntity retrieves the notification trail for a record, newest first
func (r *NotificationRepository) GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.Notification, error) {
	query := `
		SELECT id, entity_type, entity_id, kind, title, message,
			status, recipient_roles, owner_id, sent_at, created_at, updated_at
		FROM notifications
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at DESC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		r.logger.Error("Failed to get notifications by entity", zap.String("entity_type", entityType), zap.Int64("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var sentAt sql.NullTime

		err := rows.Scan(
			&n.ID,
			&n.EntityType,
			&n.EntityID,
			&n.Kind,
			&n.Title,
			&n.Message,
			&n.Status,
			&n.RecipientRoles,
			&n.OwnerID,
			&sentAt,
			&n.CreatedAt,
			&n.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if sentAt.Valid {
			n.SentAt = &sentAt.Time
		}

		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
