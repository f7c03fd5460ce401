package port

import (
	"context"
	"errors"
	"time"

	"github.com/rivohq/opsflow/internal/domain/entity"
)

// ErrVersionConflict is returned when an optimistic-concurrency update finds
// the row's version has moved since it was read. Callers retry or surface a
// conflict; the stale write never lands.
var ErrVersionConflict = errors.New("record version conflict")

// ClaimRepository defines persistence operations for Claim
type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim) error

	// GetByID returns nil, nil when no row matches the id within scope.
	// Missing and out-of-scope are indistinguishable to the caller.
	GetByID(ctx context.Context, id int64, scope entity.TenantScope) (*entity.Claim, error)

	// Update persists the claim guarded by its Version column and bumps it.
	// Returns ErrVersionConflict when the guard misses.
	Update(ctx context.Context, claim *entity.Claim) error

	List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.Claim, error)
	SetDeleted(ctx context.Context, id int64, scope entity.TenantScope, deleted bool) error
}

// LeaveRepository defines persistence operations for LeaveRequest
type LeaveRepository interface {
	Create(ctx context.Context, leave *entity.LeaveRequest) error
	GetByID(ctx context.Context, id int64, scope entity.TenantScope) (*entity.LeaveRequest, error)
	Update(ctx context.Context, leave *entity.LeaveRequest) error
	List(ctx context.Context, scope entity.TenantScope, limit, offset int) ([]*entity.LeaveRequest, error)
	SetDeleted(ctx context.Context, id int64, scope entity.TenantScope, deleted bool) error

	// FindOverlapping returns the owner's non-deleted requests in one of the
	// given statuses whose inclusive date range overlaps [start, end].
	FindOverlapping(ctx context.Context, ownerID int64, start, end time.Time, statuses []string) ([]*entity.LeaveRequest, error)
}

// UserRepository defines read operations against the user directory
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	ListAdmins(ctx context.Context, scope entity.TenantScope) ([]*entity.User, error)
}

// NotificationRepository persists the notification trace log
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	MarkSent(ctx context.Context, id int64) error

	// GetByEntity returns a record's notification trail, newest first
	GetByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.Notification, error)
}
