package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/domain/entity"
)

type fakeNotificationRepo struct {
	rows       []*entity.Notification
	markedSent []int64
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	n.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, n)
	return nil
}

func (r *fakeNotificationRepo) MarkSent(_ context.Context, id int64) error {
	r.markedSent = append(r.markedSent, id)
	return nil
}

func (r *fakeNotificationRepo) GetByEntity(_ context.Context, entityType string, entityID int64) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range r.rows {
		if n.EntityType == entityType && n.EntityID == entityID {
			out = append(out, n)
		}
	}
	return out, nil
}

func TestNotifier_SendInternalPersistsRecipientRoles(t *testing.T) {
	repo := &fakeNotificationRepo{}
	n := NewNotifier(repo, nil, zap.NewNop())

	notif := &entity.Notification{
		EntityType: entity.EntityTypeClaim,
		EntityID:   7,
		Kind:       entity.NotificationKindRecordApproved,
		Title:      "Claim approved",
		OwnerID:    10,
	}
	require.NoError(t, n.SendInternal(context.Background(), notif, []string{entity.RoleAdmin, entity.RoleOwner}))

	require.Len(t, repo.rows, 1)
	assert.Equal(t, "ADMIN,OWNER", repo.rows[0].RecipientRoles)
	assert.Equal(t, []int64{1}, repo.markedSent)

	trail, err := repo.GetByEntity(context.Background(), entity.EntityTypeClaim, 7)
	require.NoError(t, err)
	require.Len(t, trail, 1)
}

func TestNotifier_SendEmailNoRecipientsIsNoOp(t *testing.T) {
	n := NewNotifier(&fakeNotificationRepo{}, nil, zap.NewNop())
	require.NoError(t, n.SendEmail(context.Background(), "RECORD_CREATED", nil, nil))
}

func TestNotifier_LogSenderDelivers(t *testing.T) {
	n := NewNotifier(&fakeNotificationRepo{}, nil, zap.NewNop())

	require.NoError(t, n.SendEmail(context.Background(), "RECORD_CREATED", []string{"owner@example.com"}, nil))
	require.NoError(t, n.SendPush(context.Background(), "RECORD_CREATED", []int64{10}, nil, "MEDIUM"))
}
