package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/application/port"
	"github.com/rivohq/opsflow/internal/domain/entity"
)

// Notifier implements port.NotificationPort. Internal notifications are
// persisted to the trace log; email and push deliveries are logged and
// handed to the configured sender. Delivery is best-effort throughout.
type Notifier struct {
	repo   port.NotificationRepository
	sender Sender
	logger *zap.Logger
}

// Sender is the outbound delivery hook. The default logging sender records
// deliveries without external side effects; production wires a real
// gateway here.
type Sender interface {
	DeliverEmail(ctx context.Context, emailType string, recipients []string, templateData map[string]interface{}) error
	DeliverPush(ctx context.Context, eventName string, recipientIDs []int64, templateData map[string]interface{}, priority string) error
}

// NewNotifier creates a notifier. A nil sender falls back to log-only
// delivery.
func NewNotifier(repo port.NotificationRepository, sender Sender, logger *zap.Logger) *Notifier {
	if sender == nil {
		sender = &logSender{logger: logger}
	}
	return &Notifier{
		repo:   repo,
		sender: sender,
		logger: logger,
	}
}

// SendEmail delivers an email notification
func (n *Notifier) SendEmail(ctx context.Context, emailType string, recipients []string, templateData map[string]interface{}) error {
	if len(recipients) == 0 {
		return nil
	}

	if err := n.sender.DeliverEmail(ctx, emailType, recipients, templateData); err != nil {
		n.logger.Warn("Email delivery failed",
			zap.String("email_type", emailType),
			zap.Int("recipients", len(recipients)),
			zap.Error(err))
		return fmt.Errorf("email delivery failed: %w", err)
	}

	n.logger.Info("Email notification sent",
		zap.String("email_type", emailType),
		zap.Int("recipients", len(recipients)))
	return nil
}

// SendInternal persists an internal notification addressed to the given
// roles and marks it sent. The stored row is the delivery: admins read it
// from the notification feed.
func (n *Notifier) SendInternal(ctx context.Context, notif *entity.Notification, recipientRoles []string) error {
	notif.RecipientRoles = strings.Join(recipientRoles, ",")
	if notif.Status == "" {
		notif.Status = entity.NotificationStatusPending
	}

	if err := n.repo.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	if err := n.repo.MarkSent(ctx, notif.ID); err != nil {
		n.logger.Warn("Failed to mark notification sent",
			zap.Int64("notification_id", notif.ID),
			zap.Error(err))
		return nil
	}

	n.logger.Info("Internal notification stored",
		zap.Int64("notification_id", notif.ID),
		zap.String("kind", notif.Kind),
		zap.Strings("roles", recipientRoles))
	return nil
}

// SendPush delivers a push notification
func (n *Notifier) SendPush(ctx context.Context, eventName string, recipientIDs []int64, templateData map[string]interface{}, priority string) error {
	if len(recipientIDs) == 0 {
		return nil
	}

	if err := n.sender.DeliverPush(ctx, eventName, recipientIDs, templateData, priority); err != nil {
		n.logger.Warn("Push delivery failed",
			zap.String("event", eventName),
			zap.Error(err))
		return fmt.Errorf("push delivery failed: %w", err)
	}

	n.logger.Info("Push notification sent",
		zap.String("event", eventName),
		zap.Int("recipients", len(recipientIDs)),
		zap.String("priority", priority))
	return nil
}

// logSender records deliveries in the log without external calls
type logSender struct {
	logger *zap.Logger
}

func (s *logSender) DeliverEmail(_ context.Context, emailType string, recipients []string, _ map[string]interface{}) error {
	s.logger.Info("Email delivery (log only)",
		zap.String("email_type", emailType),
		zap.Strings("recipients", recipients))
	return nil
}

func (s *logSender) DeliverPush(_ context.Context, eventName string, recipientIDs []int64, _ map[string]interface{}, priority string) error {
	s.logger.Info("Push delivery (log only)",
		zap.String("event", eventName),
		zap.Int64s("recipients", recipientIDs),
		zap.String("priority", priority))
	return nil
}

// Verify interface compliance
var _ port.NotificationPort = (*Notifier)(nil)
