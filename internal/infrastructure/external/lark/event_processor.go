package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rivohq/opsflow/internal/application/dispatcher"
	"github.com/rivohq/opsflow/internal/domain/event"
)

// ApprovalEvent represents a Lark approval event payload
type ApprovalEvent struct {
	Header EventHeader            `json:"header"`
	Event  map[string]interface{} `json:"event"`
}

// EventHeader contains event metadata
type EventHeader struct {
	EventType string `json:"event_type"`
}

// EventProcessor translates Lark approval webhook payloads into domain
// events on the shared approval.action.performed stream. Both workflow
// orchestrators subscribe there and filter on entity type.
type EventProcessor struct {
	approvalCode string
	dispatcher   dispatcher.Dispatcher
	logger       *zap.Logger
}

// NewEventProcessor creates a new EventProcessor
func NewEventProcessor(approvalCode string, d dispatcher.Dispatcher, logger *zap.Logger) *EventProcessor {
	return &EventProcessor{
		approvalCode: approvalCode,
		dispatcher:   d,
		logger:       logger,
	}
}

// ProcessEvent parses a raw webhook payload and dispatches the resulting
// domain event. Payloads for other approval definitions, and instance
// states that map to no workflow action, are ignored.
func (p *EventProcessor) ProcessEvent(ctx context.Context, payload []byte) error {
	var evt ApprovalEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("failed to parse approval event payload: %w", err)
	}

	if evt.Event == nil {
		p.logger.Warn("Approval event payload missing event data")
		return nil
	}

	approvalCode, _ := evt.Event["approval_code"].(string)
	if p.approvalCode != "" && approvalCode != "" && approvalCode != p.approvalCode {
		p.logger.Info("Ignoring approval event for different approval code",
			zap.String("event_type", evt.Header.EventType),
			zap.String("approval_code", approvalCode))
		return nil
	}

	instanceCode, ok := evt.Event["instance_code"].(string)
	if !ok || instanceCode == "" {
		p.logger.Warn("Instance code not found in approval event",
			zap.String("event_type", evt.Header.EventType))
		return nil
	}

	entityType, entityID := p.extractEntity(evt.Event)
	if entityType == "" || entityID == 0 {
		p.logger.Warn("Approval event carries no entity reference",
			zap.String("instance_code", instanceCode))
		return nil
	}

	action := p.resolveAction(evt)
	if action == "" {
		p.logger.Info("Unhandled approval event type",
			zap.String("event_type", evt.Header.EventType))
		return nil
	}

	// The default user id mapping formats internal ids as decimal strings,
	// so the operator id parses back to the internal id.
	var actionBy int64
	fmt.Sscanf(stringField(evt.Event, "operate_user_id"), "%d", &actionBy)

	domainEvt := event.New(event.TypeApprovalActionPerformed, entityType, entityID, map[string]interface{}{
		"action":        action,
		"instance_code": instanceCode,
		"reason":        stringField(evt.Event, "comment"),
		"action_by":     actionBy,
	})

	p.logger.Info("Dispatching approval action event",
		zap.String("instance_code", instanceCode),
		zap.String("entity_type", entityType),
		zap.Int64("entity_id", entityID),
		zap.String("action", action))

	return p.dispatcher.Dispatch(ctx, domainEvt)
}

// resolveAction maps the Lark event type or instance status onto a
// workflow action.
func (p *EventProcessor) resolveAction(evt ApprovalEvent) string {
	eventType := strings.ToLower(evt.Header.EventType)
	switch {
	case strings.Contains(eventType, "approved"):
		return event.ActionApprove
	case strings.Contains(eventType, "rejected"):
		return event.ActionReject
	case strings.Contains(eventType, "cancel"), strings.Contains(eventType, "revert"):
		return event.ActionCancel
	}

	status, _ := evt.Event["status"].(string)
	switch strings.ToUpper(status) {
	case "APPROVED":
		return event.ActionApprove
	case "REJECTED":
		return event.ActionReject
	case "CANCELED", "DELETED", "REVERTED":
		return event.ActionCancel
	default:
		return ""
	}
}

// extractEntity pulls the entity discriminator and id out of the instance
// form the workflow wrote at creation time.
func (p *EventProcessor) extractEntity(eventData map[string]interface{}) (string, int64) {
	formRaw, _ := eventData["form"].(string)
	if formRaw == "" {
		return "", 0
	}

	var fields []struct {
		ID    string      `json:"id"`
		Value interface{} `json:"value"`
	}
	if err := json.Unmarshal([]byte(formRaw), &fields); err != nil {
		p.logger.Warn("Failed to parse approval form", zap.Error(err))
		return "", 0
	}

	var entityType string
	var entityID int64
	for _, f := range fields {
		switch f.ID {
		case "entity_type":
			entityType, _ = f.Value.(string)
		case "entity_id":
			switch v := f.Value.(type) {
			case float64:
				entityID = int64(v)
			case string:
				fmt.Sscanf(v, "%d", &entityID)
			}
		}
	}

	return entityType, entityID
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
