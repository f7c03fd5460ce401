package entity

import "time"

// Notification kinds emitted by the workflow orchestrators
const (
	NotificationKindRecordCreated   = "RECORD_CREATED"
	NotificationKindRecordApproved  = "RECORD_APPROVED"
	NotificationKindRecordRejected  = "RECORD_REJECTED"
	NotificationKindRecordCancelled = "RECORD_CANCELLED"
)

// Notification is a persisted trace of a workflow notification. Delivery is
// best-effort; the record's own status is the source of truth.
type Notification struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	// RecipientRoles is the comma-joined role list the internal feed
	// addresses, e.g. "ADMIN" or "ADMIN,OWNER".
	RecipientRoles string     `json:"recipient_roles,omitempty"`
	OwnerID        int64      `json:"owner_id"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
