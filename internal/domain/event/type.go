package event

// Type identifies the type of domain event
type Type string

const (
	// TypeApprovalActionPerformed is emitted when the approval collaborator
	// reports an action on an approval request. The stream is shared across
	// record types; listeners filter on the entity_type payload field.
	TypeApprovalActionPerformed Type = "approval.action.performed"

	TypeRecordCreated       Type = "record.created"
	TypeRecordStatusChanged Type = "record.status_changed"
)

// Approval action vocabulary carried by TypeApprovalActionPerformed events
const (
	ActionApprove     = "APPROVE"
	ActionReject      = "REJECT"
	ActionRequestInfo = "REQUEST_INFO"
	ActionCancel      = "CANCEL"
	ActionWithdraw    = "WITHDRAW"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeApprovalActionPerformed,
		TypeRecordCreated,
		TypeRecordStatusChanged:
		return true
	default:
		return false
	}
}
