package workflow

// Trigger represents an action that can cause a state transition
type Trigger string

const (
	TriggerApprove       Trigger = "APPROVE"
	TriggerDecline       Trigger = "DECLINE"
	TriggerReject        Trigger = "REJECT"
	TriggerCancelByUser  Trigger = "CANCEL_BY_USER"
	TriggerCancelByAdmin Trigger = "CANCEL_BY_ADMIN"
	// TriggerModify re-opens a pending record after a critical-field change.
	// This is the only transition that leaves and re-enters PENDING.
	TriggerModify   Trigger = "MODIFY"
	TriggerTake     Trigger = "TAKE"
	TriggerTakePart Trigger = "TAKE_PARTIAL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
