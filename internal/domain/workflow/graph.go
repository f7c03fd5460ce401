package workflow

// RecordGraph returns the transition graph shared by claims and leave
// requests. The graph is a DAG rooted at PENDING; the MODIFY self-loop is
// the single sanctioned way back into PENDING after a critical-field change.
//
// Cancellation is legal from PENDING and from APPROVED. Repeating a terminal
// trigger (approving an APPROVED record, rejecting a REJECTED one) is an
// invalid transition, not a no-op.
func RecordGraph() StateMachineBuilder {
	builder := NewBuilder()

	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerDecline, StateDeclined).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerCancelByUser, StateCancelledByUser).
		Permit(TriggerCancelByAdmin, StateCancelledByAdmin).
		Permit(TriggerModify, StatePending)

	builder.Configure(StateApproved).
		Permit(TriggerCancelByUser, StateCancelledByUser).
		Permit(TriggerCancelByAdmin, StateCancelledByAdmin).
		Permit(TriggerTake, StateTaken).
		Permit(TriggerTakePart, StatePartiallyTaken)

	builder.Configure(StatePartiallyTaken).
		Permit(TriggerTake, StateTaken)

	return builder
}

// MachineFor builds a record state machine positioned at the given state
func MachineFor(current State) StateMachine {
	return RecordGraph().Build(current)
}
