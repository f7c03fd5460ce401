package workflow

// State represents a record's position in the approval lifecycle
type State string

const (
	StatePending          State = "PENDING"
	StateApproved         State = "APPROVED"
	StateDeclined         State = "DECLINED"
	StateRejected         State = "REJECTED"
	StateCancelledByUser  State = "CANCELLED_BY_USER"
	StateCancelledByAdmin State = "CANCELLED_BY_ADMIN"
	StateTaken            State = "TAKEN"
	StatePartiallyTaken   State = "PARTIALLY_TAKEN"
)

var validStates = map[State]bool{
	StatePending:          true,
	StateApproved:         true,
	StateDeclined:         true,
	StateRejected:         true,
	StateCancelledByUser:  true,
	StateCancelledByAdmin: true,
	StateTaken:            true,
	StatePartiallyTaken:   true,
}

var terminalStates = map[State]bool{
	StateDeclined:         true,
	StateRejected:         true,
	StateCancelledByUser:  true,
	StateCancelledByAdmin: true,
	StateTaken:            true,
}

// activeStates are the statuses that occupy a date range for conflict
// detection purposes. PENDING records never block each other.
var activeStates = map[State]bool{
	StateApproved:       true,
	StateTaken:          true,
	StatePartiallyTaken: true,
}

// IsTerminal returns true if no further transitions are allowed from s
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsActive returns true if the state occupies its date range
func (s State) IsActive() bool {
	return activeStates[s]
}

// IsCancelled returns true for either cancellation sub-kind
func (s State) IsCancelled() bool {
	return s == StateCancelledByUser || s == StateCancelledByAdmin
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

// ActiveStates returns the status set that participates in conflict detection
func ActiveStates() []State {
	return []State{StateApproved, StateTaken, StatePartiallyTaken}
}
