package entity

import "time"

// LeaveRequest represents a leave request flowing through the approval workflow
type LeaveRequest struct {
	WorkflowRecord

	LeaveType string    `json:"leave_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	HalfDay   bool      `json:"half_day"`

	// Duration is the business-day count across the inclusive date range,
	// minus 0.5 for a half-day request. Recomputed whenever dates change
	// while the record is still mutable.
	Duration float64 `json:"duration"`

	Reason string `json:"reason,omitempty"`
}

// Overlaps reports whether the request's date range overlaps [start, end].
// Bounds are inclusive on both sides: ranges that merely touch on a boundary
// date DO overlap. Same-day handover is not allowed by policy.
func (l *LeaveRequest) Overlaps(start, end time.Time) bool {
	return !l.StartDate.After(end) && !l.EndDate.Before(start)
}

// ComputeDuration recomputes Duration from the current date range
func (l *LeaveRequest) ComputeDuration() {
	l.Duration = BusinessDays(l.StartDate, l.EndDate)
	if l.HalfDay && l.Duration > 0 {
		l.Duration -= 0.5
	}
}

// BusinessDays counts the weekdays in the inclusive range [start, end].
// Returns 0 when end precedes start.
func BusinessDays(start, end time.Time) float64 {
	if end.Before(start) {
		return 0
	}

	days := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}
