package service

import (
	"fmt"
	"strings"

	"github.com/rivohq/opsflow/internal/domain/entity"
	"github.com/rivohq/opsflow/internal/domain/workflow"
)

// ConflictResult reports whether a candidate leave request overlaps the
// owner's existing active leave.
type ConflictResult struct {
	Conflict    bool
	Overlapping []*entity.LeaveRequest
}

// DetectConflict checks the candidate's inclusive date range against the
// owner's existing records. Only records in an active status (APPROVED,
// TAKEN, PARTIALLY_TAKEN) participate; pending records never block each
// other. Boundary-touching ranges conflict: a request starting the day an
// existing leave ends counts as an overlap by policy.
func DetectConflict(candidate *entity.LeaveRequest, existing []*entity.LeaveRequest) ConflictResult {
	var overlapping []*entity.LeaveRequest

	for _, rec := range existing {
		if rec.ID == candidate.ID {
			continue
		}
		if rec.IsDeleted {
			continue
		}
		if !workflow.State(rec.Status).IsActive() {
			continue
		}
		if rec.Overlaps(candidate.StartDate, candidate.EndDate) {
			overlapping = append(overlapping, rec)
		}
	}

	return ConflictResult{
		Conflict:    len(overlapping) > 0,
		Overlapping: overlapping,
	}
}

// ConflictReason builds the system-generated rejection reason enumerating
// the conflicting record ids.
func (r ConflictResult) ConflictReason() string {
	ids := make([]string, 0, len(r.Overlapping))
	for _, rec := range r.Overlapping {
		ids = append(ids, fmt.Sprintf("%d", rec.ID))
	}
	return fmt.Sprintf("overlaps existing active leave (record ids: %s)", strings.Join(ids, ", "))
}
