package service

import (
	"time"

	"github.com/rivohq/opsflow/internal/domain/entity"
)

// Settings carries the workflow tunables the orchestrators need. It is
// built once at startup from the loaded configuration and passed in
// explicitly; there is no ambient global state.
type Settings struct {
	DefaultCurrency      string
	DefaultPriority      string
	ApprovalFlowType     string
	RewardPointsPerClaim int64
	DefaultPageSize      int
	MaxPageSize          int

	// ApprovalDeadlines maps approval priority to the deadline attached to
	// the approval request. The deadline is data on the request; nothing
	// in-core expires a stale pending record.
	ApprovalDeadlines map[string]time.Duration
}

// DefaultSettings returns the settings used when no configuration overrides
// are supplied.
func DefaultSettings() Settings {
	return Settings{
		DefaultCurrency:      "USD",
		DefaultPriority:      "MEDIUM",
		ApprovalFlowType:     "SEQUENTIAL",
		RewardPointsPerClaim: 50,
		DefaultPageSize:      20,
		MaxPageSize:          100,
		ApprovalDeadlines: map[string]time.Duration{
			"CRITICAL": 4 * time.Hour,
			"HIGH":     24 * time.Hour,
			"MEDIUM":   72 * time.Hour,
			"LOW":      7 * 24 * time.Hour,
		},
	}
}

// DeadlineFor returns the approval deadline for a priority, falling back to
// the default priority's deadline.
func (s Settings) DeadlineFor(priority string) time.Duration {
	if d, ok := s.ApprovalDeadlines[priority]; ok {
		return d
	}
	if d, ok := s.ApprovalDeadlines[s.DefaultPriority]; ok {
		return d
	}
	return 72 * time.Hour
}

// PageSize normalizes a caller-supplied limit
func (s Settings) PageSize(limit int) int {
	if limit <= 0 || limit > s.MaxPageSize {
		return s.DefaultPageSize
	}
	return limit
}

// approvalActiveStatuses are the collaborator-side statuses that still
// accept a withdrawal.
var approvalActiveStatuses = []string{"PENDING", "IN_PROGRESS"}

// collectRecipients merges the record owner and the tenant's admins into the
// email and push recipient lists, deduplicating an owner who is also an
// admin.
func collectRecipients(owner *entity.User, admins []*entity.User) ([]string, []int64) {
	emails := make([]string, 0, len(admins)+1)
	pushIDs := make([]int64, 0, len(admins)+1)

	if owner != nil {
		if owner.Email != "" {
			emails = append(emails, owner.Email)
		}
		pushIDs = append(pushIDs, owner.ID)
	}
	for _, admin := range admins {
		if owner != nil && admin.ID == owner.ID {
			continue
		}
		if admin.Email != "" {
			emails = append(emails, admin.Email)
		}
		pushIDs = append(pushIDs, admin.ID)
	}
	return emails, pushIDs
}
