package entity

import "time"

// User is a member of an organisation who can own or decide records
type User struct {
	ID             int64     `json:"id"`
	OrganisationID int64     `json:"organisation_id"`
	BranchID       int64     `json:"branch_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsAdmin returns true for roles that receive admin notifications
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleOwner
}
