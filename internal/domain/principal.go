package domain

import "strings"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the authenticated caller supplied by the auth collaborator.
type Principal struct {
	ID   string
	Role string
}

// IsAdmin reports whether the principal carries the elevated role.
func (p Principal) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(p.Role), RoleAdmin)
}

// CanAccess reports whether the principal owns the resource or is an admin.
func (p Principal) CanAccess(ownerID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.ID != "" && p.ID == ownerID
}
