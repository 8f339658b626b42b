package model

import "github.com/google/uuid"

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Identity is the verified caller of a request, trusted as given.
type Identity struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   string
}

// CanViewAll reports whether the caller may read other users' records.
func (i Identity) CanViewAll() bool {
	return i.Role == RoleAdmin || i.Role == RoleManager
}
