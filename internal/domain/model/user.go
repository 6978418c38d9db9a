package model

import "time"

// Role describes what a user is allowed to do in the store.
type Role string

const (
	RoleSalesRep   Role = "sales_rep"
	RoleAccountant Role = "accountant"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSalesRep, RoleAccountant, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User represents a staff account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	UserID int64
	Role   Role
}

// Is reports whether the actor holds any of the given roles.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
