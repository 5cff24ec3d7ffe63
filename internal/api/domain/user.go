package domain

import "time"

// Role is the strictly ordered account role hierarchy.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Rank returns the position of the role in the hierarchy; higher outranks
// lower. Unknown roles rank below user.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r.Rank() > 0 }

type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string // argon2 encoded
	Role            Role
	IsActive        bool
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserUpdate carries the mutable profile fields; nil means "leave unchanged".
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string // plaintext, hashed by the service
	IsActive *bool
	Role     *Role
}
