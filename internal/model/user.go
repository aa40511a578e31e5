package model

import "time"

// Roles stored in users.role. RoleEmployee is the lowest-privilege default
// assigned on self-registration.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User represents an account record as stored in the `users` table. The json
// tags are omitted because these structs are used internally by the
// repository layer; handlers define separate response types.
//
// Fields:
//
//	ID           : primary key identifier of the user.
//	Email        : unique email address.
//	PasswordHash : bcrypt hashed password.
//	FullName     : display name.
//	Role         : role name (admin, manager or employee).
//	IsActive     : whether the account may authenticate.
//	IsVerified   : whether the email address has been confirmed.
//	LastLoginAt  : timestamp of the last successful login (nullable).
//	CreatedAt    : timestamp of creation.
//	UpdatedAt    : timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	FullName     string     // users.full_name
	Role         string     // users.role
	IsActive     bool       // users.is_active
	IsVerified   bool       // users.is_verified
	LastLoginAt  *time.Time // users.last_login_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}
