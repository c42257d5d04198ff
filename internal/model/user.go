package model

import "time"

const (
	// RoleUser is the default role of a registered account.
	RoleUser = "user"
	// RoleKeeper is the role of staff managing the lost-and-found desk.
	RoleKeeper = "keeper"
	// RoleAdmin is the role of an administrator.
	// Admin accounts are exempt from every retention deletion path.
	RoleAdmin = "admin"
)

// A User represents a database record.
type User struct {
	Base `msgpack:",inline" storm:"inline"`

	Email    string `json:"email" msgpack:"email" storm:"unique"`
	Password string `json:"-"     msgpack:"password"`
	Name     string `json:"name"  msgpack:"name"`
	Role     string `json:"role"  msgpack:"role"  storm:"index"`

	IsActive      bool       `json:"is_active"                msgpack:"is_active"     storm:"index"`
	LastLoginAt   time.Time  `json:"last_login_at"            msgpack:"last_login_at" storm:"index"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty" msgpack:"deactivated_at"`

	// Retention fields. ScheduledForDeletion is true iff DeletionScheduledAt is set.
	ScheduledForDeletion     bool       `json:"scheduled_for_deletion"          msgpack:"scheduled_for_deletion" storm:"index"`
	DeletionScheduledAt      *time.Time `json:"deletion_scheduled_at,omitempty" msgpack:"deletion_scheduled_at"`
	DeletionWarningEmailSent bool       `json:"-"                               msgpack:"deletion_warning_email_sent"`
}

// NewUser returns a new active user with default params.
func NewUser() *User {
	return &User{
		Role:     RoleUser,
		IsActive: true,
	}
}

// IsAdmin returns true for administrator accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
