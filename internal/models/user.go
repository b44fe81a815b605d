package models

import (
	"strings"
	"time"
)

// Role identifies a platform account's privilege level.
type Role string

// Platform roles.
const (
	RoleStudent    Role = "STUDENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// NormalizeRole maps arbitrary server role spellings onto the closed set.
func NormalizeRole(raw string) Role {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ADMIN":
		return RoleAdmin
	case "SUPER_ADMIN", "SUPERADMIN":
		return RoleSuperAdmin
	default:
		return RoleStudent
	}
}

// IsAdmin reports whether the role may use the triage surface.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User is a platform account in either roster.
type User struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        Role       `json:"role"`
	Status      string     `json:"status"`
	AvatarURL   string     `json:"avatar_url"`
	InvitedAt   *time.Time `json:"invited_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// DisplayName picks the friendliest available identifier, preferring the
// full name, then the username, then the email address.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
