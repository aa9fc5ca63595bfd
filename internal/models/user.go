package models

import "time"

// UserRole represents the available roles for access decisions.
type UserRole string

const (
	RoleVendor  UserRole = "vendor"
	RoleCCS     UserRole = "ccs"
	RoleECS     UserRole = "ecs"
	RoleITAdmin UserRole = "itadmin"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleVendor, RoleCCS, RoleECS, RoleITAdmin:
		return true
	default:
		return false
	}
}

// RoleCapabilities captures per-role policy as data rather than inline
// membership checks.
type RoleCapabilities struct {
	RequiresForcedPunchOut bool
}

var roleCapabilities = map[UserRole]RoleCapabilities{
	RoleVendor:  {RequiresForcedPunchOut: false},
	RoleCCS:     {RequiresForcedPunchOut: true},
	RoleECS:     {RequiresForcedPunchOut: true},
	RoleITAdmin: {RequiresForcedPunchOut: true},
}

// Capabilities returns the capability table entry for the role. Unknown
// roles fall back to the vendor policy.
func (r UserRole) Capabilities() RoleCapabilities {
	if caps, ok := roleCapabilities[r]; ok {
		return caps
	}
	return roleCapabilities[RoleVendor]
}

// User represents an application user stored in the users table. The
// canteen/location assignment is fixed per profile and is never taken
// from a request.
type User struct {
	ID           string     `db:"id" json:"id"`
	SPNo         string     `db:"sp_no" json:"sp_no"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	CanteenID    string     `db:"canteen_id" json:"canteen_id"`
	CanteenName  string     `db:"canteen_name" json:"canteen_name"`
	LocationID   string     `db:"location_id" json:"location_id"`
	LocationName string     `db:"location_name" json:"location_name"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
