package model

import "strings"

// Role is the privilege level of an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// Capability names an action gated by role.
type Capability uint8

const (
	// CapManageCatalog covers create/update/delete of movies, shows,
	// theatres, cineasts and media uploads.
	CapManageCatalog Capability = iota
	CapListUsers
	CapDeleteUsers
	CapGrantAdmin
	CapViewAllBookings
	CapManageBookings
)

var capabilities = map[Role][]Capability{
	RoleUser:  nil,
	RoleAdmin: {CapManageCatalog, CapListUsers, CapViewAllBookings, CapManageBookings},
	RoleOwner: {CapManageCatalog, CapListUsers, CapDeleteUsers, CapGrantAdmin, CapViewAllBookings, CapManageBookings},
}

// ParseRole normalizes s into a known role. Unknown values yield false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin, RoleOwner:
		return r, true
	}
	return "", false
}

// IsAdmin reports whether the role carries the admin flag. Owners are admins.
func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleOwner }

// Can reports whether the role grants c.
func (r Role) Can(c Capability) bool {
	for _, have := range capabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}
