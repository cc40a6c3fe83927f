// Package authz holds the single authorization policy shared by every
// protected route.
package authz

import "github.com/noah-isme/simpadu-api/internal/models"

// Capability is something a route requires of the caller.
type Capability string

const (
	// CapPortal is granted to any authenticated identity.
	CapPortal Capability = "portal"
	// CapManageStudents is granted to administrators only.
	CapManageStudents Capability = "manage_students"
)

// Decision is the outcome of evaluating the policy.
type Decision int

const (
	Loading Decision = iota
	Authorized
	Unauthorized
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Authorized:
		return "authorized"
	default:
		return "unauthorized"
	}
}

var grants = map[models.Role]map[Capability]struct{}{
	models.RoleAdmin: {
		CapPortal:         {},
		CapManageStudents: {},
	},
	models.RoleMahasiswa: {
		CapPortal: {},
	},
	models.RoleUnknown: {
		CapPortal: {},
	},
}

// Grants reports whether role holds every capability in required.
func Grants(role models.Role, required ...Capability) bool {
	held, ok := grants[role]
	if !ok {
		return false
	}
	for _, c := range required {
		if _, ok := held[c]; !ok {
			return false
		}
	}
	return true
}

// Decide evaluates the policy for a session snapshot. No role is inspected
// while the session is still loading.
func Decide(state models.SessionState, required ...Capability) Decision {
	if state.IsLoading {
		return Loading
	}
	if !state.IsAuthenticated || state.Identity == nil {
		return Unauthorized
	}
	if !Grants(state.Identity.RoleName(), required...) {
		return Unauthorized
	}
	return Authorized
}

// LandingPath is where a freshly authenticated identity is sent.
func LandingPath(role models.Role) string {
	if Grants(role, CapManageStudents) {
		return "/admin/dashboard"
	}
	return "/dashboard"
}
