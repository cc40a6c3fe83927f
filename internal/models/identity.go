package models

import "strings"

// Role is the portal role of an authenticated identity.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleMahasiswa Role = "mahasiswa"
	RoleUnknown   Role = "unknown"
)

// ParseRole maps the remote role string onto a Role, ignoring case and
// surrounding whitespace.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleMahasiswa:
		return RoleMahasiswa
	default:
		return RoleUnknown
	}
}

// Identity is the authenticated user as kept in the session. It never carries
// the password.
type Identity struct {
	ID    FlexString `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  string     `json:"role"`
	Image *string    `json:"image,omitempty"`
}

// RoleName returns the parsed role.
func (i Identity) RoleName() Role {
	return ParseRole(i.Role)
}

// NIM derives the student number from the local part of the institutional
// email address.
func (i Identity) NIM() string {
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}

// UserRecord is the remote user document including the plaintext secret. It
// only lives for the duration of a login attempt.
type UserRecord struct {
	Identity
	Password string `json:"password"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse returns the identity and where the client should go next.
type LoginResponse struct {
	User     Identity `json:"user"`
	Redirect string   `json:"redirect"`
}

// LogoutResponse points the client back at the login view.
type LogoutResponse struct {
	Redirect string `json:"redirect"`
}
