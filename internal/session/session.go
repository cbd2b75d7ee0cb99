// Package session holds the client's view of who is logged in.
//
// A Session is a plain value owned by the application root and passed to
// each view that needs it. An empty token always means unauthenticated;
// the role is only meaningful while a token is present.
package session

import "github.com/ostrander/mtm/internal/models"

// Session pairs the opaque authentication token with the role the server
// returned alongside it. The zero value is the logged-out state.
type Session struct {
	Token string
	Role  models.Role
}

// New builds a session from a login response. Token and role always
// replace each other together.
func New(token string, role models.Role) Session {
	return Session{Token: token, Role: role}
}

// Authenticated reports whether a token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// SuperAdmin reports whether the session belongs to the super
// administrator. Only meaningful when Authenticated.
func (s Session) SuperAdmin() bool {
	return s.Role == models.RoleSuperAdmin
}
