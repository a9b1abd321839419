package model

import "strings"

// Role determines which submissions an identity may observe and mutate.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AccessContext holds the authorization view of one authenticated identity.
// It is computed once per identity change and passed into every engine
// operation, so privilege checks never re-derive the role ad hoc.
type AccessContext struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin returns true if the context carries administrator privilege.
func (a AccessContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsAuthenticated returns true if the context belongs to a signed-in identity.
func (a AccessContext) IsAuthenticated() bool {
	return a.UserID != ""
}

// NewAccessContext builds the access context for an identity.
// The administrator is the single identity whose email equals the
// configured admin address.
func NewAccessContext(identity Identity, adminEmail string) AccessContext {
	role := RoleUser
	if adminEmail != "" && strings.EqualFold(identity.Email, adminEmail) {
		role = RoleAdmin
	}
	return AccessContext{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   role,
	}
}
