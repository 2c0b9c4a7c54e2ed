package model

import (
	"context"

	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	authContextKey contextKey = "authContext"
)

// AuthContext carries the identity of the caller resolved from its token
type AuthContext struct {
	UserID types.UserID   `json:"user_id,omitempty"`
	Role   types.UserRole `json:"role,omitempty"`
	Name   string         `json:"name,omitempty"`
}

// IsAdmin reports whether the caller has the ADMIN role
func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == types.UserRoleAdmin
}

// HasRole reports whether the caller has one of the given roles
func (a *AuthContext) HasRole(roles ...types.UserRole) bool {
	if a == nil {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// WithAuthContext adds AuthContext to the context
func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	if authCtx == nil {
		return ctx
	}
	return context.WithValue(ctx, authContextKey, authCtx)
}

// GetAuthContext retrieves AuthContext from the context
func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	authCtx, ok := ctx.Value(authContextKey).(*AuthContext)
	return authCtx, ok && authCtx != nil
}

// Clone creates a copy of the AuthContext so it can cross async boundaries
func (a *AuthContext) Clone() *AuthContext {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
