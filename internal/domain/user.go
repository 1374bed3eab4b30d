package domain

import (
	"context"
	"errors"
)

// User is the authenticated principal taken from identity-provider claims.
type User struct {
	ID    string
	Email string
	Role  Role
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin can run every operation, including bulk jobs and purges.
	RoleAdmin Role = "admin"

	// RoleUser can read its own account and file deposit/withdraw requests.
	RoleUser Role = "user"
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// IsAdmin reports whether the role grants admin operations.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanAccessAccount reports whether u may act on accountID.
func (u *User) CanAccessAccount(accountID string) bool {
	if u == nil {
		return false
	}
	return u.Role.IsAdmin() || u.ID == accountID
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok && user != nil
}

// ActorID names the principal for audit rows.
func ActorID(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok {
		return user.ID
	}
	return "system"
}

type requestIDContextKey struct{}

// ContextWithRequestID stores the HTTP request id for audit rows.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
