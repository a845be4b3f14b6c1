package service

import (
	"context"

	"github.com/iliyamo/spark-meetup/internal/model"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uint64
	Role   model.Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored on ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == 0 {
		return Principal{}, false
	}
	return p, true
}

// requireUser resolves the authenticated caller or fails with ErrUnauthorized.
func requireUser(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	return p, nil
}

// requireRole is requireUser plus a role check. Admins satisfy every role.
func requireRole(ctx context.Context, role model.Role) (Principal, error) {
	p, err := requireUser(ctx)
	if err != nil {
		return Principal{}, err
	}
	if p.Role != role && !p.IsAdmin() {
		return Principal{}, ErrForbidden
	}
	return p, nil
}

// requireOwnerOrAdmin allows the organizer of e and admins.
func requireOwnerOrAdmin(ctx context.Context, e model.Event) (Principal, error) {
	p, err := requireUser(ctx)
	if err != nil {
		return Principal{}, err
	}
	if p.UserID != e.OrganizerID && !p.IsAdmin() {
		return Principal{}, ErrForbidden
	}
	return p, nil
}
