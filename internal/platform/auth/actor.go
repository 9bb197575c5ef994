package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Actor is the authenticated staff member a request acts on behalf of.
type Actor struct {
	ID       uuid.UUID
	Email    string
	FullName string
	Title    string
	IsAdmin  bool
}

// Attestation is the signature line used for screening_completed_by:
// "Jane Doe, RN".
func (a Actor) Attestation() string {
	name := strings.TrimSpace(a.FullName)
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return name
	}
	return name + ", " + title
}

// CanAccess reports whether the actor may act on a patient with the given
// assigned staff. Admins can access every patient.
func (a Actor) CanAccess(assigned []uuid.UUID) bool {
	if a.IsAdmin {
		return true
	}
	for _, id := range assigned {
		if id == a.ID {
			return true
		}
	}
	return false
}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ActorKey, a)
}

// ActorFromContext returns the actor set by JWTMiddleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ActorKey).(Actor)
	return a, ok
}

// UserIDFromContext returns the actor id as a string, or "".
func UserIDFromContext(ctx context.Context) string {
	if a, ok := ActorFromContext(ctx); ok {
		return a.ID.String()
	}
	return ""
}
