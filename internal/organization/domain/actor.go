package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Actor is the resolved identity and membership for one request. It is
// populated once by the auth middleware and passed through the request
// context instead of being re-queried at each call site.
type Actor struct {
	UserID      snowflake.ID
	Email       string
	IsSuperuser bool

	// Membership fields are zero for superusers and users without an
	// active organization membership.
	OrgID        snowflake.ID
	Role         Role
	MembershipID snowflake.ID
}

// HasMembership reports whether the actor has an active organization
// membership resolved.
func (a Actor) HasMembership() bool { return a.OrgID != 0 }

// Can reports whether the actor's membership role grants a capability.
func (a Actor) Can(cap Capability) bool {
	return a.HasMembership() && a.Role.Can(cap)
}

type actorKey struct{}

// WithActor stores the resolved actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor resolved for this request.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
