package dao

import (
	"context"
)

// Actor is the identified caller a DAO operation runs on behalf of. It is
// supplied by the request layer; the DAO never resolves identity itself.
type Actor struct {
	ID       int
	Username string
	Admin    bool
}

// IsAnonymous reports whether the actor carries no identity.
func (a *Actor) IsAnonymous() bool {
	return a == nil || a.ID == 0
}

type actorContextKey struct{}

// WithActor returns a context carrying the current actor. Visibility
// filters read it back via ActorFromContext.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor stored in the context, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}
