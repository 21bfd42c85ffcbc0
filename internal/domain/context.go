package domain

import "context"

type contextKey string

const actorContextKey contextKey = "actor_id"

// WithActor returns a context carrying the acting partner's ID.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorContextKey, actorID)
}

// ActorFromContext returns the acting partner's ID, or "system" when absent.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorContextKey).(string); ok && actor != "" {
		return actor
	}

	return "system"
}
