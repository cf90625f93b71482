package userctx

import "context"

// Context key type
type contextKey string

const actorIDKey contextKey = "actor_id"
const actorNameKey contextKey = "actor_name"

// SetActorID adds the acting user's ID to the request context
func SetActorID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, actorIDKey, id)
}

// ActorID retrieves the acting user's ID from the request context. Nil when
// the request carries no attributed user.
func ActorID(ctx context.Context) *int64 {
	if id, ok := ctx.Value(actorIDKey).(int64); ok {
		return &id
	}
	return nil
}

// SetActorName adds the acting user's display name to the request context
func SetActorName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorNameKey, name)
}

// ActorName retrieves the acting user's display name from the request context
func ActorName(ctx context.Context) string {
	name, ok := ctx.Value(actorNameKey).(string)
	if !ok {
		return "anonymous"
	}
	return name
}
