package middleware

import (
	"context"

	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	"github.com/angelmondragon/leadfunnel-backend/pkg/types"
)

type contextKey string

const ctxActor contextKey = "actor"

// WithActor stores the authenticated actor on the context.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the authenticated actor, or the zero Actor.
func ActorFromContext(ctx context.Context) types.Actor {
	if ctx == nil {
		return types.Actor{}
	}
	if v, ok := ctx.Value(ctxActor).(types.Actor); ok {
		return v
	}
	return types.Actor{}
}

func UserIDFromContext(ctx context.Context) string {
	return ActorFromContext(ctx).ID
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	return ActorFromContext(ctx).Role
}
