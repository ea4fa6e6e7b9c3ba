// Файл: pkg/utils/context_utils.go

package utils

import (
	"context"

	"lending-system/internal/authz"
	"lending-system/pkg/contextkeys"
	apperrors "lending-system/pkg/errors"
)

func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, contextkeys.ActorKey, actor)
}

func GetActorFromCtx(ctx context.Context) (authz.Actor, error) {
	actor, ok := ctx.Value(contextkeys.ActorKey).(authz.Actor)
	if !ok || actor.UserID == 0 {
		return authz.Actor{}, apperrors.ErrActorNotFoundInContext
	}
	return actor, nil
}
