package services

import (
	"context"
	"net/http"

	"lending-system/internal/authz"
	"lending-system/internal/events"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/eventbus"
)

// authorize - единая проверка прав для всех сервисов.
func authorize(actor authz.Actor, permission string, target interface{}) error {
	if !authz.CanDo(permission, authz.NewContext(actor, target)) {
		return apperrors.ErrForbidden
	}
	return nil
}

func publish(ctx context.Context, bus eventbus.Publisher, name string, reservationID uint64, actor authz.Actor, details map[string]interface{}) {
	if bus == nil {
		return
	}
	bus.Publish(ctx, events.ReservationEvent{
		EventName:     name,
		ReservationID: reservationID,
		ActorID:       actor.UserID,
		Details:       details,
	})
}

func badRequest(message string, details interface{}) error {
	return apperrors.NewHttpError(http.StatusBadRequest, message, nil, details)
}

func conflict(message string, details interface{}) error {
	return apperrors.NewHttpError(http.StatusConflict, message, nil, details)
}
