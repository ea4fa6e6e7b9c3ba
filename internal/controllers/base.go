package controllers

import (
	"net/http"

	"lending-system/internal/authz"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/utils"

	"github.com/labstack/echo/v4"
)

func actorOf(ctx echo.Context) (authz.Actor, error) {
	return utils.GetActorFromCtx(ctx.Request().Context())
}

// bindAndValidate разбирает тело запроса и прогоняет его через validator.
func bindAndValidate(ctx echo.Context, payload interface{}) error {
	if err := ctx.Bind(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil)
	}
	return ctx.Validate(payload)
}
