package routes

import (
	"lending-system/internal/authz"
	"lending-system/internal/controllers"
	"lending-system/internal/services"
	"lending-system/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runReservationRouter(
	secureGroup *echo.Group,
	reservationService services.ReservationServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	ctrl := controllers.NewReservationController(reservationService, logger)

	reservations := secureGroup.Group("/reservations")
	{
		// заявитель
		reservations.POST("", ctrl.Create, authMW.AuthorizeAny(authz.ReservationsCreate))
		reservations.GET("/my", ctrl.ListMine, authMW.AuthorizeAny(authz.ReservationsCreate))
		reservations.POST("/:id/cancel", ctrl.Cancel, authMW.AuthorizeAny(authz.ReservationsCancel))

		// владелец или администратор, проверка по объекту в сервисе
		reservations.GET("/:id", ctrl.Get, authMW.AuthorizeAny(authz.ReservationsView))

		// администратор
		reservations.GET("", ctrl.List, authMW.AuthorizeAny(authz.ReservationsDecide))
		reservations.POST("/:id/approve", ctrl.Approve, authMW.AuthorizeAny(authz.ReservationsDecide))
		reservations.POST("/:id/reject", ctrl.Reject, authMW.AuthorizeAny(authz.ReservationsDecide))
		reservations.POST("/:id/finalize", ctrl.Finalize, authMW.AuthorizeAny(authz.ReservationsManage))
	}
}
