package routes

import (
	"lending-system/internal/authz"
	"lending-system/internal/controllers"
	"lending-system/internal/services"
	"lending-system/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runCatalogRouter(secureGroup *echo.Group, catalogService services.CatalogServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	ctrl := controllers.NewCatalogController(catalogService, logger)

	catalog := secureGroup.Group("/catalog", authMW.AuthorizeAny(authz.CatalogsView))
	{
		catalog.GET("/programs", ctrl.Programs)
		catalog.GET("/programs/:id/subjects", ctrl.Subjects)
		catalog.GET("/buildings", ctrl.Buildings)
		catalog.GET("/buildings/:id/rooms", ctrl.Rooms)
		catalog.GET("/responsibles", ctrl.Responsibles)
		catalog.GET("/supervisors", ctrl.Supervisors)
	}
}
