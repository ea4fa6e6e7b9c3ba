package routes

import (
	"lending-system/internal/authz"
	"lending-system/internal/controllers"
	"lending-system/internal/services"
	"lending-system/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runInventoryRouter(
	secureGroup *echo.Group,
	deviceService services.DeviceServiceInterface,
	rackService services.RackServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	deviceCtrl := controllers.NewDeviceController(deviceService, logger)
	rackCtrl := controllers.NewRackController(rackService, logger)

	view := authMW.AuthorizeAny(authz.InventoryView)
	manage := authMW.AuthorizeAny(authz.InventoryManage)

	secureGroup.GET("/devices", deviceCtrl.List, view)
	secureGroup.GET("/devices/:id", deviceCtrl.Get, view)
	secureGroup.POST("/devices", deviceCtrl.Create, manage)
	secureGroup.PUT("/devices/:id", deviceCtrl.Update, manage)
	secureGroup.DELETE("/devices/:id", deviceCtrl.Decommission, manage)
	secureGroup.GET("/equipment-statuses", deviceCtrl.Statuses, view)

	secureGroup.GET("/racks", rackCtrl.List, view)
	secureGroup.GET("/racks/:id", rackCtrl.Get, view)
	secureGroup.POST("/racks", rackCtrl.Create, manage)
	secureGroup.PUT("/racks/:id", rackCtrl.Update, manage)
}
