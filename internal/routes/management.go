package routes

import (
	"lending-system/internal/authz"
	"lending-system/internal/controllers"
	"lending-system/internal/services"
	"lending-system/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runManagementRouter(
	secureGroup *echo.Group,
	managementService services.ManagementServiceInterface,
	reservationService services.ReservationServiceInterface,
	assignmentService services.AssignmentServiceInterface,
	supervisorService services.SupervisorServiceInterface,
	evidenceService services.EvidenceServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	ctrl := controllers.NewManagementController(
		managementService, reservationService, assignmentService, supervisorService, evidenceService, logger,
	)

	m := secureGroup.Group("/management", authMW.AuthorizeAny(authz.ReservationsManage))
	{
		m.GET("/reservations/:id", ctrl.Detail)
		m.PUT("/reservations/:id", ctrl.Update)

		m.POST("/reservations/:id/devices", ctrl.AssignDevice)
		m.POST("/reservations/:id/racks", ctrl.AssignRack)
		m.DELETE("/reservations/:id/devices", ctrl.UnassignAll)
		m.DELETE("/assignments/:id", ctrl.Unassign)

		m.POST("/reservations/:id/supervisors", ctrl.AssignSupervisor)
		m.DELETE("/supervisors/:id", ctrl.UnassignSupervisor)

		m.POST("/reservations/:id/evidence", ctrl.UploadEvidence)
		m.GET("/reservations/:id/evidence", ctrl.ListEvidence)
		m.DELETE("/evidence/:id", ctrl.DeleteEvidence)
	}
}
