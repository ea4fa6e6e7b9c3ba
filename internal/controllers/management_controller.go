package controllers

import (
	"net/http"

	"lending-system/internal/dto"
	"lending-system/internal/services"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ManagementController - экран администратора по одной заявке:
// состав выдачи, супервайзеры, фотофиксация, служебные отметки.
type ManagementController struct {
	managementService  services.ManagementServiceInterface
	reservationService services.ReservationServiceInterface
	assignmentService  services.AssignmentServiceInterface
	supervisorService  services.SupervisorServiceInterface
	evidenceService    services.EvidenceServiceInterface
	logger             *zap.Logger
}

func NewManagementController(
	managementService services.ManagementServiceInterface,
	reservationService services.ReservationServiceInterface,
	assignmentService services.AssignmentServiceInterface,
	supervisorService services.SupervisorServiceInterface,
	evidenceService services.EvidenceServiceInterface,
	logger *zap.Logger,
) *ManagementController {
	return &ManagementController{
		managementService:  managementService,
		reservationService: reservationService,
		assignmentService:  assignmentService,
		supervisorService:  supervisorService,
		evidenceService:    evidenceService,
		logger:             logger,
	}
}

func (c *ManagementController) Detail(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.managementService.Detail(ctx.Request().Context(), actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Данные заявки получены", http.StatusOK)
}

func (c *ManagementController) Update(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateManagementDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.UpdateManagement(ctx.Request().Context(), actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Отметки сохранены", http.StatusOK)
}

func (c *ManagementController) AssignDevice(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AssignDeviceDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assignmentService.AssignDevice(ctx.Request().Context(), actor, id, payload.DeviceID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Устройство назначено", http.StatusOK)
}

func (c *ManagementController) AssignRack(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AssignRackDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assignmentService.AssignFromRack(ctx.Request().Context(), actor, id, payload.RackID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Устройства из стойки назначены", http.StatusOK)
}

func (c *ManagementController) Unassign(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.assignmentService.Unassign(ctx.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Устройство снято с заявки", http.StatusOK)
}

func (c *ManagementController) UnassignAll(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	n, err := c.assignmentService.UnassignAll(ctx.Request().Context(), actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]int{"released": n}, "Все устройства сняты с заявки", http.StatusOK)
}

func (c *ManagementController) AssignSupervisor(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AssignSupervisorDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.supervisorService.Assign(ctx.Request().Context(), actor, id, payload.SupervisorID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Супервайзер назначен", http.StatusCreated)
}

func (c *ManagementController) UnassignSupervisor(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.supervisorService.Unassign(ctx.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Супервайзер снят с заявки", http.StatusOK)
}

// UploadEvidence принимает multipart: file, type, description.
func (c *ManagementController) UploadEvidence(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.EvidenceUploadDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Файл не передан", err, nil), c.logger)
	}
	src, err := header.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer src.Close()

	res, err := c.evidenceService.Upload(ctx.Request().Context(), actor, id, payload, services.UploadedFile{
		Name:    header.Filename,
		Size:    header.Size,
		Content: src,
	})
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Фото загружено", http.StatusCreated)
}

func (c *ManagementController) ListEvidence(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.evidenceService.List(ctx.Request().Context(), actor, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Фотофиксация получена", http.StatusOK)
}

func (c *ManagementController) DeleteEvidence(ctx echo.Context) error {
	actor, err := actorOf(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.evidenceService.Delete(ctx.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Фото удалено", http.StatusOK)
}
