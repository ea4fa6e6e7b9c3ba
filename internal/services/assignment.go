package services

import (
	"context"
	"errors"
	"fmt"

	"lending-system/internal/authz"
	"lending-system/internal/dto"
	"lending-system/internal/entities"
	"lending-system/internal/events"
	"lending-system/internal/repositories"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/eventbus"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// AssignmentServiceInterface - выдача устройств по заявке: поштучно или целой стойкой.
// Оба способа сводятся к bind.
type AssignmentServiceInterface interface {
	AssignDevice(ctx context.Context, actor authz.Actor, reservationID, deviceID uint64) (*dto.AssignResultDTO, error)
	AssignFromRack(ctx context.Context, actor authz.Actor, reservationID, rackID uint64) (*dto.AssignResultDTO, error)
	Unassign(ctx context.Context, actor authz.Actor, assignmentID uint64) error
	UnassignAll(ctx context.Context, actor authz.Actor, reservationID uint64) (int, error)
}

type AssignmentService struct {
	reservationRepo repositories.ReservationRepositoryInterface
	assignmentRepo  repositories.AssignmentRepositoryInterface
	deviceRepo      repositories.DeviceRepositoryInterface
	rackRepo        repositories.RackRepositoryInterface
	txManager       repositories.TxManagerInterface
	bus             eventbus.Publisher
	logger          *zap.Logger
}

func NewAssignmentService(
	reservationRepo repositories.ReservationRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	deviceRepo repositories.DeviceRepositoryInterface,
	rackRepo repositories.RackRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus eventbus.Publisher,
	logger *zap.Logger,
) AssignmentServiceInterface {
	return &AssignmentService{
		reservationRepo: reservationRepo,
		assignmentRepo:  assignmentRepo,
		deviceRepo:      deviceRepo,
		rackRepo:        rackRepo,
		txManager:       txManager,
		bus:             bus,
		logger:          logger,
	}
}

// lockApproved блокирует заявку; менять состав выдачи можно только у одобренной.
func (s *AssignmentService) lockApproved(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Reservation, int, error) {
	r, err := s.reservationRepo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, 0, err
	}
	if r.Status != constants.ReservationApproved {
		return nil, 0, conflict("Устройства можно назначать только по одобренной заявке",
			map[string]interface{}{"status": r.Status})
	}
	assigned, err := s.assignmentRepo.CountByReservation(ctx, tx, id)
	if err != nil {
		return nil, 0, err
	}
	return r, assigned, nil
}

// bind привязывает устройства к заявке и переводит их в IN_USE.
// Устройства уже заблокированы вызывающим и проверены на AVAILABLE.
func (s *AssignmentService) bind(ctx context.Context, tx pgx.Tx, r *entities.Reservation, assigned int, deviceIDs []uint64) error {
	if assigned+len(deviceIDs) > r.Quantity {
		return conflict(
			fmt.Sprintf("Превышено запрошенное количество: назначено %d из %d", assigned, r.Quantity),
			map[string]interface{}{"assigned": assigned, "quantity": r.Quantity},
		)
	}
	if err := s.assignmentRepo.CreateBatch(ctx, tx, r.ID, deviceIDs); err != nil {
		return err
	}
	return s.deviceRepo.SetStatus(ctx, tx, deviceIDs, constants.EquipmentInUse)
}

func (s *AssignmentService) AssignDevice(ctx context.Context, actor authz.Actor, reservationID, deviceID uint64) (*dto.AssignResultDTO, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return nil, err
	}

	var result dto.AssignResultDTO
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		r, assigned, err := s.lockApproved(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if assigned >= r.Quantity {
			return conflict("По заявке уже назначено требуемое количество устройств", nil)
		}

		device, err := s.deviceRepo.LockByID(ctx, tx, deviceID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return badRequest("Устройство не найдено", map[string]interface{}{"device_id": deviceID})
			}
			return err
		}
		exists, err := s.assignmentRepo.Exists(ctx, tx, reservationID, deviceID)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Устройство уже назначено на эту заявку", nil)
		}
		if device.StatusCode != constants.EquipmentAvailable {
			return conflict(fmt.Sprintf("Устройство недоступно (статус: %s)", device.StatusName),
				map[string]interface{}{"status": device.StatusCode})
		}

		if err := s.bind(ctx, tx, r, assigned, []uint64{deviceID}); err != nil {
			return err
		}
		result = dto.AssignResultDTO{Assigned: 1, Total: assigned + 1, Quantity: r.Quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Устройство назначено", zap.Uint64("reservationID", reservationID), zap.Uint64("deviceID", deviceID))
	publish(ctx, s.bus, events.DevicesAssigned, reservationID, actor, map[string]interface{}{"device_ids": []uint64{deviceID}})
	return &result, nil
}

// AssignFromRack берет недостающие устройства из одной стойки по возрастанию id.
// Если свободных меньше, чем нужно, не назначается ничего.
func (s *AssignmentService) AssignFromRack(ctx context.Context, actor authz.Actor, reservationID, rackID uint64) (*dto.AssignResultDTO, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return nil, err
	}

	var result dto.AssignResultDTO
	var bound []uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		r, assigned, err := s.lockApproved(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		needed := r.Quantity - assigned
		if needed <= 0 {
			return conflict("По заявке уже назначено требуемое количество устройств", nil)
		}

		rack, err := s.rackRepo.LockByID(ctx, tx, rackID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return badRequest("Стойка не найдена", map[string]interface{}{"rack_id": rackID})
			}
			return err
		}
		if rack.Status != constants.RackAvailable {
			return conflict(fmt.Sprintf("Стойка %s недоступна", rack.Name), nil)
		}

		ids, err := s.deviceRepo.LockAvailableInRack(ctx, tx, rackID, needed)
		if err != nil {
			return err
		}
		if len(ids) < needed {
			return conflict(
				fmt.Sprintf("В стойке %s недостаточно свободных устройств: нужно %d, доступно %d", rack.Name, needed, len(ids)),
				map[string]interface{}{"needed": needed, "available": len(ids)},
			)
		}

		if err := s.bind(ctx, tx, r, assigned, ids); err != nil {
			return err
		}
		bound = ids
		result = dto.AssignResultDTO{Assigned: len(ids), Total: assigned + len(ids), Quantity: r.Quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Устройства назначены из стойки",
		zap.Uint64("reservationID", reservationID),
		zap.Uint64("rackID", rackID),
		zap.Int("count", len(bound)),
	)
	publish(ctx, s.bus, events.DevicesAssigned, reservationID, actor, map[string]interface{}{
		"device_ids": bound,
		"rack_id":    rackID,
	})
	return &result, nil
}

func (s *AssignmentService) Unassign(ctx context.Context, actor authz.Actor, assignmentID uint64) error {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return err
	}

	// Порядок блокировок как в UnassignAll и Finalize: сначала заявка, потом ее связи.
	a, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, _, err := s.lockApproved(ctx, tx, a.ReservationID); err != nil {
			return err
		}
		deviceID, err := s.assignmentRepo.DeleteInReservation(ctx, tx, a.ReservationID, assignmentID)
		if err != nil {
			return err
		}
		return s.deviceRepo.SetStatus(ctx, tx, []uint64{deviceID}, constants.EquipmentAvailable)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Устройство снято с заявки", zap.Uint64("reservationID", a.ReservationID), zap.Uint64("deviceID", a.DeviceID))
	publish(ctx, s.bus, events.DevicesUnassigned, a.ReservationID, actor, map[string]interface{}{"device_ids": []uint64{a.DeviceID}})
	return nil
}

func (s *AssignmentService) UnassignAll(ctx context.Context, actor authz.Actor, reservationID uint64) (int, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return 0, err
	}

	var released []uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, _, err := s.lockApproved(ctx, tx, reservationID); err != nil {
			return err
		}
		ids, err := s.assignmentRepo.DeleteByReservation(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return conflict("По заявке нет назначенных устройств", nil)
		}
		released = ids
		return s.deviceRepo.SetStatus(ctx, tx, ids, constants.EquipmentAvailable)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Все устройства сняты с заявки", zap.Uint64("reservationID", reservationID), zap.Int("count", len(released)))
	publish(ctx, s.bus, events.DevicesUnassigned, reservationID, actor, map[string]interface{}{"device_ids": released})
	return len(released), nil
}
