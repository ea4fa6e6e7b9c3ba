package services

import (
	"context"
	"errors"

	"lending-system/internal/authz"
	"lending-system/internal/entities"
	"lending-system/internal/events"
	"lending-system/internal/repositories"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/eventbus"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SupervisorServiceInterface interface {
	Assign(ctx context.Context, actor authz.Actor, reservationID, supervisorID uint64) (*entities.SupervisorAssignment, error)
	Unassign(ctx context.Context, actor authz.Actor, assignmentID uint64) error
}

type SupervisorService struct {
	reservationRepo repositories.ReservationRepositoryInterface
	supervisorRepo  repositories.SupervisorRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	txManager       repositories.TxManagerInterface
	bus             eventbus.Publisher
	logger          *zap.Logger
}

func NewSupervisorService(
	reservationRepo repositories.ReservationRepositoryInterface,
	supervisorRepo repositories.SupervisorRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus eventbus.Publisher,
	logger *zap.Logger,
) SupervisorServiceInterface {
	return &SupervisorService{
		reservationRepo: reservationRepo,
		supervisorRepo:  supervisorRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		bus:             bus,
		logger:          logger,
	}
}

func (s *SupervisorService) Assign(ctx context.Context, actor authz.Actor, reservationID, supervisorID uint64) (*entities.SupervisorAssignment, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, badRequest("Пользователь не найден", map[string]interface{}{"supervisor_id": supervisorID})
		}
		return nil, err
	}
	if user.RoleCode != constants.RoleSupervisor {
		return nil, badRequest("Пользователь не является супервайзером", map[string]interface{}{"role": user.RoleCode})
	}

	var id uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		r, err := s.reservationRepo.LockByID(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if constants.IsFinalReservationStatus(r.Status) {
			return conflict("Заявка уже закрыта", map[string]interface{}{"status": r.Status})
		}
		exists, err := s.supervisorRepo.Exists(ctx, tx, reservationID, supervisorID)
		if err != nil {
			return err
		}
		if exists {
			return conflict("Супервайзер уже назначен на эту заявку", nil)
		}
		id, err = s.supervisorRepo.Create(ctx, tx, reservationID, supervisorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Назначен супервайзер", zap.Uint64("reservationID", reservationID), zap.Uint64("supervisorID", supervisorID))
	publish(ctx, s.bus, events.SupervisorAssigned, reservationID, actor, map[string]interface{}{"supervisor_id": supervisorID})
	return s.supervisorRepo.FindByID(ctx, id)
}

func (s *SupervisorService) Unassign(ctx context.Context, actor authz.Actor, assignmentID uint64) error {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return err
	}
	a, err := s.supervisorRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.supervisorRepo.Delete(ctx, assignmentID); err != nil {
		return err
	}
	publish(ctx, s.bus, events.SupervisorUnassigned, a.ReservationID, actor, map[string]interface{}{"supervisor_id": a.SupervisorID})
	return nil
}
