package services

import (
	"context"
	"fmt"
	"strings"

	"lending-system/internal/authz"
	"lending-system/internal/dto"
	"lending-system/internal/entities"
	"lending-system/internal/repositories"
	"lending-system/pkg/constants"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RackServiceInterface interface {
	List(ctx context.Context, actor authz.Actor) ([]entities.Rack, error)
	Get(ctx context.Context, actor authz.Actor, id uint64) (*entities.Rack, error)
	Create(ctx context.Context, actor authz.Actor, payload dto.CreateRackDTO) (*entities.Rack, error)
	Update(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateRackDTO) (*entities.Rack, error)
}

type RackService struct {
	rackRepo  repositories.RackRepositoryInterface
	txManager repositories.TxManagerInterface
	logger    *zap.Logger
}

func NewRackService(rackRepo repositories.RackRepositoryInterface, txManager repositories.TxManagerInterface, logger *zap.Logger) RackServiceInterface {
	return &RackService{rackRepo: rackRepo, txManager: txManager, logger: logger}
}

func (s *RackService) List(ctx context.Context, actor authz.Actor) ([]entities.Rack, error) {
	if err := authorize(actor, authz.InventoryView, nil); err != nil {
		return nil, err
	}
	return s.rackRepo.List(ctx)
}

func (s *RackService) Get(ctx context.Context, actor authz.Actor, id uint64) (*entities.Rack, error) {
	if err := authorize(actor, authz.InventoryView, nil); err != nil {
		return nil, err
	}
	return s.rackRepo.FindByID(ctx, id)
}

func (s *RackService) checkName(ctx context.Context, name string, excludeID uint64) error {
	exists, err := s.rackRepo.NameExists(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return conflict(fmt.Sprintf("Стойка с названием %s уже существует", name), nil)
	}
	return nil
}

func (s *RackService) Create(ctx context.Context, actor authz.Actor, payload dto.CreateRackDTO) (*entities.Rack, error) {
	if err := authorize(actor, authz.InventoryManage, nil); err != nil {
		return nil, err
	}
	if payload.FunctionalCapacity > payload.TotalCapacity {
		return nil, badRequest("Рабочая вместимость не может превышать общую", nil)
	}

	rack := &entities.Rack{
		Name:               strings.TrimSpace(payload.Name),
		Location:           strings.TrimSpace(payload.Location),
		TotalCapacity:      payload.TotalCapacity,
		FunctionalCapacity: payload.FunctionalCapacity,
		Status:             payload.Status,
	}
	if rack.Status == "" {
		rack.Status = constants.RackAvailable
	}
	if err := s.checkName(ctx, rack.Name, 0); err != nil {
		return nil, err
	}

	id, err := s.rackRepo.Create(ctx, rack)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Создана стойка", zap.Uint64("rackID", id), zap.String("name", rack.Name))
	return s.rackRepo.FindByID(ctx, id)
}

func (s *RackService) Update(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateRackDTO) (*entities.Rack, error) {
	if err := authorize(actor, authz.InventoryManage, nil); err != nil {
		return nil, err
	}
	if payload.FunctionalCapacity > payload.TotalCapacity {
		return nil, badRequest("Рабочая вместимость не может превышать общую", nil)
	}
	name := strings.TrimSpace(payload.Name)

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.rackRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if payload.TotalCapacity < current.DeviceCount {
			return conflict(
				fmt.Sprintf("В стойке уже %d устройств, общая вместимость не может быть меньше", current.DeviceCount),
				map[string]interface{}{"device_count": current.DeviceCount},
			)
		}
		if !strings.EqualFold(name, current.Name) {
			if err := s.checkName(ctx, name, id); err != nil {
				return err
			}
		}
		return s.rackRepo.Update(ctx, tx, &entities.Rack{
			ID:                 id,
			Name:               name,
			Location:           strings.TrimSpace(payload.Location),
			TotalCapacity:      payload.TotalCapacity,
			FunctionalCapacity: payload.FunctionalCapacity,
			Status:             payload.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Обновлена стойка", zap.Uint64("rackID", id))
	return s.rackRepo.FindByID(ctx, id)
}
