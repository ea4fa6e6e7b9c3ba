package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lending-system/internal/authz"
	"lending-system/internal/dto"
	"lending-system/internal/entities"
	"lending-system/internal/repositories"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/types"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DeviceServiceInterface interface {
	List(ctx context.Context, actor authz.Actor, filter types.Filter) (*dto.DeviceListDTO, uint64, error)
	Get(ctx context.Context, actor authz.Actor, id uint64) (*entities.Device, error)
	Create(ctx context.Context, actor authz.Actor, payload dto.CreateDeviceDTO) (*entities.Device, error)
	Update(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateDeviceDTO) (*entities.Device, error)
	Decommission(ctx context.Context, actor authz.Actor, id uint64) (*entities.Device, error)
	Statuses(ctx context.Context, actor authz.Actor) ([]entities.EquipmentStatus, error)
}

type DeviceService struct {
	deviceRepo repositories.DeviceRepositoryInterface
	rackRepo   repositories.RackRepositoryInterface
	statusRepo repositories.EquipmentStatusRepositoryInterface
	txManager  repositories.TxManagerInterface
	logger     *zap.Logger
}

func NewDeviceService(
	deviceRepo repositories.DeviceRepositoryInterface,
	rackRepo repositories.RackRepositoryInterface,
	statusRepo repositories.EquipmentStatusRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) DeviceServiceInterface {
	return &DeviceService{
		deviceRepo: deviceRepo,
		rackRepo:   rackRepo,
		statusRepo: statusRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

func (s *DeviceService) List(ctx context.Context, actor authz.Actor, filter types.Filter) (*dto.DeviceListDTO, uint64, error) {
	if err := authorize(actor, authz.InventoryView, nil); err != nil {
		return nil, 0, err
	}

	f := entities.DeviceFilter{Search: filter.Search, Sort: filter.Sort}
	if status := filter.StringFilter("status"); status != "" {
		if !constants.IsEquipmentStatus(status) {
			return nil, 0, badRequest("Неизвестный статус устройства", map[string]interface{}{"status": status})
		}
		f.StatusCode = status
	}
	if raw := filter.StringFilter("rack_id"); raw != "" {
		rackID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, 0, badRequest("Неверный фильтр rack_id", nil)
		}
		f.RackID = &rackID
	}
	if filter.WithPagination {
		f.Limit = uint64(filter.Limit)
		f.Offset = uint64(filter.Offset)
	}

	devices, total, err := s.deviceRepo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	stats, err := s.deviceRepo.Stats(ctx)
	if err != nil {
		return nil, 0, err
	}
	return &dto.DeviceListDTO{Devices: devices, Stats: stats}, total, nil
}

func (s *DeviceService) Get(ctx context.Context, actor authz.Actor, id uint64) (*entities.Device, error) {
	if err := authorize(actor, authz.InventoryView, nil); err != nil {
		return nil, err
	}
	return s.deviceRepo.FindByID(ctx, id)
}

// checkRackCapacity блокирует стойку и проверяет, что в ней есть место еще для одного устройства.
func (s *DeviceService) checkRackCapacity(ctx context.Context, tx pgx.Tx, rackID uint64) error {
	rack, err := s.rackRepo.LockByID(ctx, tx, rackID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return badRequest("Стойка не найдена", map[string]interface{}{"rack_id": rackID})
		}
		return err
	}
	if rack.DeviceCount+1 > rack.TotalCapacity {
		return conflict(
			fmt.Sprintf("Стойка %s заполнена: %d из %d", rack.Name, rack.DeviceCount, rack.TotalCapacity),
			map[string]interface{}{"device_count": rack.DeviceCount, "total_capacity": rack.TotalCapacity},
		)
	}
	return nil
}

func (s *DeviceService) checkSerial(ctx context.Context, tx pgx.Tx, serial string, excludeID uint64) error {
	exists, err := s.deviceRepo.SerialExists(ctx, tx, serial, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return duplicateSerial(serial)
	}
	return nil
}

func duplicateSerial(serial string) error {
	return conflict(fmt.Sprintf("Устройство с серийным номером %s уже существует", serial), nil)
}

func (s *DeviceService) Create(ctx context.Context, actor authz.Actor, payload dto.CreateDeviceDTO) (*entities.Device, error) {
	if err := authorize(actor, authz.InventoryManage, nil); err != nil {
		return nil, err
	}

	device := &entities.Device{
		Name:         strings.TrimSpace(payload.Name),
		SerialNumber: strings.TrimSpace(payload.SerialNumber),
		Model:        strings.TrimSpace(payload.Model),
		StatusCode:   payload.StatusCode,
	}
	if device.StatusCode == "" {
		device.StatusCode = constants.EquipmentAvailable
	}
	if device.StatusCode != constants.EquipmentAvailable && device.StatusCode != constants.EquipmentMaintenance {
		return nil, badRequest("Новое устройство может быть только доступным или на обслуживании", nil)
	}
	if payload.RackID.Valid {
		rackID := payload.RackID.Uint64
		device.RackID = &rackID
	}

	var id uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.checkSerial(ctx, tx, device.SerialNumber, 0); err != nil {
			return err
		}
		if device.RackID != nil {
			if err := s.checkRackCapacity(ctx, tx, *device.RackID); err != nil {
				return err
			}
		}
		var err error
		id, err = s.deviceRepo.Create(ctx, tx, device)
		if errors.Is(err, apperrors.ErrDuplicateSerial) {
			return duplicateSerial(device.SerialNumber)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Добавлено устройство", zap.Uint64("deviceID", id), zap.String("serial", device.SerialNumber))
	return s.deviceRepo.FindByID(ctx, id)
}

// Update - полная замена карточки. Статус IN_USE управляется только назначениями.
func (s *DeviceService) Update(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateDeviceDTO) (*entities.Device, error) {
	if err := authorize(actor, authz.InventoryManage, nil); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.deviceRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if payload.StatusCode != current.StatusCode {
			if payload.StatusCode == constants.EquipmentInUse {
				return badRequest("Статус «используется» назначается только через выдачу по заявке", nil)
			}
			if current.StatusCode == constants.EquipmentInUse {
				return conflict("Устройство выдано по заявке, сначала снимите назначение", nil)
			}
		}

		updated := &entities.Device{
			ID:           id,
			Name:         strings.TrimSpace(payload.Name),
			SerialNumber: strings.TrimSpace(payload.SerialNumber),
			Model:        strings.TrimSpace(payload.Model),
			StatusCode:   payload.StatusCode,
		}
		if payload.RackID.Valid {
			rackID := payload.RackID.Uint64
			updated.RackID = &rackID
		}

		if updated.SerialNumber != current.SerialNumber {
			if err := s.checkSerial(ctx, tx, updated.SerialNumber, id); err != nil {
				return err
			}
		}
		if updated.RackID != nil && (current.RackID == nil || *current.RackID != *updated.RackID) {
			if err := s.checkRackCapacity(ctx, tx, *updated.RackID); err != nil {
				return err
			}
		}
		err = s.deviceRepo.Update(ctx, tx, updated)
		if errors.Is(err, apperrors.ErrDuplicateSerial) {
			return duplicateSerial(updated.SerialNumber)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Обновлено устройство", zap.Uint64("deviceID", id))
	return s.deviceRepo.FindByID(ctx, id)
}

// Decommission списывает устройство вместо удаления: история назначений сохраняется.
func (s *DeviceService) Decommission(ctx context.Context, actor authz.Actor, id uint64) (*entities.Device, error) {
	if err := authorize(actor, authz.InventoryManage, nil); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.deviceRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		switch current.StatusCode {
		case constants.EquipmentInUse:
			return conflict("Нельзя списать устройство, выданное по заявке", nil)
		case constants.EquipmentDecommissioned:
			return nil
		}
		return s.deviceRepo.SetStatus(ctx, tx, []uint64{id}, constants.EquipmentDecommissioned)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Устройство списано", zap.Uint64("deviceID", id))
	return s.deviceRepo.FindByID(ctx, id)
}

func (s *DeviceService) Statuses(ctx context.Context, actor authz.Actor) ([]entities.EquipmentStatus, error) {
	if err := authorize(actor, authz.InventoryView, nil); err != nil {
		return nil, err
	}
	return s.statusRepo.List(ctx)
}
