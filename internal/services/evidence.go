package services

import (
	"context"
	"io"
	"strings"

	"lending-system/config"
	"lending-system/internal/authz"
	"lending-system/internal/dto"
	"lending-system/internal/entities"
	"lending-system/internal/events"
	"lending-system/internal/repositories"
	"lending-system/pkg/constants"
	"lending-system/pkg/eventbus"
	"lending-system/pkg/filestorage"
	"lending-system/pkg/validation"

	"go.uber.org/zap"
)

// UploadedFile - файл из multipart-формы.
type UploadedFile struct {
	Name    string
	Size    int64
	Content io.ReadSeeker
}

type EvidenceServiceInterface interface {
	Upload(ctx context.Context, actor authz.Actor, reservationID uint64, payload dto.EvidenceUploadDTO, file UploadedFile) (*entities.Evidence, error)
	List(ctx context.Context, actor authz.Actor, reservationID uint64) ([]entities.Evidence, error)
	Delete(ctx context.Context, actor authz.Actor, evidenceID uint64) error
}

type EvidenceService struct {
	reservationRepo repositories.ReservationRepositoryInterface
	evidenceRepo    repositories.EvidenceRepositoryInterface
	storage         filestorage.FileStorageInterface
	bus             eventbus.Publisher
	logger          *zap.Logger
}

func NewEvidenceService(
	reservationRepo repositories.ReservationRepositoryInterface,
	evidenceRepo repositories.EvidenceRepositoryInterface,
	storage filestorage.FileStorageInterface,
	bus eventbus.Publisher,
	logger *zap.Logger,
) EvidenceServiceInterface {
	return &EvidenceService{
		reservationRepo: reservationRepo,
		evidenceRepo:    evidenceRepo,
		storage:         storage,
		bus:             bus,
		logger:          logger,
	}
}

func (s *EvidenceService) Upload(
	ctx context.Context,
	actor authz.Actor,
	reservationID uint64,
	payload dto.EvidenceUploadDTO,
	file UploadedFile,
) (*entities.Evidence, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return nil, err
	}
	if payload.Type != constants.EvidenceTypeUsage && payload.Type != constants.EvidenceTypeReturn {
		return nil, badRequest("Неизвестный тип фотофиксации", map[string]interface{}{"type": payload.Type})
	}
	if _, err := s.reservationRepo.FindByID(ctx, reservationID); err != nil {
		return nil, err
	}

	uploadContext := constants.UploadContextEvidencePhoto.String()
	mimeType, err := validation.ValidateFile(file.Size, file.Content, uploadContext)
	if err != nil {
		return nil, badRequest(err.Error(), nil)
	}

	path, err := s.storage.Save(file.Content, validation.ExtensionFor(mimeType), config.UploadContexts[uploadContext].PathPrefix)
	if err != nil {
		return nil, err
	}

	evidence := &entities.Evidence{
		ReservationID: reservationID,
		Type:          payload.Type,
		FilePath:      path,
	}
	if d := strings.TrimSpace(payload.Description); d != "" {
		evidence.Description = &d
	}

	id, err := s.evidenceRepo.Create(ctx, evidence)
	if err != nil {
		if delErr := s.storage.Delete(path); delErr != nil {
			s.logger.Warn("Не удалось удалить файл после ошибки сохранения", zap.String("path", path), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Загружено фото", zap.Uint64("reservationID", reservationID), zap.String("type", payload.Type), zap.String("path", path), zap.String("originalName", file.Name))
	publish(ctx, s.bus, events.EvidenceUploaded, reservationID, actor, map[string]interface{}{"type": payload.Type, "file_path": path})
	return s.evidenceRepo.FindByID(ctx, id)
}

func (s *EvidenceService) List(ctx context.Context, actor authz.Actor, reservationID uint64) ([]entities.Evidence, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return nil, err
	}
	if _, err := s.reservationRepo.FindByID(ctx, reservationID); err != nil {
		return nil, err
	}
	return s.evidenceRepo.ListByReservation(ctx, reservationID)
}

func (s *EvidenceService) Delete(ctx context.Context, actor authz.Actor, evidenceID uint64) error {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return err
	}
	e, err := s.evidenceRepo.FindByID(ctx, evidenceID)
	if err != nil {
		return err
	}
	if err := s.evidenceRepo.Delete(ctx, evidenceID); err != nil {
		return err
	}
	if err := s.storage.Delete(e.FilePath); err != nil {
		s.logger.Warn("Не удалось удалить файл фотофиксации", zap.String("path", e.FilePath), zap.Error(err))
	}
	publish(ctx, s.bus, events.EvidenceDeleted, e.ReservationID, actor, map[string]interface{}{"file_path": e.FilePath})
	return nil
}
