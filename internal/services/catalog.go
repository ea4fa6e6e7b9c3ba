package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"lending-system/internal/authz"
	"lending-system/internal/dto"
	"lending-system/internal/entities"
	"lending-system/internal/repositories"
	"lending-system/pkg/constants"

	"go.uber.org/zap"
)

const (
	suggestMinLength = 2
	suggestLimit     = 10
)

type CatalogServiceInterface interface {
	Programs(ctx context.Context, actor authz.Actor) ([]entities.Program, error)
	SubjectsByProgram(ctx context.Context, actor authz.Actor, programID uint64) ([]entities.Subject, error)
	Buildings(ctx context.Context, actor authz.Actor) ([]entities.Building, error)
	RoomsByBuilding(ctx context.Context, actor authz.Actor, buildingID uint64) ([]entities.Room, error)
	SuggestResponsible(ctx context.Context, actor authz.Actor, query string) ([]string, error)
	Supervisors(ctx context.Context, actor authz.Actor) ([]dto.UserProfileDTO, error)
}

type CatalogService struct {
	catalogRepo repositories.CatalogRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	logger      *zap.Logger
}

func NewCatalogService(
	catalogRepo repositories.CatalogRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) CatalogServiceInterface {
	return &CatalogService{catalogRepo: catalogRepo, userRepo: userRepo, logger: logger}
}

func (s *CatalogService) Programs(ctx context.Context, actor authz.Actor) ([]entities.Program, error) {
	if err := authorize(actor, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	return s.catalogRepo.ListPrograms(ctx)
}

func (s *CatalogService) SubjectsByProgram(ctx context.Context, actor authz.Actor, programID uint64) ([]entities.Subject, error) {
	if err := authorize(actor, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	return s.catalogRepo.ListSubjectsByProgram(ctx, programID)
}

func (s *CatalogService) Buildings(ctx context.Context, actor authz.Actor) ([]entities.Building, error) {
	if err := authorize(actor, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	return s.catalogRepo.ListBuildings(ctx)
}

func (s *CatalogService) RoomsByBuilding(ctx context.Context, actor authz.Actor, buildingID uint64) ([]entities.Room, error) {
	if err := authorize(actor, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	return s.catalogRepo.ListRoomsByBuilding(ctx, buildingID)
}

// SuggestResponsible подсказывает ФИО в верхнем регистре, как они хранятся в заявках.
func (s *CatalogService) SuggestResponsible(ctx context.Context, actor authz.Actor, query string) ([]string, error) {
	if err := authorize(actor, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < suggestMinLength {
		return []string{}, nil
	}

	names, err := s.userRepo.SuggestFullNames(ctx, query, suggestLimit)
	if err != nil {
		return nil, err
	}
	for i := range names {
		names[i] = strings.ToUpper(names[i])
	}
	return names, nil
}

func (s *CatalogService) Supervisors(ctx context.Context, actor authz.Actor) ([]dto.UserProfileDTO, error) {
	if err := authorize(actor, authz.CatalogsView, nil); err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByRole(ctx, constants.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	result := make([]dto.UserProfileDTO, 0, len(users))
	for i := range users {
		result = append(result, toProfile(&users[i]))
	}
	return result, nil
}
