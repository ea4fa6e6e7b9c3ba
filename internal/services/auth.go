package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lending-system/internal/authz"
	"lending-system/internal/dto"
	"lending-system/internal/entities"
	"lending-system/internal/repositories"
	"lending-system/pkg/config"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/service"
	"lending-system/pkg/utils"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Me(ctx context.Context, actor authz.Actor) (*dto.UserProfileDTO, error)
}

type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	jwtSvc    service.JWTService
	cfg       *config.AuthConfig
	logger    *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtSvc service.JWTService,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		jwtSvc:    jwtSvc,
		cfg:       cfg,
		logger:    logger,
	}
}

func toProfile(u *entities.User) dto.UserProfileDTO {
	return dto.UserProfileDTO{
		ID:       u.ID,
		FullName: u.FullName,
		Username: u.Username,
		RoleCode: u.RoleCode,
		RoleName: u.RoleName,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	username := strings.ToLower(strings.TrimSpace(payload.Username))
	logger := s.logger.With(zap.String("username", username))

	if err := s.checkLockout(ctx, username); err != nil {
		logger.Warn("Попытка входа в заблокированную учетную запись")
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.handleFailedLoginAttempt(ctx, username)
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, username)
		logger.Warn("Неверный пароль")
		return nil, apperrors.ErrInvalidCredentials
	}
	s.resetLoginAttempts(ctx, username)

	token, expiresAt, err := s.jwtSvc.GenerateToken(user.ID, user.RoleCode)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось выпустить токен", err, nil)
	}

	logger.Info("Пользователь вошел в систему", zap.Uint64("userID", user.ID), zap.String("role", user.RoleCode))
	return &dto.AuthResponseDTO{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        toProfile(user),
	}, nil
}

func (s *AuthService) Me(ctx context.Context, actor authz.Actor) (*dto.UserProfileDTO, error) {
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	profile := toProfile(user)
	return &profile, nil
}

func (s *AuthService) checkLockout(ctx context.Context, username string) error {
	// ключ есть - вход заблокирован
	if _, err := s.cacheRepo.Get(ctx, fmt.Sprintf(constants.CacheKeyLockout, username)); err == nil {
		return apperrors.NewHttpError(
			http.StatusTooManyRequests,
			fmt.Sprintf("Слишком много попыток. Попробуйте через %.0f минут.", s.cfg.LockoutDuration.Minutes()),
			nil,
			nil,
		)
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, username string) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, username)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Error("Не удалось увеличить счетчик попыток входа", zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		_ = s.cacheRepo.Set(ctx, fmt.Sprintf(constants.CacheKeyLockout, username), "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, username string) {
	_ = s.cacheRepo.Del(ctx,
		fmt.Sprintf(constants.CacheKeyLoginAttempts, username),
		fmt.Sprintf(constants.CacheKeyLockout, username),
	)
}
