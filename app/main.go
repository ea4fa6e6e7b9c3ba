package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "time/tzdata"

	"lending-system/internal/listeners"
	"lending-system/internal/repositories"
	"lending-system/internal/routes"
	"lending-system/pkg/config"
	"lending-system/pkg/database/postgresql"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/eventbus"
	"lending-system/pkg/filestorage"
	applogger "lending-system/pkg/logger"
	appmiddleware "lending-system/pkg/middleware"
	"lending-system/pkg/service"
	"lending-system/pkg/utils"
	"lending-system/pkg/validation"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	defer func() { _ = logger.Sync() }()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("Паника при обработке запроса",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))

	uploadsDir, err := filepath.Abs(cfg.Server.UploadsDir)
	if err != nil {
		logger.Fatal("не удалось получить абсолютный путь к каталогу загрузок", zap.Error(err))
	}
	fileStorage, err := filestorage.NewLocalFileStorage(uploadsDir)
	if err != nil {
		logger.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}
	e.Static(filestorage.PublicPrefix, uploadsDir)

	// --- Инфраструктура ---
	if err := postgresql.Migrate(cfg.Postgres.DSN); err != nil {
		logger.Fatal("ошибка миграций", zap.Error(err))
	}
	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}
	defer redisClient.Close()

	bus := eventbus.New(logger.Named("eventbus"))
	listeners.NewAuditListener(repositories.NewAuditRepository(dbConn), logger.Named("audit")).Register(bus)

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL)

	routes.InitRouter(e, routes.Infrastructure{
		DB:          dbConn,
		Redis:       redisClient,
		JWT:         jwtSvc,
		Bus:         bus,
		FileStorage: fileStorage,
	}, &routes.Loggers{
		Main:        logger,
		Auth:        logger.Named("auth"),
		Reservation: logger.Named("reservation"),
		Inventory:   logger.Named("inventory"),
	}, cfg)

	go func() {
		logger.Info("Сервер запущен", zap.String("port", cfg.Server.Port), zap.String("timezone", cfg.Lending.TimeZone))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Остановка сервера")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	// дописываем аудит уже принятых событий
	bus.Wait()
}
