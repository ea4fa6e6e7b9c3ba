package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lending-system/internal/repositories"
	"lending-system/internal/services"
	"lending-system/pkg/config"
	"lending-system/pkg/eventbus"
	"lending-system/pkg/filestorage"
	"lending-system/pkg/middleware"
	"lending-system/pkg/service"
)

type Loggers struct {
	Main        *zap.Logger
	Auth        *zap.Logger
	Reservation *zap.Logger
	Inventory   *zap.Logger
}

// Infrastructure - внешние зависимости, которые создаются в main.
type Infrastructure struct {
	DB          *pgxpool.Pool
	Redis       *redis.Client
	JWT         service.JWTService
	Bus         *eventbus.Bus
	FileStorage filestorage.FileStorageInterface
}

func InitRouter(e *echo.Echo, infra Infrastructure, loggers *Loggers, cfg *config.Config) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(infra.JWT, loggers.Auth)
	txManager := repositories.NewTxManager(infra.DB)
	loc := cfg.Lending.Location()

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(infra.DB, loggers.Auth)
	cacheRepo := repositories.NewRedisCacheRepository(infra.Redis)
	catalogRepo := repositories.NewCatalogRepository(infra.DB)
	reservationRepo := repositories.NewReservationRepository(infra.DB, loggers.Reservation)
	assignmentRepo := repositories.NewAssignmentRepository(infra.DB)
	supervisorRepo := repositories.NewSupervisorRepository(infra.DB)
	evidenceRepo := repositories.NewEvidenceRepository(infra.DB)
	deviceRepo := repositories.NewDeviceRepository(infra.DB, loggers.Inventory)
	rackRepo := repositories.NewRackRepository(infra.DB)
	statusRepo := repositories.NewEquipmentStatusRepository(infra.DB)
	reportRepo := repositories.NewReportRepository(infra.DB, loggers.Main)

	// --- 2. СЕРВИСЫ ---
	authService := services.NewAuthService(userRepo, cacheRepo, infra.JWT, &cfg.Auth, loggers.Auth)
	reservationService := services.NewReservationService(
		reservationRepo, assignmentRepo, deviceRepo, catalogRepo,
		txManager, infra.Bus, cfg.Lending, loggers.Reservation,
	)
	assignmentService := services.NewAssignmentService(
		reservationRepo, assignmentRepo, deviceRepo, rackRepo, txManager, infra.Bus, loggers.Reservation,
	)
	supervisorService := services.NewSupervisorService(reservationRepo, supervisorRepo, userRepo, txManager, infra.Bus, loggers.Reservation)
	evidenceService := services.NewEvidenceService(reservationRepo, evidenceRepo, infra.FileStorage, infra.Bus, loggers.Reservation)
	managementService := services.NewManagementService(
		reservationRepo, assignmentRepo, rackRepo, supervisorRepo, evidenceRepo, userRepo, loggers.Reservation,
	)
	deviceService := services.NewDeviceService(deviceRepo, rackRepo, statusRepo, txManager, loggers.Inventory)
	rackService := services.NewRackService(rackRepo, txManager, loggers.Inventory)
	catalogService := services.NewCatalogService(catalogRepo, userRepo, loggers.Main)
	reportService := services.NewReportService(reportRepo, loc, loggers.Main)

	// --- 3. РОУТЕРЫ ---
	runAuthRouter(api, authService, loggers.Auth, authMW)

	secureGroup := api.Group("", authMW.Auth)
	runReservationRouter(secureGroup, reservationService, loggers.Reservation, authMW)
	runManagementRouter(secureGroup, managementService, reservationService, assignmentService,
		supervisorService, evidenceService, loggers.Reservation, authMW)
	runInventoryRouter(secureGroup, deviceService, rackService, loggers.Inventory, authMW)
	runCatalogRouter(secureGroup, catalogService, loggers.Main, authMW)
	runReportRouter(secureGroup, reportService, loc, loggers.Main, authMW)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
}
