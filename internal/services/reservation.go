package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lending-system/internal/authz"
	"lending-system/internal/dto"
	"lending-system/internal/entities"
	"lending-system/internal/events"
	"lending-system/internal/repositories"
	"lending-system/pkg/config"
	"lending-system/pkg/constants"
	"lending-system/pkg/eventbus"
	"lending-system/pkg/types"
	"lending-system/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReservationServiceInterface interface {
	Create(ctx context.Context, actor authz.Actor, payload dto.CreateReservationDTO) (*entities.Reservation, error)
	Approve(ctx context.Context, actor authz.Actor, id uint64) (*entities.Reservation, error)
	Reject(ctx context.Context, actor authz.Actor, id uint64, reason string) (*entities.Reservation, error)
	Finalize(ctx context.Context, actor authz.Actor, id uint64) (*entities.Reservation, error)
	Cancel(ctx context.Context, actor authz.Actor, id uint64, reason string) (*entities.Reservation, error)
	Get(ctx context.Context, actor authz.Actor, id uint64) (*dto.ReservationDTO, error)
	List(ctx context.Context, actor authz.Actor, filter types.Filter) ([]entities.Reservation, uint64, error)
	ListMine(ctx context.Context, actor authz.Actor) ([]dto.ReservationDTO, error)
	UpdateManagement(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateManagementDTO) (*entities.Reservation, error)
}

type ReservationService struct {
	reservationRepo repositories.ReservationRepositoryInterface
	assignmentRepo  repositories.AssignmentRepositoryInterface
	deviceRepo      repositories.DeviceRepositoryInterface
	catalogRepo     repositories.CatalogRepositoryInterface
	txManager       repositories.TxManagerInterface
	bus             eventbus.Publisher
	cfg             config.LendingConfig
	loc             *time.Location
	now             func() time.Time
	logger          *zap.Logger
}

func NewReservationService(
	reservationRepo repositories.ReservationRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	deviceRepo repositories.DeviceRepositoryInterface,
	catalogRepo repositories.CatalogRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus eventbus.Publisher,
	cfg config.LendingConfig,
	logger *zap.Logger,
) ReservationServiceInterface {
	return &ReservationService{
		reservationRepo: reservationRepo,
		assignmentRepo:  assignmentRepo,
		deviceRepo:      deviceRepo,
		catalogRepo:     catalogRepo,
		txManager:       txManager,
		bus:             bus,
		cfg:             cfg,
		loc:             cfg.Location(),
		now:             time.Now,
		logger:          logger,
	}
}

func (s *ReservationService) Create(ctx context.Context, actor authz.Actor, payload dto.CreateReservationDTO) (*entities.Reservation, error) {
	if err := authorize(actor, authz.ReservationsCreate, nil); err != nil {
		return nil, err
	}

	usageDate, err := time.ParseInLocation(utils.DateLayout, payload.UsageDate, s.loc)
	if err != nil {
		return nil, badRequest("Неверный формат даты, ожидается ГГГГ-ММ-ДД", map[string]interface{}{"usage_date": payload.UsageDate})
	}
	if usageDate.Before(utils.StartOfDay(s.now().In(s.loc))) {
		return nil, badRequest("Дата использования не может быть в прошлом", nil)
	}

	start, err := utils.ParseClock(payload.StartTime)
	if err != nil {
		return nil, badRequest("Неверный формат времени начала", nil)
	}
	end, err := utils.ParseClock(payload.EndTime)
	if err != nil {
		return nil, badRequest("Неверный формат времени окончания", nil)
	}
	if end <= start {
		return nil, badRequest("Время окончания должно быть позже времени начала", nil)
	}
	if end > s.cfg.LatestEndMinutes {
		return nil, badRequest(fmt.Sprintf("Занятие должно закончиться не позднее %s", s.cfg.LatestEndTime), nil)
	}

	if payload.Quantity < 1 || payload.Quantity > s.cfg.MaxQuantity {
		return nil, badRequest(fmt.Sprintf("Количество устройств должно быть от 1 до %d", s.cfg.MaxQuantity), nil)
	}

	phone := utils.NormalizePhone(payload.ContactPhone)
	if len(phone) != 10 {
		return nil, badRequest("Контактный телефон должен состоять из 10 цифр", nil)
	}

	responsible := strings.ToUpper(strings.TrimSpace(payload.ResponsibleName))
	if responsible == "" {
		return nil, badRequest("Укажите ответственного", nil)
	}

	ok, err := s.catalogRepo.SubjectInProgram(ctx, payload.SubjectID, payload.ProgramID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, badRequest("Предмет не относится к выбранной программе", nil)
	}
	ok, err = s.catalogRepo.RoomExists(ctx, payload.RoomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, badRequest("Аудитория не найдена", nil)
	}

	id, err := s.reservationRepo.Create(ctx, &entities.Reservation{
		UserID:          actor.UserID,
		SubjectID:       payload.SubjectID,
		ProgramID:       payload.ProgramID,
		RoomID:          payload.RoomID,
		UsageDate:       usageDate,
		StartTime:       payload.StartTime,
		EndTime:         payload.EndTime,
		Quantity:        payload.Quantity,
		Status:          constants.ReservationPending,
		ResponsibleName: responsible,
		ContactPhone:    phone,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Создана заявка", zap.Uint64("reservationID", id), zap.Uint64("userID", actor.UserID), zap.Int("quantity", payload.Quantity))
	publish(ctx, s.bus, events.ReservationCreated, id, actor, map[string]interface{}{"quantity": payload.Quantity})
	return s.reservationRepo.FindByID(ctx, id)
}

// transition меняет статус заявки под блокировкой строки. extra выполняется в той же транзакции.
func (s *ReservationService) transition(
	ctx context.Context,
	id uint64,
	from []string,
	to string,
	reason *string,
	extra func(tx pgx.Tx, r *entities.Reservation) error,
) (*entities.Reservation, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		r, err := s.reservationRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !containsStatus(from, r.Status) || !constants.CanTransition(r.Status, to) {
			return conflict(
				fmt.Sprintf("Недопустимый переход статуса: %s -> %s", constants.ReservationStatusNames[r.Status], constants.ReservationStatusNames[to]),
				map[string]interface{}{"status": r.Status},
			)
		}
		if extra != nil {
			if err := extra(tx, r); err != nil {
				return err
			}
		}
		return s.reservationRepo.UpdateStatus(ctx, tx, id, to, reason)
	})
	if err != nil {
		return nil, err
	}
	return s.reservationRepo.FindByID(ctx, id)
}

func containsStatus(list []string, status string) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func (s *ReservationService) Approve(ctx context.Context, actor authz.Actor, id uint64) (*entities.Reservation, error) {
	if err := authorize(actor, authz.ReservationsDecide, nil); err != nil {
		return nil, err
	}
	r, err := s.transition(ctx, id, []string{constants.ReservationPending}, constants.ReservationApproved, nil, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Заявка одобрена", zap.Uint64("reservationID", id), zap.Uint64("actorID", actor.UserID))
	publish(ctx, s.bus, events.ReservationApproved, id, actor, nil)
	return r, nil
}

func (s *ReservationService) Reject(ctx context.Context, actor authz.Actor, id uint64, reason string) (*entities.Reservation, error) {
	if err := authorize(actor, authz.ReservationsDecide, nil); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, badRequest("Укажите причину отклонения", nil)
	}
	r, err := s.transition(ctx, id, []string{constants.ReservationPending}, constants.ReservationRejected, &reason, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Заявка отклонена", zap.Uint64("reservationID", id), zap.Uint64("actorID", actor.UserID))
	publish(ctx, s.bus, events.ReservationRejected, id, actor, map[string]interface{}{"reason": reason})
	return r, nil
}

// Finalize возвращает все выданные устройства в AVAILABLE. Строки назначений остаются как история.
func (s *ReservationService) Finalize(ctx context.Context, actor authz.Actor, id uint64) (*entities.Reservation, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return nil, err
	}

	var released []uint64
	r, err := s.transition(ctx, id, []string{constants.ReservationApproved}, constants.ReservationFinalized, nil,
		func(tx pgx.Tx, r *entities.Reservation) error {
			ids, err := s.assignmentRepo.DeviceIDsByReservation(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := s.deviceRepo.SetStatus(ctx, tx, ids, constants.EquipmentAvailable); err != nil {
				return err
			}
			released = ids
			if r.ReturnedAt == nil {
				now := s.now()
				return s.reservationRepo.UpdateManagement(ctx, tx, id, r.Notes, r.HandoverAt, &now)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Заявка завершена", zap.Uint64("reservationID", id), zap.Int("released", len(released)))
	publish(ctx, s.bus, events.ReservationFinalized, id, actor, map[string]interface{}{"released_devices": released})
	return r, nil
}

// Cancel - отмена заявителем. Одобренную заявку можно отменить только заранее,
// выданные по ней устройства освобождаются.
func (s *ReservationService) Cancel(ctx context.Context, actor authz.Actor, id uint64, reason string) (*entities.Reservation, error) {
	if err := authorize(actor, authz.ReservationsCancel, nil); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, badRequest("Укажите причину отмены", nil)
	}
	stored := constants.CancellationPrefix + reason

	current, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.ReservationsCancel, current); err != nil {
		return nil, err
	}

	var released []uint64
	r, err := s.transition(ctx, id,
		[]string{constants.ReservationPending, constants.ReservationApproved},
		constants.ReservationRejected, &stored,
		func(tx pgx.Tx, r *entities.Reservation) error {
			if r.Status != constants.ReservationApproved {
				return nil
			}
			if !s.beforeNotice(r) {
				return badRequest(
					fmt.Sprintf("Одобренную заявку можно отменить не позднее чем за %.0f ч до начала", s.cfg.CancelNotice.Hours()),
					nil,
				)
			}
			ids, err := s.assignmentRepo.DeleteByReservation(ctx, tx, id)
			if err != nil {
				return err
			}
			released = ids
			return s.deviceRepo.SetStatus(ctx, tx, ids, constants.EquipmentAvailable)
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Заявка отменена заявителем", zap.Uint64("reservationID", id), zap.Int("released", len(released)))
	publish(ctx, s.bus, events.ReservationCancelled, id, actor, map[string]interface{}{
		"reason":           reason,
		"released_devices": released,
	})
	return r, nil
}

// beforeNotice - до начала занятия больше, чем окно отмены.
func (s *ReservationService) beforeNotice(r *entities.Reservation) bool {
	start, err := utils.CombineDateClock(r.UsageDate, r.StartTime, s.loc)
	if err != nil {
		return false
	}
	return start.Sub(s.now()) > s.cfg.CancelNotice
}

func (s *ReservationService) canCancel(actor authz.Actor, r *entities.Reservation) bool {
	if !authz.CanOn(actor, authz.ReservationsCancel, r) {
		return false
	}
	switch r.Status {
	case constants.ReservationPending:
		return true
	case constants.ReservationApproved:
		return s.beforeNotice(r)
	}
	return false
}

func (s *ReservationService) Get(ctx context.Context, actor authz.Actor, id uint64) (*dto.ReservationDTO, error) {
	r, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.ReservationsView, r); err != nil {
		return nil, err
	}
	return &dto.ReservationDTO{Reservation: *r, CanCancel: s.canCancel(actor, r)}, nil
}

func (s *ReservationService) List(ctx context.Context, actor authz.Actor, filter types.Filter) ([]entities.Reservation, uint64, error) {
	if err := authorize(actor, authz.ReservationsDecide, nil); err != nil {
		return nil, 0, err
	}

	f := entities.ReservationFilter{Search: filter.Search, Sort: filter.Sort}
	if status := filter.StringFilter("status"); status != "" {
		if !constants.IsReservationStatus(status) {
			return nil, 0, badRequest("Неизвестный статус заявки", map[string]interface{}{"status": status})
		}
		f.Status = status
	}
	if raw := filter.StringFilter("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, 0, badRequest("Неверный фильтр user_id", nil)
		}
		f.UserID = &userID
	}
	for key, dst := range map[string]**time.Time{"date_from": &f.DateFrom, "date_to": &f.DateTo} {
		if raw := filter.StringFilter(key); raw != "" {
			t, err := time.ParseInLocation(utils.DateLayout, raw, s.loc)
			if err != nil {
				return nil, 0, badRequest(fmt.Sprintf("Неверный формат фильтра %s", key), nil)
			}
			*dst = &t
		}
	}
	if filter.WithPagination {
		f.Limit = uint64(filter.Limit)
		f.Offset = uint64(filter.Offset)
	}

	return s.reservationRepo.List(ctx, f)
}

func (s *ReservationService) ListMine(ctx context.Context, actor authz.Actor) ([]dto.ReservationDTO, error) {
	if err := authorize(actor, authz.ReservationsCreate, nil); err != nil {
		return nil, err
	}
	userID := actor.UserID
	list, _, err := s.reservationRepo.List(ctx, entities.ReservationFilter{UserID: &userID})
	if err != nil {
		return nil, err
	}

	result := make([]dto.ReservationDTO, 0, len(list))
	for i := range list {
		result = append(result, dto.ReservationDTO{Reservation: list[i], CanCancel: s.canCancel(actor, &list[i])})
	}
	return result, nil
}

// UpdateManagement меняет только переданные поля.
func (s *ReservationService) UpdateManagement(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateManagementDTO) (*entities.Reservation, error) {
	if err := authorize(actor, authz.ReservationsManage, nil); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		r, err := s.reservationRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}

		notes, handoverAt, returnedAt := r.Notes, r.HandoverAt, r.ReturnedAt
		if payload.Notes.Valid {
			v := strings.TrimSpace(payload.Notes.String)
			notes = &v
		}
		if payload.HandoverAt.Valid {
			v := payload.HandoverAt.Time
			handoverAt = &v
		}
		if payload.ReturnedAt.Valid {
			v := payload.ReturnedAt.Time
			returnedAt = &v
		}

		if handoverAt != nil && returnedAt != nil && returnedAt.Before(*handoverAt) {
			return badRequest("Некорректный интервал времени: возврат раньше выдачи", nil)
		}
		return s.reservationRepo.UpdateManagement(ctx, tx, id, notes, handoverAt, returnedAt)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.bus, events.ReservationManaged, id, actor, nil)
	return s.reservationRepo.FindByID(ctx, id)
}
