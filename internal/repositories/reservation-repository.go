package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lending-system/internal/entities"
	"lending-system/internal/infrastructure/db"
	apperrors "lending-system/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const reservationBaseFields = `r.id, r.user_id, r.subject_id, r.program_id, r.room_id, r.usage_date,
	to_char(r.start_time, 'HH24:MI'), to_char(r.end_time, 'HH24:MI'), r.quantity, r.status,
	r.responsible_name, r.contact_phone, r.rejection_reason, r.notes, r.handover_at, r.returned_at,
	r.created_at, r.updated_at`

const reservationViewFields = reservationBaseFields + `,
	u.full_name, s.name, p.name, rm.name, b.name,
	(SELECT COUNT(*) FROM device_assignments da WHERE da.reservation_id = r.id)`

const reservationFromJoins = `reservations r
	JOIN users u ON u.id = r.user_id
	JOIN subjects s ON s.id = r.subject_id
	JOIN programs p ON p.id = r.program_id
	JOIN rooms rm ON rm.id = r.room_id
	JOIN buildings b ON b.id = rm.building_id`

type ReservationRepositoryInterface interface {
	Create(ctx context.Context, reservation *entities.Reservation) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.Reservation, error)
	LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Reservation, error)
	List(ctx context.Context, filter entities.ReservationFilter) ([]entities.Reservation, uint64, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string, reason *string) error
	UpdateManagement(ctx context.Context, tx pgx.Tx, id uint64, notes *string, handoverAt, returnedAt *time.Time) error
}

type ReservationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewReservationRepository(storage *pgxpool.Pool, logger *zap.Logger) ReservationRepositoryInterface {
	return &ReservationRepository{storage: storage, logger: logger}
}

func reservationBaseDest(r *entities.Reservation) []any {
	return []any{
		&r.ID, &r.UserID, &r.SubjectID, &r.ProgramID, &r.RoomID, &r.UsageDate,
		&r.StartTime, &r.EndTime, &r.Quantity, &r.Status,
		&r.ResponsibleName, &r.ContactPhone, &r.RejectionReason, &r.Notes, &r.HandoverAt, &r.ReturnedAt,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

func scanReservationView(row scanner) (*entities.Reservation, error) {
	var r entities.Reservation
	dest := append(reservationBaseDest(&r),
		&r.RequesterName, &r.SubjectName, &r.ProgramName, &r.RoomName, &r.BuildingName, &r.AssignedCount,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (repo *ReservationRepository) Create(ctx context.Context, r *entities.Reservation) (uint64, error) {
	var id uint64
	err := repo.storage.QueryRow(ctx, `
		INSERT INTO reservations (user_id, subject_id, program_id, room_id, usage_date, start_time, end_time,
			quantity, status, responsible_name, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6::text::time, $7::text::time, $8, $9, $10, $11)
		RETURNING id`,
		r.UserID, r.SubjectID, r.ProgramID, r.RoomID, r.UsageDate, r.StartTime, r.EndTime,
		r.Quantity, r.Status, r.ResponsibleName, r.ContactPhone,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать заявку: %w", err)
	}
	return id, nil
}

func (repo *ReservationRepository) FindByID(ctx context.Context, id uint64) (*entities.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE r.id = $1`, reservationViewFields, reservationFromJoins)
	r, err := scanReservationView(repo.storage.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// LockByID блокирует строку заявки до конца транзакции. Справочные названия не заполняются.
func (repo *ReservationRepository) LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations r WHERE r.id = $1 FOR UPDATE`, reservationBaseFields)
	var r entities.Reservation
	if err := tx.QueryRow(ctx, query, id).Scan(reservationBaseDest(&r)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

var reservationSortColumns = map[string]string{
	"usage_date": "r.usage_date",
	"created_at": "r.created_at",
	"status":     "r.status",
	"quantity":   "r.quantity",
	"requester":  "u.full_name",
}

func (repo *ReservationRepository) List(ctx context.Context, filter entities.ReservationFilter) ([]entities.Reservation, uint64, error) {
	baseSelect := psql.Select().From(reservationFromJoins)

	if filter.Status != "" {
		baseSelect = baseSelect.Where(sq.Eq{"r.status": filter.Status})
	}
	if filter.UserID != nil {
		baseSelect = baseSelect.Where(sq.Eq{"r.user_id": *filter.UserID})
	}
	if filter.DateFrom != nil {
		baseSelect = baseSelect.Where(sq.GtOrEq{"r.usage_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		baseSelect = baseSelect.Where(sq.LtOrEq{"r.usage_date": *filter.DateTo})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		baseSelect = baseSelect.Where(sq.Or{
			sq.ILike{"u.full_name": pattern},
			sq.ILike{"r.responsible_name": pattern},
			sq.ILike{"s.name": pattern},
		})
	}

	countQuery, countArgs, err := baseSelect.Columns("COUNT(r.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT-запроса: %w", err)
	}
	var total uint64
	if err := repo.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения COUNT-запроса: %w", err)
	}
	if total == 0 {
		return []entities.Reservation{}, 0, nil
	}

	mainBuilder := db.ApplySort(baseSelect.Columns(reservationViewFields), filter.Sort, reservationSortColumns,
		"r.usage_date DESC", "r.start_time DESC", "r.id DESC")
	mainBuilder = db.ApplyPage(mainBuilder, filter.Limit, filter.Offset)
	sql, args, err := mainBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки основного запроса: %w", err)
	}

	rows, err := repo.storage.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения основного запроса: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Reservation, 0)
	for rows.Next() {
		r, err := scanReservationView(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		list = append(list, *r)
	}
	return list, total, rows.Err()
}

func (repo *ReservationRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string, reason *string) error {
	result, err := pick(repo.storage, tx).Exec(ctx, `
		UPDATE reservations
		SET status = $1, rejection_reason = COALESCE($2, rejection_reason), updated_at = NOW()
		WHERE id = $3`,
		status, reason, id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (repo *ReservationRepository) UpdateManagement(ctx context.Context, tx pgx.Tx, id uint64, notes *string, handoverAt, returnedAt *time.Time) error {
	result, err := pick(repo.storage, tx).Exec(ctx, `
		UPDATE reservations
		SET notes = $1, handover_at = $2, returned_at = $3, updated_at = NOW()
		WHERE id = $4`,
		notes, handoverAt, returnedAt, id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
