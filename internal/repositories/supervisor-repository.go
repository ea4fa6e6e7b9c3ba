package repositories

import (
	"context"
	"errors"

	"lending-system/internal/entities"
	apperrors "lending-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SupervisorRepositoryInterface interface {
	ListByReservation(ctx context.Context, reservationID uint64) ([]entities.SupervisorAssignment, error)
	FindByID(ctx context.Context, id uint64) (*entities.SupervisorAssignment, error)
	Exists(ctx context.Context, tx pgx.Tx, reservationID, supervisorID uint64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, reservationID, supervisorID uint64) (uint64, error)
	Delete(ctx context.Context, id uint64) error
}

type SupervisorRepository struct {
	storage *pgxpool.Pool
}

func NewSupervisorRepository(storage *pgxpool.Pool) SupervisorRepositoryInterface {
	return &SupervisorRepository{storage: storage}
}

const supervisorSelect = `
	SELECT sa.id, sa.reservation_id, sa.supervisor_id, u.full_name, sa.created_at
	FROM supervisor_assignments sa JOIN users u ON u.id = sa.supervisor_id`

func (r *SupervisorRepository) ListByReservation(ctx context.Context, reservationID uint64) ([]entities.SupervisorAssignment, error) {
	rows, err := r.storage.Query(ctx, supervisorSelect+` WHERE sa.reservation_id = $1 ORDER BY sa.id`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.SupervisorAssignment, 0)
	for rows.Next() {
		var s entities.SupervisorAssignment
		if err := rows.Scan(&s.ID, &s.ReservationID, &s.SupervisorID, &s.SupervisorName, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *SupervisorRepository) FindByID(ctx context.Context, id uint64) (*entities.SupervisorAssignment, error) {
	var s entities.SupervisorAssignment
	err := r.storage.QueryRow(ctx, supervisorSelect+` WHERE sa.id = $1`, id).
		Scan(&s.ID, &s.ReservationID, &s.SupervisorID, &s.SupervisorName, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SupervisorRepository) Exists(ctx context.Context, tx pgx.Tx, reservationID, supervisorID uint64) (bool, error) {
	var exists bool
	err := pick(r.storage, tx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM supervisor_assignments WHERE reservation_id = $1 AND supervisor_id = $2)`,
		reservationID, supervisorID,
	).Scan(&exists)
	return exists, err
}

func (r *SupervisorRepository) Create(ctx context.Context, tx pgx.Tx, reservationID, supervisorID uint64) (uint64, error) {
	var id uint64
	err := pick(r.storage, tx).QueryRow(ctx,
		`INSERT INTO supervisor_assignments (reservation_id, supervisor_id) VALUES ($1, $2) RETURNING id`,
		reservationID, supervisorID,
	).Scan(&id)
	return id, err
}

func (r *SupervisorRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM supervisor_assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
