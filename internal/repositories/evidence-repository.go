package repositories

import (
	"context"
	"errors"

	"lending-system/internal/entities"
	apperrors "lending-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EvidenceRepositoryInterface interface {
	Create(ctx context.Context, evidence *entities.Evidence) (uint64, error)
	ListByReservation(ctx context.Context, reservationID uint64) ([]entities.Evidence, error)
	FindByID(ctx context.Context, id uint64) (*entities.Evidence, error)
	Delete(ctx context.Context, id uint64) error
}

type EvidenceRepository struct {
	storage *pgxpool.Pool
}

func NewEvidenceRepository(storage *pgxpool.Pool) EvidenceRepositoryInterface {
	return &EvidenceRepository{storage: storage}
}

func (r *EvidenceRepository) Create(ctx context.Context, e *entities.Evidence) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO reservation_evidences (reservation_id, type, file_path, description)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		e.ReservationID, e.Type, e.FilePath, e.Description,
	).Scan(&id)
	return id, err
}

// ListByReservation - новые сверху.
func (r *EvidenceRepository) ListByReservation(ctx context.Context, reservationID uint64) ([]entities.Evidence, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, reservation_id, type, file_path, description, created_at
		FROM reservation_evidences WHERE reservation_id = $1
		ORDER BY created_at DESC, id DESC`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.Evidence, 0)
	for rows.Next() {
		var e entities.Evidence
		if err := rows.Scan(&e.ID, &e.ReservationID, &e.Type, &e.FilePath, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *EvidenceRepository) FindByID(ctx context.Context, id uint64) (*entities.Evidence, error) {
	var e entities.Evidence
	err := r.storage.QueryRow(ctx, `
		SELECT id, reservation_id, type, file_path, description, created_at
		FROM reservation_evidences WHERE id = $1`, id,
	).Scan(&e.ID, &e.ReservationID, &e.Type, &e.FilePath, &e.Description, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EvidenceRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM reservation_evidences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
