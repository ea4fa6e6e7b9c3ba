package repositories

import (
	"context"

	"lending-system/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EquipmentStatusRepositoryInterface interface {
	List(ctx context.Context) ([]entities.EquipmentStatus, error)
}

type EquipmentStatusRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentStatusRepository(storage *pgxpool.Pool) EquipmentStatusRepositoryInterface {
	return &EquipmentStatusRepository{storage: storage}
}

func (r *EquipmentStatusRepository) List(ctx context.Context) ([]entities.EquipmentStatus, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, code, name FROM equipment_statuses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.EquipmentStatus, 0, 4)
	for rows.Next() {
		var s entities.EquipmentStatus
		if err := rows.Scan(&s.ID, &s.Code, &s.Name); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
