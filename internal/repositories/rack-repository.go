package repositories

import (
	"context"
	"errors"
	"fmt"

	"lending-system/internal/entities"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RackRepositoryInterface interface {
	List(ctx context.Context) ([]entities.Rack, error)
	ListEligible(ctx context.Context, needed int) ([]entities.Rack, error)
	FindByID(ctx context.Context, id uint64) (*entities.Rack, error)
	LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Rack, error)
	NameExists(ctx context.Context, name string, excludeID uint64) (bool, error)
	Create(ctx context.Context, rack *entities.Rack) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, rack *entities.Rack) error
}

type RackRepository struct {
	storage *pgxpool.Pool
}

func NewRackRepository(storage *pgxpool.Pool) RackRepositoryInterface {
	return &RackRepository{storage: storage}
}

// rackSelect - стойки с живым и доступным количеством устройств.
func rackSelect() sq.SelectBuilder {
	return psql.Select(
		"k.id", "k.name", "k.location", "k.total_capacity", "k.functional_capacity", "k.status",
		"k.created_at", "k.updated_at",
		"COUNT(d.id)",
		fmt.Sprintf("COUNT(d.id) FILTER (WHERE es.code = '%s')", constants.EquipmentAvailable),
	).
		From("racks k").
		LeftJoin("devices d ON d.rack_id = k.id").
		LeftJoin("equipment_statuses es ON es.id = d.status_id").
		GroupBy("k.id")
}

func scanRack(row scanner) (*entities.Rack, error) {
	var k entities.Rack
	err := row.Scan(
		&k.ID, &k.Name, &k.Location, &k.TotalCapacity, &k.FunctionalCapacity, &k.Status,
		&k.CreatedAt, &k.UpdatedAt, &k.DeviceCount, &k.AvailableCount,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *RackRepository) queryRacks(ctx context.Context, builder sq.SelectBuilder) ([]entities.Rack, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса стоек: %w", err)
	}
	rows, err := r.storage.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	racks := make([]entities.Rack, 0)
	for rows.Next() {
		k, err := scanRack(rows)
		if err != nil {
			return nil, err
		}
		racks = append(racks, *k)
	}
	return racks, rows.Err()
}

func (r *RackRepository) List(ctx context.Context) ([]entities.Rack, error) {
	return r.queryRacks(ctx, rackSelect().OrderBy("k.name"))
}

// ListEligible - доступные стойки, где свободных устройств не меньше needed.
func (r *RackRepository) ListEligible(ctx context.Context, needed int) ([]entities.Rack, error) {
	builder := rackSelect().
		Where(sq.Eq{"k.status": constants.RackAvailable}).
		Having(fmt.Sprintf("COUNT(d.id) FILTER (WHERE es.code = '%s') >= ?", constants.EquipmentAvailable), needed).
		OrderBy("k.name")
	return r.queryRacks(ctx, builder)
}

func (r *RackRepository) FindByID(ctx context.Context, id uint64) (*entities.Rack, error) {
	sql, args, err := rackSelect().Where(sq.Eq{"k.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	rack, err := scanRack(r.storage.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return rack, nil
}

// LockByID блокирует строку стойки до конца транзакции и считает устройства в ней.
func (r *RackRepository) LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Rack, error) {
	var k entities.Rack
	err := tx.QueryRow(ctx, `
		SELECT id, name, location, total_capacity, functional_capacity, status, created_at, updated_at
		FROM racks WHERE id = $1 FOR UPDATE`, id,
	).Scan(&k.ID, &k.Name, &k.Location, &k.TotalCapacity, &k.FunctionalCapacity, &k.Status, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		SELECT COUNT(d.id), COUNT(d.id) FILTER (WHERE es.code = $2)
		FROM devices d JOIN equipment_statuses es ON es.id = d.status_id
		WHERE d.rack_id = $1`, id, constants.EquipmentAvailable,
	).Scan(&k.DeviceCount, &k.AvailableCount)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *RackRepository) NameExists(ctx context.Context, name string, excludeID uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM racks WHERE LOWER(name) = LOWER($1) AND id <> $2)`, name, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *RackRepository) Create(ctx context.Context, rack *entities.Rack) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO racks (name, location, total_capacity, functional_capacity, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rack.Name, rack.Location, rack.TotalCapacity, rack.FunctionalCapacity, rack.Status,
	).Scan(&id)
	return id, err
}

func (r *RackRepository) Update(ctx context.Context, tx pgx.Tx, rack *entities.Rack) error {
	result, err := pick(r.storage, tx).Exec(ctx, `
		UPDATE racks
		SET name = $1, location = $2, total_capacity = $3, functional_capacity = $4, status = $5, updated_at = NOW()
		WHERE id = $6`,
		rack.Name, rack.Location, rack.TotalCapacity, rack.FunctionalCapacity, rack.Status, rack.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
