package repositories

import (
	"context"
	"errors"

	"lending-system/internal/entities"
	apperrors "lending-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentRepositoryInterface - связи "заявка - устройство".
type AssignmentRepositoryInterface interface {
	ListByReservation(ctx context.Context, reservationID uint64) ([]entities.DeviceAssignment, error)
	CountByReservation(ctx context.Context, tx pgx.Tx, reservationID uint64) (int, error)
	Exists(ctx context.Context, tx pgx.Tx, reservationID, deviceID uint64) (bool, error)
	CreateBatch(ctx context.Context, tx pgx.Tx, reservationID uint64, deviceIDs []uint64) error
	FindByID(ctx context.Context, id uint64) (*entities.DeviceAssignment, error)
	DeleteInReservation(ctx context.Context, tx pgx.Tx, reservationID, id uint64) (uint64, error)
	DeleteByReservation(ctx context.Context, tx pgx.Tx, reservationID uint64) ([]uint64, error)
	DeviceIDsByReservation(ctx context.Context, tx pgx.Tx, reservationID uint64) ([]uint64, error)
}

type AssignmentRepository struct {
	storage *pgxpool.Pool
}

func NewAssignmentRepository(storage *pgxpool.Pool) AssignmentRepositoryInterface {
	return &AssignmentRepository{storage: storage}
}

func (r *AssignmentRepository) ListByReservation(ctx context.Context, reservationID uint64) ([]entities.DeviceAssignment, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT da.id, da.reservation_id, da.device_id, d.name, d.serial_number, k.name, da.created_at
		FROM device_assignments da
			JOIN devices d ON d.id = da.device_id
			LEFT JOIN racks k ON k.id = d.rack_id
		WHERE da.reservation_id = $1
		ORDER BY da.id`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.DeviceAssignment, 0)
	for rows.Next() {
		var a entities.DeviceAssignment
		if err := rows.Scan(&a.ID, &a.ReservationID, &a.DeviceID, &a.DeviceName, &a.SerialNumber, &a.RackName, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *AssignmentRepository) CountByReservation(ctx context.Context, tx pgx.Tx, reservationID uint64) (int, error) {
	var count int
	err := pick(r.storage, tx).QueryRow(ctx,
		`SELECT COUNT(*) FROM device_assignments WHERE reservation_id = $1`, reservationID,
	).Scan(&count)
	return count, err
}

func (r *AssignmentRepository) Exists(ctx context.Context, tx pgx.Tx, reservationID, deviceID uint64) (bool, error) {
	var exists bool
	err := pick(r.storage, tx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM device_assignments WHERE reservation_id = $1 AND device_id = $2)`,
		reservationID, deviceID,
	).Scan(&exists)
	return exists, err
}

// CreateBatch вставляет все строки одним запросом.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, tx pgx.Tx, reservationID uint64, deviceIDs []uint64) error {
	if len(deviceIDs) == 0 {
		return nil
	}
	_, err := pick(r.storage, tx).Exec(ctx, `
		INSERT INTO device_assignments (reservation_id, device_id)
		SELECT $1, unnest($2::bigint[])`,
		reservationID, deviceIDs,
	)
	return err
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id uint64) (*entities.DeviceAssignment, error) {
	var a entities.DeviceAssignment
	err := r.storage.QueryRow(ctx, `
		SELECT id, reservation_id, device_id, created_at
		FROM device_assignments WHERE id = $1`, id,
	).Scan(&a.ID, &a.ReservationID, &a.DeviceID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// DeleteInReservation удаляет связь, только если она все еще относится к заявке.
// Вызывается после блокировки строки заявки. Возвращает освобожденное устройство.
func (r *AssignmentRepository) DeleteInReservation(ctx context.Context, tx pgx.Tx, reservationID, id uint64) (uint64, error) {
	var deviceID uint64
	err := pick(r.storage, tx).QueryRow(ctx,
		`DELETE FROM device_assignments WHERE id = $1 AND reservation_id = $2 RETURNING device_id`,
		id, reservationID,
	).Scan(&deviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, err
	}
	return deviceID, nil
}

// DeleteByReservation удаляет все связи заявки и возвращает освобожденные устройства.
func (r *AssignmentRepository) DeleteByReservation(ctx context.Context, tx pgx.Tx, reservationID uint64) ([]uint64, error) {
	rows, err := pick(r.storage, tx).Query(ctx,
		`DELETE FROM device_assignments WHERE reservation_id = $1 RETURNING device_id`, reservationID,
	)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

func (r *AssignmentRepository) DeviceIDsByReservation(ctx context.Context, tx pgx.Tx, reservationID uint64) ([]uint64, error) {
	rows, err := pick(r.storage, tx).Query(ctx,
		`SELECT device_id FROM device_assignments WHERE reservation_id = $1 ORDER BY device_id`, reservationID,
	)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

func collectIDs(rows pgx.Rows) ([]uint64, error) {
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
