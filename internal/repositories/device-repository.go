package repositories

import (
	"context"
	"errors"
	"fmt"

	"lending-system/internal/entities"
	"lending-system/internal/infrastructure/db"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const deviceSelectFields = `d.id, d.name, d.serial_number, d.model, d.rack_id, k.name,
	d.status_id, es.code, es.name, d.created_at, d.updated_at`

const deviceFromJoins = `devices d
	JOIN equipment_statuses es ON es.id = d.status_id
	LEFT JOIN racks k ON k.id = d.rack_id`

type DeviceRepositoryInterface interface {
	List(ctx context.Context, filter entities.DeviceFilter) ([]entities.Device, uint64, error)
	Stats(ctx context.Context) (entities.DeviceStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Device, error)
	LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Device, error)
	SerialExists(ctx context.Context, tx pgx.Tx, serial string, excludeID uint64) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, device *entities.Device) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, device *entities.Device) error
	SetStatus(ctx context.Context, tx pgx.Tx, ids []uint64, statusCode string) error
	LockAvailableInRack(ctx context.Context, tx pgx.Tx, rackID uint64, limit int) ([]uint64, error)
}

type DeviceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDeviceRepository(storage *pgxpool.Pool, logger *zap.Logger) DeviceRepositoryInterface {
	return &DeviceRepository{storage: storage, logger: logger}
}

func scanDevice(row scanner) (*entities.Device, error) {
	var d entities.Device
	err := row.Scan(
		&d.ID, &d.Name, &d.SerialNumber, &d.Model, &d.RackID, &d.RackName,
		&d.StatusID, &d.StatusCode, &d.StatusName, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

var deviceSortColumns = map[string]string{
	"name":          "d.name",
	"serial_number": "d.serial_number",
	"model":         "d.model",
	"rack":          "k.name",
	"status":        "es.code",
	"created_at":    "d.created_at",
}

func (r *DeviceRepository) List(ctx context.Context, filter entities.DeviceFilter) ([]entities.Device, uint64, error) {
	baseSelect := psql.Select().From(deviceFromJoins)

	if filter.StatusCode != "" {
		baseSelect = baseSelect.Where(sq.Eq{"es.code": filter.StatusCode})
	}
	if filter.RackID != nil {
		baseSelect = baseSelect.Where(sq.Eq{"d.rack_id": *filter.RackID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		baseSelect = baseSelect.Where(sq.Or{
			sq.ILike{"d.name": pattern},
			sq.ILike{"d.serial_number": pattern},
			sq.ILike{"d.model": pattern},
		})
	}

	countQuery, countArgs, err := baseSelect.Columns("COUNT(d.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT-запроса: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения COUNT-запроса: %w", err)
	}
	if total == 0 {
		return []entities.Device{}, 0, nil
	}

	mainBuilder := db.ApplySort(baseSelect.Columns(deviceSelectFields), filter.Sort, deviceSortColumns, "d.name", "d.id")
	mainBuilder = db.ApplyPage(mainBuilder, filter.Limit, filter.Offset)
	sql, args, err := mainBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки основного запроса: %w", err)
	}

	rows, err := r.storage.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	devices := make([]entities.Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, 0, err
		}
		devices = append(devices, *d)
	}
	return devices, total, rows.Err()
}

func (r *DeviceRepository) Stats(ctx context.Context) (entities.DeviceStats, error) {
	var s entities.DeviceStats
	err := r.storage.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE es.code = $1),
			COUNT(*) FILTER (WHERE es.code = $2),
			COUNT(*) FILTER (WHERE es.code = $3),
			COUNT(*) FILTER (WHERE es.code = $4)
		FROM devices d JOIN equipment_statuses es ON es.id = d.status_id`,
		constants.EquipmentAvailable, constants.EquipmentInUse, constants.EquipmentMaintenance, constants.EquipmentDecommissioned,
	).Scan(&s.Total, &s.Available, &s.InUse, &s.Maintenance, &s.Decommissioned)
	return s, err
}

func (r *DeviceRepository) FindByID(ctx context.Context, id uint64) (*entities.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE d.id = $1`, deviceSelectFields, deviceFromJoins)
	d, err := scanDevice(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *DeviceRepository) LockByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Device, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE d.id = $1 FOR UPDATE OF d`, deviceSelectFields, deviceFromJoins)
	d, err := scanDevice(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *DeviceRepository) SerialExists(ctx context.Context, tx pgx.Tx, serial string, excludeID uint64) (bool, error) {
	var exists bool
	err := pick(r.storage, tx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM devices WHERE serial_number = $1 AND id <> $2)`, serial, excludeID,
	).Scan(&exists)
	return exists, err
}

// Create берет статус по коду device.StatusCode.
const deviceSerialConstraint = "devices_serial_number_key"

// mapDeviceWriteError переводит нарушение уникальности серийного номера в ErrDuplicateSerial.
func mapDeviceWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == deviceSerialConstraint {
		return apperrors.ErrDuplicateSerial
	}
	return err
}

func (r *DeviceRepository) Create(ctx context.Context, tx pgx.Tx, device *entities.Device) (uint64, error) {
	var id uint64
	err := pick(r.storage, tx).QueryRow(ctx, `
		INSERT INTO devices (name, serial_number, model, rack_id, status_id)
		VALUES ($1, $2, $3, $4, (SELECT id FROM equipment_statuses WHERE code = $5))
		RETURNING id`,
		device.Name, device.SerialNumber, device.Model, device.RackID, device.StatusCode,
	).Scan(&id)
	if err != nil {
		return 0, mapDeviceWriteError(err)
	}
	return id, nil
}

func (r *DeviceRepository) Update(ctx context.Context, tx pgx.Tx, device *entities.Device) error {
	result, err := pick(r.storage, tx).Exec(ctx, `
		UPDATE devices
		SET name = $1, serial_number = $2, model = $3, rack_id = $4,
			status_id = (SELECT id FROM equipment_statuses WHERE code = $5), updated_at = NOW()
		WHERE id = $6`,
		device.Name, device.SerialNumber, device.Model, device.RackID, device.StatusCode, device.ID,
	)
	if err != nil {
		return mapDeviceWriteError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DeviceRepository) SetStatus(ctx context.Context, tx pgx.Tx, ids []uint64, statusCode string) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := pick(r.storage, tx).Exec(ctx, `
		UPDATE devices
		SET status_id = (SELECT id FROM equipment_statuses WHERE code = $1), updated_at = NOW()
		WHERE id = ANY($2)`,
		statusCode, ids,
	)
	if err != nil {
		return err
	}
	if int(result.RowsAffected()) != len(ids) {
		return fmt.Errorf("статус обновлен у %d устройств из %d", result.RowsAffected(), len(ids))
	}
	return nil
}

// LockAvailableInRack блокирует до limit свободных устройств стойки в порядке id.
func (r *DeviceRepository) LockAvailableInRack(ctx context.Context, tx pgx.Tx, rackID uint64, limit int) ([]uint64, error) {
	rows, err := tx.Query(ctx, `
		SELECT d.id
		FROM devices d JOIN equipment_statuses es ON es.id = d.status_id
		WHERE d.rack_id = $1 AND es.code = $2
		ORDER BY d.id
		LIMIT $3
		FOR UPDATE OF d`,
		rackID, constants.EquipmentAvailable, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0, limit)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
