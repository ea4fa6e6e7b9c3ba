package repositories

import (
	"context"
	"fmt"
	"time"

	"lending-system/internal/entities"
	"lending-system/pkg/constants"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const topLimit = 10

type ReportRepositoryInterface interface {
	Monthly(ctx context.Context, from, to time.Time) (*entities.MonthlyReport, error)
}

type ReportRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewReportRepository(storage *pgxpool.Pool, logger *zap.Logger) ReportRepositoryInterface {
	return &ReportRepository{storage: storage, logger: logger}
}

// inPeriod - заявки, дата использования которых попадает в [from, to).
func inPeriod(from, to time.Time) sq.And {
	return sq.And{
		sq.GtOrEq{"r.usage_date": from},
		sq.Lt{"r.usage_date": to},
	}
}

// Monthly собирает отчет за период [from, to).
func (r *ReportRepository) Monthly(ctx context.Context, from, to time.Time) (*entities.MonthlyReport, error) {
	report := &entities.MonthlyReport{
		ByProgram:     []entities.NamedCount{},
		TopRequesters: []entities.NamedCount{},
		TopRacks:      []entities.NamedCount{},
		Items:         []entities.ReportItem{},
	}

	if err := r.fillTotals(ctx, from, to, report); err != nil {
		return nil, fmt.Errorf("ошибка подсчета итогов: %w", err)
	}

	var err error
	byProgram := psql.Select("p.name", "COUNT(r.id)").
		From("reservations r").
		Join("programs p ON p.id = r.program_id").
		Where(inPeriod(from, to)).
		GroupBy("p.name").
		OrderBy("COUNT(r.id) DESC", "p.name")
	if report.ByProgram, err = r.namedCounts(ctx, byProgram); err != nil {
		return nil, fmt.Errorf("ошибка подсчета по программам: %w", err)
	}

	topRequesters := psql.Select("u.full_name", "COUNT(r.id)").
		From("reservations r").
		Join("users u ON u.id = r.user_id").
		Where(inPeriod(from, to)).
		GroupBy("u.id", "u.full_name").
		OrderBy("COUNT(r.id) DESC", "u.full_name").
		Limit(topLimit)
	if report.TopRequesters, err = r.namedCounts(ctx, topRequesters); err != nil {
		return nil, fmt.Errorf("ошибка подсчета заявителей: %w", err)
	}

	topRacks := psql.Select("k.name", "COUNT(da.id)").
		From("device_assignments da").
		Join("reservations r ON r.id = da.reservation_id").
		Join("devices d ON d.id = da.device_id").
		Join("racks k ON k.id = d.rack_id").
		Where(inPeriod(from, to)).
		Where(sq.Eq{"r.status": constants.ReservationFinalized}).
		GroupBy("k.id", "k.name").
		OrderBy("COUNT(da.id) DESC", "k.name").
		Limit(topLimit)
	if report.TopRacks, err = r.namedCounts(ctx, topRacks); err != nil {
		return nil, fmt.Errorf("ошибка подсчета стоек: %w", err)
	}

	if report.Items, err = r.items(ctx, from, to); err != nil {
		return nil, fmt.Errorf("ошибка выборки заявок: %w", err)
	}

	return report, nil
}

func (r *ReportRepository) fillTotals(ctx context.Context, from, to time.Time, report *entities.MonthlyReport) error {
	sql, args, err := psql.Select("COUNT(*)").
		Column("COUNT(*) FILTER (WHERE r.status = ?)", constants.ReservationPending).
		Column("COUNT(*) FILTER (WHERE r.status = ?)", constants.ReservationApproved).
		Column("COUNT(*) FILTER (WHERE r.status = ?)", constants.ReservationRejected).
		Column("COUNT(*) FILTER (WHERE r.status = ?)", constants.ReservationFinalized).
		Column("COUNT(*) FILTER (WHERE r.status = ? AND r.rejection_reason LIKE ?)",
			constants.ReservationRejected, constants.CancellationPrefix+"%").
		Column("COALESCE(SUM(r.quantity) FILTER (WHERE r.status IN (?, ?)), 0)",
			constants.ReservationApproved, constants.ReservationFinalized).
		From("reservations r").
		Where(inPeriod(from, to)).
		ToSql()
	if err != nil {
		return err
	}

	err = r.storage.QueryRow(ctx, sql, args...).Scan(
		&report.Total, &report.Pending, &report.Approved, &report.Rejected, &report.Finalized,
		&report.CancelledByRequester, &report.DevicesRequested,
	)
	if err != nil {
		return err
	}

	return r.storage.QueryRow(ctx, `
		SELECT COUNT(*) FROM devices d JOIN equipment_statuses es ON es.id = d.status_id
		WHERE es.code = $1`, constants.EquipmentInUse,
	).Scan(&report.DevicesInUse)
}

func (r *ReportRepository) namedCounts(ctx context.Context, builder sq.SelectBuilder) ([]entities.NamedCount, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.NamedCount, 0)
	for rows.Next() {
		var nc entities.NamedCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		result = append(result, nc)
	}
	return result, rows.Err()
}

func (r *ReportRepository) items(ctx context.Context, from, to time.Time) ([]entities.ReportItem, error) {
	sql, args, err := psql.Select(
		"r.id", "r.usage_date", "to_char(r.start_time, 'HH24:MI')", "to_char(r.end_time, 'HH24:MI')",
		"u.full_name", "p.name", "s.name", "b.name", "rm.name",
		"r.quantity", "r.responsible_name", "r.contact_phone", "r.status",
	).
		From(reservationFromJoins).
		Where(inPeriod(from, to)).
		OrderBy("r.usage_date", "r.start_time", "r.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]entities.ReportItem, 0)
	for rows.Next() {
		var it entities.ReportItem
		err := rows.Scan(
			&it.ReservationID, &it.UsageDate, &it.StartTime, &it.EndTime,
			&it.RequesterName, &it.ProgramName, &it.SubjectName, &it.BuildingName, &it.RoomName,
			&it.Quantity, &it.ResponsibleName, &it.ContactPhone, &it.Status,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
