package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"lending-system/internal/entities"
	"lending-system/pkg/constants"
	"lending-system/pkg/database/postgresql"
	apperrors "lending-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testPool остается nil без TEST_DATABASE_URL, и тесты с БД пропускаются.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		if err := postgresql.Migrate(dsn); err != nil {
			panic(err)
		}
		pool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			panic(err)
		}
		testPool = pool
	}
	code := m.Run()
	if testPool != nil {
		testPool.Close()
	}
	os.Exit(code)
}

type fixture struct {
	userID      uint64
	programID   uint64
	subjectID   uint64
	roomID      uint64
	rackID      uint64
	reservation uint64
}

func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	return testPool
}

// seedFixture очищает таблицы и создает минимальный набор данных: преподавателя,
// справочники, стойку и одобренную заявку на quantity устройств.
func seedFixture(t *testing.T, pool *pgxpool.Pool, quantity int) fixture {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `TRUNCATE reservation_audit_log, reservation_evidences, supervisor_assignments,
		device_assignments, reservations, devices, racks, rooms, buildings, subjects, programs, faculties,
		users, roles RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	var f fixture
	var roleID, facultyID, buildingID uint64
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO roles (code, name) VALUES ($1, 'Преподаватель') RETURNING id`, constants.RoleTeacher).Scan(&roleID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO users (full_name, username, password, role_id) VALUES ('Ana Teacher', 'ana', 'x', $1) RETURNING id`, roleID).Scan(&f.userID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO faculties (name) VALUES ('Ingeniería') RETURNING id`).Scan(&facultyID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO programs (name, faculty_id) VALUES ('Software', $1) RETURNING id`, facultyID).Scan(&f.programID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO subjects (name, program_id) VALUES ('Redes', $1) RETURNING id`, f.programID).Scan(&f.subjectID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO buildings (name) VALUES ('A') RETURNING id`).Scan(&buildingID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO rooms (name, building_id) VALUES ('101', $1) RETURNING id`, buildingID).Scan(&f.roomID))

	f.rackID, err = NewRackRepository(pool).Create(ctx, &entities.Rack{
		Name: "Rack A", TotalCapacity: 5, FunctionalCapacity: 5, Status: constants.RackAvailable,
	})
	require.NoError(t, err)

	f.reservation, err = NewReservationRepository(pool, zap.NewNop()).Create(ctx, &entities.Reservation{
		UserID: f.userID, SubjectID: f.subjectID, ProgramID: f.programID, RoomID: f.roomID,
		UsageDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), StartTime: "08:00", EndTime: "10:00",
		Quantity: quantity, Status: constants.ReservationApproved,
		ResponsibleName: "ANA TEACHER", ContactPhone: "0991234567",
	})
	require.NoError(t, err)
	return f
}

func addDevice(t *testing.T, repo DeviceRepositoryInterface, rackID uint64, serial string) uint64 {
	t.Helper()
	id, err := repo.Create(context.Background(), nil, &entities.Device{
		Name: "Chromebook " + serial, SerialNumber: serial, RackID: &rackID, StatusCode: constants.EquipmentAvailable,
	})
	require.NoError(t, err)
	return id
}

func TestRackRepository_CountsAndEligibility(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	f := seedFixture(t, pool, 3)
	devices := NewDeviceRepository(pool, zap.NewNop())
	racks := NewRackRepository(pool)

	addDevice(t, devices, f.rackID, "SN-1")
	addDevice(t, devices, f.rackID, "SN-2")

	rack, err := racks.FindByID(ctx, f.rackID)
	require.NoError(t, err)
	assert.Equal(t, 2, rack.DeviceCount)
	assert.Equal(t, 2, rack.AvailableCount)

	eligible, err := racks.ListEligible(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, eligible)

	addDevice(t, devices, f.rackID, "SN-3")
	eligible, err = racks.ListEligible(ctx, 3)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, f.rackID, eligible[0].ID)
}

func TestDeviceRepository_SerialExists(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	f := seedFixture(t, pool, 1)
	devices := NewDeviceRepository(pool, zap.NewNop())

	id := addDevice(t, devices, f.rackID, "SN-1")

	exists, err := devices.SerialExists(ctx, nil, "SN-1", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = devices.SerialExists(ctx, nil, "SN-1", id)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = devices.Create(ctx, nil, &entities.Device{
		Name: "Chromebook dup", SerialNumber: "SN-1", StatusCode: constants.EquipmentAvailable,
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateSerial)

	otherID := addDevice(t, devices, f.rackID, "SN-2")
	err = devices.Update(ctx, nil, &entities.Device{
		ID: otherID, Name: "Chromebook SN-2", SerialNumber: "SN-1", RackID: &f.rackID, StatusCode: constants.EquipmentAvailable,
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateSerial)
}

func TestAssignmentRepository_BatchAndRelease(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	f := seedFixture(t, pool, 2)
	devices := NewDeviceRepository(pool, zap.NewNop())
	assignments := NewAssignmentRepository(pool)
	txm := NewTxManager(pool)

	addDevice(t, devices, f.rackID, "SN-1")
	addDevice(t, devices, f.rackID, "SN-2")
	addDevice(t, devices, f.rackID, "SN-3")

	err := txm.RunInTransaction(ctx, func(tx pgx.Tx) error {
		ids, err := devices.LockAvailableInRack(ctx, tx, f.rackID, 2)
		if err != nil {
			return err
		}
		require.Len(t, ids, 2)
		if err := assignments.CreateBatch(ctx, tx, f.reservation, ids); err != nil {
			return err
		}
		return devices.SetStatus(ctx, tx, ids, constants.EquipmentInUse)
	})
	require.NoError(t, err)

	list, err := assignments.ListByReservation(ctx, f.reservation)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "SN-1", list[0].SerialNumber)
	assert.Equal(t, "SN-2", list[1].SerialNumber)

	stats, err := devices.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.InUse)
	assert.Equal(t, 1, stats.Available)

	first, err := assignments.FindByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, f.reservation, first.ReservationID)

	_, err = assignments.DeleteInReservation(ctx, nil, f.reservation+1000, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = txm.RunInTransaction(ctx, func(tx pgx.Tx) error {
		deviceID, err := assignments.DeleteInReservation(ctx, tx, f.reservation, first.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, first.DeviceID, deviceID)
		return devices.SetStatus(ctx, tx, []uint64{deviceID}, constants.EquipmentAvailable)
	})
	require.NoError(t, err)

	err = txm.RunInTransaction(ctx, func(tx pgx.Tx) error {
		ids, err := assignments.DeleteByReservation(ctx, tx, f.reservation)
		if err != nil {
			return err
		}
		assert.Len(t, ids, 1)
		return devices.SetStatus(ctx, tx, ids, constants.EquipmentAvailable)
	})
	require.NoError(t, err)

	count, err := assignments.CountByReservation(ctx, nil, f.reservation)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReservationRepository_ListAndStatus(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	f := seedFixture(t, pool, 1)
	repo := NewReservationRepository(pool, zap.NewNop())

	reason := constants.CancellationPrefix + "занятие перенесено"
	require.NoError(t, repo.UpdateStatus(ctx, nil, f.reservation, constants.ReservationRejected, &reason))

	r, err := repo.FindByID(ctx, f.reservation)
	require.NoError(t, err)
	assert.Equal(t, constants.ReservationRejected, r.Status)
	require.NotNil(t, r.RejectionReason)
	assert.Equal(t, reason, *r.RejectionReason)
	assert.Equal(t, "08:00", r.StartTime)
	assert.Equal(t, "Software", r.ProgramName)
	assert.Equal(t, "A", r.BuildingName)

	list, total, err := repo.List(ctx, entities.ReservationFilter{UserID: &f.userID, Status: constants.ReservationRejected})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	_, total, err = repo.List(ctx, entities.ReservationFilter{Status: constants.ReservationPending})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestReportRepository_Monthly(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	f := seedFixture(t, pool, 4)
	reservations := NewReservationRepository(pool, zap.NewNop())
	reason := constants.CancellationPrefix + "болезнь"
	require.NoError(t, reservations.UpdateStatus(ctx, nil, f.reservation, constants.ReservationRejected, &reason))

	_, err := reservations.Create(ctx, &entities.Reservation{
		UserID: f.userID, SubjectID: f.subjectID, ProgramID: f.programID, RoomID: f.roomID,
		UsageDate: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "11:00",
		Quantity: 7, Status: constants.ReservationApproved,
		ResponsibleName: "ANA TEACHER", ContactPhone: "0991234567",
	})
	require.NoError(t, err)

	report, err := NewReportRepository(pool, zap.NewNop()).Monthly(ctx,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 1, report.Approved)
	assert.Equal(t, 1, report.CancelledByRequester)
	assert.Equal(t, 7, report.DevicesRequested)
	require.Len(t, report.ByProgram, 1)
	assert.Equal(t, entities.NamedCount{Name: "Software", Count: 2}, report.ByProgram[0])
	require.Len(t, report.Items, 2)
	assert.Equal(t, "08:00", report.Items[0].StartTime)
}
