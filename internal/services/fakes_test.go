package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"lending-system/internal/entities"
	"lending-system/pkg/constants"
	apperrors "lending-system/pkg/errors"
	"lending-system/pkg/eventbus"

	"github.com/jackc/pgx/v5"
)

// memStore - состояние БД в памяти для тестов сервисов.
// Блокировки и откат не моделируются: сервисы проверяют условия до первой записи.
type memStore struct {
	seq          uint64
	reservations map[uint64]*entities.Reservation
	devices      map[uint64]*entities.Device
	racks        map[uint64]*entities.Rack
	assignments  map[uint64]*entities.DeviceAssignment
	supervisors  map[uint64]*entities.SupervisorAssignment
	users        map[uint64]*entities.User
	subjects     map[uint64]uint64 // subject -> program
	rooms        map[uint64]bool
	calls        []string // порядок обращений, которые важны для блокировок

	// staleSerialCheck: проверка серийного номера не видит параллельную вставку
	staleSerialCheck bool
}

func newMemStore() *memStore {
	return &memStore{
		reservations: map[uint64]*entities.Reservation{},
		devices:      map[uint64]*entities.Device{},
		racks:        map[uint64]*entities.Rack{},
		assignments:  map[uint64]*entities.DeviceAssignment{},
		supervisors:  map[uint64]*entities.SupervisorAssignment{},
		users:        map[uint64]*entities.User{},
		subjects:     map[uint64]uint64{},
		rooms:        map[uint64]bool{},
	}
}

func (m *memStore) nextID() uint64 {
	m.seq++
	return m.seq
}

// --- helpers для подготовки данных ---

func (m *memStore) addUser(fullName, roleCode string) *entities.User {
	u := &entities.User{ID: m.nextID(), FullName: fullName, Username: strings.ToLower(strings.Fields(fullName)[0]), RoleCode: roleCode, RoleName: roleCode}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addRack(name string, total int) *entities.Rack {
	k := &entities.Rack{ID: m.nextID(), Name: name, TotalCapacity: total, FunctionalCapacity: total, Status: constants.RackAvailable}
	m.racks[k.ID] = k
	return k
}

func (m *memStore) addDevice(serial string, rackID *uint64, status string) *entities.Device {
	d := &entities.Device{ID: m.nextID(), Name: "Chromebook " + serial, SerialNumber: serial, RackID: rackID, StatusCode: status, StatusName: status}
	m.devices[d.ID] = d
	return d
}

func (m *memStore) addReservation(userID uint64, status string, quantity int, usage time.Time, start string) *entities.Reservation {
	r := &entities.Reservation{
		ID: m.nextID(), UserID: userID, SubjectID: 1, ProgramID: 1, RoomID: 1,
		UsageDate: time.Date(usage.Year(), usage.Month(), usage.Day(), 0, 0, 0, 0, time.UTC),
		StartTime: start, EndTime: "16:00", Quantity: quantity, Status: status,
		ResponsibleName: "ANA", ContactPhone: "0991234567",
	}
	m.reservations[r.ID] = r
	return r
}

func (m *memStore) assignmentsOf(reservationID uint64) []*entities.DeviceAssignment {
	result := []*entities.DeviceAssignment{}
	for _, a := range m.assignments {
		if a.ReservationID == reservationID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *memStore) countInStatus(status string) int {
	n := 0
	for _, d := range m.devices {
		if d.StatusCode == status {
			n++
		}
	}
	return n
}

// --- TxManager / Publisher ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type recordingBus struct {
	events []eventbus.Event
}

func (b *recordingBus) Publish(_ context.Context, event eventbus.Event) {
	b.events = append(b.events, event)
}

func (b *recordingBus) names() []string {
	names := make([]string, 0, len(b.events))
	for _, e := range b.events {
		names = append(names, e.Name())
	}
	return names
}

// --- reservations ---

type fakeReservations struct{ *memStore }

func (f fakeReservations) view(r *entities.Reservation) *entities.Reservation {
	c := *r
	c.AssignedCount = len(f.assignmentsOf(r.ID))
	return &c
}

func (f fakeReservations) Create(_ context.Context, r *entities.Reservation) (uint64, error) {
	c := *r
	c.ID = f.nextID()
	f.reservations[c.ID] = &c
	return c.ID, nil
}

func (f fakeReservations) FindByID(_ context.Context, id uint64) (*entities.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return f.view(r), nil
}

func (f fakeReservations) LockByID(ctx context.Context, _ pgx.Tx, id uint64) (*entities.Reservation, error) {
	f.calls = append(f.calls, "reservation.lock")
	return f.FindByID(ctx, id)
}

func (f fakeReservations) List(_ context.Context, filter entities.ReservationFilter) ([]entities.Reservation, uint64, error) {
	list := []entities.Reservation{}
	for _, r := range f.reservations {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		list = append(list, *f.view(r))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UsageDate.After(list[j].UsageDate) })
	return list, uint64(len(list)), nil
}

func (f fakeReservations) UpdateStatus(_ context.Context, _ pgx.Tx, id uint64, status string, reason *string) error {
	r, ok := f.reservations[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.Status = status
	if reason != nil {
		r.RejectionReason = reason
	}
	return nil
}

func (f fakeReservations) UpdateManagement(_ context.Context, _ pgx.Tx, id uint64, notes *string, handoverAt, returnedAt *time.Time) error {
	r, ok := f.reservations[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.Notes, r.HandoverAt, r.ReturnedAt = notes, handoverAt, returnedAt
	return nil
}

// --- assignments ---

type fakeAssignments struct{ *memStore }

func (f fakeAssignments) ListByReservation(_ context.Context, reservationID uint64) ([]entities.DeviceAssignment, error) {
	result := []entities.DeviceAssignment{}
	for _, a := range f.assignmentsOf(reservationID) {
		result = append(result, *a)
	}
	return result, nil
}

func (f fakeAssignments) CountByReservation(_ context.Context, _ pgx.Tx, reservationID uint64) (int, error) {
	return len(f.assignmentsOf(reservationID)), nil
}

func (f fakeAssignments) Exists(_ context.Context, _ pgx.Tx, reservationID, deviceID uint64) (bool, error) {
	for _, a := range f.assignmentsOf(reservationID) {
		if a.DeviceID == deviceID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeAssignments) CreateBatch(_ context.Context, _ pgx.Tx, reservationID uint64, deviceIDs []uint64) error {
	for _, id := range deviceIDs {
		a := &entities.DeviceAssignment{ID: f.nextID(), ReservationID: reservationID, DeviceID: id}
		f.assignments[a.ID] = a
	}
	return nil
}

func (f fakeAssignments) FindByID(_ context.Context, id uint64) (*entities.DeviceAssignment, error) {
	f.calls = append(f.calls, "assignment.find")
	a, ok := f.assignments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f fakeAssignments) DeleteInReservation(_ context.Context, _ pgx.Tx, reservationID, id uint64) (uint64, error) {
	f.calls = append(f.calls, "assignment.delete")
	a, ok := f.assignments[id]
	if !ok || a.ReservationID != reservationID {
		return 0, apperrors.ErrNotFound
	}
	delete(f.assignments, id)
	return a.DeviceID, nil
}

func (f fakeAssignments) DeleteByReservation(ctx context.Context, tx pgx.Tx, reservationID uint64) ([]uint64, error) {
	ids, _ := f.DeviceIDsByReservation(ctx, tx, reservationID)
	for _, a := range f.assignmentsOf(reservationID) {
		delete(f.assignments, a.ID)
	}
	return ids, nil
}

func (f fakeAssignments) DeviceIDsByReservation(_ context.Context, _ pgx.Tx, reservationID uint64) ([]uint64, error) {
	ids := []uint64{}
	for _, a := range f.assignmentsOf(reservationID) {
		ids = append(ids, a.DeviceID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// --- devices ---

type fakeDevices struct{ *memStore }

func (f fakeDevices) List(_ context.Context, filter entities.DeviceFilter) ([]entities.Device, uint64, error) {
	list := []entities.Device{}
	for _, d := range f.devices {
		if filter.StatusCode != "" && d.StatusCode != filter.StatusCode {
			continue
		}
		if filter.RackID != nil && (d.RackID == nil || *d.RackID != *filter.RackID) {
			continue
		}
		list = append(list, *d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if filter.Sort["serial_number"] == "desc" {
		sort.Slice(list, func(i, j int) bool { return list[i].SerialNumber > list[j].SerialNumber })
	}
	return list, uint64(len(list)), nil
}

func (f fakeDevices) Stats(_ context.Context) (entities.DeviceStats, error) {
	return entities.DeviceStats{
		Total:          len(f.devices),
		Available:      f.countInStatus(constants.EquipmentAvailable),
		InUse:          f.countInStatus(constants.EquipmentInUse),
		Maintenance:    f.countInStatus(constants.EquipmentMaintenance),
		Decommissioned: f.countInStatus(constants.EquipmentDecommissioned),
	}, nil
}

func (f fakeDevices) FindByID(_ context.Context, id uint64) (*entities.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (f fakeDevices) LockByID(ctx context.Context, _ pgx.Tx, id uint64) (*entities.Device, error) {
	return f.FindByID(ctx, id)
}

func (f fakeDevices) SerialExists(_ context.Context, _ pgx.Tx, serial string, excludeID uint64) (bool, error) {
	if f.staleSerialCheck {
		return false, nil
	}
	for _, d := range f.devices {
		if d.SerialNumber == serial && d.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// serialTaken повторяет уникальный индекс devices.serial_number.
func (f fakeDevices) serialTaken(serial string, excludeID uint64) bool {
	for _, d := range f.devices {
		if d.SerialNumber == serial && d.ID != excludeID {
			return true
		}
	}
	return false
}

func (f fakeDevices) Create(_ context.Context, _ pgx.Tx, device *entities.Device) (uint64, error) {
	if f.serialTaken(device.SerialNumber, 0) {
		return 0, apperrors.ErrDuplicateSerial
	}
	c := *device
	c.ID = f.nextID()
	c.StatusName = c.StatusCode
	f.devices[c.ID] = &c
	return c.ID, nil
}

func (f fakeDevices) Update(_ context.Context, _ pgx.Tx, device *entities.Device) error {
	if _, ok := f.devices[device.ID]; !ok {
		return apperrors.ErrNotFound
	}
	if f.serialTaken(device.SerialNumber, device.ID) {
		return apperrors.ErrDuplicateSerial
	}
	c := *device
	c.StatusName = c.StatusCode
	f.devices[c.ID] = &c
	return nil
}

func (f fakeDevices) SetStatus(_ context.Context, _ pgx.Tx, ids []uint64, statusCode string) error {
	for _, id := range ids {
		d, ok := f.devices[id]
		if !ok {
			return fmt.Errorf("устройство %d не найдено", id)
		}
		d.StatusCode, d.StatusName = statusCode, statusCode
	}
	return nil
}

func (f fakeDevices) LockAvailableInRack(_ context.Context, _ pgx.Tx, rackID uint64, limit int) ([]uint64, error) {
	ids := []uint64{}
	for _, d := range f.devices {
		if d.RackID != nil && *d.RackID == rackID && d.StatusCode == constants.EquipmentAvailable {
			ids = append(ids, d.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// --- racks ---

type fakeRacks struct{ *memStore }

func (f fakeRacks) withCounts(k *entities.Rack) *entities.Rack {
	c := *k
	c.DeviceCount, c.AvailableCount = 0, 0
	for _, d := range f.devices {
		if d.RackID != nil && *d.RackID == k.ID {
			c.DeviceCount++
			if d.StatusCode == constants.EquipmentAvailable {
				c.AvailableCount++
			}
		}
	}
	return &c
}

func (f fakeRacks) List(_ context.Context) ([]entities.Rack, error) {
	list := []entities.Rack{}
	for _, k := range f.racks {
		list = append(list, *f.withCounts(k))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (f fakeRacks) ListEligible(ctx context.Context, needed int) ([]entities.Rack, error) {
	all, _ := f.List(ctx)
	result := []entities.Rack{}
	for _, k := range all {
		if k.Status == constants.RackAvailable && k.AvailableCount >= needed {
			result = append(result, k)
		}
	}
	return result, nil
}

func (f fakeRacks) FindByID(_ context.Context, id uint64) (*entities.Rack, error) {
	k, ok := f.racks[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return f.withCounts(k), nil
}

func (f fakeRacks) LockByID(ctx context.Context, _ pgx.Tx, id uint64) (*entities.Rack, error) {
	return f.FindByID(ctx, id)
}

func (f fakeRacks) NameExists(_ context.Context, name string, excludeID uint64) (bool, error) {
	for _, k := range f.racks {
		if strings.EqualFold(k.Name, name) && k.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeRacks) Create(_ context.Context, rack *entities.Rack) (uint64, error) {
	c := *rack
	c.ID = f.nextID()
	f.racks[c.ID] = &c
	return c.ID, nil
}

func (f fakeRacks) Update(_ context.Context, _ pgx.Tx, rack *entities.Rack) error {
	if _, ok := f.racks[rack.ID]; !ok {
		return apperrors.ErrNotFound
	}
	c := *rack
	f.racks[c.ID] = &c
	return nil
}

// --- catalog / users / supervisors ---

type fakeCatalog struct{ *memStore }

func (f fakeCatalog) ListPrograms(context.Context) ([]entities.Program, error) {
	return []entities.Program{{ID: 1, Name: "Software"}}, nil
}

func (f fakeCatalog) ListSubjectsByProgram(_ context.Context, programID uint64) ([]entities.Subject, error) {
	result := []entities.Subject{}
	for s, p := range f.subjects {
		if p == programID {
			result = append(result, entities.Subject{ID: s, ProgramID: p})
		}
	}
	return result, nil
}

func (f fakeCatalog) ListBuildings(context.Context) ([]entities.Building, error) {
	return []entities.Building{{ID: 1, Name: "A"}}, nil
}

func (f fakeCatalog) ListRoomsByBuilding(context.Context, uint64) ([]entities.Room, error) {
	return []entities.Room{{ID: 1, Name: "101", BuildingID: 1}}, nil
}

func (f fakeCatalog) SubjectInProgram(_ context.Context, subjectID, programID uint64) (bool, error) {
	p, ok := f.subjects[subjectID]
	return ok && p == programID, nil
}

func (f fakeCatalog) RoomExists(_ context.Context, roomID uint64) (bool, error) {
	return f.rooms[roomID], nil
}

type fakeUsers struct{ *memStore }

func (f fakeUsers) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f fakeUsers) FindByID(_ context.Context, id uint64) (*entities.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) ListByRole(_ context.Context, roleCode string) ([]entities.User, error) {
	result := []entities.User{}
	for _, u := range f.users {
		if u.RoleCode == roleCode {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (f fakeUsers) SuggestFullNames(_ context.Context, query string, limit int) ([]string, error) {
	names := []string{}
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.FullName), strings.ToLower(query)) {
			names = append(names, u.FullName)
		}
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

type fakeSupervisors struct{ *memStore }

func (f fakeSupervisors) ListByReservation(_ context.Context, reservationID uint64) ([]entities.SupervisorAssignment, error) {
	result := []entities.SupervisorAssignment{}
	for _, s := range f.supervisors {
		if s.ReservationID == reservationID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f fakeSupervisors) FindByID(_ context.Context, id uint64) (*entities.SupervisorAssignment, error) {
	s, ok := f.supervisors[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (f fakeSupervisors) Exists(_ context.Context, _ pgx.Tx, reservationID, supervisorID uint64) (bool, error) {
	for _, s := range f.supervisors {
		if s.ReservationID == reservationID && s.SupervisorID == supervisorID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeSupervisors) Create(_ context.Context, _ pgx.Tx, reservationID, supervisorID uint64) (uint64, error) {
	s := &entities.SupervisorAssignment{ID: f.nextID(), ReservationID: reservationID, SupervisorID: supervisorID}
	if u, ok := f.users[supervisorID]; ok {
		s.SupervisorName = u.FullName
	}
	f.supervisors[s.ID] = s
	return s.ID, nil
}

func (f fakeSupervisors) Delete(_ context.Context, id uint64) error {
	if _, ok := f.supervisors[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.supervisors, id)
	return nil
}
