package services

import (
	"context"
	"testing"

	"lending-system/internal/authz"
	"lending-system/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManagementService_Detail(t *testing.T) {
	store := newMemStore()
	svc := NewManagementService(fakeReservations{store}, fakeAssignments{store}, fakeRacks{store},
		fakeSupervisors{store}, newMemEvidences(), fakeUsers{store}, zap.NewNop())
	ctx := context.Background()

	teacher := store.addUser("Ana Teacher", constants.RoleTeacher)
	admin := authz.Actor{UserID: store.addUser("Root Admin", constants.RoleAdmin).ID, RoleCode: constants.RoleAdmin}
	supA := store.addUser("Sam Supervisor", constants.RoleSupervisor)
	supB := store.addUser("Zoe Supervisor", constants.RoleSupervisor)

	big := store.addRack("Rack A", 10)
	small := store.addRack("Rack B", 10)
	for _, serial := range []string{"A-1", "A-2", "A-3"} {
		store.addDevice(serial, &big.ID, constants.EquipmentAvailable)
	}
	store.addDevice("B-1", &small.ID, constants.EquipmentAvailable)
	taken := store.addDevice("X-1", nil, constants.EquipmentInUse)

	r := store.addReservation(teacher.ID, constants.ReservationApproved, 3, testNow, "09:00")
	_ = fakeAssignments{store}.CreateBatch(ctx, nil, r.ID, []uint64{taken.ID})
	_, _ = fakeSupervisors{store}.Create(ctx, nil, r.ID, supA.ID)

	detail, err := svc.Detail(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Needed)
	assert.Len(t, detail.Devices, 1)
	require.Len(t, detail.EligibleRacks, 1)
	assert.Equal(t, "Rack A", detail.EligibleRacks[0].Name)
	require.Len(t, detail.Supervisors, 1)
	require.Len(t, detail.AvailableSupervisors, 1)
	assert.Equal(t, supB.ID, detail.AvailableSupervisors[0].ID)
	assert.Empty(t, detail.Evidences)

	store.reservations[r.ID].Status = constants.ReservationPending
	detail, err = svc.Detail(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.EligibleRacks)
}
