package services

import (
	"context"
	"net/http"
	"testing"

	"lending-system/internal/dto"
	"lending-system/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRackService_Create(t *testing.T) {
	store := newMemStore()
	svc := NewRackService(fakeRacks{store}, fakeTxManager{}, zap.NewNop())
	ctx := context.Background()

	rack, err := svc.Create(ctx, inventoryAdmin, dto.CreateRackDTO{Name: " Rack A ", TotalCapacity: 10, FunctionalCapacity: 8})
	require.NoError(t, err)
	assert.Equal(t, "Rack A", rack.Name)
	assert.Equal(t, constants.RackAvailable, rack.Status)

	_, err = svc.Create(ctx, inventoryAdmin, dto.CreateRackDTO{Name: "rack a", TotalCapacity: 5, FunctionalCapacity: 5})
	requireHTTPCode(t, err, http.StatusConflict)

	_, err = svc.Create(ctx, inventoryAdmin, dto.CreateRackDTO{Name: "Rack B", TotalCapacity: 5, FunctionalCapacity: 6})
	requireHTTPCode(t, err, http.StatusBadRequest)
}

func TestRackService_UpdateCapacityBelowCount(t *testing.T) {
	store := newMemStore()
	svc := NewRackService(fakeRacks{store}, fakeTxManager{}, zap.NewNop())
	ctx := context.Background()
	rack := store.addRack("Rack A", 5)
	for _, serial := range []string{"SN-1", "SN-2", "SN-3"} {
		store.addDevice(serial, &rack.ID, constants.EquipmentAvailable)
	}

	_, err := svc.Update(ctx, inventoryAdmin, rack.ID, dto.UpdateRackDTO{
		Name: "Rack A", TotalCapacity: 2, FunctionalCapacity: 2, Status: constants.RackAvailable,
	})
	requireHTTPCode(t, err, http.StatusConflict)
	assert.Equal(t, 5, store.racks[rack.ID].TotalCapacity)

	updated, err := svc.Update(ctx, inventoryAdmin, rack.ID, dto.UpdateRackDTO{
		Name: "Rack A", TotalCapacity: 3, FunctionalCapacity: 3, Status: constants.RackUnavailable,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.TotalCapacity)
	assert.Equal(t, 3, updated.DeviceCount)
	assert.Equal(t, constants.RackUnavailable, updated.Status)
}
