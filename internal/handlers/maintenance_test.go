package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleetflow/internal/db"
	"github.com/ukydev/fleetflow/internal/events"
	"github.com/ukydev/fleetflow/internal/lifecycle"
	"github.com/ukydev/fleetflow/internal/middleware"
	"github.com/ukydev/fleetflow/internal/models"
)

type fakeMaintenanceLister struct {
	logs []models.MaintenanceLog
}

func (f *fakeMaintenanceLister) ListMaintenance(_ context.Context, vehicleID string) ([]models.MaintenanceLog, error) {
	if vehicleID == "" {
		return f.logs, nil
	}
	var out []models.MaintenanceLog
	for _, l := range f.logs {
		if l.VehicleID == vehicleID {
			out = append(out, l)
		}
	}
	return out, nil
}

func TestMaintenanceCreate(t *testing.T) {
	store := db.NewMemStore()
	ctrl := lifecycle.NewController(store, events.NopPublisher{}, lifecycle.OdometerWarn)
	h := NewMaintenanceHandler(ctrl, &fakeMaintenanceLister{})

	ctx := context.Background()
	vehicle := &models.Vehicle{Name: "Truck", MaxCapacity: 1000, Status: models.VehicleAvailable}
	require.NoError(t, store.InsertVehicle(ctx, vehicle))

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(models.MaintenanceCreateRequest{
		VehicleID:   vehicle.ID.Hex(),
		ServiceType: "brake_service",
		Cost:        320,
		Date:        time.Now(),
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance", &buf)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey,
		&models.Claims{UserID: "user-9", Role: models.RoleDispatcher}))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	updated, err := store.GetVehicle(ctx, vehicle.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.VehicleInShop, updated.Status)

	audits := store.AuditLogs()
	require.Len(t, audits, 1)
	assert.Equal(t, "user-9", audits[0].UserID)
}

func TestMaintenanceCreateUnknownVehicle(t *testing.T) {
	store := db.NewMemStore()
	ctrl := lifecycle.NewController(store, events.NopPublisher{}, lifecycle.OdometerWarn)
	h := NewMaintenanceHandler(ctrl, &fakeMaintenanceLister{})

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(models.MaintenanceCreateRequest{
		VehicleID:   "64b000000000000000000000",
		ServiceType: "inspection",
		Date:        time.Now(),
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance", &buf)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaintenanceList(t *testing.T) {
	lister := &fakeMaintenanceLister{logs: []models.MaintenanceLog{
		{VehicleID: "v1", ServiceType: "oil_change"},
		{VehicleID: "v2", ServiceType: "inspection"},
	}}
	h := NewMaintenanceHandler(nil, lister)

	req := httptest.NewRequest(http.MethodGet, "/api/maintenance?vehicle_id=v1", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}
