package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ukydev/fleetflow/internal/lifecycle"
	"github.com/ukydev/fleetflow/internal/middleware"
	"github.com/ukydev/fleetflow/internal/models"
)

// MaintenanceLister lists maintenance logs for the read path.
type MaintenanceLister interface {
	ListMaintenance(ctx context.Context, vehicleID string) ([]models.MaintenanceLog, error)
}

// MaintenanceHandler handles maintenance log requests. Creation goes
// through the lifecycle controller because it forces the vehicle In
// Shop.
type MaintenanceHandler struct {
	ctrl *lifecycle.Controller
	logs MaintenanceLister
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(ctrl *lifecycle.Controller, logs MaintenanceLister) *MaintenanceHandler {
	return &MaintenanceHandler{ctrl: ctrl, logs: logs}
}

// List returns maintenance logs, optionally for ?vehicle_id=.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.logs.ListMaintenance(r.Context(), r.URL.Query().Get("vehicle_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fmt.Sprintf("found %d maintenance logs", len(logs)), logs)
}

// Create logs a maintenance event; the vehicle is set to In Shop as a
// side effect.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.MaintenanceCreateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	actorID := ""
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		actorID = claims.UserID
	}

	entry, _, err := h.ctrl.RecordMaintenance(r.Context(), lifecycle.RecordMaintenanceInput{
		VehicleID:   req.VehicleID,
		ServiceType: req.ServiceType,
		Cost:        req.Cost,
		Date:        req.Date,
		Notes:       req.Notes,
		ActorID:     actorID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, "maintenance logged, vehicle set to 'In Shop'", entry)
}
