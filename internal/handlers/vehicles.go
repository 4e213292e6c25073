package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ukydev/fleetflow/internal/models"
)

// VehicleStore is the vehicle persistence surface the handler needs.
type VehicleStore interface {
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	InsertVehicle(ctx context.Context, v *models.Vehicle) error
	SaveVehicle(ctx context.Context, v *models.Vehicle) error
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	DeleteVehicleCascade(ctx context.Context, id string) error
}

// VehiclesHandler handles administrative vehicle requests.
type VehiclesHandler struct {
	store VehicleStore
}

// NewVehiclesHandler creates a new vehicles handler.
func NewVehiclesHandler(store VehicleStore) *VehiclesHandler {
	return &VehiclesHandler{store: store}
}

// List returns all vehicles.
func (h *VehiclesHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.store.ListVehicles(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fmt.Sprintf("found %d vehicles", len(vehicles)), vehicles)
}

// Get returns one vehicle.
func (h *VehiclesHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.store.GetVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "vehicle found", vehicle)
}

// Create registers a new vehicle in Available status.
func (h *VehiclesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.VehicleCreateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle := &models.Vehicle{
		Name:         req.Name,
		LicensePlate: req.LicensePlate,
		MaxCapacity:  req.MaxCapacity,
		Odometer:     req.Odometer,
		Status:       models.VehicleAvailable,
	}
	if err := h.store.InsertVehicle(r.Context(), vehicle); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create vehicle")
		return
	}
	respondJSON(w, http.StatusCreated, "vehicle registered", vehicle)
}

// Update applies an administrative vehicle update. The odometer is
// not editable here: it only advances through trip completion.
func (h *VehiclesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.VehicleUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := h.store.GetVehicle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if req.Name != "" {
		vehicle.Name = req.Name
	}
	if req.LicensePlate != "" {
		vehicle.LicensePlate = req.LicensePlate
	}
	if req.MaxCapacity > 0 {
		vehicle.MaxCapacity = req.MaxCapacity
	}
	if req.Status != "" {
		if !models.IsValidVehicleStatus(req.Status) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid vehicle status '%s'", req.Status))
			return
		}
		vehicle.Status = req.Status
	}

	if err := h.store.SaveVehicle(r.Context(), vehicle); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "vehicle updated", vehicle)
}

// Delete removes a vehicle and all records it owns.
func (h *VehiclesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteVehicleCascade(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "vehicle and its records deleted", nil)
}
