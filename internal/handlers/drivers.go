package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ukydev/fleetflow/internal/models"
)

// DriverStore is the driver persistence surface the handler needs.
type DriverStore interface {
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	InsertDriver(ctx context.Context, d *models.Driver) error
	SaveDriver(ctx context.Context, d *models.Driver) error
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
}

// DriversHandler handles administrative driver requests.
type DriversHandler struct {
	store DriverStore
}

// NewDriversHandler creates a new drivers handler.
func NewDriversHandler(store DriverStore) *DriversHandler {
	return &DriversHandler{store: store}
}

// List returns all drivers.
func (h *DriversHandler) List(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.store.ListDrivers(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fmt.Sprintf("found %d drivers", len(drivers)), drivers)
}

// Get returns one driver.
func (h *DriversHandler) Get(w http.ResponseWriter, r *http.Request) {
	driver, err := h.store.GetDriver(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "driver found", driver)
}

// Create registers a new driver in Off Duty status.
func (h *DriversHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.DriverCreateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	driver := &models.Driver{
		Name:          req.Name,
		LicenseExpiry: req.LicenseExpiry,
		Status:        models.DriverOffDuty,
	}
	if err := h.store.InsertDriver(r.Context(), driver); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create driver")
		return
	}
	respondJSON(w, http.StatusCreated, "driver registered", driver)
}

// Update applies an administrative driver update (license renewal,
// suspension and the like).
func (h *DriversHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.DriverUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	driver, err := h.store.GetDriver(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if req.Name != "" {
		driver.Name = req.Name
	}
	if !req.LicenseExpiry.IsZero() {
		driver.LicenseExpiry = req.LicenseExpiry
	}
	if req.Status != "" {
		if !models.IsValidDriverStatus(req.Status) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid driver status '%s'", req.Status))
			return
		}
		driver.Status = req.Status
	}

	if err := h.store.SaveDriver(r.Context(), driver); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "driver updated", driver)
}

// Delete removes a driver. Existing trips keep their driver
// reference; it simply stops resolving.
func (h *DriversHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDriver(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "driver deleted", nil)
}
