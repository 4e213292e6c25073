package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ukydev/fleetflow/internal/models"
)

// FinanceStore is the fuel/expense persistence surface the handler
// needs.
type FinanceStore interface {
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	InsertFuelLog(ctx context.Context, f *models.FuelLog) error
	ListFuelLogs(ctx context.Context, vehicleID string) ([]models.FuelLog, error)
	InsertExpense(ctx context.Context, e *models.Expense) error
	ListExpenses(ctx context.Context, vehicleID string) ([]models.Expense, error)
}

// FinanceHandler handles fuel log and expense requests.
type FinanceHandler struct {
	store FinanceStore
}

// NewFinanceHandler creates a new finance handler.
func NewFinanceHandler(store FinanceStore) *FinanceHandler {
	return &FinanceHandler{store: store}
}

// ListFuel returns fuel logs, optionally for ?vehicle_id=.
func (h *FinanceHandler) ListFuel(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.ListFuelLogs(r.Context(), r.URL.Query().Get("vehicle_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fmt.Sprintf("found %d fuel logs", len(logs)), logs)
}

// CreateFuel logs a refuelling for an existing vehicle.
func (h *FinanceHandler) CreateFuel(w http.ResponseWriter, r *http.Request) {
	var req models.FuelLogCreateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.GetVehicle(r.Context(), req.VehicleID); err != nil {
		respondDomainError(w, err)
		return
	}

	entry := &models.FuelLog{
		VehicleID: req.VehicleID,
		Liters:    req.Liters,
		Cost:      req.Cost,
		Date:      req.Date,
	}
	if err := h.store.InsertFuelLog(r.Context(), entry); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save fuel log")
		return
	}
	respondJSON(w, http.StatusCreated, "fuel log saved", entry)
}

// ListExpenses returns expenses, optionally for ?vehicle_id=.
func (h *FinanceHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context(), r.URL.Query().Get("vehicle_id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fmt.Sprintf("found %d expenses", len(expenses)), expenses)
}

// CreateExpense logs an expense for an existing vehicle.
func (h *FinanceHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req models.ExpenseCreateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.GetVehicle(r.Context(), req.VehicleID); err != nil {
		respondDomainError(w, err)
		return
	}

	entry := &models.Expense{
		VehicleID: req.VehicleID,
		Type:      req.Type,
		Amount:    req.Amount,
		Date:      req.Date,
	}
	if err := h.store.InsertExpense(r.Context(), entry); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}
	respondJSON(w, http.StatusCreated, "expense saved", entry)
}
