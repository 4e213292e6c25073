package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ukydev/fleetflow/internal/lifecycle"
	"github.com/ukydev/fleetflow/internal/models"
)

// TripLister lists trips for the read path; all writes go through the
// lifecycle controller.
type TripLister interface {
	ListTrips(ctx context.Context, status models.TripStatus) ([]models.Trip, error)
}

// TripsHandler shapes trip lifecycle requests and responses. It
// contains no lifecycle logic of its own.
type TripsHandler struct {
	ctrl  *lifecycle.Controller
	trips TripLister
}

// NewTripsHandler creates a new trips handler.
func NewTripsHandler(ctrl *lifecycle.Controller, trips TripLister) *TripsHandler {
	return &TripsHandler{ctrl: ctrl, trips: trips}
}

// List returns all trips, optionally filtered by ?status=.
func (h *TripsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.TripStatus(r.URL.Query().Get("status"))
	trips, err := h.trips.ListTrips(r.Context(), status)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "trips listed", trips)
}

// Create creates a trip in Draft status.
func (h *TripsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TripCreateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.ctrl.CreateTrip(r.Context(), lifecycle.CreateTripInput{
		VehicleID:     req.VehicleID,
		DriverID:      req.DriverID,
		CargoWeight:   req.CargoWeight,
		StartOdometer: req.StartOdometer,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, "trip created as Draft", trip)
}

// Dispatch moves a Draft trip to Dispatched.
func (h *TripsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	trip, err := h.ctrl.DispatchTrip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "trip dispatched", trip)
}

// Complete moves a Dispatched trip to Completed.
func (h *TripsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.TripCompleteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.ctrl.CompleteTrip(r.Context(), mux.Vars(r)["id"], req.EndOdometer)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "trip completed", trip)
}

// Cancel cancels a Draft or Dispatched trip.
func (h *TripsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	trip, err := h.ctrl.CancelTrip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "trip cancelled", trip)
}
