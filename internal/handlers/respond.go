package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetflow/internal/db"
	"github.com/ukydev/fleetflow/internal/lifecycle"
)

var validate = validator.New()

// apiResponse is the JSON envelope every endpoint returns.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Message: message, Data: data}); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: false, Message: message})
}

// respondDomainError maps lifecycle error codes onto HTTP statuses.
// Guard and transition rejections are client errors; a lost
// optimistic-lock race surfaces as a conflict the caller may retry.
func respondDomainError(w http.ResponseWriter, err error) {
	switch lifecycle.CodeOf(err) {
	case lifecycle.CodeNotFound:
		respondError(w, http.StatusNotFound, err.Error())
	case lifecycle.CodeInvalidTransition,
		lifecycle.CodeCapacityExceeded,
		lifecycle.CodeLicenseExpired,
		lifecycle.CodeVehicleUnavailable,
		lifecycle.CodeDriverUnavailable,
		lifecycle.CodeOdometerRegression:
		respondError(w, http.StatusBadRequest, err.Error())
	case lifecycle.CodePersistence:
		if errors.Is(err, db.ErrVersionConflict) {
			respondError(w, http.StatusConflict, "concurrent update, please retry")
			return
		}
		log.WithError(err).Error("Store failure")
		respondError(w, http.StatusInternalServerError, "internal error")
	default:
		if errors.Is(err, lifecycle.ErrEntityNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.WithError(err).Error("Unhandled error")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeAndValidate decodes the request body into dst and validates
// its struct tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
