package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleetflow/internal/db"
	"github.com/ukydev/fleetflow/internal/lifecycle"
)

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", &lifecycle.Error{Code: lifecycle.CodeNotFound, Message: "trip 'x' not found"}, http.StatusNotFound},
		{"invalid transition", &lifecycle.Error{Code: lifecycle.CodeInvalidTransition, Message: "bad"}, http.StatusBadRequest},
		{"capacity", &lifecycle.Error{Code: lifecycle.CodeCapacityExceeded, Message: "too heavy"}, http.StatusBadRequest},
		{"license", &lifecycle.Error{Code: lifecycle.CodeLicenseExpired, Message: "expired"}, http.StatusBadRequest},
		{"vehicle unavailable", &lifecycle.Error{Code: lifecycle.CodeVehicleUnavailable, Message: "busy"}, http.StatusBadRequest},
		{"driver unavailable", &lifecycle.Error{Code: lifecycle.CodeDriverUnavailable, Message: "busy"}, http.StatusBadRequest},
		{"odometer regression", &lifecycle.Error{Code: lifecycle.CodeOdometerRegression, Message: "rollback"}, http.StatusBadRequest},
		{"persistence", &lifecycle.Error{Code: lifecycle.CodePersistence, Message: "boom", Err: errors.New("io")}, http.StatusInternalServerError},
		{"version conflict", &lifecycle.Error{Code: lifecycle.CodePersistence, Message: "conflict", Err: db.ErrVersionConflict}, http.StatusConflict},
		{"bare sentinel", fmt.Errorf("vehicle 'x': %w", lifecycle.ErrEntityNotFound), http.StatusNotFound},
		{"untagged error", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondDomainError(rec, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp apiResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestRespondJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusCreated, "created", map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "created", resp.Message)
	assert.NotNil(t, resp.Data)
}
