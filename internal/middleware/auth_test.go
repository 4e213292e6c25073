package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetflow/internal/auth"
	"github.com/ukydev/fleetflow/internal/models"
)

func newAuthFixture(t *testing.T, role models.Role) (*AuthMiddleware, string) {
	t.Helper()
	svc := auth.NewService("test-secret", time.Hour)
	token, err := svc.GenerateToken(&models.User{
		ID:    primitive.NewObjectID(),
		Email: "user@fleetflow.local",
		Role:  role,
	})
	require.NoError(t, err)
	return NewAuthMiddleware(svc), token
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	mw, token := newAuthFixture(t, models.RoleDispatcher)

	var called bool
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := GetUserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, models.RoleDispatcher, claims.Role)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	mw, _ := newAuthFixture(t, models.RoleDispatcher)

	var called bool
	handler := mw.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateBadToken(t *testing.T) {
	mw, _ := newAuthFixture(t, models.RoleDispatcher)

	var called bool
	handler := mw.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name       string
		role       models.Role
		capability models.Capability
		wantStatus int
	}{
		{"dispatcher can dispatch", models.RoleDispatcher, models.CapDispatch, http.StatusOK},
		{"dispatcher cannot manage fleet", models.RoleDispatcher, models.CapManageFleet, http.StatusForbidden},
		{"analyst can view analytics", models.RoleAnalyst, models.CapViewAnalytics, http.StatusOK},
		{"analyst cannot dispatch", models.RoleAnalyst, models.CapDispatch, http.StatusForbidden},
		{"safety can view audit", models.RoleSafety, models.CapViewAudit, http.StatusOK},
		{"manager can manage users", models.RoleManager, models.CapManageUsers, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, token := newAuthFixture(t, tt.role)

			var called bool
			handler := mw.Authenticate(mw.RequireCapability(tt.capability)(okHandler(&called)))

			req := httptest.NewRequest(http.MethodGet, "/api/resource", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
		})
	}
}

func TestRequireCapabilityWithoutClaims(t *testing.T) {
	mw, _ := newAuthFixture(t, models.RoleManager)

	var called bool
	handler := mw.RequireCapability(models.CapViewFleet)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
