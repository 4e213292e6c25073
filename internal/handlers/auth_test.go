package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetflow/internal/auth"
	"github.com/ukydev/fleetflow/internal/lifecycle"
	"github.com/ukydev/fleetflow/internal/models"
)

type fakeUserCollection struct {
	byEmail map[string]*models.User
}

func newFakeUserCollection() *fakeUserCollection {
	return &fakeUserCollection{byEmail: make(map[string]*models.User)}
}

func (f *fakeUserCollection) InsertUser(_ context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserCollection) FindUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user '%s': %w", id, lifecycle.ErrEntityNotFound)
}

func (f *fakeUserCollection) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", email, lifecycle.ErrEntityNotFound)
	}
	return u, nil
}

type fakeAuditRecorder struct {
	entries []models.AuditLog
}

func (f *fakeAuditRecorder) InsertAuditLog(_ context.Context, entry *models.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthHandler, *fakeUserCollection, *fakeAuditRecorder) {
	t.Helper()
	svc := auth.NewService("test-secret", time.Hour)
	users := newFakeUserCollection()
	audit := &fakeAuditRecorder{}
	return NewAuthHandler(svc, users, audit), users, audit
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestRegister(t *testing.T) {
	h, users, audit := newAuthFixture(t)

	rec, resp := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:    "manager@fleetflow.local",
		Password: "supersecret",
		Name:     "Fleet Manager",
		Role:     models.RoleManager,
	})
	require.Equal(t, http.StatusCreated, rec.Code, resp.Message)
	assert.True(t, resp.Success)

	stored, err := users.FindUserByEmail(context.Background(), "manager@fleetflow.local")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", stored.PasswordHash)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditEventRegistration, audit.entries[0].Event)
}

func TestRegisterInvalidRole(t *testing.T) {
	h, _, _ := newAuthFixture(t)

	rec, resp := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:    "x@fleetflow.local",
		Password: "supersecret",
		Name:     "X",
		Role:     "Superuser",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Message, "invalid role")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _, _ := newAuthFixture(t)

	req := models.RegisterRequest{
		Email:    "dup@fleetflow.local",
		Password: "supersecret",
		Name:     "Dup",
		Role:     models.RoleAnalyst,
	}
	rec, _ := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, resp.Message, "already registered")
}

func TestLogin(t *testing.T) {
	h, _, audit := newAuthFixture(t)

	_, _ = doJSON(t, h.Register, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:    "dispatcher@fleetflow.local",
		Password: "supersecret",
		Name:     "Dispatcher",
		Role:     models.RoleDispatcher,
	})

	rec, resp := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    "dispatcher@fleetflow.local",
		Password: "supersecret",
	})
	require.Equal(t, http.StatusOK, rec.Code, resp.Message)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(data, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, models.RoleDispatcher, login.User.Role)

	last := audit.entries[len(audit.entries)-1]
	assert.Equal(t, models.AuditEventLogin, last.Event)
	assert.Equal(t, models.AuditStatusSuccess, last.Status)
}

func TestLoginWrongPassword(t *testing.T) {
	h, _, audit := newAuthFixture(t)

	_, _ = doJSON(t, h.Register, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:    "dispatcher@fleetflow.local",
		Password: "supersecret",
		Name:     "Dispatcher",
		Role:     models.RoleDispatcher,
	})

	rec, resp := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    "dispatcher@fleetflow.local",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, resp.Message, "invalid credentials")

	last := audit.entries[len(audit.entries)-1]
	assert.Equal(t, models.AuditEventFailedLogin, last.Event)
	assert.Equal(t, models.AuditStatusFailure, last.Status)
}

func TestLoginUnknownEmail(t *testing.T) {
	h, _, audit := newAuthFixture(t)

	rec, _ := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    "nobody@fleetflow.local",
		Password: "whatever123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditEventFailedLogin, audit.entries[0].Event)
}
