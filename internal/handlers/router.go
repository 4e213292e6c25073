package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ukydev/fleetflow/internal/middleware"
	"github.com/ukydev/fleetflow/internal/models"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	Auth        *AuthHandler
	Vehicles    *VehiclesHandler
	Drivers     *DriversHandler
	Trips       *TripsHandler
	Maintenance *MaintenanceHandler
	Finance     *FinanceHandler
	Analytics   *AnalyticsHandler
	Audit       *AuditHandler

	AuthMW    *middleware.AuthMiddleware
	RateLimit func(http.Handler) http.Handler
}

// NewRouter wires all endpoints. Every protected route names exactly
// one capability; the role mapping lives in models.
func NewRouter(c RouterConfig) *mux.Router {
	r := mux.NewRouter()
	if c.RateLimit != nil {
		r.Use(mux.MiddlewareFunc(c.RateLimit))
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/register", c.Auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", c.Auth.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(c.AuthMW.Authenticate))

	can := func(cap models.Capability, h http.HandlerFunc) http.Handler {
		return c.AuthMW.RequireCapability(cap)(h)
	}

	api.Handle("/vehicles", can(models.CapViewFleet, c.Vehicles.List)).Methods(http.MethodGet)
	api.Handle("/vehicles", can(models.CapManageFleet, c.Vehicles.Create)).Methods(http.MethodPost)
	api.Handle("/vehicles/{id}", can(models.CapViewFleet, c.Vehicles.Get)).Methods(http.MethodGet)
	api.Handle("/vehicles/{id}", can(models.CapManageFleet, c.Vehicles.Update)).Methods(http.MethodPut)
	api.Handle("/vehicles/{id}", can(models.CapManageFleet, c.Vehicles.Delete)).Methods(http.MethodDelete)

	api.Handle("/drivers", can(models.CapViewFleet, c.Drivers.List)).Methods(http.MethodGet)
	api.Handle("/drivers", can(models.CapManageFleet, c.Drivers.Create)).Methods(http.MethodPost)
	api.Handle("/drivers/{id}", can(models.CapViewFleet, c.Drivers.Get)).Methods(http.MethodGet)
	api.Handle("/drivers/{id}", can(models.CapManageFleet, c.Drivers.Update)).Methods(http.MethodPut)
	api.Handle("/drivers/{id}", can(models.CapManageFleet, c.Drivers.Delete)).Methods(http.MethodDelete)

	api.Handle("/trips", can(models.CapViewFleet, c.Trips.List)).Methods(http.MethodGet)
	api.Handle("/trips", can(models.CapDispatch, c.Trips.Create)).Methods(http.MethodPost)
	api.Handle("/trips/{id}/dispatch", can(models.CapDispatch, c.Trips.Dispatch)).Methods(http.MethodPut)
	api.Handle("/trips/{id}/complete", can(models.CapDispatch, c.Trips.Complete)).Methods(http.MethodPut)
	api.Handle("/trips/{id}/cancel", can(models.CapDispatch, c.Trips.Cancel)).Methods(http.MethodPut)

	api.Handle("/maintenance", can(models.CapViewFleet, c.Maintenance.List)).Methods(http.MethodGet)
	api.Handle("/maintenance", can(models.CapRecordMaintenance, c.Maintenance.Create)).Methods(http.MethodPost)

	api.Handle("/fuel", can(models.CapViewFleet, c.Finance.ListFuel)).Methods(http.MethodGet)
	api.Handle("/fuel", can(models.CapRecordFinance, c.Finance.CreateFuel)).Methods(http.MethodPost)
	api.Handle("/expenses", can(models.CapViewFleet, c.Finance.ListExpenses)).Methods(http.MethodGet)
	api.Handle("/expenses", can(models.CapRecordFinance, c.Finance.CreateExpense)).Methods(http.MethodPost)

	api.Handle("/analytics/dashboard", can(models.CapViewAnalytics, c.Analytics.Dashboard)).Methods(http.MethodGet)
	api.Handle("/audit-logs", can(models.CapViewAudit, c.Audit.List)).Methods(http.MethodGet)

	return r
}
