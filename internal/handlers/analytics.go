package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ukydev/fleetflow/internal/models"
)

// AnalyticsProvider computes dashboard KPIs from committed state.
type AnalyticsProvider interface {
	DashboardAnalytics(ctx context.Context) (*models.DashboardAnalytics, error)
}

// AuditLister reads the audit trail.
type AuditLister interface {
	ListAuditLogs(ctx context.Context, limit int64) ([]models.AuditLog, error)
}

// AnalyticsHandler serves the dashboard aggregation. Read-only
// consumer of the store; no lifecycle logic.
type AnalyticsHandler struct {
	provider AnalyticsProvider
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(provider AnalyticsProvider) *AnalyticsHandler {
	return &AnalyticsHandler{provider: provider}
}

// Dashboard returns all fleet KPIs.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.provider.DashboardAnalytics(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "dashboard analytics", analytics)
}

// AuditHandler serves the audit trail.
type AuditHandler struct {
	audit AuditLister
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(audit AuditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns recent audit entries, capped by ?limit=.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			limit = n
		}
	}
	entries, err := h.audit.ListAuditLogs(r.Context(), limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, "audit logs", entries)
}
