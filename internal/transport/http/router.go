// Package http assembles the service router: public oracle and transfer
// endpoints, role-gated admin and compliance endpoints, and the operational
// surface (metrics, health).
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	compliancehandler "surety/internal/compliance/handler"
	oraclehandler "surety/internal/oracle/handler"
	transferhandler "surety/internal/transfer/handler"
	audit "surety/pkg/platform/audit"
	"surety/pkg/platform/middleware/auth"
	request "surety/pkg/platform/middleware/request"
	"surety/pkg/platform/middleware/requesttime"
	"surety/pkg/requestcontext"
)

// HealthChecker reports the health of one backing dependency.
type HealthChecker func(ctx context.Context) error

// Deps carries everything the router mounts.
type Deps struct {
	Oracle     *oraclehandler.Handler
	Compliance *compliancehandler.Handler
	Transfer   *transferhandler.Handler
	AuditTrail audit.Store

	Verifier *auth.Verifier
	Logger   *slog.Logger

	// Health checks keyed by dependency name; skipped when nil.
	Health map[string]HealthChecker
}

// New builds the chi router with the full route table.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)

	deps.Oracle.Register(r)
	deps.Transfer.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(deps.Verifier, requestcontext.RoleOracleAdmin, deps.Logger))
		deps.Oracle.RegisterAdmin(r)
		r.Get("/audit/events", handleAuditEvents(deps.AuditTrail))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(deps.Verifier, requestcontext.RoleComplianceOfficer, deps.Logger))
		deps.Compliance.RegisterOfficer(r)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealth(deps.Health))

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unhealthy","dependency":"` + name + `"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
