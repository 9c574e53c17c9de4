// Package handler wires the compliance profile endpoints to the profile
// service. All routes here are officer-only; the router wraps them in the
// role-checking middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"surety/internal/compliance/metrics"
	"surety/internal/compliance/models"
	"surety/internal/compliance/service/profile"
	id "surety/pkg/domain"
	"surety/pkg/platform/httputil"
	"surety/pkg/requestcontext"
)

// ProfileService defines the profile operations the handler needs.
type ProfileService interface {
	UpdateProfile(ctx context.Context, req profile.UpdateRequest) (*models.Profile, error)
	Get(ctx context.Context, account id.AccountID) (*models.Profile, error)
}

// Handler wires compliance endpoints to the profile service.
type Handler struct {
	service ProfileService
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a compliance handler with its dependencies.
func New(service ProfileService, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// RegisterOfficer mounts the compliance-officer endpoints on the router.
func (h *Handler) RegisterOfficer(r chi.Router) {
	r.Put("/compliance/profiles/{account}", h.HandleUpdateProfile)
	r.Get("/compliance/profiles/{account}", h.HandleGetProfile)
}

// HandleUpdateProfile handles PUT /compliance/profiles/{account} requests.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	account, err := id.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.UpdateProfile(ctx, profile.UpdateRequest{
		Account:             account,
		Class:               req.ParsedClass(),
		IdentityVerifiedAt:  req.ParsedIdentityVerifiedAt(),
		AccreditationExpiry: req.ParsedAccreditationExpiry(),
		Jurisdiction:        req.Jurisdiction,
		OffshoreRestricted:  req.OffshoreRestricted,
		Whitelisted:         req.Whitelisted,
		Restriction:         req.ParsedRestriction(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "profile update failed",
			"request_id", requestID,
			"account", account,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ProfileUpdatesTotal.WithLabelValues(string(updated.Restriction.Kind)).Inc()
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(updated))
}

// HandleGetProfile handles GET /compliance/profiles/{account} requests.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := id.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stored, err := h.service.Get(ctx, account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(stored))
}
