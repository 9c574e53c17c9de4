// Package handler exposes the transfer authorization endpoint. The route is
// public to the token ledger integration; the decision itself encodes all
// access control.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"surety/internal/transfer"
	"surety/pkg/platform/httputil"
	"surety/pkg/requestcontext"
)

// AuthorizerService decides proposed transfers.
type AuthorizerService interface {
	Authorize(ctx context.Context, req transfer.AuthorizeRequest) (*transfer.Decision, error)
}

// Handler wires the transfer gate to HTTP.
type Handler struct {
	service AuthorizerService
	logger  *slog.Logger
}

// New constructs a transfer handler.
func New(service AuthorizerService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the transfer endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/transfer/authorize", h.HandleAuthorize)
}

// HandleAuthorize handles POST /transfer/authorize requests.
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[*AuthorizeTransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decision, err := h.service.Authorize(ctx, req.ToServiceRequest())
	if err != nil {
		h.logger.WarnContext(ctx, "transfer authorization failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}
