// Package handler wires the oracle HTTP endpoints to the registry,
// consensus, freshness, and slashing services.
package handler

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"surety/internal/oracle/models"
	"surety/internal/oracle/service/consensus"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/httputil"
	"surety/pkg/requestcontext"
)

// RegistryService defines the registry operations the handler needs.
type RegistryService interface {
	Register(ctx context.Context, attestorID id.AttestorID, publicKey ed25519.PublicKey, stake int64) (*models.Attestor, error)
	Deactivate(ctx context.Context, attestorID id.AttestorID) error
	IncreaseStake(ctx context.Context, attestorID id.AttestorID, amount int64) (*models.Attestor, error)
	Get(ctx context.Context, attestorID id.AttestorID) (*models.Attestor, error)
	List(ctx context.Context) ([]*models.Attestor, error)
}

// ConsensusService defines the submission operation.
type ConsensusService interface {
	Submit(ctx context.Context, req consensus.SubmitRequest) (*consensus.SubmitResult, error)
}

// FreshnessService defines the valuation read operations.
type FreshnessService interface {
	Latest(ctx context.Context, subject id.PolicyID) (*models.FreshnessRecord, error)
	IsStale(ctx context.Context, subject id.PolicyID) (bool, error)
}

// SlashingService defines the slashing operation.
type SlashingService interface {
	Slash(ctx context.Context, attestorID id.AttestorID, evidenceRef string) (*models.Attestor, error)
}

// Handler wires oracle endpoints to the oracle services.
type Handler struct {
	registry  RegistryService
	consensus ConsensusService
	freshness FreshnessService
	slashing  SlashingService
	logger    *slog.Logger
}

// New constructs an oracle handler with its dependencies.
func New(registry RegistryService, consensusSvc ConsensusService, freshnessSvc FreshnessService, slashingSvc SlashingService, logger *slog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		consensus: consensusSvc,
		freshness: freshnessSvc,
		slashing:  slashingSvc,
		logger:    logger,
	}
}

// Register mounts the unauthenticated oracle endpoints on the router.
// Submissions authenticate themselves: the ed25519 signature is the
// credential, so no bearer token is required here.
func (h *Handler) Register(r chi.Router) {
	r.Post("/oracle/attestations", h.HandleSubmitAttestation)
	r.Post("/oracle/attestors", h.HandleRegisterAttestor)
	r.Post("/oracle/attestors/{attestorID}/stake", h.HandleIncreaseStake)
	r.Get("/oracle/attestors", h.HandleListAttestors)
	r.Get("/oracle/attestors/{attestorID}", h.HandleGetAttestor)
	r.Get("/oracle/valuations/{subject}", h.HandleGetValuation)
}

// RegisterAdmin mounts the oracle-admin endpoints; the router wraps these in
// the role-checking middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/oracle/attestors/{attestorID}", h.HandleDeactivateAttestor)
	r.Post("/oracle/attestors/{attestorID}/slash", h.HandleSlashAttestor)
}

// HandleSubmitAttestation handles POST /oracle/attestations requests.
func (h *Handler) HandleSubmitAttestation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[*SubmitAttestationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.consensus.Submit(ctx, consensus.SubmitRequest{
		Subject:    req.ParsedSubject(),
		Value:      req.Value,
		ReportedAt: req.ParsedReportedAt(),
		Attestor:   req.ParsedAttestor(),
		Signature:  req.ParsedSignature(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "attestation submission failed",
			"request_id", requestID,
			"subject", req.Subject,
			"attestor", req.Attestor,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "attestation accepted",
		"request_id", requestID,
		"subject", req.Subject,
		"attestor", req.Attestor,
		"round_seq", result.RoundSeq,
		"state", result.State,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusAccepted, FromSubmitResult(result))
}

// HandleRegisterAttestor handles POST /oracle/attestors requests.
func (h *Handler) HandleRegisterAttestor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[*RegisterAttestorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	attestor, err := h.registry.Register(ctx, req.ParsedAttestor(), req.ParsedPublicKey(), req.Stake)
	if err != nil {
		h.logger.WarnContext(ctx, "attestor registration failed",
			"request_id", requestID,
			"attestor", req.Attestor,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromAttestor(attestor))
}

// HandleIncreaseStake handles POST /oracle/attestors/{attestorID}/stake requests.
func (h *Handler) HandleIncreaseStake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	attestorID, err := id.ParseAttestorID(chi.URLParam(r, "attestorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*StakeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	attestor, err := h.registry.IncreaseStake(ctx, attestorID, req.Amount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAttestor(attestor))
}

// HandleDeactivateAttestor handles DELETE /oracle/attestors/{attestorID} requests.
func (h *Handler) HandleDeactivateAttestor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attestorID, err := id.ParseAttestorID(chi.URLParam(r, "attestorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.registry.Deactivate(ctx, attestorID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "attestor deactivated",
		"request_id", requestcontext.RequestID(ctx),
		"attestor", attestorID,
		"actor", requestcontext.ActorID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSlashAttestor handles POST /oracle/attestors/{attestorID}/slash requests.
func (h *Handler) HandleSlashAttestor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	attestorID, err := id.ParseAttestorID(chi.URLParam(r, "attestorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*SlashRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	attestor, err := h.slashing.Slash(ctx, attestorID, req.EvidenceRef)
	if err != nil {
		h.logger.WarnContext(ctx, "slashing failed",
			"request_id", requestID,
			"attestor", attestorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAttestor(attestor))
}

// HandleGetAttestor handles GET /oracle/attestors/{attestorID} requests.
func (h *Handler) HandleGetAttestor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attestorID, err := id.ParseAttestorID(chi.URLParam(r, "attestorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attestor, err := h.registry.Get(ctx, attestorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAttestor(attestor))
}

// HandleListAttestors handles GET /oracle/attestors requests.
func (h *Handler) HandleListAttestors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attestors, err := h.registry.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*AttestorResponse, len(attestors))
	for i, a := range attestors {
		out[i] = FromAttestor(a)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGetValuation handles GET /oracle/valuations/{subject} requests.
func (h *Handler) HandleGetValuation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, err := id.ParsePolicyID(chi.URLParam(r, "subject"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.freshness.Latest(ctx, subject)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "valuation read failed",
				"request_id", requestcontext.RequestID(ctx),
				"subject", subject,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	stale, err := h.freshness.IsStale(ctx, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &ValuationResponse{
		Subject:     subject.String(),
		Value:       record.Value,
		FinalizedAt: record.FinalizedAt,
		Stale:       stale,
		Anomaly:     record.Anomaly,
	})
}
