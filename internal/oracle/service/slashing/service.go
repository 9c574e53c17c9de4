// Package slashing penalizes attestors whose submissions are proven wrong or
// malicious. Slashing removes future voting power and forfeits stake; it
// never unwinds already-finalized rounds, so a compromised attestor's blast
// radius is bounded to rounds not yet finalized.
package slashing

import (
	"context"
	"fmt"
	"log/slog"

	"surety/internal/oracle/metrics"
	"surety/internal/oracle/models"
	"surety/internal/oracle/ports"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	audit "surety/pkg/platform/audit"
	"surety/pkg/requestcontext"
)

type (
	Store          = ports.AttestorStore
	AuditPublisher = ports.AuditPublisher
)

type Service struct {
	store          Store
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("attestor store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Slash marks the attestor slashed, forfeits its full stake, and records the
// evidence reference. Requires the oracle-admin role. Finalized rounds that
// already counted this attestor's votes are untouched: finality is immutable.
func (s *Service) Slash(ctx context.Context, attestorID id.AttestorID, evidenceRef string) (*models.Attestor, error) {
	if !requestcontext.HasRole(ctx, requestcontext.RoleOracleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "oracle-admin role required")
	}
	if evidenceRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "evidence reference is required")
	}

	attestor, err := s.store.Get(ctx, attestorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up attestor")
	}
	if attestor == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "attestor not registered")
	}
	if attestor.Slashed {
		return nil, dErrors.New(dErrors.CodeConflict, "attestor already slashed")
	}

	prior := *attestor

	now := requestcontext.Now(ctx)
	forfeited := attestor.Stake
	attestor.Slashed = true
	attestor.Active = false
	attestor.ForfeitedStake = forfeited
	attestor.Stake = 0
	attestor.EvidenceRef = evidenceRef
	attestor.SlashedAt = &now
	if attestor.DeactivatedAt == nil {
		attestor.DeactivatedAt = &now
	}

	if err := s.store.Put(ctx, attestor); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store attestor")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "attestor slashed",
			"attestor_id", attestorID,
			"forfeited_stake", forfeited,
			"evidence_ref", evidenceRef,
			"actor", requestcontext.ActorID(ctx),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.auditPublisher != nil {
		event := audit.Event{
			Category:    audit.EventAttestorSlashed.Category(),
			Timestamp:   now,
			Subject:     attestorID.String(),
			Action:      string(audit.EventAttestorSlashed),
			Actor:       requestcontext.ActorID(ctx),
			Value:       forfeited,
			EvidenceRef: evidenceRef,
			RequestID:   requestcontext.RequestID(ctx),
		}
		if err := s.auditPublisher.Emit(ctx, event); err != nil {
			// Slashing is a compliance event: a lost audit record must fail
			// the whole call. Restore the prior record so the failed call
			// leaves no partial state behind.
			if putErr := s.store.Put(ctx, &prior); putErr != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to restore attestor after audit failure",
					"attestor_id", attestorID,
					"error", putErr,
				)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record slashing audit event")
		}
	}

	if s.metrics != nil {
		s.metrics.AttestorsSlashed.Inc()
	}
	return attestor, nil
}
