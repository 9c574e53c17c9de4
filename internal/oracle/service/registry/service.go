// Package registry implements the attestor registry: who may submit
// valuation reports, with how much stake, and whether they are still trusted.
package registry

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"

	"surety/internal/oracle/models"
	"surety/internal/oracle/ports"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	audit "surety/pkg/platform/audit"
	"surety/pkg/requestcontext"
)

// Type aliases for shared interfaces.
type (
	Store          = ports.AttestorStore
	AuditPublisher = ports.AuditPublisher
)

type Service struct {
	store          Store
	auditPublisher AuditPublisher
	logger         *slog.Logger
	minStake       int64
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

func New(store Store, minStake int64, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("attestor store is required")
	}
	if minStake <= 0 {
		return nil, fmt.Errorf("minimum stake must be positive")
	}

	svc := &Service{
		store:    store,
		minStake: minStake,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates a new trusted attestor. The handle must be unused: records
// are never deleted, so a handle that ever existed stays taken, which keeps
// the audit trail unambiguous.
func (s *Service) Register(ctx context.Context, attestorID id.AttestorID, publicKey ed25519.PublicKey, stake int64) (*models.Attestor, error) {
	if attestorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "attestor id is required")
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "public key must be a 32-byte ed25519 key")
	}
	if stake < s.minStake {
		return nil, dErrors.Newf(dErrors.CodeInsufficientStake, "stake %d below minimum %d", stake, s.minStake)
	}

	existing, err := s.store.Get(ctx, attestorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up attestor")
	}
	if existing != nil {
		return nil, dErrors.New(dErrors.CodeAlreadyRegistered, "attestor handle already registered")
	}

	attestor := &models.Attestor{
		ID:           attestorID,
		PublicKey:    append(ed25519.PublicKey(nil), publicKey...),
		Stake:        stake,
		Active:       true,
		RegisteredAt: requestcontext.Now(ctx),
	}
	if err := s.store.Put(ctx, attestor); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store attestor")
	}

	s.emit(ctx, audit.EventAttestorRegistered, attestor.ID, stake, "")
	return attestor, nil
}

// Deactivate removes an attestor's future voting power without erasing
// history. Requires the oracle-admin role.
func (s *Service) Deactivate(ctx context.Context, attestorID id.AttestorID) error {
	if !requestcontext.HasRole(ctx, requestcontext.RoleOracleAdmin) {
		return dErrors.New(dErrors.CodeForbidden, "oracle-admin role required")
	}

	attestor, err := s.store.Get(ctx, attestorID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up attestor")
	}
	if attestor == nil {
		return dErrors.New(dErrors.CodeNotFound, "attestor not registered")
	}
	if !attestor.Active {
		return dErrors.New(dErrors.CodeConflict, "attestor already deactivated")
	}

	now := requestcontext.Now(ctx)
	attestor.Active = false
	attestor.DeactivatedAt = &now
	if err := s.store.Put(ctx, attestor); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store attestor")
	}

	s.emit(ctx, audit.EventAttestorDeactivated, attestorID, 0, "")
	return nil
}

// IncreaseStake is the self-initiated top-up path.
func (s *Service) IncreaseStake(ctx context.Context, attestorID id.AttestorID, amount int64) (*models.Attestor, error) {
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "stake increase must be positive")
	}

	attestor, err := s.store.Get(ctx, attestorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up attestor")
	}
	if attestor == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "attestor not registered")
	}
	if attestor.Slashed {
		return nil, dErrors.New(dErrors.CodeConflict, "slashed attestors cannot top up stake")
	}

	attestor.Stake += amount
	if err := s.store.Put(ctx, attestor); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store attestor")
	}

	s.emit(ctx, audit.EventStakeIncreased, attestorID, amount, "")
	return attestor, nil
}

// IsTrusted reports whether the attestor's votes count toward quorum:
// registered, active, and not slashed.
func (s *Service) IsTrusted(ctx context.Context, attestorID id.AttestorID) (bool, error) {
	attestor, err := s.store.Get(ctx, attestorID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up attestor")
	}
	return attestor != nil && attestor.Trusted(), nil
}

// Get returns one attestor record for the admin API.
func (s *Service) Get(ctx context.Context, attestorID id.AttestorID) (*models.Attestor, error) {
	attestor, err := s.store.Get(ctx, attestorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up attestor")
	}
	if attestor == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "attestor not registered")
	}
	return attestor, nil
}

// List returns all attestor records for the admin API.
func (s *Service) List(ctx context.Context) ([]*models.Attestor, error) {
	attestors, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list attestors")
	}
	return attestors, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, attestorID id.AttestorID, value int64, reason string) {
	event := audit.Event{
		Category:  action.Category(),
		Timestamp: requestcontext.Now(ctx),
		Subject:   attestorID.String(),
		Action:    string(action),
		Actor:     requestcontext.ActorID(ctx),
		Reason:    reason,
		Value:     value,
		RequestID: requestcontext.RequestID(ctx),
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "attestor registry event",
			"event", string(action),
			"attestor_id", attestorID,
			"request_id", event.RequestID,
		)
	}
	if s.auditPublisher != nil {
		if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event",
				"event", string(action),
				"error", err,
			)
		}
	}
}
