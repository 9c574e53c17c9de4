// Package profile implements the compliance profile service: the single
// write path for per-account identity, accreditation, jurisdiction, and
// restriction state, plus the read predicates the transfer gate consumes.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"surety/internal/compliance/models"
	"surety/internal/compliance/ports"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	audit "surety/pkg/platform/audit"
	"surety/pkg/requestcontext"
)

type (
	Store          = ports.ProfileStore
	AuditPublisher = ports.AuditPublisher
)

// Service owns ComplianceProfile records. Every mutation requires the
// compliance-officer role and lands in the audit trail; an update whose audit
// record cannot be written is rolled back.
type Service struct {
	store            Store
	auditPublisher   AuditPublisher
	logger           *slog.Logger
	identityValidity time.Duration
}

// inUpdateKey marks a context as being inside UpdateProfile, so a publisher
// callback cannot re-enter and interleave with the update.
type inUpdateKey struct{}

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

func New(store Store, identityValidity time.Duration, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if identityValidity <= 0 {
		return nil, fmt.Errorf("identity validity window must be positive")
	}
	svc := &Service{
		store:            store,
		identityValidity: identityValidity,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// UpdateRequest carries a full profile upsert. The officer always submits
// the complete policy state for the account; partial patches would make the
// audit trail ambiguous about what was in force when.
type UpdateRequest struct {
	Account             id.AccountID
	Class               models.InvestorClass
	IdentityVerifiedAt  time.Time
	AccreditationExpiry time.Time
	Jurisdiction        string
	OffshoreRestricted  bool
	Whitelisted         bool
	Restriction         models.Restriction
}

// UpdateProfile creates or overwrites the account's compliance profile.
// Requires the compliance-officer role. Verification timestamps in the future
// are rejected: a verification cannot postdate the call that records it.
func (s *Service) UpdateProfile(ctx context.Context, req UpdateRequest) (*models.Profile, error) {
	if ctx.Value(inUpdateKey{}) != nil {
		return nil, dErrors.New(dErrors.CodeReentrantCall, "profile update re-entered from its own audit notification")
	}
	ctx = context.WithValue(ctx, inUpdateKey{}, true)

	if !requestcontext.HasRole(ctx, requestcontext.RoleComplianceOfficer) {
		return nil, dErrors.New(dErrors.CodeForbidden, "compliance-officer role required")
	}
	if req.Account.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "account is required")
	}

	now := requestcontext.Now(ctx)
	if !req.IdentityVerifiedAt.IsZero() && req.IdentityVerifiedAt.After(now) {
		return nil, dErrors.New(dErrors.CodeFutureTimestamp, "identity verification timestamp is in the future")
	}
	switch req.Restriction.Kind {
	case models.RestrictionNone:
	case models.RestrictionTimeLock:
		if req.Restriction.UnlockAt.IsZero() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "TIME_LOCK restriction requires an unlock timestamp")
		}
	case models.RestrictionVolumeLimit:
		if req.Restriction.DailyLimit <= 0 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "VOLUME_LIMIT restriction requires a positive daily limit")
		}
	default:
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown restriction kind %q", req.Restriction.Kind)
	}

	existing, err := s.store.Get(ctx, req.Account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up profile")
	}

	profile := &models.Profile{
		Account:             req.Account,
		Class:               req.Class,
		IdentityVerifiedAt:  req.IdentityVerifiedAt,
		AccreditationExpiry: req.AccreditationExpiry,
		Jurisdiction:        req.Jurisdiction,
		OffshoreRestricted:  req.OffshoreRestricted,
		Whitelisted:         req.Whitelisted,
		Restriction:         req.Restriction,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if existing != nil {
		profile.CreatedAt = existing.CreatedAt
	}

	if err := s.store.Put(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store profile")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "compliance profile updated",
			"account", req.Account,
			"class", profile.Class,
			"whitelisted", profile.Whitelisted,
			"restriction", profile.Restriction.Kind,
			"actor", requestcontext.ActorID(ctx),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.auditPublisher != nil {
		event := audit.Event{
			Category:  audit.EventProfileUpdated.Category(),
			Timestamp: now,
			Subject:   req.Account.String(),
			Action:    string(audit.EventProfileUpdated),
			Actor:     requestcontext.ActorID(ctx),
			Reason:    string(profile.Restriction.Kind),
			RequestID: requestcontext.RequestID(ctx),
		}
		if err := s.auditPublisher.Emit(ctx, event); err != nil {
			// Profile changes are regulatory state: if the audit record is
			// lost, the change must not stand.
			var rollbackErr error
			if existing != nil {
				rollbackErr = s.store.Put(ctx, existing)
			} else {
				rollbackErr = s.store.Delete(ctx, req.Account)
			}
			if rollbackErr != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to restore profile after audit failure",
					"account", req.Account,
					"error", rollbackErr,
				)
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record profile audit event")
		}
	}

	return profile, nil
}

// Get returns the account's profile for the officer API.
func (s *Service) Get(ctx context.Context, account id.AccountID) (*models.Profile, error) {
	profile, err := s.store.Get(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up profile")
	}
	if profile == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no compliance profile for account")
	}
	return profile, nil
}

// IsIdentityValid reports whether the account's identity verification is
// current. Unknown accounts are invalid: no profile means no verification.
func (s *Service) IsIdentityValid(ctx context.Context, account id.AccountID) (bool, error) {
	profile, err := s.store.Get(ctx, account)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up profile")
	}
	if profile == nil {
		return false, nil
	}
	return profile.IdentityValidAt(requestcontext.Now(ctx), s.identityValidity), nil
}

// IsAccredited reports whether the account counts as an accredited investor.
func (s *Service) IsAccredited(ctx context.Context, account id.AccountID) (bool, error) {
	profile, err := s.store.Get(ctx, account)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up profile")
	}
	if profile == nil {
		return false, nil
	}
	return profile.AccreditedAt(requestcontext.Now(ctx)), nil
}
