// Package freshness answers "is the last finalized valuation still
// trustworthy" for the transfer gate and the read API. It never mutates
// state; the consensus service is the only writer of freshness records.
package freshness

import (
	"context"
	"log/slog"
	"time"

	"surety/internal/oracle/models"
	"surety/internal/oracle/ports"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	"surety/pkg/requestcontext"
)

type FreshnessStore = ports.FreshnessStore

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service reads freshness records against a configured maximum age.
type Service struct {
	store  FreshnessStore
	maxAge time.Duration
	logger *slog.Logger
}

func New(store FreshnessStore, maxAge time.Duration, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "freshness store is required")
	}
	if maxAge <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "max valuation age must be positive")
	}
	svc := &Service{store: store, maxAge: maxAge}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IsStale reports whether the subject's valuation is too old to act on.
// A subject with no finalized valuation at all is stale: absence of data is
// never treated as permission.
func (s *Service) IsStale(ctx context.Context, subject id.PolicyID) (bool, error) {
	record, err := s.store.Get(ctx, subject)
	if err != nil {
		return true, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read freshness record")
	}
	if record == nil {
		return true, nil
	}
	return record.StaleAt(requestcontext.Now(ctx), s.maxAge), nil
}

// Latest returns the subject's freshness record for the read API.
func (s *Service) Latest(ctx context.Context, subject id.PolicyID) (*models.FreshnessRecord, error) {
	record, err := s.store.Get(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read freshness record")
	}
	if record == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no finalized valuation for subject")
	}
	return record, nil
}
