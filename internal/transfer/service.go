package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	compliancemodels "surety/internal/compliance/models"
	complianceports "surety/internal/compliance/ports"
	"surety/internal/transfer/metrics"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	audit "surety/pkg/platform/audit"
	"surety/pkg/requestcontext"
)

// FreshnessChecker answers whether a subject's valuation is too old to act on.
type FreshnessChecker interface {
	IsStale(ctx context.Context, subject id.PolicyID) (bool, error)
}

// ProfileReader loads compliance profiles for the rule chain.
type ProfileReader interface {
	Get(ctx context.Context, account id.AccountID) (*compliancemodels.Profile, error)
}

// AuditPublisher emits audit events for transfer decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the transfer gate. It mutates nothing itself except the one
// write it is specified to own: the volume counter reservation, which
// happens inside the same call as the allow decision it gates.
type Service struct {
	freshness FreshnessChecker
	profiles  ProfileReader
	volumes   complianceports.VolumeStore
	publisher AuditPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	cfg       PolicyConfig
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(freshness FreshnessChecker, profiles ProfileReader, volumes complianceports.VolumeStore, cfg PolicyConfig, opts ...Option) (*Service, error) {
	if freshness == nil || profiles == nil || volumes == nil {
		return nil, fmt.Errorf("freshness checker, profile reader, and volume store are required")
	}
	if cfg.IdentityValidity <= 0 {
		return nil, fmt.Errorf("identity validity window must be positive")
	}
	svc := &Service{
		freshness: freshness,
		profiles:  profiles,
		volumes:   volumes,
		tracer:    otel.Tracer("surety/transfer"),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Authorize decides one proposed transfer. Every check inside the decision
// reads the same request-scoped timestamp, and the volume reservation for
// VOLUME_LIMIT senders commits only when the decision is an allow.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (*Decision, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Authorize", trace.WithAttributes(
		attribute.String("subject", req.Subject.String()),
		attribute.Int64("amount", req.Amount),
	))
	defer span.End()
	start := time.Now()

	if req.From.IsNil() || req.To.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "from and to accounts are required")
	}
	if req.From == req.To {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "self-transfers are not subject to authorization")
	}
	if req.Amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	if req.Subject.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}

	now := requestcontext.Now(ctx)

	stale, err := s.freshness.IsStale(ctx, req.Subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check valuation freshness")
	}
	from, err := s.profiles.Get(ctx, req.From)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load sender profile")
	}
	to, err := s.profiles.Get(ctx, req.To)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recipient profile")
	}

	outcome := Evaluate(Input{
		Now:    now,
		Amount: req.Amount,
		Stale:  stale,
		From:   from,
		To:     to,
	}, s.cfg)

	reason := outcome.Reason
	if outcome.VolumeLimit > 0 {
		if reason == ReasonAllowed {
			// The reservation and the allow are one atomic step: the
			// counter never moves for a transfer that is denied.
			ok, _, err := s.volumes.Reserve(ctx, req.From, now, req.Amount, outcome.VolumeLimit)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve transfer volume")
			}
			if !ok {
				reason = ReasonVolumeLimitExceeded
			}
		} else {
			// A later rule already denied, so nothing is reserved; but the
			// volume check is ordered before the geographic rule, so an
			// over-cap transfer must still report the volume denial.
			used, err := s.volumes.Used(ctx, req.From, now)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read transfer volume")
			}
			if used+req.Amount > outcome.VolumeLimit {
				reason = ReasonVolumeLimitExceeded
			}
		}
	}

	decision := &Decision{
		Allowed:   reason == ReasonAllowed,
		Reason:    reason,
		DecidedAt: now,
	}
	span.SetAttributes(attribute.String("reason", string(reason)))

	if err := s.record(ctx, req, decision, now); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DecisionsTotal.WithLabelValues(string(reason)).Inc()
		s.metrics.AuthorizeDuration.Observe(time.Since(start).Seconds())
	}
	return decision, nil
}

// record logs and audits the decision. A denial whose audit record cannot be
// written fails the call: denials carry regulatory weight and must never be
// silently droppable.
func (s *Service) record(ctx context.Context, req AuthorizeRequest, decision *Decision, now time.Time) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "transfer decision",
			"from", req.From,
			"to", req.To,
			"subject", req.Subject,
			"amount", req.Amount,
			"allowed", decision.Allowed,
			"reason", decision.Reason,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.publisher == nil {
		return nil
	}

	action := audit.EventTransferAuthorized
	if !decision.Allowed {
		action = audit.EventTransferDenied
	}
	event := audit.Event{
		Category:  action.Category(),
		Timestamp: now,
		Subject:   req.Subject.String(),
		Action:    string(action),
		Actor:     req.From.String(),
		Decision:  string(decision.Reason),
		Value:     req.Amount,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		if !decision.Allowed {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transfer denial")
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to emit transfer audit event",
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}
