// Package consensus accepts signed valuation submissions, accumulates them
// per round, and finalizes a round once a quorum of distinct, mutually
// agreeing votes exists.
//
// Conventions, fixed deliberately (see the agreement-band helpers):
//
//   - Votes agree when the band's spread fits within ToleranceBps of the
//     band's lowest value. The first (lowest-valued) band reaching the
//     threshold wins.
//   - The finalized value is the median of the agreeing band only. Outliers
//     outside the band never contribute, so one wild vote among otherwise
//     agreeing attestors cannot skew the published figure.
//   - With an even band, the median is the lower of the two middle values.
package consensus

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"surety/internal/oracle/metrics"
	"surety/internal/oracle/models"
	"surety/internal/oracle/ports"
	"surety/internal/oracle/signature"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	audit "surety/pkg/platform/audit"
	"surety/pkg/requestcontext"
)

type (
	AttestorStore  = ports.AttestorStore
	RoundStore     = ports.RoundStore
	FreshnessStore = ports.FreshnessStore
	AuditPublisher = ports.AuditPublisher
)

// Config carries the consensus policy parameters.
type Config struct {
	// QuorumThreshold is the count of agreeing votes that finalizes a round.
	QuorumThreshold int
	// ToleranceBps is the agreement band width in basis points of the
	// band's lowest value.
	ToleranceBps int64
	// RoundTTL is how long a round accepts votes before expiring unquorate.
	RoundTTL time.Duration
	// MaxDropBps bounds single-round valuation decreases before an anomaly
	// is raised.
	MaxDropBps int64
}

// Service owns AttestationRound records and writes FreshnessRecords on
// finalization. All mutating calls are serialized; audit emission happens
// only after every state write of the call has committed.
type Service struct {
	attestors      AttestorStore
	rounds         RoundStore
	freshness      FreshnessStore
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	cfg            Config

	// mu serializes state-mutating calls into a single order, matching the
	// atomic-or-nothing execution model the token ledger expects.
	mu sync.Mutex
}

// inSubmitKey marks a context as being inside a Submit call. A downstream
// consumer notified after finalization that calls straight back into Submit
// on the same call stack is re-entrancy, and is rejected rather than allowed
// to interleave with the notification phase.
type inSubmitKey struct{}

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

func New(attestors AttestorStore, rounds RoundStore, freshness FreshnessStore, cfg Config, opts ...Option) (*Service, error) {
	if attestors == nil || rounds == nil || freshness == nil {
		return nil, fmt.Errorf("attestor, round, and freshness stores are required")
	}
	if cfg.QuorumThreshold < 1 {
		return nil, fmt.Errorf("quorum threshold must be at least 1")
	}
	if cfg.ToleranceBps < 0 {
		return nil, fmt.Errorf("tolerance must not be negative")
	}
	if cfg.RoundTTL <= 0 {
		return nil, fmt.Errorf("round TTL must be positive")
	}

	svc := &Service{
		attestors: attestors,
		rounds:    rounds,
		freshness: freshness,
		tracer:    otel.Tracer("surety/oracle/consensus"),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SubmitRequest is one attestor's signed valuation report.
type SubmitRequest struct {
	Subject    id.PolicyID
	Value      int64
	ReportedAt time.Time
	Attestor   id.AttestorID
	Signature  []byte
}

// SubmitResult describes what the submission did to the round.
type SubmitResult struct {
	RoundSeq  int64
	State     models.RoundState
	VoteCount int
	// PriorRoundExpired is set when this submission found the previous
	// round past its deadline and opened a fresh one.
	PriorRoundExpired bool
	// FinalizedValue is the published median when State is finalized.
	FinalizedValue int64
	// QuorumSize is the agreeing band size when State is finalized.
	QuorumSize int
	// Anomaly is set when finalization dropped past the monotonicity bound.
	Anomaly bool
}

// Submit verifies and appends one vote, finalizing the round if this vote
// completes a quorum. Deadlines are checked lazily here: an expired round is
// marked and a new round opens with this vote.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "consensus.Submit", trace.WithAttributes(
		attribute.String("subject", req.Subject.String()),
		attribute.String("attestor", req.Attestor.String()),
	))
	defer span.End()

	if ctx.Value(inSubmitKey{}) != nil {
		return nil, dErrors.New(dErrors.CodeReentrantCall, "submit re-entered from a finalization notification")
	}
	ctx = context.WithValue(ctx, inSubmitKey{}, true)

	if req.Subject.IsNil() {
		return nil, s.reject(ctx, req, dErrors.New(dErrors.CodeInvalidInput, "subject is required"))
	}
	if req.Value <= 0 {
		return nil, s.reject(ctx, req, dErrors.New(dErrors.CodeInvalidInput, "valuation must be positive"))
	}

	// Signature and trust checks read only the attestor store and can run
	// before the serialized section.
	attestor, err := s.attestors.Get(ctx, req.Attestor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up attestor")
	}
	if attestor == nil {
		return nil, s.reject(ctx, req, dErrors.New(dErrors.CodeUntrustedSubmitter, "submitter is not a registered attestor"))
	}
	ok, err := signature.Verify(attestor.PublicKey, req.Subject, req.Value, req.ReportedAt, req.Attestor, req.Signature)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify signature")
	}
	if !ok {
		return nil, s.reject(ctx, req, dErrors.New(dErrors.CodeInvalidSignature, "signature does not bind (subject, value, timestamp, submitter)"))
	}
	if !attestor.Trusted() {
		return nil, s.reject(ctx, req, dErrors.New(dErrors.CodeUntrustedSubmitter, "submitter is deactivated or slashed"))
	}

	s.mu.Lock()
	result, events, err := s.applyVote(ctx, req, attestor)
	s.mu.Unlock()
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeDuplicateSubmission) {
			return nil, s.reject(ctx, req, err)
		}
		return nil, err
	}

	// Notify only after every state write of this call has committed.
	for _, event := range events {
		s.emit(ctx, event)
	}

	if s.metrics != nil {
		s.metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
		if result.PriorRoundExpired {
			s.metrics.RoundsExpired.Inc()
		}
		if result.State == models.RoundFinalized {
			s.metrics.RoundsFinalized.Inc()
			s.metrics.QuorumVoteCount.Observe(float64(result.QuorumSize))
			if result.Anomaly {
				s.metrics.ValuationAnomalies.Inc()
			}
		}
	}

	return result, nil
}

// applyVote holds the serialized mutation: round bookkeeping, the vote
// append, quorum detection, and finalization writes. It returns the audit
// events to emit after commit.
func (s *Service) applyVote(ctx context.Context, req SubmitRequest, attestor *models.Attestor) (*SubmitResult, []audit.Event, error) {
	now := requestcontext.Now(ctx)
	var events []audit.Event

	round, err := s.rounds.GetOpen(ctx, req.Subject)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load open round")
	}

	priorExpired := false
	if round != nil && round.ExpiredAt(now) {
		// Lazy deadline check: the round failed closed. No value publishes;
		// this vote opens the next round.
		round.State = models.RoundExpired
		if err := s.rounds.Put(ctx, round); err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to expire round")
		}
		events = append(events, s.roundEvent(ctx, audit.EventRoundExpired, round, now))
		priorExpired = true
		round = nil
	}

	// Snapshot for unwinding if a later store write in this call fails. Nil
	// means this vote opens the round.
	var priorRound *models.Round
	if round != nil {
		priorRound = cloneRound(round)
	} else {
		lastSeq, err := s.rounds.LastSeq(ctx, req.Subject)
		if err != nil {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read round sequence")
		}
		round = &models.Round{
			Subject:  req.Subject,
			Seq:      lastSeq + 1,
			State:    models.RoundOpen,
			OpenedAt: now,
			Deadline: now.Add(s.cfg.RoundTTL),
		}
	}

	if round.HasVote(req.Attestor) {
		return nil, nil, dErrors.New(dErrors.CodeDuplicateSubmission, "attestor already voted in the open round")
	}

	round.Votes = append(round.Votes, models.Vote{
		Attestor:   req.Attestor,
		Value:      req.Value,
		ReportedAt: req.ReportedAt,
		ReceivedAt: now,
		Signature:  append([]byte(nil), req.Signature...),
	})

	result := &SubmitResult{
		RoundSeq:          round.Seq,
		State:             models.RoundOpen,
		VoteCount:         len(round.Votes),
		PriorRoundExpired: priorExpired,
	}

	events = append(events, audit.Event{
		Category:  audit.EventAttestationSubmitted.Category(),
		Timestamp: now,
		Subject:   req.Subject.String(),
		Action:    string(audit.EventAttestationSubmitted),
		Actor:     req.Attestor.String(),
		Value:     req.Value,
		RequestID: requestcontext.RequestID(ctx),
	})

	band, quorate := s.findQuorum(round.Votes)
	var median int64
	if quorate {
		median = bandMedian(band)
		round.State = models.RoundFinalized
		round.FinalizedValue = median
		round.FinalizedAt = now
		round.QuorumAttestors = make([]id.AttestorID, len(band))
		for i, v := range band {
			round.QuorumAttestors[i] = v.Attestor
		}
	}

	// Writes are ordered so the freshness record, the publication the gate
	// reads, commits last. A failure at any step unwinds the earlier writes
	// of this call, so a failed submission leaves no partial state and the
	// identical vote can be retried.
	if err := s.rounds.Put(ctx, round); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store round")
	}

	priorAttestor := *attestor
	attestor.Submissions++
	if err := s.attestors.Put(ctx, attestor); err != nil {
		s.unwindRound(ctx, priorRound, round)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update attestor submission count")
	}

	if quorate {
		anomaly, err := s.writeFreshness(ctx, req.Subject, median, now)
		if err != nil {
			if putErr := s.attestors.Put(ctx, &priorAttestor); putErr != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to restore attestor after freshness write failure",
					"attestor_id", attestor.ID,
					"error", putErr,
				)
			}
			s.unwindRound(ctx, priorRound, round)
			return nil, nil, err
		}

		result.State = models.RoundFinalized
		result.FinalizedValue = median
		result.QuorumSize = len(band)
		result.Anomaly = anomaly

		finalized := s.roundEvent(ctx, audit.EventRoundFinalized, round, now)
		finalized.Value = median
		finalized.VoteCount = len(band)
		events = append(events, finalized)
		if anomaly {
			anomalyEvent := s.roundEvent(ctx, audit.EventValuationAnomaly, round, now)
			anomalyEvent.Value = median
			anomalyEvent.Reason = "valuation dropped past the monotonicity bound"
			events = append(events, anomalyEvent)
		}
	}

	return result, events, nil
}

// unwindRound reverses this call's round write after a later store write
// failed. A round this call opened is deleted outright; a pre-existing round
// is put back as it was loaded.
func (s *Service) unwindRound(ctx context.Context, prior, round *models.Round) {
	var err error
	if prior != nil {
		err = s.rounds.Put(ctx, prior)
	} else {
		err = s.rounds.Delete(ctx, round.Subject, round.Seq)
	}
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to restore round after store failure",
			"subject", round.Subject,
			"round_seq", round.Seq,
			"error", err,
		)
	}
}

func cloneRound(r *models.Round) *models.Round {
	cp := *r
	cp.Votes = append([]models.Vote(nil), r.Votes...)
	cp.QuorumAttestors = append([]id.AttestorID(nil), r.QuorumAttestors...)
	return &cp
}

// writeFreshness records the finalized value and flags monotonicity
// violations. A violating value is still recorded: refusing the update could
// itself be abused to freeze transfers indefinitely, so the policy is
// fail-open-but-flag.
func (s *Service) writeFreshness(ctx context.Context, subject id.PolicyID, median int64, now time.Time) (bool, error) {
	prior, err := s.freshness.Get(ctx, subject)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read freshness record")
	}

	anomaly := false
	if prior != nil && s.cfg.MaxDropBps >= 0 && median < prior.Value {
		drop := prior.Value - median
		if drop*10_000 > prior.Value*s.cfg.MaxDropBps {
			anomaly = true
		}
	}

	record := &models.FreshnessRecord{
		Subject:     subject,
		Value:       median,
		FinalizedAt: now,
		Anomaly:     anomaly,
	}
	if err := s.freshness.Put(ctx, record); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write freshness record")
	}
	return anomaly, nil
}

// findQuorum looks for the first (lowest-valued) band of at least
// QuorumThreshold votes whose spread fits within ToleranceBps of the band's
// lowest value. Returns the band sorted ascending by value.
func (s *Service) findQuorum(votes []models.Vote) ([]models.Vote, bool) {
	if len(votes) < s.cfg.QuorumThreshold {
		return nil, false
	}

	sorted := append([]models.Vote(nil), votes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value < sorted[j].Value
		}
		return sorted[i].ReceivedAt.Before(sorted[j].ReceivedAt)
	})

	for i := 0; i+s.cfg.QuorumThreshold <= len(sorted); i++ {
		anchor := sorted[i].Value
		limit := anchor + anchor*s.cfg.ToleranceBps/10_000
		j := i
		for j < len(sorted) && sorted[j].Value <= limit {
			j++
		}
		if j-i >= s.cfg.QuorumThreshold {
			return sorted[i:j], true
		}
	}
	return nil, false
}

// bandMedian returns the median value of an ascending band; for an even
// count it takes the lower of the two middle values.
func bandMedian(band []models.Vote) int64 {
	return band[(len(band)-1)/2].Value
}

// GetRound returns a round for the admin/read API.
func (s *Service) GetRound(ctx context.Context, subject id.PolicyID, seq int64) (*models.Round, error) {
	round, err := s.rounds.Get(ctx, subject, seq)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load round")
	}
	if round == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "round not found")
	}
	return round, nil
}

func (s *Service) roundEvent(ctx context.Context, action audit.AuditEvent, round *models.Round, now time.Time) audit.Event {
	return audit.Event{
		Category:  action.Category(),
		Timestamp: now,
		Subject:   round.Subject.String(),
		Action:    string(action),
		RequestID: requestcontext.RequestID(ctx),
	}
}

// reject records a rejected submission for security monitoring and returns
// the rejection unchanged.
func (s *Service) reject(ctx context.Context, req SubmitRequest, rejection error) error {
	code := string(dErrors.CodeOf(rejection))
	if s.metrics != nil {
		s.metrics.SubmissionsTotal.WithLabelValues(code).Inc()
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "valuation submission rejected",
			"subject", req.Subject,
			"attestor", req.Attestor,
			"code", code,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.emit(ctx, audit.Event{
		Category:  audit.EventSubmissionRejected.Category(),
		Timestamp: requestcontext.Now(ctx),
		Subject:   req.Subject.String(),
		Action:    string(audit.EventSubmissionRejected),
		Actor:     req.Attestor.String(),
		Reason:    code,
		RequestID: requestcontext.RequestID(ctx),
	})
	return rejection
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
