package transfer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	compliancemodels "surety/internal/compliance/models"
	profilestore "surety/internal/compliance/store/profile"
	volumestore "surety/internal/compliance/store/volume"
	oraclemodels "surety/internal/oracle/models"
	"surety/internal/oracle/service/freshness"
	freshnessstore "surety/internal/oracle/store/freshness"
	"surety/internal/transfer"
	id "surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
	audit "surety/pkg/platform/audit"
	"surety/pkg/requestcontext"
)

const maxValuationAge = 24 * time.Hour

type capturePublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *capturePublisher) Emit(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) last() (audit.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return audit.Event{}, false
	}
	return p.events[len(p.events)-1], true
}

type AuthorizeSuite struct {
	suite.Suite
	profiles  *profilestore.InMemoryStore
	volumes   *volumestore.InMemoryStore
	records   *freshnessstore.InMemoryStore
	published *capturePublisher
	svc       *transfer.Service
	subject   id.PolicyID
	now       time.Time
}

func TestAuthorizeSuite(t *testing.T) {
	suite.Run(t, new(AuthorizeSuite))
}

func (s *AuthorizeSuite) SetupTest() {
	s.profiles = profilestore.NewInMemoryStore()
	s.volumes = volumestore.NewInMemoryStore()
	s.records = freshnessstore.NewInMemoryStore()
	s.published = &capturePublisher{}
	s.subject = id.NewPolicyID()
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	guard, err := freshness.New(s.records, maxValuationAge)
	s.Require().NoError(err)

	svc, err := transfer.NewService(guard, s.profiles, s.volumes, transfer.PolicyConfig{
		IdentityValidity:      365 * 24 * time.Hour,
		ProtectedJurisdiction: "US",
		OffshoreWindow:        40 * 24 * time.Hour,
	}, transfer.WithAuditPublisher(s.published))
	s.Require().NoError(err)
	s.svc = svc

	// A fresh finalized valuation for the subject, unless a test overrides.
	s.Require().NoError(s.records.Put(context.Background(), &oraclemodels.FreshnessRecord{
		Subject:     s.subject,
		Value:       100_000,
		FinalizedAt: s.now.Add(-time.Hour),
	}))
}

func (s *AuthorizeSuite) ctxAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *AuthorizeSuite) eligibleAccount(mutate func(*compliancemodels.Profile)) id.AccountID {
	account := id.NewAccountID()
	p := &compliancemodels.Profile{
		Account:            account,
		Class:              compliancemodels.ClassInstitutional,
		IdentityVerifiedAt: s.now.Add(-24 * time.Hour),
		Jurisdiction:       "US",
		Whitelisted:        true,
		Restriction:        compliancemodels.Restriction{Kind: compliancemodels.RestrictionNone},
		CreatedAt:          s.now.Add(-24 * time.Hour),
		UpdatedAt:          s.now.Add(-24 * time.Hour),
	}
	if mutate != nil {
		mutate(p)
	}
	s.Require().NoError(s.profiles.Put(context.Background(), p))
	return account
}

func (s *AuthorizeSuite) authorize(ctx context.Context, from, to id.AccountID, amount int64) *transfer.Decision {
	decision, err := s.svc.Authorize(ctx, transfer.AuthorizeRequest{
		From:    from,
		To:      to,
		Amount:  amount,
		Subject: s.subject,
	})
	s.Require().NoError(err)
	return decision
}

func (s *AuthorizeSuite) TestCleanTransferAllowed() {
	from := s.eligibleAccount(nil)
	to := s.eligibleAccount(nil)

	decision := s.authorize(s.ctxAt(s.now), from, to, 100)
	s.True(decision.Allowed)
	s.Equal(transfer.ReasonAllowed, decision.Reason)
	s.True(decision.DecidedAt.Equal(s.now))

	event, ok := s.published.last()
	s.Require().True(ok)
	s.Equal(string(audit.EventTransferAuthorized), event.Action)
}

func (s *AuthorizeSuite) TestStaleValuationDenied() {
	from := s.eligibleAccount(nil)
	to := s.eligibleAccount(nil)

	past := s.ctxAt(s.now.Add(maxValuationAge + time.Hour))
	decision := s.authorize(past, from, to, 100)
	s.False(decision.Allowed)
	s.Equal(transfer.ReasonStaleValuation, decision.Reason)
}

func (s *AuthorizeSuite) TestMissingValuationDenied() {
	from := s.eligibleAccount(nil)
	to := s.eligibleAccount(nil)

	decision, err := s.svc.Authorize(s.ctxAt(s.now), transfer.AuthorizeRequest{
		From:    from,
		To:      to,
		Amount:  100,
		Subject: id.NewPolicyID(),
	})
	s.Require().NoError(err)
	s.Equal(transfer.ReasonStaleValuation, decision.Reason)
}

func (s *AuthorizeSuite) TestStalePrecedesWhitelist() {
	// Simultaneously stale and non-whitelisted must report the staleness.
	from := s.eligibleAccount(func(p *compliancemodels.Profile) { p.Whitelisted = false })
	to := s.eligibleAccount(nil)

	past := s.ctxAt(s.now.Add(maxValuationAge + time.Hour))
	decision := s.authorize(past, from, to, 100)
	s.Equal(transfer.ReasonStaleValuation, decision.Reason)
}

func (s *AuthorizeSuite) TestUnknownAccountDeniedAsIdentityExpired() {
	to := s.eligibleAccount(nil)
	decision := s.authorize(s.ctxAt(s.now), id.NewAccountID(), to, 100)
	s.Equal(transfer.ReasonIdentityExpired, decision.Reason)
}

func (s *AuthorizeSuite) TestHoldingPeriodBoundary() {
	unlock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	from := s.eligibleAccount(func(p *compliancemodels.Profile) {
		p.IdentityVerifiedAt = unlock.Add(-180 * 24 * time.Hour)
		p.Restriction = compliancemodels.Restriction{
			Kind:     compliancemodels.RestrictionTimeLock,
			UnlockAt: unlock,
		}
	})
	to := s.eligibleAccount(func(p *compliancemodels.Profile) {
		p.IdentityVerifiedAt = unlock.Add(-180 * 24 * time.Hour)
	})
	s.Require().NoError(s.records.Put(context.Background(), &oraclemodels.FreshnessRecord{
		Subject:     s.subject,
		Value:       100_000,
		FinalizedAt: unlock.Add(-time.Hour),
	}))

	before := s.authorize(s.ctxAt(unlock.Add(-time.Second)), from, to, 100)
	s.False(before.Allowed)
	s.Equal(transfer.ReasonHoldingPeriodActive, before.Reason)

	after := s.authorize(s.ctxAt(unlock.Add(time.Second)), from, to, 100)
	s.True(after.Allowed)
}

func (s *AuthorizeSuite) TestVolumeLimitEnforcedAndReserved() {
	from := s.eligibleAccount(func(p *compliancemodels.Profile) {
		p.Restriction = compliancemodels.Restriction{
			Kind:       compliancemodels.RestrictionVolumeLimit,
			DailyLimit: 1_000,
		}
	})
	to := s.eligibleAccount(nil)
	ctx := s.ctxAt(s.now)

	s.True(s.authorize(ctx, from, to, 600).Allowed)

	over := s.authorize(ctx, from, to, 600)
	s.False(over.Allowed)
	s.Equal(transfer.ReasonVolumeLimitExceeded, over.Reason)

	// The denied attempt must not have debited the counter.
	used, err := s.volumes.Used(context.Background(), from, s.now)
	s.Require().NoError(err)
	s.Equal(int64(600), used)

	s.True(s.authorize(ctx, from, to, 400).Allowed)
}

func (s *AuthorizeSuite) TestDeniedTransferNeverDebitsVolume() {
	from := s.eligibleAccount(func(p *compliancemodels.Profile) {
		p.Whitelisted = false
		p.Restriction = compliancemodels.Restriction{
			Kind:       compliancemodels.RestrictionVolumeLimit,
			DailyLimit: 1_000,
		}
	})
	to := s.eligibleAccount(nil)

	decision := s.authorize(s.ctxAt(s.now), from, to, 100)
	s.Equal(transfer.ReasonNotWhitelisted, decision.Reason)

	used, err := s.volumes.Used(context.Background(), from, s.now)
	s.Require().NoError(err)
	s.Equal(int64(0), used)
}

func (s *AuthorizeSuite) TestVolumePrecedesGeographic() {
	from := s.eligibleAccount(func(p *compliancemodels.Profile) {
		p.Jurisdiction = "KY"
		p.OffshoreRestricted = true
		p.Restriction = compliancemodels.Restriction{
			Kind:       compliancemodels.RestrictionVolumeLimit,
			DailyLimit: 1_000,
		}
	})
	to := s.eligibleAccount(nil)
	ctx := s.ctxAt(s.now)

	// Over the cap and offshore-prohibited at once: the volume denial is
	// ordered first and must win.
	decision := s.authorize(ctx, from, to, 1_500)
	s.Equal(transfer.ReasonVolumeLimitExceeded, decision.Reason)

	// Under the cap the geographic rule applies, and nothing was reserved.
	decision = s.authorize(ctx, from, to, 100)
	s.Equal(transfer.ReasonOffshoreToDomesticProhibited, decision.Reason)
	used, err := s.volumes.Used(context.Background(), from, s.now)
	s.Require().NoError(err)
	s.Equal(int64(0), used)
}

func (s *AuthorizeSuite) TestOffshoreWindowElapsedAllows() {
	from := s.eligibleAccount(func(p *compliancemodels.Profile) {
		p.Jurisdiction = "KY"
		p.OffshoreRestricted = true
		p.IdentityVerifiedAt = s.now.Add(-41 * 24 * time.Hour)
	})
	to := s.eligibleAccount(nil)

	decision := s.authorize(s.ctxAt(s.now), from, to, 100)
	s.True(decision.Allowed)
}

func (s *AuthorizeSuite) TestDenialEmitsComplianceEvent() {
	from := s.eligibleAccount(func(p *compliancemodels.Profile) { p.Whitelisted = false })
	to := s.eligibleAccount(nil)

	decision := s.authorize(s.ctxAt(s.now), from, to, 100)
	s.False(decision.Allowed)

	event, ok := s.published.last()
	s.Require().True(ok)
	s.Equal(string(audit.EventTransferDenied), event.Action)
	s.Equal(string(transfer.ReasonNotWhitelisted), event.Decision)
	s.Equal(audit.CategoryCompliance, event.Category)
}

type failingPublisher struct{}

func (failingPublisher) Emit(context.Context, audit.Event) error {
	return dErrors.New(dErrors.CodeInternal, "broker unavailable")
}

func (s *AuthorizeSuite) TestDenialFailsWhenAuditCannotBeWritten() {
	guard, err := freshness.New(s.records, maxValuationAge)
	s.Require().NoError(err)
	svc, err := transfer.NewService(guard, s.profiles, s.volumes, transfer.PolicyConfig{
		IdentityValidity:      365 * 24 * time.Hour,
		ProtectedJurisdiction: "US",
		OffshoreWindow:        40 * 24 * time.Hour,
	}, transfer.WithAuditPublisher(failingPublisher{}))
	s.Require().NoError(err)

	from := s.eligibleAccount(func(p *compliancemodels.Profile) { p.Whitelisted = false })
	to := s.eligibleAccount(nil)

	_, err = svc.Authorize(s.ctxAt(s.now), transfer.AuthorizeRequest{
		From: from, To: to, Amount: 100, Subject: s.subject,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	// An allow with a failed audit write still returns; the event loss is
	// logged, not fatal.
	okFrom := s.eligibleAccount(nil)
	decision, err := svc.Authorize(s.ctxAt(s.now), transfer.AuthorizeRequest{
		From: okFrom, To: to, Amount: 100, Subject: s.subject,
	})
	s.Require().NoError(err)
	s.True(decision.Allowed)
}

func (s *AuthorizeSuite) TestInvalidRequestsAreErrors() {
	account := s.eligibleAccount(nil)

	_, err := s.svc.Authorize(s.ctxAt(s.now), transfer.AuthorizeRequest{
		From: account, To: account, Amount: 100, Subject: s.subject,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.svc.Authorize(s.ctxAt(s.now), transfer.AuthorizeRequest{
		From: account, To: s.eligibleAccount(nil), Amount: 0, Subject: s.subject,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
