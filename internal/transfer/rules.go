package transfer

import (
	"time"

	"surety/internal/compliance/models"
)

// PolicyConfig carries the gate's policy parameters.
type PolicyConfig struct {
	// IdentityValidity is how long an identity verification remains valid.
	IdentityValidity time.Duration
	// ProtectedJurisdiction is the domestic jurisdiction shielded from
	// offshore inflows during the offshore restriction window.
	ProtectedJurisdiction string
	// OffshoreWindow is how long after identity verification an
	// offshore-restricted holder may not transfer into the protected
	// jurisdiction.
	OffshoreWindow time.Duration
}

// Input is everything the pure rule chain needs: the already-fetched state
// plus the one timestamp all checks evaluate against.
type Input struct {
	Now    time.Time
	Amount int64
	// Stale is the freshness verdict for the transfer's subject.
	Stale bool
	// From and To are nil when the account has no compliance profile.
	From *models.Profile
	To   *models.Profile
}

// Outcome is the rule chain's verdict before any volume interaction.
type Outcome struct {
	Reason Reason
	// VolumeLimit is nonzero when the sender carries a VOLUME_LIMIT
	// restriction and every check up to the restriction step passed. The
	// caller must then consult the day's counter: exceeding the cap
	// overrides Reason, because the volume check is ordered before the
	// geographic rule.
	VolumeLimit int64
}

// Evaluate applies the fixed-order decision table. Pure domain logic: no
// I/O, no side effects. The ordering is policy, not implementation detail —
// staleness first because a stale valuation invalidates every later check,
// eligibility before restrictions because a restriction window is irrelevant
// for a categorically ineligible counterparty.
func Evaluate(input Input, cfg PolicyConfig) Outcome {
	// 1. Freshness.
	if input.Stale {
		return Outcome{Reason: ReasonStaleValuation}
	}

	// 2. Identity, both parties. A missing profile means no verification.
	if input.From == nil || !input.From.IdentityValidAt(input.Now, cfg.IdentityValidity) {
		return Outcome{Reason: ReasonIdentityExpired}
	}
	if input.To == nil || !input.To.IdentityValidAt(input.Now, cfg.IdentityValidity) {
		return Outcome{Reason: ReasonIdentityExpired}
	}

	// 3. Recipient accreditation.
	if !input.To.AccreditedAt(input.Now) {
		return Outcome{Reason: ReasonRecipientNotAccredited}
	}

	// 4. Whitelist, sender then recipient.
	if !input.From.Whitelisted || !input.To.Whitelisted {
		return Outcome{Reason: ReasonNotWhitelisted}
	}

	// 5. Active restriction on the sender.
	var volumeLimit int64
	switch input.From.Restriction.Kind {
	case models.RestrictionTimeLock:
		// The unlock instant itself is unrestricted.
		if input.Now.Before(input.From.Restriction.UnlockAt) {
			return Outcome{Reason: ReasonHoldingPeriodActive}
		}
	case models.RestrictionVolumeLimit:
		// Deferred to the caller's atomic check-and-reserve.
		volumeLimit = input.From.Restriction.DailyLimit
	}

	// 6. Geographic rule: offshore-restricted sender into the protected
	// jurisdiction, unless the sender's window has elapsed.
	if input.From.OffshoreRestricted &&
		input.To.Jurisdiction == cfg.ProtectedJurisdiction &&
		!input.From.OffshoreWindowElapsedAt(input.Now, cfg.OffshoreWindow) {
		return Outcome{Reason: ReasonOffshoreToDomesticProhibited, VolumeLimit: volumeLimit}
	}

	return Outcome{Reason: ReasonAllowed, VolumeLimit: volumeLimit}
}
