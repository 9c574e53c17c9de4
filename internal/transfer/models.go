// Package transfer implements the transfer-authorization gate: the single
// decision point the token ledger calls before moving tokens. A denial is a
// result, not an error; the closed Reason enum keeps every denial cause
// distinguishable for audit.
package transfer

import (
	"time"

	id "surety/pkg/domain"
)

// Reason is the outcome of an authorization decision.
type Reason string

const (
	ReasonAllowed Reason = "ALLOWED"
	// ReasonStaleValuation denies when the subject's last finalized
	// valuation is missing or older than the freshness cutoff.
	ReasonStaleValuation Reason = "STALE_VALUATION"
	// ReasonIdentityExpired denies when either party's identity
	// verification is absent or out of its validity window.
	ReasonIdentityExpired Reason = "IDENTITY_EXPIRED"
	// ReasonRecipientNotAccredited denies when the recipient is not an
	// accredited investor.
	ReasonRecipientNotAccredited Reason = "RECIPIENT_NOT_ACCREDITED"
	// ReasonNotWhitelisted denies when either party is off the transfer
	// whitelist.
	ReasonNotWhitelisted Reason = "NOT_WHITELISTED"
	// ReasonHoldingPeriodActive denies a sender under an unexpired
	// TIME_LOCK restriction.
	ReasonHoldingPeriodActive Reason = "HOLDING_PERIOD_ACTIVE"
	// ReasonVolumeLimitExceeded denies a sender whose daily outgoing
	// volume cap would be exceeded.
	ReasonVolumeLimitExceeded Reason = "VOLUME_LIMIT_EXCEEDED"
	// ReasonOffshoreToDomesticProhibited denies offshore-restricted
	// senders transferring into the protected jurisdiction before their
	// window elapses.
	ReasonOffshoreToDomesticProhibited Reason = "OFFSHORE_TO_DOMESTIC_PROHIBITED"
)

// Decision is the gate's answer for one proposed transfer.
type Decision struct {
	Allowed bool
	Reason  Reason
	// DecidedAt is the single timestamp every check in this decision was
	// evaluated against.
	DecidedAt time.Time
}

// AuthorizeRequest is one proposed transfer.
type AuthorizeRequest struct {
	From    id.AccountID
	To      id.AccountID
	Amount  int64
	Subject id.PolicyID
}
