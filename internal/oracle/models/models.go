// Package models defines the oracle domain records: attestors, valuation
// rounds, and freshness records. Records are never deleted, only flagged,
// so the historical audit trail stays intact.
package models

import (
	"crypto/ed25519"
	"time"

	id "surety/pkg/domain"
)

// Attestor is a registered, staked identity permitted to submit valuation
// reports. Deactivation and slashing flip flags; the record itself persists.
type Attestor struct {
	ID        id.AttestorID
	PublicKey ed25519.PublicKey
	// Stake is the bonded amount in minor units. Forfeited in full on slash.
	Stake int64
	// ForfeitedStake records what was seized, for the audit trail.
	ForfeitedStake int64
	Active         bool
	Slashed        bool
	// Submissions counts accepted votes across all rounds.
	Submissions int64
	// EvidenceRef points at the off-chain evidence that justified a slash.
	EvidenceRef   string
	RegisteredAt  time.Time
	DeactivatedAt *time.Time
	SlashedAt     *time.Time
}

// Trusted reports whether this attestor's votes count toward quorum.
func (a *Attestor) Trusted() bool {
	return a.Active && !a.Slashed
}

// Vote is one attestor's signed valuation report within a round.
type Vote struct {
	Attestor id.AttestorID
	// Value is the reported valuation in minor units.
	Value int64
	// ReportedAt is the observation timestamp the attestor signed over.
	ReportedAt time.Time
	// ReceivedAt is when the oracle accepted the vote; append order within
	// a round follows ReceivedAt.
	ReceivedAt time.Time
	Signature  []byte
}

// RoundState is the lifecycle of an attestation round.
type RoundState string

const (
	// RoundOpen accepts votes until quorum or deadline.
	RoundOpen RoundState = "open"
	// RoundFinalized published a value. Terminal and immutable.
	RoundFinalized RoundState = "finalized"
	// RoundExpired hit its deadline without quorum; no value published.
	// Terminal. Callers retry by submitting into a fresh round.
	RoundExpired RoundState = "expired"
)

// Round accumulates votes for one subject until a quorum of mutually
// agreeing votes finalizes it, or the deadline expires it.
type Round struct {
	Subject id.PolicyID
	// Seq increments per subject each time a new round opens.
	Seq   int64
	State RoundState
	// Votes in arrival order, deduplicated by attestor.
	Votes    []Vote
	OpenedAt time.Time
	Deadline time.Time
	// FinalizedValue is the median of the agreeing band, set once.
	FinalizedValue int64
	FinalizedAt    time.Time
	// QuorumAttestors lists whose votes formed the agreeing band.
	QuorumAttestors []id.AttestorID
}

// HasVote reports whether the attestor already voted in this round.
func (r *Round) HasVote(attestor id.AttestorID) bool {
	for _, v := range r.Votes {
		if v.Attestor == attestor {
			return true
		}
	}
	return false
}

// ExpiredAt reports whether the round deadline has elapsed. The deadline
// itself is inclusive: a vote arriving exactly at the deadline still counts.
func (r *Round) ExpiredAt(now time.Time) bool {
	return now.After(r.Deadline)
}

// FreshnessRecord is the last finalized valuation for a subject, consumed by
// the transfer gate and the vault's loan-to-value math.
type FreshnessRecord struct {
	Subject id.PolicyID
	// Value is the finalized median in minor units.
	Value       int64
	FinalizedAt time.Time
	// Anomaly marks a finalization that dropped past the monotonicity bound.
	// The value is published anyway; the flag routes it to manual review.
	Anomaly bool
}

// StaleAt reports staleness against maxAge. Exactly maxAge elapsed is still
// fresh; one instant past it is stale.
func (f *FreshnessRecord) StaleAt(now time.Time, maxAge time.Duration) bool {
	return now.Sub(f.FinalizedAt) > maxAge
}
