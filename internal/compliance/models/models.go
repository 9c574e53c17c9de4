// Package models defines the compliance domain records: per-account profiles
// carrying identity, accreditation, jurisdiction, and transfer-restriction
// state. Profiles are never deleted; restrictions are cleared in place so the
// record's history survives for audit.
package models

import (
	"time"

	id "surety/pkg/domain"
)

// InvestorClass is the securities classification of an account holder.
type InvestorClass string

const (
	// ClassInstitutional investors are accredited without expiry.
	ClassInstitutional InvestorClass = "institutional"
	// ClassIndividual investors are accredited only until their
	// accreditation expiry passes.
	ClassIndividual InvestorClass = "individual"
	// ClassUnverified holders are never accredited.
	ClassUnverified InvestorClass = "unverified"
)

// ParseInvestorClass parses the wire representation of an investor class.
func ParseInvestorClass(raw string) (InvestorClass, bool) {
	switch InvestorClass(raw) {
	case ClassInstitutional, ClassIndividual, ClassUnverified:
		return InvestorClass(raw), true
	}
	return "", false
}

// RestrictionKind names the active transfer restriction on an account.
type RestrictionKind string

const (
	RestrictionNone        RestrictionKind = "NONE"
	RestrictionTimeLock    RestrictionKind = "TIME_LOCK"
	RestrictionVolumeLimit RestrictionKind = "VOLUME_LIMIT"
)

// ParseRestrictionKind parses the wire representation of a restriction kind.
func ParseRestrictionKind(raw string) (RestrictionKind, bool) {
	switch RestrictionKind(raw) {
	case RestrictionNone, RestrictionTimeLock, RestrictionVolumeLimit:
		return RestrictionKind(raw), true
	}
	return "", false
}

// Restriction is the active transfer restriction and its parameter.
type Restriction struct {
	Kind RestrictionKind
	// UnlockAt is the TIME_LOCK parameter: transfers resume at this instant.
	UnlockAt time.Time
	// DailyLimit is the VOLUME_LIMIT parameter: the cap on cumulative
	// outgoing volume per UTC day, in minor units.
	DailyLimit int64
}

// Profile is the policy-relevant state of one account. Created on the first
// compliance officer action for the account.
type Profile struct {
	Account id.AccountID
	Class   InvestorClass
	// IdentityVerifiedAt is zero when the account was never verified.
	IdentityVerifiedAt time.Time
	// AccreditationExpiry bounds accreditation for individual investors.
	// Ignored for institutional and unverified classes.
	AccreditationExpiry time.Time
	// Jurisdiction is an ISO 3166-1 alpha-2 code.
	Jurisdiction string
	// OffshoreRestricted marks holders subject to the offshore-to-domestic
	// transfer window.
	OffshoreRestricted bool
	Whitelisted        bool
	Restriction        Restriction
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IdentityValidAt reports whether the identity verification is current:
// verified at all, and within the validity window. The window boundary is
// inclusive.
func (p *Profile) IdentityValidAt(now time.Time, validity time.Duration) bool {
	if p.IdentityVerifiedAt.IsZero() {
		return false
	}
	return !now.After(p.IdentityVerifiedAt.Add(validity))
}

// AccreditedAt reports whether the holder counts as an accredited investor:
// institutional always, individual until expiry, unverified never.
func (p *Profile) AccreditedAt(now time.Time) bool {
	switch p.Class {
	case ClassInstitutional:
		return true
	case ClassIndividual:
		return !p.AccreditationExpiry.IsZero() && !now.After(p.AccreditationExpiry)
	default:
		return false
	}
}

// OffshoreWindowElapsedAt reports whether the offshore restriction window,
// anchored at identity verification, has run out. An unverified profile's
// window never elapses.
func (p *Profile) OffshoreWindowElapsedAt(now time.Time, window time.Duration) bool {
	if p.IdentityVerifiedAt.IsZero() {
		return false
	}
	return !now.Before(p.IdentityVerifiedAt.Add(window))
}
