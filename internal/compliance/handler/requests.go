package handler

import (
	"strings"
	"time"

	"surety/internal/compliance/models"
	dErrors "surety/pkg/domain-errors"
)

// UpdateProfileRequest is the HTTP request body for PUT /compliance/profiles/{account}.
type UpdateProfileRequest struct {
	Class string `json:"class"`
	// IdentityVerifiedAt in unix seconds; zero or omitted means never verified.
	IdentityVerifiedAt int64 `json:"identity_verified_at,omitempty"`
	// AccreditationExpiry in unix seconds; only meaningful for class "individual".
	AccreditationExpiry int64  `json:"accreditation_expiry,omitempty"`
	Jurisdiction        string `json:"jurisdiction"`
	OffshoreRestricted  bool   `json:"offshore_restricted"`
	Whitelisted         bool   `json:"whitelisted"`
	Restriction         struct {
		Kind string `json:"kind"`
		// UnlockAt in unix seconds, for TIME_LOCK.
		UnlockAt int64 `json:"unlock_at,omitempty"`
		// DailyLimit in minor units, for VOLUME_LIMIT.
		DailyLimit int64 `json:"daily_limit,omitempty"`
	} `json:"restriction"`

	parsedClass models.InvestorClass
	parsedKind  models.RestrictionKind
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	class, ok := models.ParseInvestorClass(strings.TrimSpace(r.Class))
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "class must be one of institutional, individual, unverified; got %q", r.Class)
	}
	r.parsedClass = class

	r.Jurisdiction = strings.ToUpper(strings.TrimSpace(r.Jurisdiction))
	if r.Jurisdiction != "" && len(r.Jurisdiction) != 2 {
		return dErrors.New(dErrors.CodeValidation, "jurisdiction must be an ISO 3166-1 alpha-2 code")
	}

	kind := strings.TrimSpace(r.Restriction.Kind)
	if kind == "" {
		kind = string(models.RestrictionNone)
	}
	parsedKind, ok := models.ParseRestrictionKind(kind)
	if !ok {
		return dErrors.Newf(dErrors.CodeValidation, "restriction.kind must be one of NONE, TIME_LOCK, VOLUME_LIMIT; got %q", r.Restriction.Kind)
	}
	r.parsedKind = parsedKind

	if r.IdentityVerifiedAt < 0 || r.AccreditationExpiry < 0 || r.Restriction.UnlockAt < 0 {
		return dErrors.New(dErrors.CodeValidation, "timestamps must not be negative")
	}
	return nil
}

// ParsedClass returns the validated investor class.
func (r *UpdateProfileRequest) ParsedClass() models.InvestorClass { return r.parsedClass }

// ParsedRestriction returns the validated restriction.
func (r *UpdateProfileRequest) ParsedRestriction() models.Restriction {
	restriction := models.Restriction{Kind: r.parsedKind}
	if r.Restriction.UnlockAt > 0 {
		restriction.UnlockAt = time.Unix(r.Restriction.UnlockAt, 0).UTC()
	}
	restriction.DailyLimit = r.Restriction.DailyLimit
	return restriction
}

// ParsedIdentityVerifiedAt returns the verification time, zero when never
// verified.
func (r *UpdateProfileRequest) ParsedIdentityVerifiedAt() time.Time {
	if r.IdentityVerifiedAt == 0 {
		return time.Time{}
	}
	return time.Unix(r.IdentityVerifiedAt, 0).UTC()
}

// ParsedAccreditationExpiry returns the accreditation expiry, zero when unset.
func (r *UpdateProfileRequest) ParsedAccreditationExpiry() time.Time {
	if r.AccreditationExpiry == 0 {
		return time.Time{}
	}
	return time.Unix(r.AccreditationExpiry, 0).UTC()
}
