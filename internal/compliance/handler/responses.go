package handler

import (
	"time"

	"surety/internal/compliance/models"
)

// RestrictionResponse is the restriction portion of a profile response.
type RestrictionResponse struct {
	Kind       string     `json:"kind"`
	UnlockAt   *time.Time `json:"unlock_at,omitempty"`
	DailyLimit int64      `json:"daily_limit,omitempty"`
}

// ProfileResponse is the HTTP representation of a compliance profile.
type ProfileResponse struct {
	Account             string              `json:"account"`
	Class               string              `json:"class"`
	IdentityVerifiedAt  *time.Time          `json:"identity_verified_at,omitempty"`
	AccreditationExpiry *time.Time          `json:"accreditation_expiry,omitempty"`
	Jurisdiction        string              `json:"jurisdiction,omitempty"`
	OffshoreRestricted  bool                `json:"offshore_restricted"`
	Whitelisted         bool                `json:"whitelisted"`
	Restriction         RestrictionResponse `json:"restriction"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// FromProfile converts a profile record to an HTTP response.
func FromProfile(p *models.Profile) *ProfileResponse {
	resp := &ProfileResponse{
		Account:            p.Account.String(),
		Class:              string(p.Class),
		Jurisdiction:       p.Jurisdiction,
		OffshoreRestricted: p.OffshoreRestricted,
		Whitelisted:        p.Whitelisted,
		Restriction: RestrictionResponse{
			Kind:       string(p.Restriction.Kind),
			DailyLimit: p.Restriction.DailyLimit,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if !p.IdentityVerifiedAt.IsZero() {
		t := p.IdentityVerifiedAt
		resp.IdentityVerifiedAt = &t
	}
	if !p.AccreditationExpiry.IsZero() {
		t := p.AccreditationExpiry
		resp.AccreditationExpiry = &t
	}
	if !p.Restriction.UnlockAt.IsZero() {
		t := p.Restriction.UnlockAt
		resp.Restriction.UnlockAt = &t
	}
	return resp
}
