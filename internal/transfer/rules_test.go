package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"surety/internal/compliance/models"
)

var testPolicy = PolicyConfig{
	IdentityValidity:      365 * 24 * time.Hour,
	ProtectedJurisdiction: "US",
	OffshoreWindow:        40 * 24 * time.Hour,
}

func eligibleProfile(now time.Time) *models.Profile {
	return &models.Profile{
		Class:              models.ClassInstitutional,
		IdentityVerifiedAt: now.Add(-24 * time.Hour),
		Jurisdiction:       "US",
		Whitelisted:        true,
		Restriction:        models.Restriction{Kind: models.RestrictionNone},
	}
}

func TestEvaluateFixedOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input func() Input
		want  Reason
	}{
		{
			"clean transfer allowed",
			func() Input {
				return Input{Now: now, Amount: 100, From: eligibleProfile(now), To: eligibleProfile(now)}
			},
			ReasonAllowed,
		},
		{
			"stale outranks every other violation",
			func() Input {
				// Simultaneously stale, unverified, unaccredited, and
				// non-whitelisted: staleness is checked first and must win.
				return Input{Now: now, Amount: 100, Stale: true, From: nil, To: nil}
			},
			ReasonStaleValuation,
		},
		{
			"sender without profile",
			func() Input {
				return Input{Now: now, Amount: 100, From: nil, To: eligibleProfile(now)}
			},
			ReasonIdentityExpired,
		},
		{
			"recipient verification expired",
			func() Input {
				to := eligibleProfile(now)
				to.IdentityVerifiedAt = now.Add(-testPolicy.IdentityValidity - time.Second)
				return Input{Now: now, Amount: 100, From: eligibleProfile(now), To: to}
			},
			ReasonIdentityExpired,
		},
		{
			"identity outranks accreditation",
			func() Input {
				to := eligibleProfile(now)
				to.IdentityVerifiedAt = time.Time{}
				to.Class = models.ClassUnverified
				return Input{Now: now, Amount: 100, From: eligibleProfile(now), To: to}
			},
			ReasonIdentityExpired,
		},
		{
			"unaccredited recipient",
			func() Input {
				to := eligibleProfile(now)
				to.Class = models.ClassUnverified
				return Input{Now: now, Amount: 100, From: eligibleProfile(now), To: to}
			},
			ReasonRecipientNotAccredited,
		},
		{
			"individual recipient past accreditation expiry",
			func() Input {
				to := eligibleProfile(now)
				to.Class = models.ClassIndividual
				to.AccreditationExpiry = now.Add(-time.Second)
				return Input{Now: now, Amount: 100, From: eligibleProfile(now), To: to}
			},
			ReasonRecipientNotAccredited,
		},
		{
			"sender off the whitelist",
			func() Input {
				from := eligibleProfile(now)
				from.Whitelisted = false
				return Input{Now: now, Amount: 100, From: from, To: eligibleProfile(now)}
			},
			ReasonNotWhitelisted,
		},
		{
			"recipient off the whitelist",
			func() Input {
				to := eligibleProfile(now)
				to.Whitelisted = false
				return Input{Now: now, Amount: 100, From: eligibleProfile(now), To: to}
			},
			ReasonNotWhitelisted,
		},
		{
			"holding period active",
			func() Input {
				from := eligibleProfile(now)
				from.Restriction = models.Restriction{
					Kind:     models.RestrictionTimeLock,
					UnlockAt: now.Add(time.Second),
				}
				return Input{Now: now, Amount: 100, From: from, To: eligibleProfile(now)}
			},
			ReasonHoldingPeriodActive,
		},
		{
			"holding period over at exactly the unlock instant",
			func() Input {
				from := eligibleProfile(now)
				from.Restriction = models.Restriction{
					Kind:     models.RestrictionTimeLock,
					UnlockAt: now,
				}
				return Input{Now: now, Amount: 100, From: from, To: eligibleProfile(now)}
			},
			ReasonAllowed,
		},
		{
			"offshore sender into protected jurisdiction",
			func() Input {
				from := eligibleProfile(now)
				from.Jurisdiction = "KY"
				from.OffshoreRestricted = true
				return Input{Now: now, Amount: 100, From: from, To: eligibleProfile(now)}
			},
			ReasonOffshoreToDomesticProhibited,
		},
		{
			"offshore sender after the window elapsed",
			func() Input {
				from := eligibleProfile(now)
				from.Jurisdiction = "KY"
				from.OffshoreRestricted = true
				from.IdentityVerifiedAt = now.Add(-testPolicy.OffshoreWindow)
				return Input{Now: now, Amount: 100, From: from, To: eligibleProfile(now)}
			},
			ReasonAllowed,
		},
		{
			"offshore sender into non-protected jurisdiction",
			func() Input {
				from := eligibleProfile(now)
				from.Jurisdiction = "KY"
				from.OffshoreRestricted = true
				to := eligibleProfile(now)
				to.Jurisdiction = "SG"
				return Input{Now: now, Amount: 100, From: from, To: to}
			},
			ReasonAllowed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.input(), testPolicy)
			assert.Equal(t, tc.want, got.Reason)
		})
	}
}

func TestEvaluateDefersVolumeCheck(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	from := eligibleProfile(now)
	from.Restriction = models.Restriction{
		Kind:       models.RestrictionVolumeLimit,
		DailyLimit: 5_000,
	}

	got := Evaluate(Input{Now: now, Amount: 100, From: from, To: eligibleProfile(now)}, testPolicy)
	assert.Equal(t, ReasonAllowed, got.Reason)
	assert.Equal(t, int64(5_000), got.VolumeLimit)
}

func TestEvaluateCarriesVolumeLimitThroughGeographicDenial(t *testing.T) {
	// Volume is ordered before geographic: when both could deny, the caller
	// needs the limit to decide which reason applies.
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	from := eligibleProfile(now)
	from.Jurisdiction = "KY"
	from.OffshoreRestricted = true
	from.Restriction = models.Restriction{
		Kind:       models.RestrictionVolumeLimit,
		DailyLimit: 5_000,
	}

	got := Evaluate(Input{Now: now, Amount: 100, From: from, To: eligibleProfile(now)}, testPolicy)
	assert.Equal(t, ReasonOffshoreToDomesticProhibited, got.Reason)
	assert.Equal(t, int64(5_000), got.VolumeLimit)
}
