package handler

import (
	"encoding/base64"
	"time"

	"surety/internal/oracle/models"
	"surety/internal/oracle/service/consensus"
)

// SubmitAttestationResponse is the HTTP response for POST /oracle/attestations.
type SubmitAttestationResponse struct {
	RoundSeq          int64  `json:"round_seq"`
	State             string `json:"state"`
	VoteCount         int    `json:"vote_count"`
	PriorRoundExpired bool   `json:"prior_round_expired,omitempty"`
	FinalizedValue    *int64 `json:"finalized_value,omitempty"`
	Anomaly           bool   `json:"anomaly,omitempty"`
}

// FromSubmitResult converts a consensus result to an HTTP response.
func FromSubmitResult(result *consensus.SubmitResult) *SubmitAttestationResponse {
	resp := &SubmitAttestationResponse{
		RoundSeq:          result.RoundSeq,
		State:             string(result.State),
		VoteCount:         result.VoteCount,
		PriorRoundExpired: result.PriorRoundExpired,
		Anomaly:           result.Anomaly,
	}
	if result.State == models.RoundFinalized {
		v := result.FinalizedValue
		resp.FinalizedValue = &v
	}
	return resp
}

// AttestorResponse is the HTTP representation of an attestor record.
type AttestorResponse struct {
	Attestor       string     `json:"attestor"`
	PublicKey      string     `json:"public_key"`
	Stake          int64      `json:"stake"`
	ForfeitedStake int64      `json:"forfeited_stake,omitempty"`
	Active         bool       `json:"active"`
	Slashed        bool       `json:"slashed"`
	Submissions    int64      `json:"submissions"`
	EvidenceRef    string     `json:"evidence_ref,omitempty"`
	RegisteredAt   time.Time  `json:"registered_at"`
	DeactivatedAt  *time.Time `json:"deactivated_at,omitempty"`
	SlashedAt      *time.Time `json:"slashed_at,omitempty"`
}

// FromAttestor converts an attestor record to an HTTP response.
func FromAttestor(a *models.Attestor) *AttestorResponse {
	return &AttestorResponse{
		Attestor:       a.ID.String(),
		PublicKey:      base64.StdEncoding.EncodeToString(a.PublicKey),
		Stake:          a.Stake,
		ForfeitedStake: a.ForfeitedStake,
		Active:         a.Active,
		Slashed:        a.Slashed,
		Submissions:    a.Submissions,
		EvidenceRef:    a.EvidenceRef,
		RegisteredAt:   a.RegisteredAt,
		DeactivatedAt:  a.DeactivatedAt,
		SlashedAt:      a.SlashedAt,
	}
}

// ValuationResponse is the HTTP response for GET /oracle/valuations/{subject}.
type ValuationResponse struct {
	Subject     string    `json:"subject"`
	Value       int64     `json:"value"`
	FinalizedAt time.Time `json:"finalized_at"`
	Stale       bool      `json:"stale"`
	Anomaly     bool      `json:"anomaly,omitempty"`
}
