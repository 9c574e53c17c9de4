package handler

import (
	"time"

	"surety/internal/transfer"
)

// DecisionResponse is returned for every authorization request, allow and
// deny alike; a deny is a successful decision, not an HTTP error.
type DecisionResponse struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason"`
	DecidedAt time.Time `json:"decided_at"`
}

// FromDecision converts a service decision into its response shape.
func FromDecision(d *transfer.Decision) DecisionResponse {
	return DecisionResponse{
		Allowed:   d.Allowed,
		Reason:    string(d.Reason),
		DecidedAt: d.DecidedAt,
	}
}
