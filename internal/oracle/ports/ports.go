// Package ports defines shared interfaces for the oracle module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

import (
	"context"

	"surety/internal/oracle/models"
	id "surety/pkg/domain"
	audit "surety/pkg/platform/audit"
)

// AuditPublisher emits audit events for oracle operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AttestorStore owns Attestor records, keyed by handle.
type AttestorStore interface {
	// Get returns the attestor or nil when unknown.
	Get(ctx context.Context, attestorID id.AttestorID) (*models.Attestor, error)

	// Put inserts or overwrites an attestor record.
	Put(ctx context.Context, attestor *models.Attestor) error

	// List returns all attestor records, active or not.
	List(ctx context.Context) ([]*models.Attestor, error)
}

// RoundStore owns AttestationRound records. At most one open round exists
// per subject; terminal rounds are retained for audit.
type RoundStore interface {
	// GetOpen returns the open round for a subject, or nil when none.
	GetOpen(ctx context.Context, subject id.PolicyID) (*models.Round, error)

	// Put inserts or overwrites a round keyed by (subject, seq).
	Put(ctx context.Context, round *models.Round) error

	// Get returns a specific round, or nil when unknown.
	Get(ctx context.Context, subject id.PolicyID, seq int64) (*models.Round, error)

	// LastSeq returns the highest round sequence for a subject, zero when
	// the subject has never had a round.
	LastSeq(ctx context.Context, subject id.PolicyID) (int64, error)

	// Delete removes the round keyed by (subject, seq). Deleting an unknown
	// round is a no-op. Exists so a failed call can unwind a round it wrote
	// earlier in the same call.
	Delete(ctx context.Context, subject id.PolicyID, seq int64) error
}

// FreshnessStore owns FreshnessRecords. Written only by the consensus
// service on finalization; read by the gate and the vault.
type FreshnessStore interface {
	// Get returns the record for a subject, or nil when none finalized yet.
	Get(ctx context.Context, subject id.PolicyID) (*models.FreshnessRecord, error)

	// Put overwrites the record for a subject.
	Put(ctx context.Context, record *models.FreshnessRecord) error
}
