// Package ports defines shared interfaces for the compliance module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

import (
	"context"
	"time"

	"surety/internal/compliance/models"
	id "surety/pkg/domain"
	audit "surety/pkg/platform/audit"
)

// AuditPublisher emits audit events for compliance operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ProfileStore owns ComplianceProfile records, keyed by account.
type ProfileStore interface {
	// Get returns the profile or nil when the account has never been seen.
	Get(ctx context.Context, account id.AccountID) (*models.Profile, error)

	// Put inserts or overwrites a profile record.
	Put(ctx context.Context, profile *models.Profile) error

	// List returns all profile records.
	List(ctx context.Context) ([]*models.Profile, error)

	// Delete removes a profile record. Profiles are never deleted once
	// committed; this exists only to unwind a create whose audit record
	// could not be written.
	Delete(ctx context.Context, account id.AccountID) error
}

// VolumeStore tracks cumulative outgoing transfer volume per account per UTC
// day, with an atomic check-and-reserve so the volume debit can never be
// observed without the transfer that caused it.
type VolumeStore interface {
	// Reserve atomically adds amount to the account's counter for the day
	// containing now, unless doing so would exceed limit. Returns whether
	// the reservation fit and the cumulative volume after the call.
	Reserve(ctx context.Context, account id.AccountID, now time.Time, amount, limit int64) (bool, int64, error)

	// Used returns the cumulative outgoing volume for the day containing now.
	Used(ctx context.Context, account id.AccountID, now time.Time) (int64, error)
}
