package freshness

import (
	"context"
	"database/sql"
	"fmt"

	"surety/internal/oracle/models"
	id "surety/pkg/domain"
)

// PostgresStore persists the last finalized valuation per subject.
//
// Expected schema:
//
//	CREATE TABLE valuations (
//	    subject      UUID PRIMARY KEY,
//	    value        BIGINT NOT NULL,
//	    finalized_at TIMESTAMPTZ NOT NULL,
//	    anomaly      BOOLEAN NOT NULL DEFAULT FALSE
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed freshness store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, subject id.PolicyID) (*models.FreshnessRecord, error) {
	record := &models.FreshnessRecord{}
	var subjectStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT subject, value, finalized_at, anomaly
		FROM valuations WHERE subject = $1`, subject.String()).
		Scan(&subjectStr, &record.Value, &record.FinalizedAt, &record.Anomaly)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get valuation: %w", err)
	}
	parsed, err := id.ParsePolicyID(subjectStr)
	if err != nil {
		return nil, fmt.Errorf("stored subject id invalid: %w", err)
	}
	record.Subject = parsed
	return record, nil
}

func (s *PostgresStore) Put(ctx context.Context, record *models.FreshnessRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO valuations (subject, value, finalized_at, anomaly)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject) DO UPDATE SET
			value        = EXCLUDED.value,
			finalized_at = EXCLUDED.finalized_at,
			anomaly      = EXCLUDED.anomaly`,
		record.Subject.String(), record.Value, record.FinalizedAt, record.Anomaly)
	if err != nil {
		return fmt.Errorf("put valuation: %w", err)
	}
	return nil
}
