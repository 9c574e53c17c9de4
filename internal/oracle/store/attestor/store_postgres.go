package attestor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"surety/internal/oracle/models"
	id "surety/pkg/domain"
)

// PostgresStore persists attestor records in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE attestors (
//	    id              TEXT PRIMARY KEY,
//	    public_key      BYTEA NOT NULL,
//	    stake           BIGINT NOT NULL,
//	    forfeited_stake BIGINT NOT NULL DEFAULT 0,
//	    active          BOOLEAN NOT NULL,
//	    slashed         BOOLEAN NOT NULL,
//	    submissions     BIGINT NOT NULL DEFAULT 0,
//	    evidence_ref    TEXT NOT NULL DEFAULT '',
//	    registered_at   TIMESTAMPTZ NOT NULL,
//	    deactivated_at  TIMESTAMPTZ,
//	    slashed_at      TIMESTAMPTZ
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed attestor store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, attestorID id.AttestorID) (*models.Attestor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, public_key, stake, forfeited_stake, active, slashed,
		       submissions, evidence_ref, registered_at, deactivated_at, slashed_at
		FROM attestors WHERE id = $1`, attestorID.String())

	a, err := scanAttestor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attestor: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) Put(ctx context.Context, attestor *models.Attestor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attestors (
			id, public_key, stake, forfeited_stake, active, slashed,
			submissions, evidence_ref, registered_at, deactivated_at, slashed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			public_key      = EXCLUDED.public_key,
			stake           = EXCLUDED.stake,
			forfeited_stake = EXCLUDED.forfeited_stake,
			active          = EXCLUDED.active,
			slashed         = EXCLUDED.slashed,
			submissions     = EXCLUDED.submissions,
			evidence_ref    = EXCLUDED.evidence_ref,
			deactivated_at  = EXCLUDED.deactivated_at,
			slashed_at      = EXCLUDED.slashed_at`,
		attestor.ID.String(), []byte(attestor.PublicKey), attestor.Stake,
		attestor.ForfeitedStake, attestor.Active, attestor.Slashed,
		attestor.Submissions, attestor.EvidenceRef, attestor.RegisteredAt,
		nullTime(attestor.DeactivatedAt), nullTime(attestor.SlashedAt))
	if err != nil {
		return fmt.Errorf("put attestor: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Attestor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, public_key, stake, forfeited_stake, active, slashed,
		       submissions, evidence_ref, registered_at, deactivated_at, slashed_at
		FROM attestors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list attestors: %w", err)
	}
	defer rows.Close()

	var out []*models.Attestor
	for rows.Next() {
		a, err := scanAttestor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attestor: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttestor(row rowScanner) (*models.Attestor, error) {
	var (
		a             models.Attestor
		attestorID    string
		pubKey        []byte
		deactivatedAt sql.NullTime
		slashedAt     sql.NullTime
	)
	err := row.Scan(&attestorID, &pubKey, &a.Stake, &a.ForfeitedStake,
		&a.Active, &a.Slashed, &a.Submissions, &a.EvidenceRef,
		&a.RegisteredAt, &deactivatedAt, &slashedAt)
	if err != nil {
		return nil, err
	}
	a.ID = id.AttestorID(attestorID)
	a.PublicKey = pubKey
	if deactivatedAt.Valid {
		t := deactivatedAt.Time
		a.DeactivatedAt = &t
	}
	if slashedAt.Valid {
		t := slashedAt.Time
		a.SlashedAt = &t
	}
	return &a, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
