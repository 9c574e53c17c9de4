package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"surety/internal/compliance/models"
	id "surety/pkg/domain"
)

// PostgresStore persists compliance profiles in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE compliance_profiles (
//	    account              UUID PRIMARY KEY,
//	    class                TEXT NOT NULL,
//	    identity_verified_at TIMESTAMPTZ,
//	    accreditation_expiry TIMESTAMPTZ,
//	    jurisdiction         TEXT NOT NULL DEFAULT '',
//	    offshore_restricted  BOOLEAN NOT NULL DEFAULT FALSE,
//	    whitelisted          BOOLEAN NOT NULL DEFAULT FALSE,
//	    restriction_kind     TEXT NOT NULL DEFAULT 'NONE',
//	    restriction_unlock   TIMESTAMPTZ,
//	    restriction_limit    BIGINT NOT NULL DEFAULT 0,
//	    created_at           TIMESTAMPTZ NOT NULL,
//	    updated_at           TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, account id.AccountID) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT account, class, identity_verified_at, accreditation_expiry,
		       jurisdiction, offshore_restricted, whitelisted,
		       restriction_kind, restriction_unlock, restriction_limit,
		       created_at, updated_at
		FROM compliance_profiles WHERE account = $1`, account.String())

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Put(ctx context.Context, profile *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compliance_profiles (
			account, class, identity_verified_at, accreditation_expiry,
			jurisdiction, offshore_restricted, whitelisted,
			restriction_kind, restriction_unlock, restriction_limit,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (account) DO UPDATE SET
			class                = EXCLUDED.class,
			identity_verified_at = EXCLUDED.identity_verified_at,
			accreditation_expiry = EXCLUDED.accreditation_expiry,
			jurisdiction         = EXCLUDED.jurisdiction,
			offshore_restricted  = EXCLUDED.offshore_restricted,
			whitelisted          = EXCLUDED.whitelisted,
			restriction_kind     = EXCLUDED.restriction_kind,
			restriction_unlock   = EXCLUDED.restriction_unlock,
			restriction_limit    = EXCLUDED.restriction_limit,
			updated_at           = EXCLUDED.updated_at`,
		profile.Account.String(), string(profile.Class),
		zeroNullTime(profile.IdentityVerifiedAt), zeroNullTime(profile.AccreditationExpiry),
		profile.Jurisdiction, profile.OffshoreRestricted, profile.Whitelisted,
		string(profile.Restriction.Kind), zeroNullTime(profile.Restriction.UnlockAt),
		profile.Restriction.DailyLimit, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, account id.AccountID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM compliance_profiles WHERE account = $1`, account.String())
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account, class, identity_verified_at, accreditation_expiry,
		       jurisdiction, offshore_restricted, whitelisted,
		       restriction_kind, restriction_unlock, restriction_limit,
		       created_at, updated_at
		FROM compliance_profiles ORDER BY account`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p          models.Profile
		account    string
		class      string
		verifiedAt sql.NullTime
		expiry     sql.NullTime
		kind       string
		unlockAt   sql.NullTime
	)
	err := row.Scan(&account, &class, &verifiedAt, &expiry,
		&p.Jurisdiction, &p.OffshoreRestricted, &p.Whitelisted,
		&kind, &unlockAt, &p.Restriction.DailyLimit,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(account)
	if err != nil {
		return nil, fmt.Errorf("stored account id %q: %w", account, err)
	}
	p.Account = accountID
	p.Class = models.InvestorClass(class)
	p.Restriction.Kind = models.RestrictionKind(kind)
	if verifiedAt.Valid {
		p.IdentityVerifiedAt = verifiedAt.Time
	}
	if expiry.Valid {
		p.AccreditationExpiry = expiry.Time
	}
	if unlockAt.Valid {
		p.Restriction.UnlockAt = unlockAt.Time
	}
	return &p, nil
}

func zeroNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
