//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema creates the tables the durable stores expect. Kept in one place so
// integration tests and local tooling bootstrap identically.
const schema = `
CREATE TABLE IF NOT EXISTS attestors (
    id              TEXT PRIMARY KEY,
    public_key      BYTEA NOT NULL,
    stake           BIGINT NOT NULL,
    forfeited_stake BIGINT NOT NULL DEFAULT 0,
    active          BOOLEAN NOT NULL,
    slashed         BOOLEAN NOT NULL,
    submissions     BIGINT NOT NULL DEFAULT 0,
    evidence_ref    TEXT NOT NULL DEFAULT '',
    registered_at   TIMESTAMPTZ NOT NULL,
    deactivated_at  TIMESTAMPTZ,
    slashed_at      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS compliance_profiles (
    account              UUID PRIMARY KEY,
    class                TEXT NOT NULL,
    identity_verified_at TIMESTAMPTZ,
    accreditation_expiry TIMESTAMPTZ,
    jurisdiction         TEXT NOT NULL DEFAULT '',
    offshore_restricted  BOOLEAN NOT NULL DEFAULT FALSE,
    whitelisted          BOOLEAN NOT NULL DEFAULT FALSE,
    restriction_kind     TEXT NOT NULL DEFAULT 'NONE',
    restriction_unlock   TIMESTAMPTZ,
    restriction_limit    BIGINT NOT NULL DEFAULT 0,
    created_at           TIMESTAMPTZ NOT NULL,
    updated_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS valuations (
    subject      UUID PRIMARY KEY,
    value        BIGINT NOT NULL,
    finalized_at TIMESTAMPTZ NOT NULL,
    anomaly      BOOLEAN NOT NULL DEFAULT FALSE
);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container, applies the schema, and
// registers cleanup on t.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("surety_test"),
		tcpostgres.WithUsername("surety"),
		tcpostgres.WithPassword("surety"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// Truncate clears all rows from the given tables.
// Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
			return err
		}
	}
	return nil
}
