// Package config loads service configuration from the environment so main
// stays lean. Oracle and compliance parameters are policy knobs: they have
// development defaults but are expected to be set explicitly in production.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "surety/pkg/platform/strings"
)

// Config is the full service configuration.
type Config struct {
	Addr          string
	JWTSigningKey string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Oracle   OracleConfig
	Gate     GateConfig
}

// PostgresConfig holds the durable-store connection settings.
// An empty DSN selects the in-memory stores.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds the volume-counter store settings.
// An empty URL selects the in-memory counter store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit publisher settings.
// No brokers means audit events stay on the in-process trail only.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// OracleConfig carries the attestation consensus parameters.
type OracleConfig struct {
	// MinStake is the minimum stake (minor units) to register an attestor.
	MinStake int64
	// QuorumThreshold is the count of agreeing votes that finalizes a round.
	QuorumThreshold int
	// ToleranceBps is the agreement band width in basis points: votes agree
	// when their spread is within this fraction of the band's lowest value.
	ToleranceBps int64
	// RoundTTL is how long a round accepts votes before expiring unquorate.
	RoundTTL time.Duration
	// MaxValuationAge is the staleness cutoff for finalized valuations.
	MaxValuationAge time.Duration
	// MaxDropBps is the largest single-round valuation decrease (basis
	// points of the prior value) that does not raise an anomaly.
	MaxDropBps int64
}

// GateConfig carries the transfer-authorization policy parameters.
type GateConfig struct {
	// IdentityValidity is how long an identity verification remains valid.
	IdentityValidity time.Duration
	// ProtectedJurisdiction is the domestic jurisdiction shielded from
	// offshore inflows during the offshore restriction window.
	ProtectedJurisdiction string
	// OffshoreWindow is how long after identity verification an
	// offshore-restricted holder may not transfer into the protected
	// jurisdiction.
	OffshoreWindow time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          getString("SURETY_ADDR", ":8080"),
		JWTSigningKey: getString("SURETY_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Postgres: PostgresConfig{
			DSN:             os.Getenv("SURETY_POSTGRES_DSN"),
			MaxOpenConns:    getInt("SURETY_POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("SURETY_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("SURETY_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("SURETY_REDIS_URL"),
			PoolSize:     getInt("SURETY_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("SURETY_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("SURETY_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("SURETY_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("SURETY_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     getStrings("SURETY_KAFKA_BROKERS"),
			TopicPrefix: getString("SURETY_KAFKA_TOPIC_PREFIX", "surety.audit"),
		},
		Oracle: OracleConfig{
			MinStake:        getInt64("SURETY_ORACLE_MIN_STAKE", 1_000_000),
			QuorumThreshold: getInt("SURETY_ORACLE_QUORUM_THRESHOLD", 3),
			ToleranceBps:    getInt64("SURETY_ORACLE_TOLERANCE_BPS", 100),
			RoundTTL:        getDuration("SURETY_ORACLE_ROUND_TTL", time.Hour),
			MaxValuationAge: getDuration("SURETY_ORACLE_MAX_VALUATION_AGE", 24*time.Hour),
			MaxDropBps:      getInt64("SURETY_ORACLE_MAX_DROP_BPS", 2_000),
		},
		Gate: GateConfig{
			IdentityValidity:      getDuration("SURETY_GATE_IDENTITY_VALIDITY", 365*24*time.Hour),
			ProtectedJurisdiction: getString("SURETY_GATE_PROTECTED_JURISDICTION", "US"),
			OffshoreWindow:        getDuration("SURETY_GATE_OFFSHORE_WINDOW", 40*24*time.Hour),
		},
	}
}

// Validate rejects parameter combinations that would make the oracle
// unusable. Called once at startup.
func (c Config) Validate() error {
	if c.Oracle.QuorumThreshold < 1 {
		return fmt.Errorf("quorum threshold must be at least 1, got %d", c.Oracle.QuorumThreshold)
	}
	if c.Oracle.ToleranceBps < 0 {
		return fmt.Errorf("tolerance must not be negative, got %d", c.Oracle.ToleranceBps)
	}
	if c.Oracle.MinStake <= 0 {
		return fmt.Errorf("minimum stake must be positive, got %d", c.Oracle.MinStake)
	}
	if c.Oracle.RoundTTL <= 0 || c.Oracle.MaxValuationAge <= 0 {
		return fmt.Errorf("round TTL and max valuation age must be positive")
	}
	return nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getStrings(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
