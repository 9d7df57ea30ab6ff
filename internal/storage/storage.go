// Package storage provides the Postgres-backed persistence layer: a
// pooled connection singleton plus schema management and catalogue
// load/save operations.
package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
	poolErr  error
)

// Config holds database connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MinConns int32
	MaxConns int32
}

// LoadConfigFromEnv loads database configuration from environment variables.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	minConns, _ := strconv.Atoi(getEnv("DB_MIN_CONNS", "2"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))

	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		Database: getEnv("DB_NAME", "transitcore"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		MinConns: int32(minConns),
		MaxConns: int32(maxConns),
	}
}

// GetPool returns the global connection pool, initializing it on first use.
func GetPool() (*pgxpool.Pool, error) {
	poolOnce.Do(func() {
		config := LoadConfigFromEnv()
		pool, poolErr = initPool(config)
	})
	return pool, poolErr
}

// InitPoolWithConfig initializes the pool with a custom config. Useful
// for tests that spin up their own database.
func InitPoolWithConfig(config *Config) (*pgxpool.Pool, error) {
	return initPool(config)
}

func initPool(config *Config) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		config.Host, config.Port, config.Database, config.User, config.Password, config.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("storage: parsing connection string: %w", err)
	}

	poolConfig.MinConns = config.MinConns
	poolConfig.MaxConns = config.MaxConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	if config.Port == 6543 {
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("storage: creating connection pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("storage: pinging database: %w", err)
	}

	return p, nil
}

// Close closes the global connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// HealthCheck verifies the database connection is alive.
func HealthCheck(ctx context.Context) error {
	p, err := GetPool()
	if err != nil {
		return fmt.Errorf("storage: pool not initialized: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("storage: ping failed: %w", err)
	}
	return nil
}

// schema defines the tables backing a catalogue: stops, buses, the
// ordered stop sequence each bus visits, and asymmetric stop-to-stop
// distances.
const schema = `
CREATE TABLE IF NOT EXISTS stop (
	name TEXT PRIMARY KEY,
	lat  DOUBLE PRECISION NOT NULL,
	lon  DOUBLE PRECISION NOT NULL,
	seq  SERIAL
);

CREATE TABLE IF NOT EXISTS bus (
	name         TEXT PRIMARY KEY,
	is_roundtrip BOOLEAN NOT NULL DEFAULT false,
	seq          SERIAL
);

CREATE TABLE IF NOT EXISTS bus_stop (
	bus_name   TEXT NOT NULL REFERENCES bus(name) ON DELETE CASCADE,
	position   INT NOT NULL,
	stop_name  TEXT NOT NULL REFERENCES stop(name) ON DELETE CASCADE,
	PRIMARY KEY (bus_name, position)
);

CREATE TABLE IF NOT EXISTS stop_distance (
	from_stop TEXT NOT NULL REFERENCES stop(name) ON DELETE CASCADE,
	to_stop   TEXT NOT NULL REFERENCES stop(name) ON DELETE CASCADE,
	meters    INT NOT NULL,
	PRIMARY KEY (from_stop, to_stop)
);

CREATE TABLE IF NOT EXISTS import_log (
	id            BIGSERIAL PRIMARY KEY,
	agency_id     TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at  TIMESTAMPTZ,
	status        TEXT NOT NULL DEFAULT 'running',
	stops_count   INT NOT NULL DEFAULT 0,
	buses_count   INT NOT NULL DEFAULT 0,
	error_msg     TEXT NOT NULL DEFAULT ''
);

-- Tables backing the partner/API-key ambient layer (auth, rate
-- limiting, analytics, dashboard). Independent of the catalogue tables
-- above: truncating stop/bus/bus_stop/stop_distance on a catalogue
-- reload never touches these.
CREATE TABLE IF NOT EXISTS partner (
	id                     UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name                   TEXT NOT NULL,
	email                  TEXT NOT NULL UNIQUE,
	company                TEXT,
	status                 TEXT NOT NULL DEFAULT 'active',
	tier                   TEXT NOT NULL DEFAULT 'free',
	rate_limit_per_second  INT NOT NULL DEFAULT 5,
	rate_limit_per_day     INT NOT NULL DEFAULT 10000,
	rate_limit_per_month   INT NOT NULL DEFAULT 200000,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_active_at         TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS tier_config (
	tier     TEXT PRIMARY KEY,
	features JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS api_key (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	partner_id   UUID NOT NULL REFERENCES partner(id) ON DELETE CASCADE,
	key_hash     TEXT NOT NULL UNIQUE,
	key_prefix   TEXT NOT NULL,
	name         TEXT NOT NULL,
	description  TEXT,
	scopes       TEXT[] NOT NULL DEFAULT '{}',
	allowed_ips  TEXT[] NOT NULL DEFAULT '{}',
	is_active    BOOLEAN NOT NULL DEFAULT true,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at   TIMESTAMPTZ,
	last_used_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS usage_log (
	id                BIGSERIAL PRIMARY KEY,
	partner_id        UUID NOT NULL REFERENCES partner(id) ON DELETE CASCADE,
	api_key_id        UUID NOT NULL,
	endpoint          TEXT NOT NULL,
	method            TEXT NOT NULL,
	response_time_ms  INT NOT NULL,
	response_status   INT NOT NULL,
	from_stop         TEXT NOT NULL DEFAULT '',
	to_stop           TEXT NOT NULL DEFAULT '',
	cache_hit         BOOLEAN NOT NULL DEFAULT false,
	ip_address        TEXT NOT NULL DEFAULT '',
	user_agent        TEXT NOT NULL DEFAULT '',
	timestamp         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quota_usage (
	partner_id           UUID NOT NULL REFERENCES partner(id) ON DELETE CASCADE,
	period_type          TEXT NOT NULL,
	period_start         DATE NOT NULL,
	period_end           DATE NOT NULL,
	requests_count       BIGINT NOT NULL DEFAULT 0,
	successful_requests  BIGINT NOT NULL DEFAULT 0,
	failed_requests      BIGINT NOT NULL DEFAULT 0,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (partner_id, period_type, period_start)
);
`

// EnsureSchema creates the catalogue tables if they do not already exist.
func EnsureSchema(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, schema); err != nil {
		return fmt.Errorf("storage: applying schema: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
