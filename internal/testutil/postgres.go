// Package testutil provides integration-test helpers for containerised
// PostgreSQL instances.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/horde/internal/config"
	"github.com/cory-johannsen/horde/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplyMigrations runs the schema creation SQL directly for tests.
// This avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: The accounts, creatures, and events tables exist in
// the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			id            BIGSERIAL    PRIMARY KEY,
			username      VARCHAR(64)  NOT NULL UNIQUE,
			password_hash TEXT         NOT NULL,
			address       VARCHAR(64)  NOT NULL UNIQUE,
			role          VARCHAR(16)  NOT NULL DEFAULT 'player',
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS creatures (
			id         BIGINT       PRIMARY KEY,
			name       TEXT         NOT NULL,
			dna        BIGINT       NOT NULL,
			level      INTEGER      NOT NULL,
			ready_time TIMESTAMPTZ  NOT NULL,
			win_count  INTEGER      NOT NULL DEFAULT 0,
			loss_count INTEGER      NOT NULL DEFAULT 0,
			owner      VARCHAR(64)  NOT NULL,
			approved   VARCHAR(64)  NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_creatures_owner ON creatures (owner);
		CREATE TABLE IF NOT EXISTS events (
			seq         BIGINT       PRIMARY KEY,
			kind        VARCHAR(32)  NOT NULL,
			at          TIMESTAMPTZ  NOT NULL,
			creature_id BIGINT       NOT NULL DEFAULT 0,
			owner       VARCHAR(64)  NOT NULL DEFAULT '',
			from_addr   VARCHAR(64)  NOT NULL DEFAULT '',
			to_addr     VARCHAR(64)  NOT NULL DEFAULT '',
			approved    VARCHAR(64)  NOT NULL DEFAULT '',
			name        TEXT         NOT NULL DEFAULT '',
			dna         BIGINT       NOT NULL DEFAULT 0,
			attacker_id BIGINT       NOT NULL DEFAULT 0,
			defender_id BIGINT       NOT NULL DEFAULT 0,
			won         BOOLEAN      NOT NULL DEFAULT FALSE,
			roll        BIGINT       NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_events_kind ON events (kind);
	`

	_, err := pc.RawPool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}

// NewPool starts a dedicated PostgreSQL container with the schema
// applied and returns its raw pool. Cleanup is registered on t.
//
// Precondition: Docker must be available.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
}
