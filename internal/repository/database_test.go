package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations. They need a PostgreSQL
// instance with database/schema.sql applied and are skipped unless
// TEST_DATABASE_HOST is set, e.g.:
//
//	TEST_DATABASE_HOST=localhost go test ./internal/repository/...

func setupTestDB(t *testing.T) (*Database, context.Context) {
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST not set, skipping database integration test")
	}

	ctx := context.Background()

	cfg := Config{
		Host:     host,
		Port:     envOr("TEST_DATABASE_PORT", "5432"),
		Database: envOr("TEST_DATABASE_NAME", "nba_stats_test"),
		User:     envOr("TEST_DATABASE_USER", "nba_user"),
		Password: envOr("TEST_DATABASE_PASSWORD", "nba_password"),
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// cleanupPlayer removes a test player and its dependent rows.
func cleanupPlayer(t *testing.T, db *Database, ctx context.Context, nbaPlayerID int) {
	_, err := db.Pool.Exec(ctx, `DELETE FROM players WHERE nba_player_id = $1`, nbaPlayerID)
	assert.NoError(t, err, "Should clean up test player")
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}
