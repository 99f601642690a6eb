package ingest

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"nbastats/ingestion/internal/models"
	"nbastats/ingestion/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the write path of the orchestrator. They need a
// PostgreSQL instance with database/schema.sql applied and are skipped
// unless TEST_DATABASE_HOST is set.

func setupTestDB(t *testing.T) (*repository.Database, context.Context) {
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST not set, skipping database integration test")
	}

	ctx := context.Background()

	cfg := repository.Config{
		Host:     host,
		Port:     envOr("TEST_DATABASE_PORT", "5432"),
		Database: envOr("TEST_DATABASE_NAME", "nba_stats_test"),
		User:     envOr("TEST_DATABASE_USER", "nba_user"),
		Password: envOr("TEST_DATABASE_PASSWORD", "nba_password"),
		SSLMode:  "disable",
	}

	db, err := repository.NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *repository.Database) {
	db.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func cleanupPlayer(t *testing.T, db *repository.Database, ctx context.Context, nbaPlayerID int) {
	_, err := db.Pool.Exec(ctx, `DELETE FROM players WHERE nba_player_id = $1`, nbaPlayerID)
	assert.NoError(t, err, "Should clean up test player")
}

// dbResolver resolves through the real player repository, writing on the
// Querier it is handed so the upsert joins the caller's transaction.
// failAfterUpsert simulates a database failure mid-unit-of-work.
type dbResolver struct {
	db              *repository.Database
	name            string
	failAfterUpsert bool
}

func (r *dbResolver) ResolveInfo(ctx context.Context, nbaPlayerID int) models.PlayerInfo {
	return models.PlayerInfo{DisplayName: r.name}
}

func (r *dbResolver) Resolve(ctx context.Context, q repository.Querier, nbaPlayerID int) (*models.Player, error) {
	player := &models.Player{NBAPlayerID: nbaPlayerID, FullName: r.name}
	if err := r.db.Players.Upsert(ctx, q, player); err != nil {
		return nil, err
	}
	if r.failAfterUpsert {
		return nil, errors.New("resolver database failure")
	}
	return player, nil
}

func seasonRecord(gameID string, day, pts int) models.GameLog {
	return models.GameLog{
		NBAGameID: gameID,
		GameDate:  sql.NullTime{Time: time.Date(2025, time.January, day, 0, 0, 0, 0, time.UTC), Valid: true},
		Season:    "2024-25",
		Matchup:   "DEN vs. OKC",
		WinLoss:   "W",
		Points:    pts,
		Rebounds:  10,
		FGM:       8,
		FGA:       16,
	}
}

func TestRun_SkipsPlayerWithoutGameIDs(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer cleanupPlayer(t, db, ctx, 910001)

	// Two rows survive the thin-result check, but none carries a game id,
	// so nothing is reconcilable. The player must be skipped, not crash
	// the batch, and the identity refresh must still commit.
	res := &dbResolver{db: db, name: "No Ids"}
	f := &fakeFetcher{records: []models.GameLog{
		{NBAGameID: "", Season: "2024-25", Points: 20},
		{NBAGameID: "", Season: "2024-25", Points: 25},
	}}
	orch := New(db, res, f, 0, false)

	err := orch.Run(ctx, []int{910001}, "2024-25")
	require.NoError(t, err, "All-empty game ids should skip, not fail")

	player, err := db.Players.GetByNBAPlayerID(ctx, db.Pool, 910001)
	require.NoError(t, err, "Identity refresh should have committed")

	logs, err := db.GameLogs.ListBySeason(ctx, db.Pool, player.ID, "2024-25")
	require.NoError(t, err)
	assert.Empty(t, logs, "No game log rows should be written")

	_, err = db.SeasonStats.GetByPlayerAndSeason(ctx, db.Pool, player.ID, "2024-25")
	assert.Error(t, err, "No aggregate should be written")
}

func TestRun_SkipsPlayerOnEmptyFetch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer cleanupPlayer(t, db, ctx, 910002)

	res := &dbResolver{db: db, name: "Empty Fetch"}
	f := &fakeFetcher{}
	orch := New(db, res, f, 0, false)

	err := orch.Run(ctx, []int{910002}, "2024-25")
	require.NoError(t, err, "Upstream emptiness should skip, not fail")

	player, err := db.Players.GetByNBAPlayerID(ctx, db.Pool, 910002)
	require.NoError(t, err, "Identity refresh should have committed")

	logs, err := db.GameLogs.ListBySeason(ctx, db.Pool, player.ID, "2024-25")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestRun_AbortsAndRollsBackOnDatabaseError(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer cleanupPlayer(t, db, ctx, 910003)

	// The resolver's upsert lands inside the player's transaction, then
	// the unit of work fails; the abort must roll the upsert back.
	res := &dbResolver{db: db, name: "Doomed", failAfterUpsert: true}
	f := &fakeFetcher{records: []models.GameLog{seasonRecord("0022500100", 10, 25)}}
	orch := New(db, res, f, 0, false)

	err := orch.Run(ctx, []int{910003}, "2024-25")
	require.Error(t, err, "A database failure should abort the batch")
	assert.Contains(t, err.Error(), "ingestion aborted")

	_, err = db.Players.GetByNBAPlayerID(ctx, db.Pool, 910003)
	assert.Error(t, err, "The in-flight transaction should have rolled back")
}

func TestRun_RepeatedRunsConverge(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	defer cleanupPlayer(t, db, ctx, 910004)

	res := &dbResolver{db: db, name: "Steady State"}
	f := &fakeFetcher{records: []models.GameLog{
		seasonRecord("0022500101", 10, 25),
		seasonRecord("0022500102", 12, 31),
	}}
	orch := New(db, res, f, 0, false)

	require.NoError(t, orch.Run(ctx, []int{910004}, "2024-25"))

	player, err := db.Players.GetByNBAPlayerID(ctx, db.Pool, 910004)
	require.NoError(t, err)

	first, err := db.SeasonStats.GetByPlayerAndSeason(ctx, db.Pool, player.ID, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, 2, first.GamesPlayed)
	assert.Equal(t, 28.0, first.PointsAvg)

	// Second run over the same upstream data changes nothing observable
	require.NoError(t, orch.Run(ctx, []int{910004}, "2024-25"))

	second, err := db.SeasonStats.GetByPlayerAndSeason(ctx, db.Pool, player.ID, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "Aggregate row identity should be stable")
	assert.Equal(t, first.GamesPlayed, second.GamesPlayed)
	assert.Equal(t, first.PointsAvg, second.PointsAvg)
	assert.Equal(t, first.FGPct, second.FGPct)

	logs, err := db.GameLogs.ListBySeason(ctx, db.Pool, player.ID, "2024-25")
	require.NoError(t, err)
	assert.Len(t, logs, 2, "Re-ingestion should not grow the log table")

	replayed, err := db.Players.GetByNBAPlayerID(ctx, db.Pool, 910004)
	require.NoError(t, err)
	assert.Equal(t, player.ID, replayed.ID, "Internal id should never change")
}
