// Package ingest sequences the per-player ingestion pipeline:
// resolve identity, fetch the season game log, reconcile rows, recompute
// the season aggregate. Each player's writes commit in one transaction;
// the batch is not atomic across players, so a crash mid-run leaves
// earlier players fully ingested and later ones untouched.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"nbastats/ingestion/internal/aggregate"
	"nbastats/ingestion/internal/directory"
	"nbastats/ingestion/internal/metrics"
	"nbastats/ingestion/internal/models"
	"nbastats/ingestion/internal/repository"
)

// PlayerResolver resolves upstream player ids to canonical identities.
type PlayerResolver interface {
	ResolveInfo(ctx context.Context, nbaPlayerID int) models.PlayerInfo
	Resolve(ctx context.Context, q repository.Querier, nbaPlayerID int) (*models.Player, error)
}

// GameLogFetcher fetches canonical game log records for a player/season.
// It never fails; upstream trouble yields an empty slice.
type GameLogFetcher interface {
	FetchGameLog(ctx context.Context, nbaPlayerID int, season string) []models.GameLog
}

// ErrNoMatch is returned by BuildQueue when a name query matches nothing.
var ErrNoMatch = errors.New("no players matched query")

// Orchestrator drives batch ingestion, one player at a time.
type Orchestrator struct {
	db       *repository.Database
	resolver PlayerResolver
	fetcher  GameLogFetcher
	delay    time.Duration
	dryRun   bool
}

// New creates an Orchestrator. delay is charged before each player's
// identity lookup, on top of the fetcher's own pacing. With dryRun set,
// Run performs resolution and fetching but never touches the database.
func New(db *repository.Database, res PlayerResolver, f GameLogFetcher, delay time.Duration, dryRun bool) *Orchestrator {
	return &Orchestrator{
		db:       db,
		resolver: res,
		fetcher:  f,
		delay:    delay,
		dryRun:   dryRun,
	}
}

// BuildQueue resolves the CLI player selection into a list of upstream
// ids. Explicit id wins over name query; with neither, every directory
// seed is queued (deduplicated by id). A name query matching nothing
// returns ErrNoMatch.
func BuildQueue(dir directory.Directory, nameQuery string, nbaPlayerID int) ([]int, error) {
	if nbaPlayerID != 0 {
		return []int{nbaPlayerID}, nil
	}

	if nameQuery != "" {
		matches := dir.Search(nameQuery)
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoMatch, nameQuery)
		}
		if len(matches) > 1 {
			names := make([]string, 0, len(matches))
			for _, m := range matches {
				names = append(names, m.FullName)
			}
			log.Info().Strs("matches", names).Msg("Multiple matches, using first")
		}
		log.Info().
			Str("name", matches[0].FullName).
			Int("nba_player_id", matches[0].NBAPlayerID).
			Msg("Ingesting player")
		return []int{matches[0].NBAPlayerID}, nil
	}

	seen := make(map[int]bool, len(dir))
	var queue []int
	for _, e := range dir {
		if seen[e.NBAPlayerID] {
			continue
		}
		seen[e.NBAPlayerID] = true
		queue = append(queue, e.NBAPlayerID)
		log.Info().
			Str("name", e.FullName).
			Int("nba_player_id", e.NBAPlayerID).
			Msg("Queued")
	}
	return queue, nil
}

// Run ingests every queued player for the given season. Upstream trouble
// skips the player and continues; a database error aborts the batch with
// the in-flight player's transaction rolled back. Players committed
// before the failure stay ingested.
func (o *Orchestrator) Run(ctx context.Context, nbaPlayerIDs []int, season string) error {
	log.Info().
		Int("players", len(nbaPlayerIDs)).
		Str("season", season).
		Bool("dry_run", o.dryRun).
		Msg("Starting ingestion batch")

	for _, nbaID := range nbaPlayerIDs {
		if err := ctx.Err(); err != nil {
			metrics.RecordBatchRun("cancelled")
			return err
		}

		if !o.pace(ctx) {
			metrics.RecordBatchRun("cancelled")
			return ctx.Err()
		}

		if o.dryRun {
			o.dryRunPlayer(ctx, nbaID, season)
			continue
		}

		if err := o.ingestPlayer(ctx, nbaID, season); err != nil {
			metrics.RecordBatchRun("failed")
			return fmt.Errorf("ingestion aborted at nba_player_id=%d: %w", nbaID, err)
		}
	}

	metrics.RecordBatchRun("success")
	log.Info().Msg("Ingestion batch done")
	return nil
}

// ingestPlayer runs one player's unit of work inside a single
// transaction. Database errors propagate; upstream emptiness is a skip.
func (o *Orchestrator) ingestPlayer(ctx context.Context, nbaPlayerID int, season string) error {
	start := time.Now()

	tx, err := o.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	player, err := o.resolver.Resolve(ctx, tx, nbaPlayerID)
	if err != nil {
		metrics.RecordError("resolver", "db")
		return err
	}
	log.Info().
		Int("player_id", player.ID).
		Int("nba_player_id", nbaPlayerID).
		Str("name", player.FullName).
		Msg("Player resolved")

	records := o.fetcher.FetchGameLog(ctx, nbaPlayerID, season)
	if len(records) == 0 {
		log.Warn().
			Int("player_id", player.ID).
			Str("season", season).
			Msg("No game log rows, skipping player")
		metrics.RecordPlayerSkipped("no_rows")
		// The identity refresh still commits; only log writes are skipped.
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	deduped := repository.Dedupe(records)
	if len(deduped) == 0 {
		// Every fetched row was missing its game id; nothing is
		// reconcilable under the (player, game) natural key.
		log.Warn().
			Int("player_id", player.ID).
			Str("season", season).
			Int("rows_fetched", len(records)).
			Msg("No reconcilable game log rows, skipping player")
		metrics.RecordPlayerSkipped("no_game_ids")
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	written, err := o.db.GameLogs.Upsert(ctx, tx, player.ID, deduped)
	if err != nil {
		metrics.RecordError("reconciler", "db")
		return err
	}

	// The season pull returns the full season log, so the aggregate
	// recompute uses the same deduplicated batch.
	seasonUsed := season
	if deduped[0].Season != "" {
		seasonUsed = deduped[0].Season
	}
	stats := aggregate.Compute(player.ID, seasonUsed, deduped)
	if err := o.db.SeasonStats.Upsert(ctx, tx, &stats); err != nil {
		metrics.RecordError("aggregator", "db")
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.RecordPlayerIngested(written, time.Since(start).Seconds())
	log.Info().
		Int("player_id", player.ID).
		Str("season", seasonUsed).
		Int("rows_written", written).
		Int("games_played", stats.GamesPlayed).
		Msg("Player ingested")

	return nil
}

// dryRunPlayer performs resolution and fetching only.
func (o *Orchestrator) dryRunPlayer(ctx context.Context, nbaPlayerID int, season string) {
	info := o.resolver.ResolveInfo(ctx, nbaPlayerID)
	records := o.fetcher.FetchGameLog(ctx, nbaPlayerID, season)
	deduped := repository.Dedupe(records)
	log.Info().
		Int("nba_player_id", nbaPlayerID).
		Str("name", info.DisplayName).
		Str("season", season).
		Int("rows_fetched", len(records)).
		Int("rows_after_dedupe", len(deduped)).
		Msg("Dry run: skipping all writes")
}

func (o *Orchestrator) pace(ctx context.Context) bool {
	if o.delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(o.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
