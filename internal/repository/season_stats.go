package repository

import (
	"context"
	"fmt"

	"nbastats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// SeasonStatsRepository handles per-season aggregates, keyed on
// (player_id, season).
type SeasonStatsRepository struct {
	db *Database
}

// Upsert writes a season aggregate with full-overwrite semantics.
func (r *SeasonStatsRepository) Upsert(ctx context.Context, q Querier, stats *models.SeasonStats) error {
	query := `
		INSERT INTO player_season_stats (
			player_id, season, games_played,
			pts_avg, reb_avg, ast_avg, stl_avg, blk_avg, tov_avg,
			fg_pct, fg3_pct, ft_pct
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (player_id, season) DO UPDATE SET
			games_played = EXCLUDED.games_played,
			pts_avg = EXCLUDED.pts_avg,
			reb_avg = EXCLUDED.reb_avg,
			ast_avg = EXCLUDED.ast_avg,
			stl_avg = EXCLUDED.stl_avg,
			blk_avg = EXCLUDED.blk_avg,
			tov_avg = EXCLUDED.tov_avg,
			fg_pct = EXCLUDED.fg_pct,
			fg3_pct = EXCLUDED.fg3_pct,
			ft_pct = EXCLUDED.ft_pct,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(
		ctx, query,
		stats.PlayerID, stats.Season, stats.GamesPlayed,
		stats.PointsAvg, stats.ReboundsAvg, stats.AssistsAvg,
		stats.StealsAvg, stats.BlocksAvg, stats.TurnoversAvg,
		stats.FGPct, stats.FG3Pct, stats.FTPct,
	).Scan(&stats.ID, &stats.CreatedAt, &stats.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert season stats: %w", err)
	}

	log.Debug().
		Int("player_id", stats.PlayerID).
		Str("season", stats.Season).
		Int("games_played", stats.GamesPlayed).
		Msg("Season stats upserted")

	return nil
}

// GetByPlayerAndSeason retrieves a season aggregate.
func (r *SeasonStatsRepository) GetByPlayerAndSeason(ctx context.Context, q Querier, playerID int, season string) (*models.SeasonStats, error) {
	query := `
		SELECT id, player_id, season, games_played,
		       pts_avg, reb_avg, ast_avg, stl_avg, blk_avg, tov_avg,
		       fg_pct, fg3_pct, ft_pct, created_at, updated_at
		FROM player_season_stats
		WHERE player_id = $1 AND season = $2
	`

	var stats models.SeasonStats
	err := q.QueryRow(ctx, query, playerID, season).Scan(
		&stats.ID, &stats.PlayerID, &stats.Season, &stats.GamesPlayed,
		&stats.PointsAvg, &stats.ReboundsAvg, &stats.AssistsAvg,
		&stats.StealsAvg, &stats.BlocksAvg, &stats.TurnoversAvg,
		&stats.FGPct, &stats.FG3Pct, &stats.FTPct,
		&stats.CreatedAt, &stats.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("season stats not found: player_id=%d season=%s", playerID, season)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season stats: %w", err)
	}

	return &stats, nil
}
