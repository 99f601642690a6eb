package repository

import (
	"context"
	"database/sql"
	"fmt"

	"nbastats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameLogRepository handles per-game log rows, keyed on
// (player_id, nba_game_id).
type GameLogRepository struct {
	db *Database
}

// Dedupe removes duplicate external game ids from a write batch, last
// occurrence winning, and drops records with an empty game id entirely.
// An empty id would collapse every game for the player into a single row
// under the (player, "") natural key, so those records are never written.
func Dedupe(records []models.GameLog) []models.GameLog {
	out := make([]models.GameLog, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		if rec.NBAGameID == "" {
			log.Debug().
				Str("matchup", rec.Matchup).
				Msg("Dropping game log record with empty game id")
			continue
		}
		if i, seen := index[rec.NBAGameID]; seen {
			out[i] = rec
			continue
		}
		index[rec.NBAGameID] = len(out)
		out = append(out, rec)
	}
	return out
}

const upsertGameLogSQL = `
	INSERT INTO player_game_logs (
		player_id, nba_game_id, game_date, season, matchup, home_away,
		team_abbr, opponent_abbr, wl, min_played, pts, reb, ast, stl, blk, tov,
		fgm, fga, fg3m, fg3a, ftm, fta, oreb, dreb, pf, plus_minus
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
	          $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	ON CONFLICT (player_id, nba_game_id) DO UPDATE SET
		game_date = EXCLUDED.game_date,
		season = EXCLUDED.season,
		matchup = EXCLUDED.matchup,
		home_away = EXCLUDED.home_away,
		team_abbr = EXCLUDED.team_abbr,
		opponent_abbr = EXCLUDED.opponent_abbr,
		wl = EXCLUDED.wl,
		min_played = EXCLUDED.min_played,
		pts = EXCLUDED.pts,
		reb = EXCLUDED.reb,
		ast = EXCLUDED.ast,
		stl = EXCLUDED.stl,
		blk = EXCLUDED.blk,
		tov = EXCLUDED.tov,
		fgm = EXCLUDED.fgm,
		fga = EXCLUDED.fga,
		fg3m = EXCLUDED.fg3m,
		fg3a = EXCLUDED.fg3a,
		ftm = EXCLUDED.ftm,
		fta = EXCLUDED.fta,
		oreb = EXCLUDED.oreb,
		dreb = EXCLUDED.dreb,
		pf = EXCLUDED.pf,
		plus_minus = EXCLUDED.plus_minus,
		updated_at = NOW()
`

// Upsert writes a batch of game log rows for one player. The batch is
// deduplicated first; every non-key field of an existing row is
// overwritten. Returns the number of distinct rows written.
func (r *GameLogRepository) Upsert(ctx context.Context, q Querier, playerID int, records []models.GameLog) (int, error) {
	records = Dedupe(records)
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertGameLogSQL,
			playerID, rec.NBAGameID, rec.GameDate, rec.Season, rec.Matchup, rec.HomeAway,
			rec.TeamAbbr, rec.OpponentAbbr, rec.WinLoss, rec.MinPlayed,
			rec.Points, rec.Rebounds, rec.Assists, rec.Steals, rec.Blocks, rec.Turnovers,
			rec.FGM, rec.FGA, rec.FG3M, rec.FG3A, rec.FTM, rec.FTA,
			rec.OffReb, rec.DefReb, rec.Fouls, rec.PlusMinus,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range records {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("failed to upsert game log row %d (game_id=%s): %w",
				i, records[i].NBAGameID, err)
		}
	}

	log.Debug().
		Int("player_id", playerID).
		Int("rows", len(records)).
		Msg("Game log rows upserted")

	return len(records), nil
}

const selectGameLogColumns = `
	SELECT id, player_id, nba_game_id, game_date, season, matchup, home_away,
	       team_abbr, opponent_abbr, wl, min_played, pts, reb, ast, stl, blk, tov,
	       fgm, fga, fg3m, fg3a, ftm, fta, oreb, dreb, pf, plus_minus,
	       created_at, updated_at
	FROM player_game_logs
`

// ListBySeason retrieves a player's stored rows for a season in
// chronological order.
func (r *GameLogRepository) ListBySeason(ctx context.Context, q Querier, playerID int, season string) ([]*models.GameLog, error) {
	query := selectGameLogColumns + `
		WHERE player_id = $1 AND season = $2
		ORDER BY game_date, nba_game_id
	`

	rows, err := q.Query(ctx, query, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list game logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.GameLog
	for rows.Next() {
		var gl models.GameLog
		err := rows.Scan(
			&gl.ID, &gl.PlayerID, &gl.NBAGameID, &gl.GameDate, &gl.Season,
			&gl.Matchup, &gl.HomeAway, &gl.TeamAbbr, &gl.OpponentAbbr, &gl.WinLoss,
			&gl.MinPlayed, &gl.Points, &gl.Rebounds, &gl.Assists, &gl.Steals,
			&gl.Blocks, &gl.Turnovers, &gl.FGM, &gl.FGA, &gl.FG3M, &gl.FG3A,
			&gl.FTM, &gl.FTA, &gl.OffReb, &gl.DefReb, &gl.Fouls, &gl.PlusMinus,
			&gl.CreatedAt, &gl.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game log: %w", err)
		}
		logs = append(logs, &gl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game logs: %w", err)
	}

	return logs, nil
}

// statColumns whitelists the columns analytics may read; the stat name
// reaches SQL as an identifier, so anything else is rejected.
var statColumns = map[string]bool{
	"min_played": true,
	"pts":        true,
	"reb":        true,
	"ast":        true,
	"stl":        true,
	"blk":        true,
	"tov":        true,
	"fgm":        true,
	"fga":        true,
	"fg3m":       true,
	"fg3a":       true,
	"ftm":        true,
	"fta":        true,
	"oreb":       true,
	"dreb":       true,
	"pf":         true,
	"plus_minus": true,
}

// ListStatValues returns one stat column for a player/season in
// chronological order (oldest first), for the analytics read side.
func (r *GameLogRepository) ListStatValues(ctx context.Context, q Querier, playerID int, season, stat string) ([]sql.NullFloat64, error) {
	if !statColumns[stat] {
		return nil, fmt.Errorf("unknown stat column: %s", stat)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM player_game_logs
		WHERE player_id = $1 AND season = $2
		ORDER BY game_date, nba_game_id
	`, stat)

	rows, err := q.Query(ctx, query, playerID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list stat values: %w", err)
	}
	defer rows.Close()

	var values []sql.NullFloat64
	for rows.Next() {
		var v sql.NullFloat64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan stat value: %w", err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stat values: %w", err)
	}

	return values, nil
}
