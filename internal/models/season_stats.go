package models

import (
	"database/sql"
	"time"
)

// SeasonStats is a player's per-season aggregate, keyed on
// (player_id, season). It is a materialized view over player_game_logs:
// always recomputed from the full current set of that player's rows for
// the season, never patched incrementally.
type SeasonStats struct {
	ID          int    `db:"id"`
	PlayerID    int    `db:"player_id"`
	Season      string `db:"season"`
	GamesPlayed int    `db:"games_played"`

	PointsAvg    float64 `db:"pts_avg"`
	ReboundsAvg  float64 `db:"reb_avg"`
	AssistsAvg   float64 `db:"ast_avg"`
	StealsAvg    float64 `db:"stl_avg"`
	BlocksAvg    float64 `db:"blk_avg"`
	TurnoversAvg float64 `db:"tov_avg"`

	// Shooting percentages are NULL when the attempt sum is zero.
	FGPct  sql.NullFloat64 `db:"fg_pct"`
	FG3Pct sql.NullFloat64 `db:"fg3_pct"`
	FTPct  sql.NullFloat64 `db:"ft_pct"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
