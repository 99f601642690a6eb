package models

import (
	"database/sql"
	"time"
)

// GameLog is one player's statistical line for one game. It is both the
// canonical record produced by normalization and the stored row shape.
// (PlayerID, NBAGameID) is the natural key; re-ingestion of the same game
// overwrites every non-key field.
//
// Counting stats default to zero when absent upstream. Minutes and
// plus/minus stay NULL when absent, since zero is only meaningful for
// those when the player actually appeared.
type GameLog struct {
	ID           int            `db:"id"`
	PlayerID     int            `db:"player_id"`
	NBAGameID    string         `db:"nba_game_id"`
	GameDate     sql.NullTime   `db:"game_date"`
	Season       string         `db:"season"`
	Matchup      string         `db:"matchup"`
	HomeAway     sql.NullString `db:"home_away"`
	TeamAbbr     sql.NullString `db:"team_abbr"`
	OpponentAbbr sql.NullString `db:"opponent_abbr"`
	WinLoss      string         `db:"wl"`

	MinPlayed sql.NullInt32 `db:"min_played"`
	Points    int           `db:"pts"`
	Rebounds  int           `db:"reb"`
	Assists   int           `db:"ast"`
	Steals    int           `db:"stl"`
	Blocks    int           `db:"blk"`
	Turnovers int           `db:"tov"`
	FGM       int           `db:"fgm"`
	FGA       int           `db:"fga"`
	FG3M      int           `db:"fg3m"`
	FG3A      int           `db:"fg3a"`
	FTM       int           `db:"ftm"`
	FTA       int           `db:"fta"`
	OffReb    int           `db:"oreb"`
	DefReb    int           `db:"dreb"`
	Fouls     int           `db:"pf"`
	PlusMinus sql.NullInt32 `db:"plus_minus"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
