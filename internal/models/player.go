package models

import (
	"fmt"
	"time"
)

// Player represents a canonical player identity.
// NBAPlayerID is the upstream provider id and the natural key for upserts;
// ID is assigned by the database and never changes once assigned.
type Player struct {
	ID          int       `db:"id"`
	NBAPlayerID int       `db:"nba_player_id"`
	FullName    string    `db:"full_name"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// PlayerInfo is the name information resolved from the upstream
// commonplayerinfo endpoint (or a fallback directory entry).
type PlayerInfo struct {
	DisplayName string
	FirstName   string
	LastName    string
}

// PlaceholderName synthesizes a display name for an external id that is
// unknown to both the upstream source and the static directory.
func PlaceholderName(nbaPlayerID int) string {
	return fmt.Sprintf("Player_%d", nbaPlayerID)
}
