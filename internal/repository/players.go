package repository

import (
	"context"
	"fmt"

	"nbastats/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PlayerRepository handles player identity database operations.
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or updates a player keyed on nba_player_id and fills in
// the database-assigned id. Name fields are refreshed on every call; the
// internal id never changes once assigned.
func (r *PlayerRepository) Upsert(ctx context.Context, q Querier, player *models.Player) error {
	query := `
		INSERT INTO players (nba_player_id, full_name, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (nba_player_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(
		ctx, query,
		player.NBAPlayerID, player.FullName, player.FirstName, player.LastName,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	log.Debug().
		Int("id", player.ID).
		Int("nba_player_id", player.NBAPlayerID).
		Str("name", player.FullName).
		Msg("Player upserted")

	return nil
}

// GetByNBAPlayerID retrieves a player by its upstream provider id.
func (r *PlayerRepository) GetByNBAPlayerID(ctx context.Context, q Querier, nbaPlayerID int) (*models.Player, error) {
	query := `
		SELECT id, nba_player_id, full_name, first_name, last_name, created_at, updated_at
		FROM players
		WHERE nba_player_id = $1
	`

	var player models.Player
	err := q.QueryRow(ctx, query, nbaPlayerID).Scan(
		&player.ID, &player.NBAPlayerID, &player.FullName,
		&player.FirstName, &player.LastName,
		&player.CreatedAt, &player.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("player not found: nba_player_id=%d", nbaPlayerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &player, nil
}
