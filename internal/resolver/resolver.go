// Package resolver maps an upstream provider id to a canonical player
// identity, creating it if absent. Name resolution degrades through a
// chain: cached info, bounded upstream lookup, static directory, and
// finally a placeholder synthesized from the id. Only the identity
// upsert itself can fail.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"nbastats/ingestion/internal/cache"
	"nbastats/ingestion/internal/client"
	"nbastats/ingestion/internal/directory"
	"nbastats/ingestion/internal/fetcher"
	"nbastats/ingestion/internal/models"
	"nbastats/ingestion/internal/normalize"
	"nbastats/ingestion/internal/repository"
)

// InfoClient is the slice of the upstream client the resolver needs.
type InfoClient interface {
	FetchPlayerInfo(ctx context.Context, nbaPlayerID int) (*client.Payload, error)
}

// Resolver resolves upstream ids to canonical player identities.
type Resolver struct {
	client      InfoClient
	cache       *cache.RedisCache
	dir         directory.Directory
	players     *repository.PlayerRepository
	infoTimeout time.Duration
	cacheTTL    time.Duration
}

// New creates a Resolver. cache may be nil; the lookup then always goes
// upstream.
func New(c InfoClient, redisCache *cache.RedisCache, dir directory.Directory, players *repository.PlayerRepository, infoTimeout, cacheTTL time.Duration) *Resolver {
	if infoTimeout <= 0 {
		infoTimeout = 60 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Resolver{
		client:      c,
		cache:       redisCache,
		dir:         dir,
		players:     players,
		infoTimeout: infoTimeout,
		cacheTTL:    cacheTTL,
	}
}

// ResolveInfo resolves name fields for an upstream id without touching
// the database. It never fails: every fallback ends at a placeholder
// name.
func (r *Resolver) ResolveInfo(ctx context.Context, nbaPlayerID int) models.PlayerInfo {
	key := fmt.Sprintf("player_info:%d", nbaPlayerID)

	var info models.PlayerInfo
	if hit, err := r.cache.GetJSON(ctx, key, &info); err == nil && hit && info.DisplayName != "" {
		return info
	}

	if info, ok := r.fetchInfo(ctx, nbaPlayerID); ok {
		if err := r.cache.SetJSON(ctx, key, info, r.cacheTTL); err != nil {
			log.Debug().Err(err).Int("nba_player_id", nbaPlayerID).Msg("Failed to cache player info")
		}
		return info
	}

	if entry, ok := r.dir.ByID(nbaPlayerID); ok {
		return models.PlayerInfo{DisplayName: entry.FullName}
	}

	return models.PlayerInfo{DisplayName: models.PlaceholderName(nbaPlayerID)}
}

// Resolve resolves name fields and performs the identity upsert, keyed on
// the upstream id. Repeated calls for the same id return the same
// internal id; name fields are refreshed every time. A database error is
// returned as-is (fatal for the batch).
func (r *Resolver) Resolve(ctx context.Context, q repository.Querier, nbaPlayerID int) (*models.Player, error) {
	info := r.ResolveInfo(ctx, nbaPlayerID)

	player := &models.Player{
		NBAPlayerID: nbaPlayerID,
		FullName:    info.DisplayName,
		FirstName:   info.FirstName,
		LastName:    info.LastName,
	}
	if err := r.players.Upsert(ctx, q, player); err != nil {
		return nil, fmt.Errorf("failed to resolve player %d: %w", nbaPlayerID, err)
	}

	return player, nil
}

// fetchInfo performs the bounded upstream info call and extracts the name
// fields from whichever result set carries them.
func (r *Resolver) fetchInfo(ctx context.Context, nbaPlayerID int) (models.PlayerInfo, bool) {
	payload, err := fetcher.CallWithDeadline(ctx, r.infoTimeout, func(ctx context.Context) (*client.Payload, error) {
		return r.client.FetchPlayerInfo(ctx, nbaPlayerID)
	})
	if err != nil {
		log.Warn().
			Err(err).
			Int("nba_player_id", nbaPlayerID).
			Msg("Player info lookup failed, falling back to directory")
		return models.PlayerInfo{}, false
	}

	raw, ok := firstInfoRow(payload)
	if !ok {
		return models.PlayerInfo{}, false
	}

	info := models.PlayerInfo{
		DisplayName: normalize.String(raw, "DISPLAY_FIRST_LAST", "Display_First_Last"),
		FirstName:   normalize.String(raw, "FIRST_NAME", "First_Name"),
		LastName:    normalize.String(raw, "LAST_NAME", "Last_Name"),
	}
	if info.DisplayName == "" {
		return models.PlayerInfo{}, false
	}
	return info, true
}

func firstInfoRow(payload *client.Payload) (map[string]any, bool) {
	if payload == nil {
		return nil, false
	}
	sets := payload.ResultSets
	if len(sets) == 0 && payload.ResultSet != nil {
		sets = []client.ResultSet{*payload.ResultSet}
	}
	for _, rs := range sets {
		if !hasDisplayNameHeader(rs.Headers) || len(rs.RowSet) == 0 {
			continue
		}
		raw := make(map[string]any, len(rs.Headers))
		for i, h := range rs.Headers {
			if i < len(rs.RowSet[0]) {
				raw[h] = rs.RowSet[0][i]
			}
		}
		return raw, true
	}
	return nil, false
}

func hasDisplayNameHeader(headers []string) bool {
	for _, h := range headers {
		if h == "DISPLAY_FIRST_LAST" || h == "Display_First_Last" {
			return true
		}
	}
	return false
}
