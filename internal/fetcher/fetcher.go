// Package fetcher wraps the stats.nba.com client with the policies the
// host requires in practice: a minimum delay between calls, a hard
// wall-clock deadline per call, and a single retry when a season pull
// comes back suspiciously thin (0-1 rows usually means rate limiting,
// not a one-game season).
package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"nbastats/ingestion/internal/client"
	"nbastats/ingestion/internal/metrics"
	"nbastats/ingestion/internal/models"
	"nbastats/ingestion/internal/normalize"
)

// GameLogClient is the slice of the upstream client the fetcher needs.
type GameLogClient interface {
	FetchGameLog(ctx context.Context, nbaPlayerID int, season string) (*client.Payload, error)
}

// Config holds fetcher tuning. Zero values get defaults.
type Config struct {
	// CallTimeout is the hard deadline for one upstream call including
	// parsing. Default 90s.
	CallTimeout time.Duration
	// Delay is charged before every upstream call, including the first.
	// Default 600ms.
	Delay time.Duration
	// RetryBackoff is the wait before the single thin-result retry.
	// Default 2s.
	RetryBackoff time.Duration
}

// Fetcher fetches and normalizes per-game records for one player/season.
type Fetcher struct {
	client       GameLogClient
	callTimeout  time.Duration
	delay        time.Duration
	retryBackoff time.Duration
}

// New creates a Fetcher around an upstream client.
func New(c GameLogClient, cfg Config) *Fetcher {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 90 * time.Second
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 2 * time.Second
	}
	return &Fetcher{
		client:       c,
		callTimeout:  cfg.CallTimeout,
		delay:        cfg.Delay,
		retryBackoff: cfg.RetryBackoff,
	}
}

// ErrDeadline is returned by CallWithDeadline when the upstream call was
// abandoned.
var ErrDeadline = errors.New("upstream call abandoned after deadline")

// CallWithDeadline runs fn on its own goroutine and gives up waiting when
// the deadline elapses. The upstream offers no cooperative cancellation
// worth trusting, so this is fire-and-abandon: an abandoned call may
// still run to completion in the background; its result is discarded via
// the buffered channel and it must not touch shared state.
func CallWithDeadline(ctx context.Context, timeout time.Duration, fn func(context.Context) (*client.Payload, error)) (*client.Payload, error) {
	type result struct {
		payload *client.Payload
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := fn(ctx)
		ch <- result{p, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.payload, r.err
	case <-timer.C:
		log.Warn().Dur("timeout", timeout).Msg("Upstream call timed out, abandoning")
		return nil, ErrDeadline
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FetchGameLog fetches the full regular-season game log for one player
// and returns canonical records. Upstream transport, parse, and timeout
// failures are logged and yield an empty slice; the batch never aborts
// on upstream flakiness.
func (f *Fetcher) FetchGameLog(ctx context.Context, nbaPlayerID int, season string) []models.GameLog {
	// At most one retry, triggered by a thin (0-1 row) result. The retry
	// accepts whatever it gets; a genuine one-game season passes through
	// on the second attempt.
	for attempt := 0; ; attempt++ {
		if attempt == 0 {
			if !f.pace(ctx, f.delay) {
				return nil
			}
		} else {
			log.Info().
				Int("nba_player_id", nbaPlayerID).
				Str("season", season).
				Msg("Thin game log result, retrying once")
			metrics.RecordFetchRetry()
			if !f.pace(ctx, f.retryBackoff) {
				return nil
			}
		}

		records := f.fetchOnce(ctx, nbaPlayerID, season)

		if len(records) <= 1 && attempt == 0 {
			continue
		}

		log.Info().
			Int("nba_player_id", nbaPlayerID).
			Str("season", season).
			Int("rows", len(records)).
			Msg("Fetched game log rows")
		return records
	}
}

// fetchOnce performs a single bounded upstream call and normalizes the
// best result set.
func (f *Fetcher) fetchOnce(ctx context.Context, nbaPlayerID int, season string) []models.GameLog {
	payload, err := CallWithDeadline(ctx, f.callTimeout, func(ctx context.Context) (*client.Payload, error) {
		return f.client.FetchGameLog(ctx, nbaPlayerID, season)
	})
	if err != nil {
		log.Warn().
			Err(err).
			Int("nba_player_id", nbaPlayerID).
			Str("season", season).
			Msg("Game log fetch failed")
		return nil
	}

	rs := bestResultSet(payload)
	if rs == nil {
		log.Warn().
			Int("nba_player_id", nbaPlayerID).
			Str("season", season).
			Msg("No usable game log result set in payload")
		return nil
	}

	records := make([]models.GameLog, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		raw := zipRow(rs.Headers, row)
		records = append(records, normalize.Record(raw, season))
	}
	return records
}

// bestResultSet picks, among all result sets carrying a recognizable
// game-id header, the one with the most rows. When the plural shape
// yields nothing it falls back to the singular "resultSet" shape of the
// same response.
func bestResultSet(payload *client.Payload) *client.ResultSet {
	if payload == nil {
		return nil
	}
	var best *client.ResultSet
	for i := range payload.ResultSets {
		rs := &payload.ResultSets[i]
		if !hasGameIDHeader(rs.Headers) {
			continue
		}
		if best == nil || len(rs.RowSet) > len(best.RowSet) {
			best = rs
		}
	}
	if best != nil {
		return best
	}
	if payload.ResultSet != nil && hasGameIDHeader(payload.ResultSet.Headers) {
		return payload.ResultSet
	}
	return nil
}

// The stats host spells the game id header both ways depending on the
// result set.
func hasGameIDHeader(headers []string) bool {
	for _, h := range headers {
		if h == "GAME_ID" || h == "Game_ID" {
			return true
		}
	}
	return false
}

func zipRow(headers []string, row []any) map[string]any {
	raw := make(map[string]any, len(headers))
	for i, h := range headers {
		if i < len(row) {
			raw[h] = row[i]
		}
	}
	return raw
}

// pace waits d, respecting context cancellation. Returns false when the
// context ended first.
func (f *Fetcher) pace(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
