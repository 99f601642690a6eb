// Package analytics is the read-only side over stored game logs:
// over/under hit rates and recent-form summaries. It performs no
// ingestion and never writes.
package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"nbastats/ingestion/internal/repository"
)

// OverUnder reports how often a stat landed at or above a threshold.
type OverUnder struct {
	Stat             string  `json:"stat,omitempty"`
	Threshold        float64 `json:"threshold"`
	TotalGames       int     `json:"total_games"`
	GamesOver        int     `json:"games_over"`
	GamesUnder       int     `json:"games_under"`
	ProbabilityOver  float64 `json:"probability_over"`
	ProbabilityUnder float64 `json:"probability_under"`
}

// OverUnderProbability computes P(stat >= threshold) over per-game
// values in chronological order (oldest first). NULL values (games with
// no recorded stat) count as under. lastN limits the window to the most
// recent N games; lastN <= 0 uses all games.
func OverUnderProbability(values []sql.NullFloat64, threshold float64, lastN int) OverUnder {
	if lastN > 0 && lastN < len(values) {
		values = values[len(values)-lastN:]
	}

	out := OverUnder{Threshold: threshold}
	if len(values) == 0 {
		return out
	}

	for _, v := range values {
		if v.Valid && v.Float64 >= threshold {
			out.GamesOver++
		}
	}
	out.TotalGames = len(values)
	out.GamesUnder = out.TotalGames - out.GamesOver
	out.ProbabilityOver = float64(out.GamesOver) / float64(out.TotalGames)
	out.ProbabilityUnder = float64(out.GamesUnder) / float64(out.TotalGames)
	return out
}

// Summary describes the last N games of one stat.
type Summary struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// LastNSummary computes count/sum/avg/min/max over the last N values,
// skipping NULLs. An empty window yields the zero Summary.
func LastNSummary(values []sql.NullFloat64, lastN int) Summary {
	if lastN > 0 && lastN < len(values) {
		values = values[len(values)-lastN:]
	}

	var out Summary
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if out.Count == 0 || v.Float64 < out.Min {
			out.Min = v.Float64
		}
		if out.Count == 0 || v.Float64 > out.Max {
			out.Max = v.Float64
		}
		out.Sum += v.Float64
		out.Count++
	}
	if out.Count > 0 {
		out.Avg = out.Sum / float64(out.Count)
	}
	return out
}

// OverUnderForPlayer loads a player's stored stat values for a season and
// computes the over/under hit rate. stat is a whitelisted game-log
// column name (pts, reb, ast, ...).
func OverUnderForPlayer(ctx context.Context, db *repository.Database, playerID int, season, stat string, threshold float64, lastN int) (OverUnder, error) {
	values, err := db.GameLogs.ListStatValues(ctx, db.Pool, playerID, season, stat)
	if err != nil {
		return OverUnder{}, fmt.Errorf("failed to load stat values: %w", err)
	}
	out := OverUnderProbability(values, threshold, lastN)
	out.Stat = stat
	return out, nil
}
