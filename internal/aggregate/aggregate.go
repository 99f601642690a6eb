// Package aggregate computes per-season summary statistics from game-log
// records. The aggregate is a pure function of the full current set of a
// player's rows for the season; it is always recomputed from scratch,
// never patched incrementally.
package aggregate

import (
	"database/sql"
	"math"

	"nbastats/ingestion/internal/models"
)

// Compute builds the season aggregate for one player/season from the
// complete set of canonical records for that season. Averages are rounded
// to 2 decimal places; shooting percentages to 3, and NULL when the
// attempt sum is zero.
func Compute(playerID int, season string, records []models.GameLog) models.SeasonStats {
	stats := models.SeasonStats{
		PlayerID:    playerID,
		Season:      season,
		GamesPlayed: len(records),
	}
	if len(records) == 0 {
		return stats
	}

	var pts, reb, ast, stl, blk, tov int
	var fgm, fga, fg3m, fg3a, ftm, fta int
	for _, r := range records {
		pts += r.Points
		reb += r.Rebounds
		ast += r.Assists
		stl += r.Steals
		blk += r.Blocks
		tov += r.Turnovers
		fgm += r.FGM
		fga += r.FGA
		fg3m += r.FG3M
		fg3a += r.FG3A
		ftm += r.FTM
		fta += r.FTA
	}

	n := float64(len(records))
	stats.PointsAvg = round2(float64(pts) / n)
	stats.ReboundsAvg = round2(float64(reb) / n)
	stats.AssistsAvg = round2(float64(ast) / n)
	stats.StealsAvg = round2(float64(stl) / n)
	stats.BlocksAvg = round2(float64(blk) / n)
	stats.TurnoversAvg = round2(float64(tov) / n)

	stats.FGPct = pct(fgm, fga)
	stats.FG3Pct = pct(fg3m, fg3a)
	stats.FTPct = pct(ftm, fta)

	return stats
}

// pct returns makes/attempts rounded to 3 decimal places, NULL when there
// were no attempts.
func pct(makes, attempts int) sql.NullFloat64 {
	if attempts == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{
		Float64: round3(float64(makes) / float64(attempts)),
		Valid:   true,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
