// Package normalize reconciles raw stats.nba.com rows into canonical
// game-log records. The upstream varies field naming between result sets
// (e.g. "GAME_ID" vs "Game_ID") and encodes seasons as 5-digit codes
// ("22025" for 2025-26), so every transform here is defensive: malformed
// individual values degrade to defaults, never abort the record.
package normalize

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nbastats/ingestion/internal/models"
)

// Field returns the first present, non-empty value among the given keys.
// Handles the upstream returning the same logical field under different
// capitalizations across result sets.
func Field(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return nil
}

// String returns the first present value among keys, rendered as a string.
func String(raw map[string]any, keys ...string) string {
	return asString(Field(raw, keys...))
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; ids like 0022500001 stay intact
		// only when the upstream sends them as strings, but guard anyway.
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Int coerces an upstream value to an integer, falling back to def for
// nil, empty string, or anything that fails numeric coercion. The
// upstream sends numerics as JSON numbers or as strings depending on the
// result set, and minutes can arrive fractional.
func Int(v any, def int) int {
	n, ok := intValue(v)
	if !ok {
		return def
	}
	return n
}

// NullInt coerces like Int but keeps "absent" as NULL, for fields where
// zero is only meaningful when actually present (minutes, plus/minus).
func NullInt(v any) sql.NullInt32 {
	n, ok := intValue(v)
	if !ok {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case float32:
		return int(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

// ParseMatchup splits upstream matchup text like "LAL vs. BOS" (home) or
// "LAL @ BOS" (away) into team, opponent and a home/away flag. Malformed
// or missing text yields three NULLs rather than failing the record.
func ParseMatchup(matchup string) (team, opponent, homeAway sql.NullString) {
	parts := strings.Fields(strings.TrimSpace(matchup))
	if len(parts) < 3 {
		return sql.NullString{}, sql.NullString{}, sql.NullString{}
	}
	team = sql.NullString{String: parts[0], Valid: true}
	opponent = sql.NullString{String: parts[len(parts)-1], Valid: true}
	flag := "A"
	if strings.Contains(matchup, "vs.") {
		flag = "H"
	}
	homeAway = sql.NullString{String: flag, Valid: true}
	return team, opponent, homeAway
}

// SeasonFromID decodes the upstream 5-digit season code (digits 2-5 are
// the starting year, e.g. "22025" -> "2025-26") into the canonical
// "YYYY-YY" label. Codes that don't match the shape are returned as-is.
func SeasonFromID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) >= 5 && allDigits(raw) {
		startYear, err := strconv.Atoi(raw[1:5])
		if err == nil {
			return SeasonLabel(startYear)
		}
	}
	return raw
}

// SeasonLabel formats a starting year as the canonical "YYYY-YY" label.
func SeasonLabel(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// CurrentSeason returns the season label in effect at the given time.
// October through June map to the season that started that October;
// July through September map to the season that started the previous
// October.
func CurrentSeason(now time.Time) string {
	startYear := now.Year()
	if now.Month() < time.October {
		startYear--
	}
	return SeasonLabel(startYear)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// gameDateLayouts covers the formats the stats host is known to emit.
var gameDateLayouts = []string{
	"Jan 2, 2006",
	"Jan 02, 2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
}

// ParseGameDate parses an upstream game date ("APR 09, 2025" or ISO
// forms). Unparseable input degrades to NULL.
func ParseGameDate(v any) sql.NullTime {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return sql.NullTime{}
	}
	// Month abbreviations arrive uppercase; Go layouts want "Apr".
	if len(s) >= 3 && !strings.ContainsAny(s[:3], "0123456789") {
		s = strings.ToUpper(s[:1]) + strings.ToLower(s[1:2]) + strings.ToLower(s[2:3]) + s[3:]
	}
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	return sql.NullTime{}
}

// Record builds a canonical game-log record from one raw upstream row.
// fallbackSeason is the label requested by the caller; an explicit SEASON
// value on the row wins, then a decodable SEASON_ID, then the fallback.
// PlayerID is left unset; the reconciler owns that binding.
func Record(raw map[string]any, fallbackSeason string) models.GameLog {
	season := String(raw, "SEASON")
	if season == "" {
		season = SeasonFromID(String(raw, "SEASON_ID", "Season_ID"))
	}
	if season == "" {
		season = fallbackSeason
	}

	matchup := String(raw, "MATCHUP", "Matchup")
	team, opponent, homeAway := ParseMatchup(matchup)

	wl := String(raw, "WL")
	if len(wl) > 1 {
		wl = wl[:1]
	}

	return models.GameLog{
		NBAGameID:    String(raw, "GAME_ID", "Game_ID"),
		GameDate:     ParseGameDate(Field(raw, "GAME_DATE", "Game_Date")),
		Season:       season,
		Matchup:      matchup,
		HomeAway:     homeAway,
		TeamAbbr:     team,
		OpponentAbbr: opponent,
		WinLoss:      wl,
		MinPlayed:    NullInt(Field(raw, "MIN", "Min")),
		Points:       Int(Field(raw, "PTS"), 0),
		Rebounds:     Int(Field(raw, "REB"), 0),
		Assists:      Int(Field(raw, "AST"), 0),
		Steals:       Int(Field(raw, "STL"), 0),
		Blocks:       Int(Field(raw, "BLK"), 0),
		Turnovers:    Int(Field(raw, "TOV"), 0),
		FGM:          Int(Field(raw, "FGM"), 0),
		FGA:          Int(Field(raw, "FGA"), 0),
		FG3M:         Int(Field(raw, "FG3M"), 0),
		FG3A:         Int(Field(raw, "FG3A"), 0),
		FTM:          Int(Field(raw, "FTM"), 0),
		FTA:          Int(Field(raw, "FTA"), 0),
		OffReb:       Int(Field(raw, "OREB"), 0),
		DefReb:       Int(Field(raw, "DREB"), 0),
		Fouls:        Int(Field(raw, "PF"), 0),
		PlusMinus:    NullInt(Field(raw, "PLUS_MINUS", "Plus_Minus")),
	}
}
