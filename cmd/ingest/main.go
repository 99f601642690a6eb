// Command ingest fetches NBA players and their per-game logs into
// PostgreSQL for one season. Idempotent: safe to re-run, upserts by
// nba_player_id and (player_id, nba_game_id).
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nbastats/ingestion/internal/cache"
	"nbastats/ingestion/internal/client"
	"nbastats/ingestion/internal/config"
	"nbastats/ingestion/internal/directory"
	"nbastats/ingestion/internal/fetcher"
	"nbastats/ingestion/internal/ingest"
	"nbastats/ingestion/internal/normalize"
	"nbastats/ingestion/internal/repository"
	"nbastats/ingestion/internal/resolver"
)

func main() {
	player := flag.String("player", "", "Search and ingest by player name (e.g. 'LeBron')")
	playerID := flag.Int("player-id", 0, "Ingest by NBA player ID (e.g. 2544 for LeBron)")
	season := flag.String("season", "", "Season, e.g. 2024-25 (default: current season)")
	delay := flag.Duration("delay", 0, "Delay between API calls (default: REQUEST_DELAY)")
	dryRun := flag.Bool("dry-run", false, "Resolve and fetch but do not write to the database")
	flag.Parse()

	setupLogger()

	cfg := config.MustLoad()

	if *season == "" {
		*season = normalize.CurrentSeason(time.Now())
	}
	if *delay <= 0 {
		*delay = cfg.RequestDelay
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	queue, err := ingest.BuildQueue(directory.Default(), *player, *playerID)
	if err != nil {
		if errors.Is(err, ingest.ErrNoMatch) {
			log.Error().Str("query", *player).Msg("No players found for query")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to build ingestion queue")
	}

	nbaClient := client.NewClient(cfg.NBAStatsBaseURL, cfg.NBAStatsTimeout)

	var db *repository.Database
	if !*dryRun {
		if err := cfg.ValidateDatabase(); err != nil {
			log.Fatal().Err(err).Msg("Invalid database configuration")
		}
		db, err = repository.NewDatabase(ctx, repository.Config{
			Host:     cfg.DatabaseHost,
			Port:     strconv.Itoa(cfg.DatabasePort),
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	var players *repository.PlayerRepository
	if db != nil {
		players = db.Players
	}
	res := resolver.New(nbaClient, redisCache, directory.Default(), players,
		cfg.InfoCallTimeout, cfg.PlayerInfoCacheTTL)

	f := fetcher.New(nbaClient, fetcher.Config{
		CallTimeout: cfg.FetchCallTimeout,
		Delay:       *delay,
	})

	orch := ingest.New(db, res, f, *delay, *dryRun)
	if err := orch.Run(ctx, queue, *season); err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	log.Info().Msg("Ingestion done")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}
