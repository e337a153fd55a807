// Package main is the entry point for the board game bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"board-game-bot/internal/bot"
	"board-game-bot/internal/config"
	"board-game-bot/internal/game"
	"board-game-bot/internal/game/ai"
	"board-game-bot/internal/game/gomoku"
	"board-game-bot/internal/game/roulette"
	"board-game-bot/internal/game/tictactoe"
	"board-game-bot/internal/pkg/db"
	"board-game-bot/internal/pkg/lock"
	"board-game-bot/internal/repository"
	"board-game-bot/internal/service"
	"board-game-bot/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	recordRepo := repository.NewRecordRepository(dbPool.Pool)
	statsRepo := repository.NewStatsRepository(dbPool.Pool)

	recordService := service.NewRecordService(recordRepo, statsRepo)
	statsService := service.NewStatsService(statsRepo)

	gameRegistry := game.NewRegistry()
	if err := gameRegistry.Register(game.TypeTicTacToe, tictactoe.Factory()); err != nil {
		log.Fatal().Err(err).Msg("Failed to register tic-tac-toe")
	}
	if err := gameRegistry.Register(game.TypeGomoku, gomoku.Factory()); err != nil {
		log.Fatal().Err(err).Msg("Failed to register gomoku")
	}
	log.Info().Strs("types", typeNames(gameRegistry.Types())).Msg("Games registered")

	manager := session.NewManager(gameRegistry)
	matchmaker := session.NewMatchmaker()

	deps := &bot.Dependencies{
		Config:        cfg,
		Manager:       manager,
		Matchmaker:    matchmaker,
		GameRegistry:  gameRegistry,
		AIEngine:      ai.New(),
		RecordService: recordService,
		StatsService:  statsService,
		RouletteStore: roulette.NewStore(),
		PlayerLock:    lock.NewPlayerLock(),
	}

	telegramBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	scheduler, err := startCleanupScheduler(cfg, manager)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start cleanup scheduler")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	if err := scheduler.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("Scheduler shutdown failed")
	}
	if n := manager.CleanupHostGames(telegramBot.HostID()); n > 0 {
		log.Info().Int("count", n).Msg("Dropped sessions on shutdown")
	}
	if n := manager.CleanupAllGames(); n > 0 {
		log.Info().Int("count", n).Msg("Dropped remaining sessions on shutdown")
	}
	log.Info().Msg("Bot stopped gracefully")
}

// startCleanupScheduler runs the stale session sweep on a fixed interval.
func startCleanupScheduler(cfg *config.Config, manager *session.Manager) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Games.Board.CleanupInterval),
		gocron.NewTask(func() {
			removed := manager.CleanupTimeoutGames(cfg.Games.Board.MoveTimeout)
			if len(removed) > 0 {
				log.Info().
					Int("count", len(removed)).
					Strs("game_ids", removed).
					Msg("Swept timed out sessions")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	log.Info().
		Dur("interval", cfg.Games.Board.CleanupInterval).
		Dur("move_timeout", cfg.Games.Board.MoveTimeout).
		Msg("Cleanup scheduler started")
	return scheduler, nil
}

func typeNames(types []game.Type) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return names
}

// runMigrations creates the schema. Idempotent; safe to run on every boot.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS game_records (
			id BIGSERIAL PRIMARY KEY,
			game_type VARCHAR(32) NOT NULL,
			player1_id VARCHAR(64) NOT NULL,
			player2_id VARCHAR(64) NOT NULL,
			group_id VARCHAR(64) NOT NULL,
			winner_id VARCHAR(64),
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			moves_count INT NOT NULL DEFAULT 0,
			game_data JSONB,
			is_ai_game BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_records_group
			ON game_records(group_id, game_type, end_time DESC)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id VARCHAR(64) NOT NULL,
			group_id VARCHAR(64) NOT NULL,
			game_type VARCHAR(32) NOT NULL,
			total_games INT NOT NULL DEFAULT 0,
			wins INT NOT NULL DEFAULT 0,
			losses INT NOT NULL DEFAULT 0,
			draws INT NOT NULL DEFAULT 0,
			best_streak INT NOT NULL DEFAULT 0,
			current_streak INT NOT NULL DEFAULT 0,
			last_game_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, group_id, game_type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_stats_ranking
			ON user_stats(group_id, game_type, wins DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	log.Info().Msg("Database migrations completed")
	return nil
}
