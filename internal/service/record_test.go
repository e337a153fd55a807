// Service tests run against a real PostgreSQL container; they skip when
// Docker is unavailable.
package service

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"board-game-bot/internal/game"
	"board-game-bot/internal/game/tictactoe"
	"board-game-bot/internal/repository"
	"board-game-bot/internal/session"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if exec.Command("docker", "info").Run() != nil {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE game_records (
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
		`CREATE TABLE user_stats (
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
	} {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	return pool, func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}
}

func newServices(pool *pgxpool.Pool) (*RecordService, *StatsService) {
	records := repository.NewRecordRepository(pool)
	stats := repository.NewStatsRepository(pool)
	return NewRecordService(records, stats), NewStatsService(stats)
}

// finishedSession plays a quick game where alice wins the top row.
func finishedSession(t *testing.T, player2 string) *session.Session {
	t.Helper()
	registry := game.NewRegistry()
	require.NoError(t, registry.Register(game.TypeTicTacToe, tictactoe.Factory()))

	manager := session.NewManager(registry)
	sess, err := manager.CreateGame(game.TypeTicTacToe, "alice", player2, "g1", "host")
	require.NoError(t, err)

	for _, m := range [][2]string{
		{"alice", "1"}, {player2, "4"},
		{"alice", "2"}, {player2, "5"},
		{"alice", "3"},
	} {
		res := sess.Board.ApplyMove(m[0], m[1])
		require.NotEqual(t, game.Invalid, res.Result)
	}
	require.True(t, sess.IsFinished())
	return sess
}

func TestFinishGame_PersistsRecordAndStats(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	recordSvc, statsSvc := newServices(pool)
	sess := finishedSession(t, "bob")

	recordSvc.FinishGame(ctx, sess)

	records, err := repository.NewRecordRepository(pool).ListByGroup(ctx, "g1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	require.NotNil(t, rec.WinnerID)
	assert.Equal(t, "alice", *rec.WinnerID)
	assert.Equal(t, 5, rec.MovesCount)
	assert.False(t, rec.IsAIGame)

	// The stored blob is the board snapshot and still validates.
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(rec.GameData, &snap))
	assert.NoError(t, snap.Validate(3))
	assert.Equal(t, game.TypeTicTacToe, snap.GameType)

	all, err := statsSvc.UserStats(ctx, "alice", "g1", []game.Type{game.TypeTicTacToe})
	require.NoError(t, err)
	require.Contains(t, all, game.TypeTicTacToe)
	assert.Equal(t, 1, all[game.TypeTicTacToe].Wins)

	all, err = statsSvc.UserStats(ctx, "bob", "g1", []game.Type{game.TypeTicTacToe})
	require.NoError(t, err)
	assert.Equal(t, 1, all[game.TypeTicTacToe].Losses)
}

func TestFinishGame_SkipsAIStats(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	recordSvc, statsSvc := newServices(pool)
	sess := finishedSession(t, game.AIPlayer)

	recordSvc.FinishGame(ctx, sess)

	records, err := repository.NewRecordRepository(pool).ListByGroup(ctx, "g1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsAIGame)

	// Only the human side got a stats row.
	all, err := statsSvc.UserStats(ctx, "alice", "g1", []game.Type{game.TypeTicTacToe})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	all, err = statsSvc.UserStats(ctx, game.AIPlayer, "g1", []game.Type{game.TypeTicTacToe})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFinishForfeit_CreditsOpponent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	recordSvc, statsSvc := newServices(pool)

	registry := game.NewRegistry()
	require.NoError(t, registry.Register(game.TypeTicTacToe, tictactoe.Factory()))
	manager := session.NewManager(registry)
	sess, err := manager.CreateGame(game.TypeTicTacToe, "alice", "bob", "g1", "host")
	require.NoError(t, err)
	sess.Board.ApplyMove("alice", "5")

	// Alice surrenders mid-game.
	recordSvc.FinishForfeit(ctx, sess, "alice")

	records, lerr := repository.NewRecordRepository(pool).ListByGroup(ctx, "g1", 10)
	require.NoError(t, lerr)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].WinnerID)
	assert.Equal(t, "bob", *records[0].WinnerID)

	all, err := statsSvc.UserStats(ctx, "alice", "g1", []game.Type{game.TypeTicTacToe})
	require.NoError(t, err)
	assert.Equal(t, 1, all[game.TypeTicTacToe].Losses)

	all, err = statsSvc.UserStats(ctx, "bob", "g1", []game.Type{game.TypeTicTacToe})
	require.NoError(t, err)
	assert.Equal(t, 1, all[game.TypeTicTacToe].Wins)
}

func TestFinishGame_AbsorbsStorageFailure(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	cleanup() // close the pool up front to force persistence failures
	_ = pool

	recordSvc, _ := newServices(pool)
	sess := finishedSession(t, "bob")

	// Must log and return, never panic or error out.
	assert.NotPanics(t, func() {
		recordSvc.FinishGame(context.Background(), sess)
	})
}
