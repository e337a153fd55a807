package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"board-game-bot/internal/model"
)

// StatsRepository persists per-player statistics, keyed by
// (user, group, game type).
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository instance.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Record applies one game outcome to a player's stats, creating the row on
// first contact. Wins extend the current streak; losses and draws reset it.
func (r *StatsRepository) Record(ctx context.Context, userID, groupID, gameType string, outcome model.Outcome) (*model.UserStats, error) {
	var winInc, lossInc, drawInc int
	switch outcome {
	case model.OutcomeWin:
		winInc = 1
	case model.OutcomeLoss:
		lossInc = 1
	case model.OutcomeDraw:
		drawInc = 1
	default:
		return nil, fmt.Errorf("unknown outcome %q", outcome)
	}

	const query = `
		INSERT INTO user_stats
			(user_id, group_id, game_type, total_games, wins, losses, draws,
			 best_streak, current_streak, last_game_time)
		VALUES ($1, $2, $3, 1, $4, $5, $6, $4, $4, NOW())
		ON CONFLICT (user_id, group_id, game_type) DO UPDATE SET
			total_games    = user_stats.total_games + 1,
			wins           = user_stats.wins + $4,
			losses         = user_stats.losses + $5,
			draws          = user_stats.draws + $6,
			current_streak = CASE WHEN $4 = 1 THEN user_stats.current_streak + 1 ELSE 0 END,
			best_streak    = GREATEST(user_stats.best_streak,
				CASE WHEN $4 = 1 THEN user_stats.current_streak + 1 ELSE 0 END),
			last_game_time = NOW()
		RETURNING user_id, group_id, game_type, total_games, wins, losses,
		          draws, best_streak, current_streak, last_game_time
	`

	var stats model.UserStats
	err := r.pool.QueryRow(ctx, query, userID, groupID, gameType, winInc, lossInc, drawInc).Scan(
		&stats.UserID,
		&stats.GroupID,
		&stats.GameType,
		&stats.TotalGames,
		&stats.Wins,
		&stats.Losses,
		&stats.Draws,
		&stats.BestStreak,
		&stats.CurrentStreak,
		&stats.LastGameTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record outcome: %w", err)
	}
	return &stats, nil
}

// Get retrieves a player's stats for one (group, game type) pair.
// Returns ErrStatsNotFound if the player has no games there yet.
func (r *StatsRepository) Get(ctx context.Context, userID, groupID, gameType string) (*model.UserStats, error) {
	const query = `
		SELECT user_id, group_id, game_type, total_games, wins, losses,
		       draws, best_streak, current_streak, last_game_time
		FROM user_stats
		WHERE user_id = $1 AND group_id = $2 AND game_type = $3
	`

	var stats model.UserStats
	err := r.pool.QueryRow(ctx, query, userID, groupID, gameType).Scan(
		&stats.UserID,
		&stats.GroupID,
		&stats.GameType,
		&stats.TotalGames,
		&stats.Wins,
		&stats.Losses,
		&stats.Draws,
		&stats.BestStreak,
		&stats.CurrentStreak,
		&stats.LastGameTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &stats, nil
}

// Ranking returns a group's leaderboard for one game type, ordered by wins
// descending with total games as the tie-break.
func (r *StatsRepository) Ranking(ctx context.Context, groupID, gameType string, limit int) ([]*model.RankingEntry, error) {
	const query = `
		SELECT user_id, wins, losses, draws, total_games
		FROM user_stats
		WHERE group_id = $1 AND game_type = $2
		ORDER BY wins DESC, total_games ASC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, groupID, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer rows.Close()

	var entries []*model.RankingEntry
	for rows.Next() {
		var e model.RankingEntry
		if err := rows.Scan(&e.UserID, &e.Wins, &e.Losses, &e.Draws, &e.TotalGames); err != nil {
			return nil, fmt.Errorf("failed to scan ranking entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
