package service

import (
	"context"
	"errors"

	"board-game-bot/internal/game"
	"board-game-bot/internal/model"
	"board-game-bot/internal/repository"
)

// StatsService answers stats and leaderboard queries.
type StatsService struct {
	stats *repository.StatsRepository
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(stats *repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

// UserStats returns a player's stats per game type in the group. Game types
// with no recorded games are omitted.
func (s *StatsService) UserStats(ctx context.Context, userID, groupID string, types []game.Type) (map[game.Type]*model.UserStats, error) {
	out := make(map[game.Type]*model.UserStats)
	for _, t := range types {
		stats, err := s.stats.Get(ctx, userID, groupID, string(t))
		if err != nil {
			if errors.Is(err, repository.ErrStatsNotFound) {
				continue
			}
			return nil, err
		}
		out[t] = stats
	}
	return out, nil
}

// GroupRanking returns the group leaderboard for one game type.
func (s *StatsService) GroupRanking(ctx context.Context, groupID string, t game.Type, limit int) ([]*model.RankingEntry, error) {
	return s.stats.Ranking(ctx, groupID, string(t), limit)
}
