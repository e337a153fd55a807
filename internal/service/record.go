// Package service provides the business logic between the command handlers
// and the repositories.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"board-game-bot/internal/game"
	"board-game-bot/internal/model"
	"board-game-bot/internal/repository"
	"board-game-bot/internal/session"
)

// RecordService persists finished matches: the game record with its board
// snapshot blob, plus both human players' statistics.
type RecordService struct {
	records *repository.RecordRepository
	stats   *repository.StatsRepository
}

// NewRecordService creates a new RecordService instance.
func NewRecordService(records *repository.RecordRepository, stats *repository.StatsRepository) *RecordService {
	return &RecordService{records: records, stats: stats}
}

// FinishGame saves the session's result. Persistence failures are logged and
// absorbed: a storage outage must not corrupt or abort the in-memory game
// flow that already concluded.
func (s *RecordService) FinishGame(ctx context.Context, sess *session.Session) {
	s.finish(ctx, sess, sess.Winner())
}

// FinishForfeit saves the session with the surrendering player's opponent as
// the winner, regardless of board state.
func (s *RecordService) FinishForfeit(ctx context.Context, sess *session.Session, loserID string) {
	s.finish(ctx, sess, sess.Opponent(loserID))
}

func (s *RecordService) finish(ctx context.Context, sess *session.Session, winner string) {
	blob, err := json.Marshal(sess.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("game_id", sess.ID).Msg("Failed to serialize board snapshot")
		blob = nil
	}

	var winnerID *string
	if winner != "" {
		winnerID = &winner
	}

	rec := &model.GameRecord{
		GameType:   string(sess.Type),
		Player1ID:  sess.Player1,
		Player2ID:  sess.Player2,
		GroupID:    sess.GroupID,
		WinnerID:   winnerID,
		StartTime:  sess.StartedAt,
		EndTime:    time.Now(),
		MovesCount: sess.Board.MovesCount(),
		GameData:   blob,
		IsAIGame:   sess.IsAIGame,
	}
	if _, err := s.records.Save(ctx, rec); err != nil {
		log.Error().Err(err).Str("game_id", sess.ID).Msg("Failed to save game record")
	}

	for _, playerID := range []string{sess.Player1, sess.Player2} {
		if playerID == game.AIPlayer {
			continue
		}
		outcome := outcomeFor(playerID, winner)
		if _, err := s.stats.Record(ctx, playerID, sess.GroupID, string(sess.Type), outcome); err != nil {
			log.Error().Err(err).
				Str("game_id", sess.ID).
				Str("player", playerID).
				Msg("Failed to update user stats")
		}
	}
}

func outcomeFor(playerID, winner string) model.Outcome {
	switch winner {
	case "":
		return model.OutcomeDraw
	case playerID:
		return model.OutcomeWin
	default:
		return model.OutcomeLoss
	}
}
