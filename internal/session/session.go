// Package session tracks active matches: the Session itself, the Manager
// registry that owns all sessions and their indices, and the Matchmaker
// queue that pairs waiting players.
package session

import (
	"time"

	"board-game-bot/internal/game"
	"board-game-bot/internal/game/ai"
)

// Session is one active match between two identities (or one identity and
// the machine). Turn order and move counting live on the embedded board;
// the session adds identity, timestamps and group/host scoping.
type Session struct {
	ID       string
	Type     game.Type
	Player1  string
	Player2  string
	GroupID  string
	HostID   string
	Board    game.Board
	IsAIGame bool
	// AIDifficulty is only meaningful when IsAIGame is true.
	AIDifficulty ai.Difficulty

	StartedAt  time.Time
	LastMoveAt time.Time
}

// HasPlayer reports whether the given id is one of the two players.
func (s *Session) HasPlayer(playerID string) bool {
	return playerID == s.Player1 || playerID == s.Player2
}

// IsPlayerTurn reports whether it is the given player's turn and the game
// is still running.
func (s *Session) IsPlayerTurn(playerID string) bool {
	return !s.Board.IsFinished() && s.Board.CurrentPlayer() == playerID
}

// Opponent returns the other player's id, or "" for a non-participant.
func (s *Session) Opponent(playerID string) string {
	switch playerID {
	case s.Player1:
		return s.Player2
	case s.Player2:
		return s.Player1
	default:
		return ""
	}
}

// IsFinished reports whether the match reached a terminal state.
func (s *Session) IsFinished() bool { return s.Board.IsFinished() }

// Winner returns the winning player id, or "" for a draw or a running game.
func (s *Session) Winner() string { return s.Board.Winner() }

// Touch records move activity, resetting the timeout clock.
func (s *Session) Touch() { s.LastMoveAt = time.Now() }

// IsTimedOut reports whether the last move is older than the timeout.
func (s *Session) IsTimedOut(timeout time.Duration) bool {
	return time.Since(s.LastMoveAt) > timeout
}

// Snapshot returns the board's serializable representation, used as the
// persistence blob for game records.
func (s *Session) Snapshot() *game.Snapshot {
	return s.Board.Snapshot()
}
