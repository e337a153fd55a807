// Package ai selects moves for the machine opponent. Policies are pure
// functions of a board snapshot: they only mutate scratch clones.
//
// Gomoku has no search-based policy; Hard deliberately reuses the Medium
// heuristic because full search is intractable on a 15x15 board. Do not add
// deeper search without re-deriving the difficulty curve.
package ai

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"board-game-bot/internal/game"
)

// Difficulty selects a move policy.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ErrNoMoves is returned when the board has no legal moves left. Callers
// treat this as an internal fault and fall back to a no-op.
var ErrNoMoves = errors.New("no legal moves available")

// ParseDifficulty maps user input onto a difficulty, defaulting to Medium
// for an empty string.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s), nil
	case "":
		return Medium, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Engine computes machine moves. The random source is injected so tests can
// pin it down.
type Engine struct {
	rng *rand.Rand
}

// New creates an engine with a time-seeded random source.
func New() *Engine {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates an engine using the given random source.
func NewWithRand(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Move returns a legal move for the board's current player. The board is
// never mutated; simulation happens on clones.
func (e *Engine) Move(b game.Board, d Difficulty) (string, error) {
	avail := b.AvailableMoves()
	if len(avail) == 0 {
		return "", ErrNoMoves
	}
	switch b.Type() {
	case game.TypeTicTacToe:
		return e.ticTacToeMove(b, d, avail), nil
	case game.TypeGomoku:
		return e.gomokuMove(b, d, avail), nil
	default:
		return avail[e.rng.Intn(len(avail))], nil
	}
}

func (e *Engine) ticTacToeMove(b game.Board, d Difficulty, avail []string) string {
	switch d {
	case Easy:
		return avail[e.rng.Intn(len(avail))]
	case Hard:
		_, move := e.minimax(b, b.CurrentPlayer())
		if move != "" {
			return move
		}
		return avail[e.rng.Intn(len(avail))]
	default:
		return e.ticTacToeHeuristic(b, avail)
	}
}

// ticTacToeHeuristic checks, in order: an immediate win, an immediate block,
// a fixed priority list (center, corners, edges), then a random fallback.
func (e *Engine) ticTacToeHeuristic(b game.Board, avail []string) string {
	mover := b.CurrentPlayer()
	opponent := b.Opponent(mover)

	for _, m := range avail {
		if b.WouldWin(mover, m) {
			return m
		}
	}
	for _, m := range avail {
		if b.WouldWin(opponent, m) {
			return m
		}
	}
	for _, m := range []string{"5", "1", "3", "7", "9", "2", "4", "6", "8"} {
		if b.IsValidMove(m) {
			return m
		}
	}
	return avail[e.rng.Intn(len(avail))]
}

// minimax searches to terminal depth, maximizing for the mover and
// minimizing for the opponent. Scores: win +10, draw 0, loss -10. Ties break
// on move-enumeration order: the first move reaching the extremal score wins.
func (e *Engine) minimax(b game.Board, maximizer string) (int, string) {
	if b.IsFinished() {
		switch b.Winner() {
		case maximizer:
			return 10, ""
		case "":
			return 0, ""
		default:
			return -10, ""
		}
	}

	maximizing := b.CurrentPlayer() == maximizer
	bestScore := -100
	if !maximizing {
		bestScore = 100
	}
	bestMove := ""
	for _, m := range b.AvailableMoves() {
		c := b.Clone()
		c.ApplyMove(c.CurrentPlayer(), m)
		score, _ := e.minimax(c, maximizer)
		if (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			bestScore = score
			bestMove = m
		}
	}
	return bestScore, bestMove
}

func (e *Engine) gomokuMove(b game.Board, d Difficulty, avail []string) string {
	if d == Easy {
		return avail[e.rng.Intn(len(avail))]
	}
	// Medium and Hard share the heuristic; see the package comment.
	if m := e.gomokuHeuristic(b); m != "" {
		return m
	}
	return avail[e.rng.Intn(len(avail))]
}

// gomokuHeuristic checks an immediate win, then an immediate block, then the
// center cell on an empty board, then a free cell in the 8-neighborhood of
// the last played stone. Returns "" when none applies.
func (e *Engine) gomokuHeuristic(b game.Board) string {
	mover := b.CurrentPlayer()
	opponent := b.Opponent(mover)
	avail := b.AvailableMoves()

	for _, m := range avail {
		if b.WouldWin(mover, m) {
			return m
		}
	}
	for _, m := range avail {
		if b.WouldWin(opponent, m) {
			return m
		}
	}
	if b.MovesCount() == 0 {
		center := b.Size() / 2
		if m, ok := b.MoveAt(center, center); ok {
			return m
		}
	}
	if row, col, ok := b.LastMove(); ok {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				if m, ok := b.MoveAt(row+dr, col+dc); ok {
					return m
				}
			}
		}
	}
	return ""
}
