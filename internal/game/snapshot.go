package game

import (
	"errors"
	"fmt"
)

// Snapshot is the plain nested-map representation of a board, used as the
// persistence blob for finished games and for restoring in-flight state.
// Marks in Players and Board use 1 for player1 and 2 for player2.
type Snapshot struct {
	GameType      Type           `json:"game_type"`
	Board         [][]int        `json:"board"`
	Players       map[string]int `json:"players"`
	CurrentPlayer string         `json:"current_player"`
	MovesCount    int            `json:"moves_count"`
	IsFinished    bool           `json:"is_finished"`
	Winner        string         `json:"winner,omitempty"`
	LastMove      *[2]int        `json:"last_move,omitempty"`
}

// ErrCorruptSnapshot is returned when a stored representation fails
// validation on restore.
var ErrCorruptSnapshot = errors.New("corrupt board snapshot")

// PlayerByMark returns the player id holding the given mark number.
func (s *Snapshot) PlayerByMark(mark int) (string, bool) {
	for id, m := range s.Players {
		if m == mark {
			return id, true
		}
	}
	return "", false
}

// Validate checks the structural invariants shared by all game types: a
// square grid, cell values in {0,1,2}, both marks assigned, and a move count
// matching the number of occupied cells.
func (s *Snapshot) Validate(size int) error {
	if len(s.Board) != size {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrCorruptSnapshot, size, len(s.Board))
	}
	occupied := 0
	for i, row := range s.Board {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells", ErrCorruptSnapshot, i, len(row))
		}
		for j, cell := range row {
			if cell < 0 || cell > 2 {
				return fmt.Errorf("%w: cell (%d,%d) holds %d", ErrCorruptSnapshot, i, j, cell)
			}
			if cell != 0 {
				occupied++
			}
		}
	}
	if occupied != s.MovesCount {
		return fmt.Errorf("%w: %d occupied cells but moves_count=%d", ErrCorruptSnapshot, occupied, s.MovesCount)
	}
	if _, ok := s.PlayerByMark(1); !ok {
		return fmt.Errorf("%w: no player holds mark 1", ErrCorruptSnapshot)
	}
	if _, ok := s.PlayerByMark(2); !ok {
		return fmt.Errorf("%w: no player holds mark 2", ErrCorruptSnapshot)
	}
	if s.CurrentPlayer != "" {
		if _, ok := s.Players[s.CurrentPlayer]; !ok {
			return fmt.Errorf("%w: current player %q not in player map", ErrCorruptSnapshot, s.CurrentPlayer)
		}
	}
	return nil
}
