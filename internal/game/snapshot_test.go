package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot() *Snapshot {
	return &Snapshot{
		GameType: TypeTicTacToe,
		Board: [][]int{
			{1, 0, 0},
			{0, 2, 0},
			{0, 0, 0},
		},
		Players:       map[string]int{"alice": 1, "bob": 2},
		CurrentPlayer: "alice",
		MovesCount:    2,
		LastMove:      &[2]int{1, 1},
	}
}

func TestSnapshotValidate(t *testing.T) {
	require.NoError(t, validSnapshot().Validate(3))

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"wrong row count", func(s *Snapshot) { s.Board = s.Board[:2] }},
		{"ragged row", func(s *Snapshot) { s.Board[1] = []int{0, 2} }},
		{"bad cell value", func(s *Snapshot) { s.Board[2][2] = 3 }},
		{"negative cell value", func(s *Snapshot) { s.Board[2][2] = -1 }},
		{"moves count mismatch", func(s *Snapshot) { s.MovesCount = 5 }},
		{"missing mark 1", func(s *Snapshot) { s.Players = map[string]int{"bob": 2} }},
		{"missing mark 2", func(s *Snapshot) { s.Players = map[string]int{"alice": 1} }},
		{"unknown current player", func(s *Snapshot) { s.CurrentPlayer = "mallory" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(s)
			err := s.Validate(3)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	blob, err := json.Marshal(validSnapshot())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(blob, &m))
	for _, key := range []string{"game_type", "board", "players", "current_player", "moves_count", "is_finished", "last_move"} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "winner", "empty winner is omitted")

	var back Snapshot
	require.NoError(t, json.Unmarshal(blob, &back))
	assert.Equal(t, validSnapshot(), &back)
}

func TestPlayerByMark(t *testing.T) {
	s := validSnapshot()

	id, ok := s.PlayerByMark(1)
	require.True(t, ok)
	assert.Equal(t, "alice", id)

	_, ok = s.PlayerByMark(3)
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	board := func(p1, p2 string) Board { return nil }
	restore := func(s *Snapshot) (Board, error) { return nil, nil }

	assert.Error(t, r.Register(TypeTicTacToe, Factory{New: board}), "factory without restore is rejected")
	require.NoError(t, r.Register(TypeTicTacToe, Factory{New: board, Restore: restore}))

	_, err := r.New(TypeGomoku, "a", "b")
	assert.ErrorIs(t, err, ErrUnknownGameType)

	_, err = r.Restore(&Snapshot{GameType: TypeGomoku})
	assert.ErrorIs(t, err, ErrUnknownGameType)

	assert.Equal(t, []Type{TypeTicTacToe}, r.Types())
}
