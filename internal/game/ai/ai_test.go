package ai

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"board-game-bot/internal/game"
	"board-game-bot/internal/game/gomoku"
	"board-game-bot/internal/game/tictactoe"
)

func newEngine() *Engine {
	return NewWithRand(rand.New(rand.NewSource(1)))
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		input   string
		want    Difficulty
		wantErr bool
	}{
		{"easy", Easy, false},
		{"medium", Medium, false},
		{"hard", Hard, false},
		{"", Medium, false},
		{"impossible", "", true},
		{"EASY", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDifficulty(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMove_NoMovesLeft(t *testing.T) {
	g := tictactoe.New("human", game.AIPlayer)
	moves := []struct {
		player string
		move   string
	}{
		{"human", "5"}, {game.AIPlayer, "1"},
		{"human", "2"}, {game.AIPlayer, "8"},
		{"human", "4"}, {game.AIPlayer, "6"},
		{"human", "3"}, {game.AIPlayer, "7"},
		{"human", "9"},
	}
	for _, m := range moves {
		require.NotEqual(t, game.Invalid, g.ApplyMove(m.player, m.move).Result)
	}

	_, err := newEngine().Move(g, Medium)
	assert.ErrorIs(t, err, ErrNoMoves)
}

func TestTicTacToeMedium_TakesImmediateWin(t *testing.T) {
	g := tictactoe.New("human", game.AIPlayer)
	g.ApplyMove("human", "5")
	g.ApplyMove(game.AIPlayer, "1")
	g.ApplyMove("human", "9")
	g.ApplyMove(game.AIPlayer, "2")
	g.ApplyMove("human", "4")
	// AI holds 1 and 2; 3 completes the top row and must beat any block.

	move, err := newEngine().Move(g, Medium)
	require.NoError(t, err)
	assert.Equal(t, "3", move)
}

func TestTicTacToeMedium_BlocksOpponent(t *testing.T) {
	g := tictactoe.New("human", game.AIPlayer)
	g.ApplyMove("human", "1")
	g.ApplyMove(game.AIPlayer, "5")
	g.ApplyMove("human", "2")
	// Human threatens 1-2-3; with no win available the AI must block at 3.

	move, err := newEngine().Move(g, Medium)
	require.NoError(t, err)
	assert.Equal(t, "3", move)
}

func TestTicTacToeMedium_PrefersCenter(t *testing.T) {
	g := tictactoe.New("human", game.AIPlayer)
	g.ApplyMove("human", "1")

	move, err := newEngine().Move(g, Medium)
	require.NoError(t, err)
	assert.Equal(t, "5", move)
}

func TestTicTacToeHard_NeverLoses(t *testing.T) {
	// The hard policy plays every game against a random opponent without
	// ever losing; minimax on tic-tac-toe guarantees at least a draw.
	rng := rand.New(rand.NewSource(42))
	engine := NewWithRand(rng)

	for i := 0; i < 50; i++ {
		g := tictactoe.New("human", game.AIPlayer)
		for !g.IsFinished() {
			if g.CurrentPlayer() == game.AIPlayer {
				move, err := engine.Move(g, Hard)
				require.NoError(t, err)
				res := g.ApplyMove(game.AIPlayer, move)
				require.NotEqual(t, game.Invalid, res.Result)
				continue
			}
			avail := g.AvailableMoves()
			move := avail[rng.Intn(len(avail))]
			require.NotEqual(t, game.Invalid, g.ApplyMove("human", move).Result)
		}
		assert.NotEqual(t, "human", g.Winner(), "game %d lost by the hard policy", i)
	}
}

func TestTicTacToeHard_TakesForcedWin(t *testing.T) {
	g := tictactoe.New("human", game.AIPlayer)
	g.ApplyMove("human", "1")
	g.ApplyMove(game.AIPlayer, "5")
	g.ApplyMove("human", "2")
	g.ApplyMove(game.AIPlayer, "3")
	g.ApplyMove("human", "7")
	// Human holds 1, 2 and 7 and threatens the 1-4-7 column. Minimax must
	// answer with the block at 4 or an outright winning line of its own.

	move, err := newEngine().Move(g, Hard)
	require.NoError(t, err)
	res := g.ApplyMove(game.AIPlayer, move)
	require.NotEqual(t, game.Invalid, res.Result)
	assert.NotEqual(t, "human", g.Winner())
}

func TestGomokuMedium_TakesImmediateWin(t *testing.T) {
	g := gomoku.New(game.AIPlayer, "human")
	moves := [][2]string{
		{"D4", "A1"}, {"E4", "C1"}, {"F4", "E1"}, {"G4", "G1"},
	}
	for _, m := range moves {
		require.NotEqual(t, game.Invalid, g.ApplyMove(game.AIPlayer, m[0]).Result)
		require.NotEqual(t, game.Invalid, g.ApplyMove("human", m[1]).Result)
	}

	move, err := newEngine().Move(g, Medium)
	require.NoError(t, err)
	assert.True(t, move == "H4" || move == "C4", "expected a completing move, got %s", move)

	res := g.ApplyMove(game.AIPlayer, move)
	assert.Equal(t, game.Win, res.Result)
}

func TestGomokuMedium_BlocksOpponent(t *testing.T) {
	g := gomoku.New("human", game.AIPlayer)
	moves := [][2]string{
		{"D4", "A1"}, {"E4", "C1"}, {"F4", "E1"}, {"G4", "G1"},
	}
	for _, m := range moves {
		require.NotEqual(t, game.Invalid, g.ApplyMove("human", m[0]).Result)
		require.NotEqual(t, game.Invalid, g.ApplyMove(game.AIPlayer, m[1]).Result)
	}
	g.ApplyMove("human", "J10")
	// Human has an open four D4-G4; the AI cannot win this turn and must
	// block one end.

	move, err := newEngine().Move(g, Medium)
	require.NoError(t, err)
	assert.True(t, move == "H4" || move == "C4", "expected a blocking move, got %s", move)
}

func TestGomokuMedium_OpensAtCenter(t *testing.T) {
	g := gomoku.New(game.AIPlayer, "human")

	move, err := newEngine().Move(g, Medium)
	require.NoError(t, err)
	assert.Equal(t, "H8", move)
}

func TestGomokuMedium_PlaysNearLastStone(t *testing.T) {
	g := gomoku.New("human", game.AIPlayer)
	g.ApplyMove("human", "H8")

	move, err := newEngine().Move(g, Medium)
	require.NoError(t, err)

	row, col, ok := gomoku.ParseMove(move)
	require.True(t, ok)
	assert.InDelta(t, 7, row, 1)
	assert.InDelta(t, 7, col, 1)
}

// TestEngineAlwaysLegalProperty feeds the engine random positions at random
// difficulties and requires a legal move back every time.
func TestEngineAlwaysLegalProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		engine := NewWithRand(rand.New(rand.NewSource(seed)))
		difficulty := []Difficulty{Easy, Medium, Hard}[rapid.IntRange(0, 2).Draw(t, "difficulty")]

		var b game.Board
		if rapid.Bool().Draw(t, "useGomoku") {
			b = gomoku.New("p1", "p2")
		} else {
			b = tictactoe.New("p1", "p2")
		}

		steps := rapid.IntRange(0, 6).Draw(t, "steps")
		rng := rand.New(rand.NewSource(seed + 1))
		for i := 0; i < steps && !b.IsFinished(); i++ {
			avail := b.AvailableMoves()
			b.ApplyMove(b.CurrentPlayer(), avail[rng.Intn(len(avail))])
		}
		if b.IsFinished() {
			return
		}

		move, err := engine.Move(b, difficulty)
		if err != nil {
			t.Fatalf("engine failed on a live board: %v", err)
		}
		if !b.IsValidMove(move) {
			t.Fatalf("engine produced illegal move %q", move)
		}
	})
}
