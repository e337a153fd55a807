package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"board-game-bot/internal/game"
)

func TestNewGame(t *testing.T) {
	g := New("alice", "bob")

	assert.Equal(t, game.TypeTicTacToe, g.Type())
	assert.Equal(t, "alice", g.CurrentPlayer())
	assert.Equal(t, 0, g.MovesCount())
	assert.False(t, g.IsFinished())
	assert.Len(t, g.AvailableMoves(), 9)
}

func TestApplyMove_RowWin(t *testing.T) {
	g := New("alice", "bob")

	for _, m := range []struct {
		player string
		move   string
	}{
		{"alice", "1"}, {"bob", "4"},
		{"alice", "2"}, {"bob", "5"},
	} {
		res := g.ApplyMove(m.player, m.move)
		require.Equal(t, game.Continue, res.Result)
	}

	res := g.ApplyMove("alice", "3")
	assert.Equal(t, game.Win, res.Result)
	assert.Equal(t, "alice", res.Winner)
	assert.True(t, g.IsFinished())
	assert.Equal(t, "alice", g.Winner())
}

func TestApplyMove_DiagonalWin(t *testing.T) {
	g := New("alice", "bob")

	g.ApplyMove("alice", "1")
	g.ApplyMove("bob", "2")
	g.ApplyMove("alice", "5")
	g.ApplyMove("bob", "3")
	res := g.ApplyMove("alice", "9")

	assert.Equal(t, game.Win, res.Result)
	assert.Equal(t, "alice", res.Winner)
}

func TestApplyMove_Draw(t *testing.T) {
	g := New("alice", "bob")

	moves := []struct {
		player string
		move   string
	}{
		{"alice", "5"}, {"bob", "1"},
		{"alice", "2"}, {"bob", "8"},
		{"alice", "4"}, {"bob", "6"},
		{"alice", "3"}, {"bob", "7"},
	}
	for _, m := range moves {
		res := g.ApplyMove(m.player, m.move)
		require.Equal(t, game.Continue, res.Result, "move %s by %s", m.move, m.player)
	}

	res := g.ApplyMove("alice", "9")
	assert.Equal(t, game.Draw, res.Result)
	assert.True(t, g.IsFinished())
	assert.Empty(t, g.Winner())
}

func TestApplyMove_Invalid(t *testing.T) {
	g := New("alice", "bob")
	g.ApplyMove("alice", "5")

	tests := []struct {
		name   string
		player string
		move   string
	}{
		{"not your turn", "alice", "1"},
		{"occupied cell", "bob", "5"},
		{"out of range high", "bob", "10"},
		{"out of range low", "bob", "0"},
		{"not a number", "bob", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.ApplyMove(tt.player, tt.move)
			assert.Equal(t, game.Invalid, res.Result)
			assert.NotEmpty(t, res.Reason)
		})
	}

	// Invalid attempts must not change state.
	assert.Equal(t, 1, g.MovesCount())
	assert.Equal(t, "bob", g.CurrentPlayer())
}

func TestApplyMove_AfterFinish(t *testing.T) {
	g := New("alice", "bob")
	g.ApplyMove("alice", "1")
	g.ApplyMove("bob", "4")
	g.ApplyMove("alice", "2")
	g.ApplyMove("bob", "5")
	g.ApplyMove("alice", "3")
	require.True(t, g.IsFinished())

	res := g.ApplyMove("bob", "6")
	assert.Equal(t, game.Invalid, res.Result)
}

func TestWouldWin_DoesNotMutate(t *testing.T) {
	g := New("alice", "bob")
	g.ApplyMove("alice", "1")
	g.ApplyMove("bob", "4")
	g.ApplyMove("alice", "2")

	before := g.Grid()
	assert.True(t, g.WouldWin("alice", "3"))
	assert.False(t, g.WouldWin("alice", "9"))
	assert.False(t, g.WouldWin("bob", "3"))
	assert.Equal(t, before, g.Grid())
	assert.True(t, g.IsValidMove("3"))
}

func TestClone_Isolated(t *testing.T) {
	g := New("alice", "bob")
	g.ApplyMove("alice", "5")

	c := g.Clone()
	c.ApplyMove("bob", "1")

	assert.Equal(t, 1, g.MovesCount())
	assert.Equal(t, 2, c.MovesCount())
	assert.Equal(t, "bob", g.CurrentPlayer())
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	g := New("alice", "bob")
	g.ApplyMove("alice", "5")
	g.ApplyMove("bob", "1")
	g.ApplyMove("alice", "9")

	snap := g.Snapshot()
	restored, err := Restore(snap)
	require.NoError(t, err)

	assert.Equal(t, g.Grid(), restored.Grid())
	assert.Equal(t, g.CurrentPlayer(), restored.CurrentPlayer())
	assert.Equal(t, g.MovesCount(), restored.MovesCount())
	assert.Equal(t, g.IsFinished(), restored.IsFinished())

	row, col, ok := restored.LastMove()
	require.True(t, ok)
	assert.Equal(t, 2, row)
	assert.Equal(t, 2, col)

	// The restored board keeps playing normally.
	res := restored.ApplyMove("bob", "2")
	assert.Equal(t, game.Continue, res.Result)
}

func TestRestore_RejectsCorruptSnapshot(t *testing.T) {
	g := New("alice", "bob")
	g.ApplyMove("alice", "5")
	snap := g.Snapshot()

	snap.MovesCount = 7 // does not match the single occupied cell
	_, err := Restore(snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, game.ErrCorruptSnapshot)
}

func TestRender_ShowsMarks(t *testing.T) {
	g := New("alice", "bob")
	g.ApplyMove("alice", "5")
	g.ApplyMove("bob", "1")

	out := g.Render()
	assert.Contains(t, out, "X")
	assert.Contains(t, out, "O")
}

// TestGameInvariantsProperty plays random games to completion and checks the
// structural invariants that must hold after every move.
func TestGameInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := New("p1", "p2")

		for !g.IsFinished() {
			avail := g.AvailableMoves()
			if len(avail) == 0 {
				t.Fatalf("unfinished game with no available moves")
			}
			idx := rapid.IntRange(0, len(avail)-1).Draw(t, "moveIdx")
			mover := g.CurrentPlayer()
			before := g.MovesCount()

			res := g.ApplyMove(mover, avail[idx])
			if res.Result == game.Invalid {
				t.Fatalf("legal move %q rejected: %s", avail[idx], res.Reason)
			}
			if g.MovesCount() != before+1 {
				t.Fatalf("moves count did not advance: %d -> %d", before, g.MovesCount())
			}
			if len(g.AvailableMoves()) != 9-g.MovesCount() {
				t.Fatalf("available moves out of sync with moves count")
			}
		}

		if g.MovesCount() > 9 {
			t.Fatalf("more moves than cells: %d", g.MovesCount())
		}
		if w := g.Winner(); w != "" && w != "p1" && w != "p2" {
			t.Fatalf("unknown winner %q", w)
		}

		// A terminal board survives the snapshot round trip.
		restored, err := Restore(g.Snapshot())
		if err != nil {
			t.Fatalf("restore failed: %v", err)
		}
		if restored.Winner() != g.Winner() || restored.MovesCount() != g.MovesCount() {
			t.Fatalf("restored board diverged")
		}
	})
}
