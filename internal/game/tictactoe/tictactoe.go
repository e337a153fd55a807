// Package tictactoe implements the 3x3 three-in-a-row board.
// Moves address cells with the positions 1-9, numbered row by row.
package tictactoe

import (
	"fmt"
	"strconv"
	"strings"

	"board-game-bot/internal/game"
)

// Size is the board width.
const Size = 3

// Game is the tic-tac-toe rule engine. Player1 holds mark 1 (X) and moves
// first; player2 holds mark 2 (O).
type Game struct {
	board      [][]int
	player1    string
	player2    string
	current    string
	movesCount int
	finished   bool
	winner     string
	lastRow    int
	lastCol    int
	hasLast    bool
}

// New creates a fresh board with player1 to move.
func New(player1, player2 string) *Game {
	return &Game{
		board:   emptyGrid(),
		player1: player1,
		player2: player2,
		current: player1,
		lastRow: -1,
		lastCol: -1,
	}
}

func emptyGrid() [][]int {
	grid := make([][]int, Size)
	for i := range grid {
		grid[i] = make([]int, Size)
	}
	return grid
}

// Type implements game.Board.
func (g *Game) Type() game.Type { return game.TypeTicTacToe }

// Size implements game.Board.
func (g *Game) Size() int { return Size }

// ApplyMove implements game.Board.
func (g *Game) ApplyMove(playerID, move string) game.MoveResult {
	if g.finished {
		return game.MoveResult{Result: game.Invalid, Reason: "the game is already over"}
	}
	if playerID != g.current {
		return game.MoveResult{Result: game.Invalid, Reason: "it is not your turn"}
	}
	row, col, ok := g.parseMove(move)
	if !ok {
		return game.MoveResult{Result: game.Invalid, Reason: "positions are 1-9"}
	}
	if g.board[row][col] != 0 {
		return game.MoveResult{Result: game.Invalid, Reason: "that cell is already taken"}
	}

	g.board[row][col] = g.mark(playerID)
	g.movesCount++
	g.lastRow, g.lastCol, g.hasLast = row, col, true

	if winner := g.checkWinner(); winner != "" {
		g.finished = true
		g.winner = winner
		return game.MoveResult{Result: game.Win, Winner: winner}
	}
	if g.movesCount == Size*Size {
		g.finished = true
		return game.MoveResult{Result: game.Draw}
	}
	g.current = g.Opponent(g.current)
	return game.MoveResult{Result: game.Continue}
}

// IsValidMove implements game.Board.
func (g *Game) IsValidMove(move string) bool {
	row, col, ok := g.parseMove(move)
	return ok && g.board[row][col] == 0
}

// WouldWin implements game.Board. It places the mark, checks, and undoes the
// placement, so the board is observably unchanged.
func (g *Game) WouldWin(playerID, move string) bool {
	row, col, ok := g.parseMove(move)
	if !ok || g.board[row][col] != 0 {
		return false
	}
	mark := g.mark(playerID)
	if mark == 0 {
		return false
	}
	g.board[row][col] = mark
	won := g.checkWinner() == playerID
	g.board[row][col] = 0
	return won
}

// AvailableMoves implements game.Board.
func (g *Game) AvailableMoves() []string {
	var moves []string
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if g.board[i][j] == 0 {
				moves = append(moves, strconv.Itoa(i*Size+j+1))
			}
		}
	}
	return moves
}

// MoveAt implements game.Board.
func (g *Game) MoveAt(row, col int) (string, bool) {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return "", false
	}
	return strconv.Itoa(row*Size + col + 1), g.board[row][col] == 0
}

// LastMove implements game.Board.
func (g *Game) LastMove() (int, int, bool) {
	return g.lastRow, g.lastCol, g.hasLast
}

// Grid implements game.Board.
func (g *Game) Grid() [][]int {
	grid := make([][]int, Size)
	for i := range g.board {
		grid[i] = append([]int(nil), g.board[i]...)
	}
	return grid
}

// CurrentPlayer implements game.Board.
func (g *Game) CurrentPlayer() string { return g.current }

// Opponent implements game.Board.
func (g *Game) Opponent(playerID string) string {
	switch playerID {
	case g.player1:
		return g.player2
	case g.player2:
		return g.player1
	default:
		return ""
	}
}

// MovesCount implements game.Board.
func (g *Game) MovesCount() int { return g.movesCount }

// IsFinished implements game.Board.
func (g *Game) IsFinished() bool { return g.finished }

// Winner implements game.Board.
func (g *Game) Winner() string { return g.winner }

// Render implements game.Board.
func (g *Game) Render() string {
	symbols := [...]string{".", "X", "O"}
	var b strings.Builder
	b.WriteString("  1 2 3\n")
	for i := 0; i < Size; i++ {
		fmt.Fprintf(&b, "%c ", 'A'+i)
		for j := 0; j < Size; j++ {
			b.WriteString(symbols[g.board[i][j]])
			if j < Size-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("positions: 1 2 3 / 4 5 6 / 7 8 9")
	return b.String()
}

// Clone implements game.Board.
func (g *Game) Clone() game.Board {
	c := *g
	c.board = g.Grid()
	return &c
}

// Snapshot implements game.Board.
func (g *Game) Snapshot() *game.Snapshot {
	snap := &game.Snapshot{
		GameType:      game.TypeTicTacToe,
		Board:         g.Grid(),
		Players:       map[string]int{g.player1: 1, g.player2: 2},
		CurrentPlayer: g.current,
		MovesCount:    g.movesCount,
		IsFinished:    g.finished,
		Winner:        g.winner,
	}
	if g.hasLast {
		snap.LastMove = &[2]int{g.lastRow, g.lastCol}
	}
	return snap
}

// Restore rebuilds a board from its snapshot.
func Restore(snap *game.Snapshot) (*Game, error) {
	if err := snap.Validate(Size); err != nil {
		return nil, err
	}
	player1, _ := snap.PlayerByMark(1)
	player2, _ := snap.PlayerByMark(2)
	g := New(player1, player2)
	for i, row := range snap.Board {
		copy(g.board[i], row)
	}
	g.current = snap.CurrentPlayer
	g.movesCount = snap.MovesCount
	g.finished = snap.IsFinished
	g.winner = snap.Winner
	if snap.LastMove != nil {
		g.lastRow, g.lastCol, g.hasLast = snap.LastMove[0], snap.LastMove[1], true
	}
	return g, nil
}

// Factory returns the board factory for registry registration.
func Factory() game.Factory {
	return game.Factory{
		New: func(p1, p2 string) game.Board { return New(p1, p2) },
		Restore: func(snap *game.Snapshot) (game.Board, error) {
			return Restore(snap)
		},
	}
}

func (g *Game) mark(playerID string) int {
	switch playerID {
	case g.player1:
		return 1
	case g.player2:
		return 2
	default:
		return 0
	}
}

func (g *Game) parseMove(move string) (row, col int, ok bool) {
	pos, err := strconv.Atoi(strings.TrimSpace(move))
	if err != nil || pos < 1 || pos > Size*Size {
		return 0, 0, false
	}
	pos--
	return pos / Size, pos % Size, true
}

// checkWinner scans the 3 rows, 3 columns and 2 diagonals for three equal
// non-empty marks.
func (g *Game) checkWinner() string {
	b := g.board
	for i := 0; i < Size; i++ {
		if b[i][0] != 0 && b[i][0] == b[i][1] && b[i][1] == b[i][2] {
			return g.playerByMark(b[i][0])
		}
		if b[0][i] != 0 && b[0][i] == b[1][i] && b[1][i] == b[2][i] {
			return g.playerByMark(b[0][i])
		}
	}
	if b[1][1] != 0 {
		if b[0][0] == b[1][1] && b[1][1] == b[2][2] {
			return g.playerByMark(b[1][1])
		}
		if b[0][2] == b[1][1] && b[1][1] == b[2][0] {
			return g.playerByMark(b[1][1])
		}
	}
	return ""
}

func (g *Game) playerByMark(mark int) string {
	switch mark {
	case 1:
		return g.player1
	case 2:
		return g.player2
	default:
		return ""
	}
}
