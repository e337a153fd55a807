// Package gomoku implements the 15x15 five-in-a-row board.
// Moves address cells with a column letter and a row number, e.g. "H8".
package gomoku

import (
	"fmt"
	"strconv"
	"strings"

	"board-game-bot/internal/game"
)

// Size is the board width.
const Size = 15

// Game is the gomoku rule engine. Player1 holds mark 1 (black) and moves
// first; player2 holds mark 2 (white).
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
	grid := make([][]int, Size)
	for i := range grid {
		grid[i] = make([]int, Size)
	}
	return &Game{
		board:   grid,
		player1: player1,
		player2: player2,
		current: player1,
		lastRow: -1,
		lastCol: -1,
	}
}

// Type implements game.Board.
func (g *Game) Type() game.Type { return game.TypeGomoku }

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
	row, col, ok := ParseMove(move)
	if !ok {
		return game.MoveResult{Result: game.Invalid, Reason: "use a column letter and row number, e.g. H8"}
	}
	if g.board[row][col] != 0 {
		return game.MoveResult{Result: game.Invalid, Reason: "that cell is already taken"}
	}

	g.board[row][col] = g.mark(playerID)
	g.movesCount++
	g.lastRow, g.lastCol, g.hasLast = row, col, true

	if g.winsAt(row, col) {
		g.finished = true
		g.winner = playerID
		return game.MoveResult{Result: game.Win, Winner: playerID}
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
	row, col, ok := ParseMove(move)
	return ok && g.board[row][col] == 0
}

// WouldWin implements game.Board.
func (g *Game) WouldWin(playerID, move string) bool {
	row, col, ok := ParseMove(move)
	if !ok || g.board[row][col] != 0 {
		return false
	}
	mark := g.mark(playerID)
	if mark == 0 {
		return false
	}
	g.board[row][col] = mark
	won := g.winsAt(row, col)
	g.board[row][col] = 0
	return won
}

// AvailableMoves implements game.Board.
func (g *Game) AvailableMoves() []string {
	var moves []string
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if g.board[i][j] == 0 {
				moves = append(moves, FormatMove(i, j))
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
	return FormatMove(row, col), g.board[row][col] == 0
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

// Render implements game.Board. The last played stone is bracketed.
func (g *Game) Render() string {
	var b strings.Builder
	b.WriteString("   ")
	for j := 0; j < Size; j++ {
		fmt.Fprintf(&b, "%c ", 'A'+j)
	}
	b.WriteByte('\n')
	for i := 0; i < Size; i++ {
		fmt.Fprintf(&b, "%2d ", i+1)
		for j := 0; j < Size; j++ {
			cell := "."
			switch g.board[i][j] {
			case 1:
				cell = "x"
			case 2:
				cell = "o"
			}
			if g.hasLast && g.lastRow == i && g.lastCol == j {
				cell = strings.ToUpper(cell)
			}
			b.WriteString(cell)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
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
		GameType:      game.TypeGomoku,
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

// WinningLine returns the first five contiguous cells of the winning run in
// scan order, or nil if the game has no winner yet. Runs longer than five
// still win; only the first five cells are reported.
func (g *Game) WinningLine() [][2]int {
	if !g.finished || g.winner == "" || !g.hasLast {
		return nil
	}
	return g.lineAt(g.lastRow, g.lastCol)
}

// ParseMove parses a coordinate like "H8" into zero-based (row, col).
// Lowercase input is accepted; anything malformed or out of range fails.
func ParseMove(move string) (row, col int, ok bool) {
	move = strings.ToUpper(strings.TrimSpace(move))
	if len(move) < 2 {
		return 0, 0, false
	}
	colChar := move[0]
	if colChar < 'A' || colChar >= 'A'+Size {
		return 0, 0, false
	}
	rowNum, err := strconv.Atoi(move[1:])
	if err != nil || rowNum < 1 || rowNum > Size {
		return 0, 0, false
	}
	return rowNum - 1, int(colChar - 'A'), true
}

// FormatMove renders zero-based (row, col) as a coordinate like "H8".
func FormatMove(row, col int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row+1)
}

var directions = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

func (g *Game) winsAt(row, col int) bool {
	return g.lineAt(row, col) != nil
}

// lineAt extends through (row, col) in each of the four directions, both
// ways, while cells carry the same mark. A run of five or more wins; the
// first five cells in scan order are returned.
func (g *Game) lineAt(row, col int) [][2]int {
	mark := g.board[row][col]
	if mark == 0 {
		return nil
	}
	for _, d := range directions {
		cells := [][2]int{{row, col}}
		for r, c := row+d[0], col+d[1]; g.inBounds(r, c) && g.board[r][c] == mark; r, c = r+d[0], c+d[1] {
			cells = append(cells, [2]int{r, c})
		}
		for r, c := row-d[0], col-d[1]; g.inBounds(r, c) && g.board[r][c] == mark; r, c = r-d[0], c-d[1] {
			cells = append([][2]int{{r, c}}, cells...)
		}
		if len(cells) >= 5 {
			return cells[:5]
		}
	}
	return nil
}

func (g *Game) inBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
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
