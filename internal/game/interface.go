// Package game defines the shared board-game contract and the board factory
// registry. Each game type (tic-tac-toe, gomoku) implements the Board
// interface in its own package; the session and AI layers only ever see this
// contract plus the Type tag.
package game

// Type identifies a board-game variant.
type Type string

const (
	TypeTicTacToe Type = "tictactoe"
	TypeGomoku    Type = "gomoku"
)

// AIPlayer is the sentinel player id used for the machine opponent.
const AIPlayer = "AI"

// Result is the outcome of applying a single move.
type Result int

const (
	// Continue means the move was accepted and the game goes on.
	Continue Result = iota
	// Win means the move was accepted and ended the game with a winner.
	Win
	// Draw means the move was accepted and filled the board with no winner.
	Draw
	// Invalid means the move was rejected; the board is unchanged.
	Invalid
)

// String returns a readable name for logging.
func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// MoveResult carries the outcome of ApplyMove. Winner is set only for Win;
// Reason is set only for Invalid and is safe to show to the user.
type MoveResult struct {
	Result Result
	Winner string
	Reason string
}

// Board is the rule-engine contract shared by all game types.
//
// Moves are strings in the game's own addressing scheme ("1".."9" for
// tic-tac-toe, "H8"-style coordinates for gomoku). Malformed or out-of-range
// moves are reported as Invalid, never as a panic or error.
//
// A Board is not safe for concurrent use; the session layer serializes access.
type Board interface {
	// Type returns the variant tag. The AI dispatches on this instead of
	// inspecting concrete types.
	Type() Type

	// Size returns the board width (boards are square).
	Size() int

	// ApplyMove validates and applies a move for the given player. On a
	// non-terminal accepted move the turn flips to the opponent.
	ApplyMove(playerID, move string) MoveResult

	// IsValidMove reports whether the move is well-formed, in range and
	// targets an empty cell, ignoring turn order and terminal state.
	IsValidMove(move string) bool

	// WouldWin reports whether placing playerID's mark at move would end the
	// game with that player winning. The board is left unchanged.
	WouldWin(playerID, move string) bool

	// AvailableMoves lists all currently legal moves in row-major scan
	// order. Empty when the board is full.
	AvailableMoves() []string

	// MoveAt returns the move encoding for the given cell and whether that
	// move is currently legal. Out-of-range cells report false.
	MoveAt(row, col int) (string, bool)

	// LastMove returns the most recently played cell, if any.
	LastMove() (row, col int, ok bool)

	// Grid returns a copy of the cell matrix: 0 empty, 1 player1, 2 player2.
	Grid() [][]int

	CurrentPlayer() string
	Opponent(playerID string) string
	MovesCount() int
	IsFinished() bool

	// Winner returns the winning player id, or "" for a draw or an
	// unfinished game.
	Winner() string

	// Render returns a plain-text drawing of the board. This is the fallback
	// display used when no image renderer is available.
	Render() string

	// Clone returns an independent deep copy used for AI simulation.
	Clone() Board

	// Snapshot returns the serializable representation of the board.
	Snapshot() *Snapshot
}
