package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
)

const (
	StatusInProgress = "in_progress"
	StatusWon        = "won"
	StatusDraw       = "draw"
)

const (
	MinGridSize = 3
	MaxGridSize = 7
)

// Game is a single session: an N×N×N cube, the player to move and the outcome.
// It is not safe for concurrent use; the repository serializes updates.
type Game struct {
	ID     string       `json:"id"`
	Size   int          `json:"size"`
	Board  []Mark       `json:"board"`
	Turn   Mark         `json:"turn"`
	Status string       `json:"status"`
	Winner Mark         `json:"winner,omitempty"`
	Line   *WinningLine `json:"line,omitempty"`
	Moves  int          `json:"moves"`
}

func ValidateGridSize(size int) error {
	if size < MinGridSize || size > MaxGridSize {
		return fmt.Errorf("%w: %d, expected %d..%d", apperror.ErrInvalidGridSize, size, MinGridSize, MaxGridSize)
	}

	return nil
}

func NewGame(id string, size int) (*Game, error) {
	if err := ValidateGridSize(size); err != nil {
		return nil, err
	}

	game := &Game{
		ID:   id,
		Size: size,
	}
	game.Reset()

	return game, nil
}

// Reset returns the game to an empty board with X to move. Size and ID are kept.
func (that *Game) Reset() {
	that.Board = make([]Mark, that.Size*that.Size*that.Size)
	that.Turn = PlayerX
	that.Status = StatusInProgress
	that.Winner = EmptyCell
	that.Line = nil
	that.Moves = 0
}

func (that *Game) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < that.Size &&
		c.Y >= 0 && c.Y < that.Size &&
		c.Z >= 0 && c.Z < that.Size
}

// index flattens c as board[x][y][z].
func (that *Game) index(c Coord) int {
	return (c.X*that.Size+c.Y)*that.Size + c.Z
}

// Cell returns the mark at c, or EmptyCell when c is outside the cube.
func (that *Game) Cell(c Coord) Mark {
	if !that.InBounds(c) {
		return EmptyCell
	}
	return that.Board[that.index(c)]
}

// SetCell writes m at c. The caller checks bounds.
func (that *Game) SetCell(c Coord, m Mark) {
	that.Board[that.index(c)] = m
}

func (that *Game) IsFull() bool {
	return that.Moves >= len(that.Board)
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsWon() bool {
	return that.Status == StatusWon
}

func (that *Game) IsDraw() bool {
	return that.Status == StatusDraw
}

func (that *Game) IsFinished() bool {
	return that.IsWon() || that.IsDraw()
}

// ConfirmInProgress reports why no more moves can be made, if that is the case.
func (that *Game) ConfirmInProgress() error {
	switch {
	case that.IsInProgress():
		return nil
	case that.IsFinished():
		return apperror.ErrGameAlreadyOver
	default:
		return fmt.Errorf("%w: %s", apperror.ErrUnknownGameState, that.Status)
	}
}

// Cube returns the board as board[x][y][z].
func (that *Game) Cube() [][][]Mark {
	cube := make([][][]Mark, that.Size)
	for x := range cube {
		cube[x] = make([][]Mark, that.Size)
		for y := range cube[x] {
			start := that.index(Coord{X: x, Y: y})
			cube[x][y] = append([]Mark(nil), that.Board[start:start+that.Size]...)
		}
	}

	return cube
}

// Clone returns a deep copy that shares nothing with the receiver.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Board = append([]Mark(nil), that.Board...)
	if that.Line != nil {
		line := *that.Line
		clone.Line = &line
	}

	return &clone
}
