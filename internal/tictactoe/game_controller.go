package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
)

// MoveResult describes an applied move.
type MoveResult struct {
	Player entity.Mark
	Line   *entity.WinningLine
}

// ApplyMove marks cell for the player to move and settles the outcome.
// A rejected move leaves the game untouched.
func ApplyMove(gameInstance *entity.Game, cell entity.Coord) (*MoveResult, error) {
	if err := gameInstance.ConfirmInProgress(); err != nil {
		return nil, err
	}

	if err := validateMove(gameInstance, cell); err != nil {
		return nil, fmt.Errorf("invalid move %s: %w", cell, err)
	}

	player := gameInstance.Turn
	gameInstance.SetCell(cell, player)
	gameInstance.Moves++

	result := &MoveResult{Player: player}
	updateGameStatus(gameInstance, cell, player, result)

	return result, nil
}

// validateMove - checks if the move is valid.
func validateMove(gameInstance *entity.Game, cell entity.Coord) error {
	if !gameInstance.InBounds(cell) {
		return apperror.ErrOutOfBounds
	}

	if gameInstance.Cell(cell) != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(gameInstance *entity.Game, cell entity.Coord, player entity.Mark, result *MoveResult) {
	if line := findWinningLine(gameInstance, cell); line != nil {
		gameInstance.Status = entity.StatusWon
		gameInstance.Winner = player
		gameInstance.Line = line
		result.Line = line

		return
	}

	gameInstance.Turn = player.Opponent()

	if gameInstance.IsFull() {
		gameInstance.Status = entity.StatusDraw
	}
}

// findWinningLine looks for Size same-mark cells in a row through the cell
// that was just marked. Only lines through that cell can have changed.
func findWinningLine(gameInstance *entity.Game, cell entity.Coord) *entity.WinningLine {
	mark := gameInstance.Cell(cell)
	if mark == entity.EmptyCell {
		return nil
	}

	size := gameInstance.Size

	for _, d := range Directions {
		backward := countRun(gameInstance, cell, d, -1, mark)
		forward := countRun(gameInstance, cell, d, 1, mark)

		if backward+forward+1 < size {
			continue
		}

		// report exactly Size cells, reaching back as far as possible first
		start := cell.Add(d, -min(backward, size-1))

		return &entity.WinningLine{
			Winner: mark,
			Start:  start,
			End:    start.Add(d, size-1),
		}
	}

	return nil
}

// countRun counts consecutive mark cells after cell, stepping by sign*d.
func countRun(gameInstance *entity.Game, cell, d entity.Coord, sign int, mark entity.Mark) int {
	count := 0
	for next := cell.Add(d, sign); gameInstance.InBounds(next) && gameInstance.Cell(next) == mark; next = next.Add(d, sign) {
		count++
	}

	return count
}

// Reset clears the board for a new round on the same session.
func Reset(gameInstance *entity.Game) {
	gameInstance.Reset()
}
