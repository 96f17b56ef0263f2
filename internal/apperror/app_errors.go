package apperror

import "errors"

var (
	ErrOutOfBounds      = errors.New("coordinates are out of bounds")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrGameAlreadyOver  = errors.New("game is already over")
	ErrInvalidGridSize  = errors.New("invalid grid size")
	ErrGameNotFound     = errors.New("game not found")
	ErrUpdateConflict   = errors.New("game was modified concurrently")
	ErrUnknownGameState = errors.New("unknown game status")
)
