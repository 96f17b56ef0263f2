// Package payload holds the wire format shared by the REST and WebSocket
// transports, matching what the browser client sends and expects back.
package payload

import (
	"errors"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/tictactoe"
)

const (
	CodeOutOfBounds     = "out_of_bounds"
	CodeCellOccupied    = "cell_occupied"
	CodeGameAlreadyOver = "game_already_over"
	CodeInvalidGridSize = "invalid_grid_size"
	CodeBadRequest      = "bad_request"
	CodeUnknownAction   = "unknown_action"
	CodeInternal        = "internal_error"
)

const MessageReset = "Game reset successfully"

type MoveRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
	Z *int `json:"z"`
}

// Coord returns the requested cell; ok is false when a coordinate is missing.
func (that MoveRequest) Coord() (entity.Coord, bool) {
	if that.X == nil || that.Y == nil || that.Z == nil {
		return entity.Coord{}, false
	}

	return entity.Coord{X: *that.X, Y: *that.Y, Z: *that.Z}, true
}

type NewGameRequest struct {
	Size int `json:"size,omitempty"`
}

type MoveResponse struct {
	Success bool          `json:"success"`
	Player  entity.Mark   `json:"player,omitempty"`
	Winner  entity.Mark   `json:"winner,omitempty"`
	Start   *entity.Coord `json:"start,omitempty"`
	End     *entity.Coord `json:"end,omitempty"`
	Status  string        `json:"status,omitempty"`
	Error   string        `json:"error,omitempty"`
	Message string        `json:"message,omitempty"`
}

type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type StateResponse struct {
	Success bool              `json:"success"`
	ID      string            `json:"id,omitempty"`
	Size    int               `json:"size,omitempty"`
	Board   [][][]entity.Mark `json:"board,omitempty"`
	Turn    entity.Mark       `json:"turn,omitempty"`
	Status  string            `json:"status,omitempty"`
	Winner  entity.Mark       `json:"winner,omitempty"`
	Start   *entity.Coord     `json:"start,omitempty"`
	End     *entity.Coord     `json:"end,omitempty"`
	Moves   int               `json:"moves"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
}

func NewMoveResponse(game *entity.Game, result *tictactoe.MoveResult) MoveResponse {
	response := MoveResponse{
		Success: true,
		Player:  result.Player,
		Status:  game.Status,
	}

	if result.Line != nil {
		start, end := result.Line.Start, result.Line.End
		response.Winner = result.Line.Winner
		response.Start = &start
		response.End = &end
	}

	return response
}

func NewStateResponse(game *entity.Game) StateResponse {
	response := StateResponse{
		Success: true,
		ID:      game.ID,
		Size:    game.Size,
		Board:   game.Cube(),
		Turn:    game.Turn,
		Status:  game.Status,
		Winner:  game.Winner,
		Moves:   game.Moves,
	}

	if game.Line != nil {
		start, end := game.Line.Start, game.Line.End
		response.Start = &start
		response.End = &end
	}

	return response
}

// ErrorCode maps domain errors to a stable code. ok is false for errors that
// are not the caller's fault.
func ErrorCode(err error) (code string, ok bool) {
	switch {
	case errors.Is(err, apperror.ErrOutOfBounds):
		return CodeOutOfBounds, true
	case errors.Is(err, apperror.ErrCellOccupied):
		return CodeCellOccupied, true
	case errors.Is(err, apperror.ErrGameAlreadyOver):
		return CodeGameAlreadyOver, true
	case errors.Is(err, apperror.ErrInvalidGridSize):
		return CodeInvalidGridSize, true
	default:
		return CodeInternal, false
	}
}

// Message is the human readable text for a code.
func Message(code string) string {
	switch code {
	case CodeOutOfBounds:
		return "Coordinates are out of bounds!"
	case CodeCellOccupied:
		return "Cell already occupied!"
	case CodeGameAlreadyOver:
		return "Game is already over!"
	case CodeInvalidGridSize:
		return "Unsupported grid size!"
	case CodeBadRequest:
		return "Malformed request!"
	case CodeUnknownAction:
		return "Unknown action!"
	default:
		return "Internal server error"
	}
}

func MoveFailure(code string) MoveResponse {
	return MoveResponse{Success: false, Error: code, Message: Message(code)}
}

func ResetFailure(code string) ResetResponse {
	return ResetResponse{Success: false, Error: code, Message: Message(code)}
}

func StateFailure(code string) StateResponse {
	return StateResponse{Success: false, Error: code, Message: Message(code)}
}
