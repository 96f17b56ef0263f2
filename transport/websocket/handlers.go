package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d-backend/transport/payload"
)

// session re-resolves the bound game, so an expired one is replaced in place.
func (that *Server) session(ctx context.Context, conn *connection) error {
	game, err := that.games.GetOrCreateGame(ctx, conn.gameID)
	if err != nil {
		return err
	}

	conn.gameID = game.ID

	return nil
}

func (that *Server) handleMove(ctx context.Context, conn *connection, msg *Message) any {
	log := that.logger.With("method", "handleMove", "gameID", conn.gameID)

	var req payload.MoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		log.Debug("failed to unmarshal payload", "error", err)
		return payload.MoveFailure(payload.CodeBadRequest)
	}

	cell, ok := req.Coord()
	if !ok {
		return payload.MoveFailure(payload.CodeBadRequest)
	}

	if err := that.session(ctx, conn); err != nil {
		log.Error("failed to resolve session", "error", err)
		return payload.MoveFailure(payload.CodeInternal)
	}

	game, result, err := that.games.MakeMove(ctx, conn.gameID, cell)
	if err != nil {
		code, rejected := payload.ErrorCode(err)
		if !rejected {
			log.Error("failed to make move", "error", err)
		}
		return payload.MoveFailure(code)
	}

	return payload.NewMoveResponse(game, result)
}

// handleReset succeeds even when the game has expired, since there is nothing
// left to clear.
func (that *Server) handleReset(ctx context.Context, conn *connection, _ *Message) any {
	_, err := that.games.ResetGame(ctx, conn.gameID)
	if err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
		that.logger.Error("failed to reset game", "method", "handleReset", "gameID", conn.gameID, "error", err)
		return payload.ResetFailure(payload.CodeInternal)
	}

	return payload.ResetResponse{Success: true, Message: payload.MessageReset}
}

// handleState never stores anything: an expired game reads as an empty board
// until the next move recreates it.
func (that *Server) handleState(ctx context.Context, conn *connection, _ *Message) any {
	log := that.logger.With("method", "handleState", "gameID", conn.gameID)

	game, err := that.games.GetGameState(ctx, conn.gameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		game, err = that.games.BlankGame()
	}

	if err != nil {
		log.Error("failed to get game", "error", err)
		return payload.StateFailure(payload.CodeInternal)
	}

	return payload.NewStateResponse(game)
}
