package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d-backend/transport/payload"
	"github.com/rocketscienceinc/tictactoe3d-backend/transport/sessionstore"
)

// userSession loads the caller's cookie session. A cookie that no longer
// verifies, e.g. one signed before a restart, yields an empty session.
func (that *Server) userSession(ctx echo.Context) (*sessions.Session, error) {
	userSession, err := session.Get(sessionstore.Name, ctx)
	if userSession == nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err != nil {
		that.logger.Debug("discarding unreadable session", "error", err)
	}

	return userSession, nil
}

func (that *Server) bindGame(ctx echo.Context, userSession *sessions.Session, gameID string) error {
	sessionstore.SetGameID(userSession, gameID)

	if err := userSession.Save(ctx.Request(), ctx.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// currentGame returns the caller's game, creating one and binding it to the
// session when there is none.
func (that *Server) currentGame(ctx echo.Context) (*entity.Game, error) {
	userSession, err := that.userSession(ctx)
	if err != nil {
		return nil, err
	}

	id := sessionstore.GameID(userSession)

	game, err := that.games.GetOrCreateGame(ctx.Request().Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.ID != id {
		if err = that.bindGame(ctx, userSession, game.ID); err != nil {
			return nil, err
		}
	}

	return game, nil
}

func (that *Server) handleMove(ctx echo.Context) error {
	log := that.logger.With("method", "handleMove")

	var req payload.MoveRequest
	if err := ctx.Bind(&req); err != nil {
		log.Debug("failed to bind move", "error", err)
		return ctx.JSON(http.StatusBadRequest, payload.MoveFailure(payload.CodeBadRequest))
	}

	cell, ok := req.Coord()
	if !ok {
		return ctx.JSON(http.StatusBadRequest, payload.MoveFailure(payload.CodeBadRequest))
	}

	game, err := that.currentGame(ctx)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		return ctx.JSON(http.StatusInternalServerError, payload.MoveFailure(payload.CodeInternal))
	}

	updated, result, err := that.games.MakeMove(ctx.Request().Context(), game.ID, cell)
	if err != nil {
		code, rejected := payload.ErrorCode(err)
		if !rejected {
			log.Error("failed to make move", "gameID", game.ID, "error", err)
			return ctx.JSON(http.StatusInternalServerError, payload.MoveFailure(code))
		}

		return ctx.JSON(http.StatusOK, payload.MoveFailure(code))
	}

	return ctx.JSON(http.StatusOK, payload.NewMoveResponse(updated, result))
}

// handleReset clears the caller's board. Without a stored game there is
// nothing to clear, which still counts as success.
func (that *Server) handleReset(ctx echo.Context) error {
	log := that.logger.With("method", "handleReset")

	userSession, err := that.userSession(ctx)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		return ctx.JSON(http.StatusInternalServerError, payload.ResetFailure(payload.CodeInternal))
	}

	if id := sessionstore.GameID(userSession); id != "" {
		_, err = that.games.ResetGame(ctx.Request().Context(), id)
		if err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
			log.Error("failed to reset game", "gameID", id, "error", err)
			return ctx.JSON(http.StatusInternalServerError, payload.ResetFailure(payload.CodeInternal))
		}
	}

	return ctx.JSON(http.StatusOK, payload.ResetResponse{Success: true, Message: payload.MessageReset})
}

// handleState reports the caller's game. A caller without one sees an empty
// board, and nothing is stored on its behalf.
func (that *Server) handleState(ctx echo.Context) error {
	log := that.logger.With("method", "handleState")

	userSession, err := that.userSession(ctx)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		return ctx.JSON(http.StatusInternalServerError, payload.StateFailure(payload.CodeInternal))
	}

	var game *entity.Game
	if id := sessionstore.GameID(userSession); id != "" {
		game, err = that.games.GetGameState(ctx.Request().Context(), id)
		if err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
			log.Error("failed to get game", "gameID", id, "error", err)
			return ctx.JSON(http.StatusInternalServerError, payload.StateFailure(payload.CodeInternal))
		}
	}

	if game == nil {
		if game, err = that.games.BlankGame(); err != nil {
			log.Error("failed to build empty game", "error", err)
			return ctx.JSON(http.StatusInternalServerError, payload.StateFailure(payload.CodeInternal))
		}
	}

	return ctx.JSON(http.StatusOK, payload.NewStateResponse(game))
}

// handleNewGame replaces the caller's session with a fresh game and drops the
// one it replaces. An empty body uses the configured grid size.
func (that *Server) handleNewGame(ctx echo.Context) error {
	log := that.logger.With("method", "handleNewGame")

	var req payload.NewGameRequest
	if err := ctx.Bind(&req); err != nil {
		log.Debug("failed to bind request", "error", err)
		return ctx.JSON(http.StatusBadRequest, payload.StateFailure(payload.CodeBadRequest))
	}

	userSession, err := that.userSession(ctx)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		return ctx.JSON(http.StatusInternalServerError, payload.StateFailure(payload.CodeInternal))
	}

	game, err := that.games.CreateGame(ctx.Request().Context(), req.Size)
	if err != nil {
		code, rejected := payload.ErrorCode(err)
		if !rejected {
			log.Error("failed to create game", "error", err)
			return ctx.JSON(http.StatusInternalServerError, payload.StateFailure(code))
		}

		return ctx.JSON(http.StatusOK, payload.StateFailure(code))
	}

	previousID := sessionstore.GameID(userSession)

	if err = that.bindGame(ctx, userSession, game.ID); err != nil {
		log.Error("failed to bind game", "gameID", game.ID, "error", err)
		return ctx.JSON(http.StatusInternalServerError, payload.StateFailure(payload.CodeInternal))
	}

	if previousID != "" {
		err = that.games.EndGame(ctx.Request().Context(), previousID)
		if err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
			log.Warn("failed to drop replaced game", "gameID", previousID, "error", err)
		}
	}

	return ctx.JSON(http.StatusOK, payload.NewStateResponse(game))
}
