package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/repository"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, mutate repository.MutateFunc) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	gridSize int
}

// NewGameManager - gridSize is used for sessions created without an explicit size.
func NewGameManager(logger *slog.Logger, gameRepo gameRepo, gridSize int) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
		gridSize: gridSize,
	}
}

// CreateGame starts a new session. Size 0 picks the configured grid size.
func (that *GameManager) CreateGame(ctx context.Context, size int) (*entity.Game, error) {
	if size == 0 {
		size = that.gridSize
	}

	newGame, err := entity.NewGame(generateGameID(), size)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	that.logger.Info("game created", "gameID", newGame.ID, "size", newGame.Size)

	return newGame, nil
}

// GetOrCreateGame returns the session with the given id, or a fresh one when
// id is empty or the session no longer exists.
func (that *GameManager) GetOrCreateGame(ctx context.Context, id string) (*entity.Game, error) {
	if id == "" {
		return that.CreateGame(ctx, 0)
	}

	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrGameNotFound) {
		that.logger.Debug("game not found, creating a new one", "gameID", id)
		return that.CreateGame(ctx, 0)
	}

	if err != nil {
		return nil, fmt.Errorf("failed get game: %w", err)
	}

	return existingGame, nil
}

// MakeMove applies a move for whoever's turn it is. The check and the write
// happen under the repository's per-game serialization.
func (that *GameManager) MakeMove(ctx context.Context, id string, cell entity.Coord) (*entity.Game, *tictactoe.MoveResult, error) {
	log := that.logger.With("method", "MakeMove", "gameID", id)

	var result *tictactoe.MoveResult

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		var err error
		result, err = tictactoe.ApplyMove(game, cell)
		return err
	})
	if err != nil {
		log.Debug("move rejected", "cell", cell.String(), "error", err)
		return nil, nil, fmt.Errorf("failed make move: %w", err)
	}

	switch {
	case result.Line != nil:
		log.Info("game won", "winner", result.Line.Winner,
			"start", result.Line.Start.String(), "end", result.Line.End.String())
	case game.IsDraw():
		log.Info("game drawn")
	default:
		log.Debug("move applied", "player", result.Player, "cell", cell.String())
	}

	return game, result, nil
}

func (that *GameManager) ResetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		tictactoe.Reset(game)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed reset game: %w", err)
	}

	that.logger.Info("game reset", "gameID", id)

	return game, nil
}

func (that *GameManager) GetGameState(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// BlankGame is the state of a session that has not been created yet. It is
// not stored, so looking at it costs nothing.
func (that *GameManager) BlankGame() (*entity.Game, error) {
	game, err := entity.NewGame("", that.gridSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return game, nil
}

// EndGame drops the session.
func (that *GameManager) EndGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "gameID", id)

	return nil
}

// generateGameID - generates a unique identifier for the session.
func generateGameID() string {
	return uuid.NewString()
}
