package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis down")

func newManager(t *testing.T, gridSize int) (context.Context, *GameManager) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return context.Background(), NewGameManager(logger, repository.NewMemoryGameRepository(time.Hour), gridSize)
}

// brokenRepo fails every call.
type brokenRepo struct{}

func (brokenRepo) CreateOrUpdate(context.Context, *entity.Game) error {
	return errRedisDown
}

func (brokenRepo) GetByID(context.Context, string) (*entity.Game, error) {
	return nil, errRedisDown
}

func (brokenRepo) Update(context.Context, string, repository.MutateFunc) (*entity.Game, error) {
	return nil, errRedisDown
}

func (brokenRepo) DeleteByID(context.Context, string) error {
	return errRedisDown
}

func TestGameManager_CreateGame(t *testing.T) {
	t.Run("Uses the configured size by default", func(t *testing.T) {
		ctx, manager := newManager(t, 4)

		game, err := manager.CreateGame(ctx, 0)

		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, 4, game.Size)
		assert.Len(t, game.Board, 64)
		assert.Equal(t, entity.PlayerX, game.Turn)
	})

	t.Run("Honours an explicit size", func(t *testing.T) {
		ctx, manager := newManager(t, 3)

		game, err := manager.CreateGame(ctx, 5)

		require.NoError(t, err)
		assert.Equal(t, 5, game.Size)
	})

	t.Run("Rejects an unsupported size", func(t *testing.T) {
		ctx, manager := newManager(t, 3)

		game, err := manager.CreateGame(ctx, 42)

		require.ErrorIs(t, err, apperror.ErrInvalidGridSize)
		assert.Nil(t, game)
	})

	t.Run("Returns storage errors", func(t *testing.T) {
		manager := NewGameManager(slog.New(slog.NewJSONHandler(io.Discard, nil)), brokenRepo{}, 3)

		game, err := manager.CreateGame(context.Background(), 0)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_GetOrCreateGame(t *testing.T) {
	t.Run("Creates a new game when id is empty", func(t *testing.T) {
		ctx, manager := newManager(t, 3)

		game, err := manager.GetOrCreateGame(ctx, "")

		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
	})

	t.Run("Returns the existing game", func(t *testing.T) {
		// Given: a session with one move
		ctx, manager := newManager(t, 3)
		created, err := manager.CreateGame(ctx, 0)
		require.NoError(t, err)
		_, _, err = manager.MakeMove(ctx, created.ID, entity.Coord{X: 1, Y: 1, Z: 1})
		require.NoError(t, err)

		// When: it is looked up by id
		game, err := manager.GetOrCreateGame(ctx, created.ID)

		// Then: the same session comes back
		require.NoError(t, err)
		assert.Equal(t, created.ID, game.ID)
		assert.Equal(t, 1, game.Moves)
	})

	t.Run("Creates a new game for an unknown id", func(t *testing.T) {
		ctx, manager := newManager(t, 3)

		game, err := manager.GetOrCreateGame(ctx, "expired")

		require.NoError(t, err)
		assert.NotEqual(t, "expired", game.ID)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	t.Run("Plays the documented scenario to a win", func(t *testing.T) {
		// Given: a 3x3x3 session
		ctx, manager := newManager(t, 3)
		game, err := manager.CreateGame(ctx, 0)
		require.NoError(t, err)

		// When: the moves are played
		moves := []entity.Coord{{X: 0}, {X: 1, Y: 1, Z: 1}, {X: 1}, {X: 2, Y: 2, Z: 2}}
		for _, cell := range moves {
			_, result, err := manager.MakeMove(ctx, game.ID, cell)
			require.NoError(t, err)
			require.Nil(t, result.Line)
		}

		updated, result, err := manager.MakeMove(ctx, game.ID, entity.Coord{X: 2})
		require.NoError(t, err)

		// Then: X wins along the x axis
		require.NotNil(t, result.Line)
		assert.Equal(t, entity.WinningLine{Winner: entity.PlayerX, Start: entity.Coord{}, End: entity.Coord{X: 2}}, *result.Line)
		assert.Equal(t, entity.StatusWon, updated.Status)

		// Then: any further move is rejected
		_, _, err = manager.MakeMove(ctx, game.ID, entity.Coord{Z: 2})
		require.ErrorIs(t, err, apperror.ErrGameAlreadyOver)
	})

	t.Run("Rejected moves leave the game unchanged", func(t *testing.T) {
		ctx, manager := newManager(t, 3)
		game, err := manager.CreateGame(ctx, 0)
		require.NoError(t, err)
		_, _, err = manager.MakeMove(ctx, game.ID, entity.Coord{})
		require.NoError(t, err)
		before, err := manager.GetGameState(ctx, game.ID)
		require.NoError(t, err)

		_, _, err = manager.MakeMove(ctx, game.ID, entity.Coord{})
		require.ErrorIs(t, err, apperror.ErrCellOccupied)

		_, _, err = manager.MakeMove(ctx, game.ID, entity.Coord{X: 3})
		require.ErrorIs(t, err, apperror.ErrOutOfBounds)

		after, err := manager.GetGameState(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Error if game not found", func(t *testing.T) {
		ctx, manager := newManager(t, 3)

		game, result, err := manager.MakeMove(ctx, "missing", entity.Coord{})

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, game)
		assert.Nil(t, result)
	})

	t.Run("Concurrent moves on one cell", func(t *testing.T) {
		ctx, manager := newManager(t, 5)
		game, err := manager.CreateGame(ctx, 0)
		require.NoError(t, err)

		const players = 32
		var wg sync.WaitGroup
		errs := make(chan error, players)

		for range players {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := manager.MakeMove(ctx, game.ID, entity.Coord{X: 2, Y: 2, Z: 2})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, apperror.ErrCellOccupied)
		}
		assert.Equal(t, 1, succeeded)
	})
}

func TestGameManager_ResetGame(t *testing.T) {
	// Given: a session that has been won
	ctx, manager := newManager(t, 3)
	game, err := manager.CreateGame(ctx, 0)
	require.NoError(t, err)
	for _, cell := range []entity.Coord{{}, {Y: 1}, {X: 1}, {Y: 2}, {X: 2}} {
		_, _, err = manager.MakeMove(ctx, game.ID, cell)
		require.NoError(t, err)
	}

	// When: it is reset
	reset, err := manager.ResetGame(ctx, game.ID)
	require.NoError(t, err)

	// Then: it equals a fresh game with the same id
	fresh, err := entity.NewGame(game.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, fresh, reset)

	stored, err := manager.GetGameState(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh, stored)
}

func TestGameManager_EndGame(t *testing.T) {
	ctx, manager := newManager(t, 3)
	game, err := manager.CreateGame(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, manager.EndGame(ctx, game.ID))

	_, err = manager.GetGameState(ctx, game.ID)
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
	require.ErrorIs(t, manager.EndGame(ctx, game.ID), apperror.ErrGameNotFound)
}

func TestGameManager_BlankGame(t *testing.T) {
	ctx, manager := newManager(t, 4)

	game, err := manager.BlankGame()
	require.NoError(t, err)

	// Then: a fresh board of the configured size that was never stored
	assert.Empty(t, game.ID)
	assert.Equal(t, 4, game.Size)
	assert.Equal(t, entity.PlayerX, game.Turn)
	assert.Equal(t, 0, game.Moves)

	_, err = manager.GetGameState(ctx, game.ID)
	require.ErrorIs(t, err, apperror.ErrGameNotFound)
}
