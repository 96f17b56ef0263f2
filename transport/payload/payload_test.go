package payload

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/tictactoe"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err      error
		code     string
		rejected bool
	}{
		{fmt.Errorf("failed make move: %w", apperror.ErrOutOfBounds), CodeOutOfBounds, true},
		{fmt.Errorf("failed make move: %w", apperror.ErrCellOccupied), CodeCellOccupied, true},
		{apperror.ErrGameAlreadyOver, CodeGameAlreadyOver, true},
		{apperror.ErrInvalidGridSize, CodeInvalidGridSize, true},
		{apperror.ErrGameNotFound, CodeInternal, false},
		{errors.New("connection refused"), CodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			code, rejected := ErrorCode(tt.err)

			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.rejected, rejected)
			assert.NotEmpty(t, Message(code))
		})
	}
}

func TestNewMoveResponse(t *testing.T) {
	t.Run("Plain move has no line", func(t *testing.T) {
		game, err := entity.NewGame("g", 3)
		require.NoError(t, err)
		result, err := tictactoe.ApplyMove(game, entity.Coord{X: 1})
		require.NoError(t, err)

		resp := NewMoveResponse(game, result)

		assert.True(t, resp.Success)
		assert.Equal(t, entity.PlayerX, resp.Player)
		assert.Equal(t, entity.StatusInProgress, resp.Status)
		assert.Nil(t, resp.Start)
		assert.Nil(t, resp.End)
	})

	t.Run("Winning move carries the line", func(t *testing.T) {
		game, err := entity.NewGame("g", 3)
		require.NoError(t, err)
		var result *tictactoe.MoveResult
		for _, cell := range []entity.Coord{{Z: 0}, {X: 1}, {Z: 1}, {X: 2}, {Z: 2}} {
			result, err = tictactoe.ApplyMove(game, cell)
			require.NoError(t, err)
		}

		resp := NewMoveResponse(game, result)

		assert.Equal(t, entity.PlayerX, resp.Winner)
		assert.Equal(t, entity.StatusWon, resp.Status)
		assert.Equal(t, entity.Coord{}, *resp.Start)
		assert.Equal(t, entity.Coord{Z: 2}, *resp.End)
	})
}
