package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
)

// maxUpdateRetries bounds optimistic transaction retries on a contended key.
const maxUpdateRetries = 16

var ErrGameNotFound = apperror.ErrGameNotFound

// MutateFunc changes a private copy of a game. Returning an error discards the copy.
type MutateFunc func(game *entity.Game) error

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	Update(ctx context.Context, id string, mutate MutateFunc) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository stores games in Redis. Each write refreshes the key's ttl;
// zero keeps games until they are deleted.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	err = that.client.Set(ctx, gameKey(game.ID), gameJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		return nil, readError(err)
	}

	return decodeGame(response)
}

// Update runs mutate inside a WATCH/MULTI transaction on the game's key and
// retries when another writer got there first.
func (that *dbGame) Update(ctx context.Context, id string, mutate MutateFunc) (*entity.Game, error) {
	key := gameKey(id)

	var updated *entity.Game

	txf := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return readError(err)
		}

		game, err := decodeGame(response)
		if err != nil {
			return err
		}

		if err = mutate(game); err != nil {
			return err
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, that.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = game

		return nil
	}

	for range maxUpdateRetries {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to update game: %w", err)
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: %s", apperror.ErrUpdateConflict, id)
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted == 0 {
		return ErrGameNotFound
	}

	return nil
}

func readError(err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrGameNotFound
	}

	return fmt.Errorf("failed to get game: %w", err)
}

func decodeGame(response []byte) (*entity.Game, error) {
	var existingGame entity.Game
	if err := json.Unmarshal(response, &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}
