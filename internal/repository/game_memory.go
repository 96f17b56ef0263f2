package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
)

type memoryEntry struct {
	mu        sync.Mutex
	game      *entity.Game
	expiresAt time.Time
}

// alive must be called with mu held.
func (that *memoryEntry) alive(now time.Time) bool {
	return that.game != nil && (that.expiresAt.IsZero() || now.Before(that.expiresAt))
}

type memoryGame struct {
	ttl time.Duration
	now func() time.Time

	// lock order: mu before any memoryEntry.mu
	mu        sync.RWMutex
	games     map[string]*memoryEntry
	lastSweep time.Time
}

// NewMemoryGameRepository keeps games in process memory. Updates to one game
// are serialized; different games never block each other. A game not written
// for ttl is dropped, like a Redis key with the same expiry; zero keeps games
// until they are deleted.
func NewMemoryGameRepository(ttl time.Duration) GameRepository {
	return newMemoryGameRepository(ttl, time.Now)
}

func newMemoryGameRepository(ttl time.Duration, now func() time.Time) *memoryGame {
	return &memoryGame{
		ttl:       ttl,
		now:       now,
		games:     make(map[string]*memoryEntry),
		lastSweep: now(),
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	now := that.now()

	that.mu.Lock()
	that.sweepLocked(now)
	entry, ok := that.games[game.ID]
	if !ok {
		entry = &memoryEntry{}
		that.games[game.ID] = entry
	}
	that.mu.Unlock()

	entry.mu.Lock()
	entry.game = game.Clone()
	entry.expiresAt = that.expiry(now)
	entry.mu.Unlock()

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	entry, ok := that.entry(id)
	if !ok {
		return nil, ErrGameNotFound
	}

	entry.mu.Lock()
	if !entry.alive(that.now()) {
		entry.mu.Unlock()
		that.removeIfDead(id, entry)
		return nil, ErrGameNotFound
	}
	game := entry.game.Clone()
	entry.mu.Unlock()

	return game, nil
}

func (that *memoryGame) Update(_ context.Context, id string, mutate MutateFunc) (*entity.Game, error) {
	entry, ok := that.entry(id)
	if !ok {
		return nil, ErrGameNotFound
	}

	entry.mu.Lock()

	// expired, or deleted while we waited for the lock
	now := that.now()
	if !entry.alive(now) {
		entry.mu.Unlock()
		that.removeIfDead(id, entry)
		return nil, ErrGameNotFound
	}

	defer entry.mu.Unlock()

	game := entry.game.Clone()
	if err := mutate(game); err != nil {
		return nil, err
	}

	entry.game = game
	entry.expiresAt = that.expiry(now)

	return game.Clone(), nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	entry, ok := that.games[id]
	delete(that.games, id)
	that.mu.Unlock()

	if !ok {
		return ErrGameNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	found := entry.alive(that.now())
	entry.game = nil

	if !found {
		return ErrGameNotFound
	}

	return nil
}

func (that *memoryGame) entry(id string) (*memoryEntry, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	entry, ok := that.games[id]
	return entry, ok
}

func (that *memoryGame) expiry(now time.Time) time.Time {
	if that.ttl <= 0 {
		return time.Time{}
	}

	return now.Add(that.ttl)
}

// removeIfDead drops entry unless a writer revived it in the meantime.
func (that *memoryGame) removeIfDead(id string, entry *memoryEntry) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.games[id] != entry {
		return
	}

	entry.mu.Lock()
	dead := !entry.alive(that.now())
	entry.mu.Unlock()

	if dead {
		delete(that.games, id)
	}
}

// sweepLocked drops expired games at most once per ttl. It must be called
// with mu held.
func (that *memoryGame) sweepLocked(now time.Time) {
	if that.ttl <= 0 || now.Sub(that.lastSweep) < that.ttl {
		return
	}

	that.lastSweep = now

	for id, entry := range that.games {
		entry.mu.Lock()
		dead := !entry.alive(now)
		entry.mu.Unlock()

		if dead {
			delete(that.games, id)
		}
	}
}
