// Package lock provides per-player locking. The chat platform delivers one
// message at a time per conversation, but handlers for different
// conversations run in parallel; the lock serializes all actions of a single
// player so a move and a surrender can never interleave.
package lock

import "sync"

// PlayerLock provides a mutex per player id.
type PlayerLock struct {
	locks sync.Map // map[string]*sync.Mutex
}

// NewPlayerLock creates a new PlayerLock instance.
func NewPlayerLock() *PlayerLock {
	return &PlayerLock{}
}

func (pl *PlayerLock) getLock(playerID string) *sync.Mutex {
	if v, ok := pl.locks.Load(playerID); ok {
		return v.(*sync.Mutex)
	}
	v, _ := pl.locks.LoadOrStore(playerID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Lock acquires the lock for a player.
func (pl *PlayerLock) Lock(playerID string) {
	pl.getLock(playerID).Lock()
}

// Unlock releases the lock for a player.
func (pl *PlayerLock) Unlock(playerID string) {
	if v, ok := pl.locks.Load(playerID); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (pl *PlayerLock) TryLock(playerID string) bool {
	return pl.getLock(playerID).TryLock()
}

// WithLock runs fn while holding the player's lock.
func (pl *PlayerLock) WithLock(playerID string, fn func() error) error {
	pl.Lock(playerID)
	defer pl.Unlock(playerID)
	return fn()
}
