package roulette

import (
	"strings"
	"sync"
)

// Store holds the in-flight duels, one per (host, player). State lives only
// in memory and resets on restart.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Game
}

// NewStore creates an empty duel store.
func NewStore() *Store {
	return &Store{games: make(map[string]*Game)}
}

func key(hostID, playerID string) string {
	return hostID + ":" + playerID
}

// Save stores the duel for a (host, player) pair, replacing any existing one.
func (s *Store) Save(hostID, playerID string, g *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[key(hostID, playerID)] = g
}

// Load returns the duel for a (host, player) pair, or nil.
func (s *Store) Load(hostID, playerID string) *Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[key(hostID, playerID)]
}

// Delete removes the duel for a (host, player) pair. Idempotent.
func (s *Store) Delete(hostID, playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(hostID, playerID)
	if _, ok := s.games[k]; !ok {
		return false
	}
	delete(s.games, k)
	return true
}

// CleanupHost removes every duel under the given host and returns how many
// were removed. Used on host shutdown.
func (s *Store) CleanupHost(hostID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := hostID + ":"
	removed := 0
	for k := range s.games {
		if strings.HasPrefix(k, prefix) {
			delete(s.games, k)
			removed++
		}
	}
	return removed
}

// Count returns the number of duels in flight.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
