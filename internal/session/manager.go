package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"board-game-bot/internal/game"
)

// ErrAlreadyInGame is returned when a player already holds an active session.
var ErrAlreadyInGame = errors.New("player is already in a game")

// Manager owns all active sessions and their lookup indices. It is an
// explicitly constructed dependency passed to the dispatch layer; all maps
// are guarded by one mutex so lookups never observe a half-updated index set.
type Manager struct {
	mu       sync.RWMutex
	registry *game.Registry
	sessions map[string]*Session
	byPlayer map[string]string
	byGroup  map[string][]string
	byHost   map[string][]string
}

// NewManager creates an empty session manager using the given board registry.
func NewManager(registry *game.Registry) *Manager {
	return &Manager{
		registry: registry,
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]string),
		byGroup:  make(map[string][]string),
		byHost:   make(map[string][]string),
	}
}

// CreateGame allocates and registers a new session. It fails with
// ErrAlreadyInGame when either human player already holds one; on failure
// nothing is registered.
func (m *Manager) CreateGame(t game.Type, player1, player2, groupID, hostID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byPlayer[player1]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInGame, player1)
	}
	if player2 != game.AIPlayer {
		if _, ok := m.byPlayer[player2]; ok {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInGame, player2)
		}
	}

	board, err := m.registry.New(t, player1, player2)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:         m.allocateID(t, player1, groupID, now),
		Type:       t,
		Player1:    player1,
		Player2:    player2,
		GroupID:    groupID,
		HostID:     hostID,
		Board:      board,
		IsAIGame:   player2 == game.AIPlayer,
		StartedAt:  now,
		LastMoveAt: now,
	}

	m.sessions[s.ID] = s
	m.byPlayer[player1] = s.ID
	if player2 != game.AIPlayer {
		m.byPlayer[player2] = s.ID
	}
	m.byGroup[groupID] = append(m.byGroup[groupID], s.ID)
	m.byHost[hostID] = append(m.byHost[hostID], s.ID)
	return s, nil
}

// allocateID derives an id from type, group, player and timestamp. Ids are
// not cryptographically unique; a numeric suffix resolves same-second
// collisions.
func (m *Manager) allocateID(t game.Type, player1, groupID string, now time.Time) string {
	base := fmt.Sprintf("%s_%s_%s_%d", t, groupID, player1, now.Unix())
	id := base
	for n := 1; ; n++ {
		if _, exists := m.sessions[id]; !exists {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// GetGame returns the session with the given id, or nil.
func (m *Manager) GetGame(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// GetUserGame returns the player's current session. With a group id it
// returns the unique unfinished session in that group containing the player.
// With an empty group it uses the flat player index, a legacy path that can
// also return a finished session that has not been removed yet.
func (m *Manager) GetUserGame(playerID, groupID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if groupID != "" {
		for _, id := range m.byGroup[groupID] {
			s := m.sessions[id]
			if s != nil && s.HasPlayer(playerID) && !s.IsFinished() {
				return s
			}
		}
		return nil
	}
	if id, ok := m.byPlayer[playerID]; ok {
		return m.sessions[id]
	}
	return nil
}

// GroupGames returns all active sessions in a group.
func (m *Manager) GroupGames(groupID string) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Session
	for _, id := range m.byGroup[groupID] {
		if s := m.sessions[id]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// RemoveGame removes a session and purges it from every index. Idempotent;
// reports whether anything was removed.
func (m *Manager) RemoveGame(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(id)
}

func (m *Manager) removeLocked(id string) bool {
	s, ok := m.sessions[id]
	if !ok {
		return false
	}

	if m.byPlayer[s.Player1] == id {
		delete(m.byPlayer, s.Player1)
	}
	if s.Player2 != game.AIPlayer && m.byPlayer[s.Player2] == id {
		delete(m.byPlayer, s.Player2)
	}
	m.byGroup[s.GroupID] = removeID(m.byGroup[s.GroupID], id)
	if len(m.byGroup[s.GroupID]) == 0 {
		delete(m.byGroup, s.GroupID)
	}
	m.byHost[s.HostID] = removeID(m.byHost[s.HostID], id)
	if len(m.byHost[s.HostID]) == 0 {
		delete(m.byHost, s.HostID)
	}
	delete(m.sessions, id)
	return true
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// CleanupTimeoutGames removes every session whose last move is older than
// the timeout and returns the removed ids. Intended to run on a periodic
// scheduler.
func (m *Manager) CleanupTimeoutGames(timeout time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for id, s := range m.sessions {
		if s.IsTimedOut(timeout) {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		m.removeLocked(id)
	}
	return removed
}

// CleanupHostGames removes every session under a host and returns the count.
// Used on host shutdown or disable.
func (m *Manager) CleanupHostGames(hostID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := append([]string(nil), m.byHost[hostID]...)
	removed := 0
	for _, id := range ids {
		if m.removeLocked(id) {
			removed++
		}
	}
	return removed
}

// CleanupAllGames drops every session and index entry, returning how many
// sessions were active.
func (m *Manager) CleanupAllGames() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.sessions)
	m.sessions = make(map[string]*Session)
	m.byPlayer = make(map[string]string)
	m.byGroup = make(map[string][]string)
	m.byHost = make(map[string][]string)
	return count
}

// Stats is a point-in-time summary of the registry.
type Stats struct {
	ActiveGames   int
	ActivePlayers int
	ActiveGroups  int
	ActiveHosts   int
	ByType        map[game.Type]int
	AIGames       int
}

// Snapshot returns registry statistics for status commands and logging.
func (m *Manager) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Stats{
		ActiveGames:   len(m.sessions),
		ActivePlayers: len(m.byPlayer),
		ActiveGroups:  len(m.byGroup),
		ActiveHosts:   len(m.byHost),
		ByType:        make(map[game.Type]int),
	}
	for _, s := range m.sessions {
		st.ByType[s.Type]++
		if s.IsAIGame {
			st.AIGames++
		}
	}
	return st
}
