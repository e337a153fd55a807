package session

import (
	"sync"
	"time"

	"board-game-bot/internal/game"
)

// MatchStatus is the outcome of a matchmaking attempt.
type MatchStatus int

const (
	// Matched means an opponent was waiting and has been paired.
	Matched MatchStatus = iota
	// Waiting means the player was enqueued; no opponent yet.
	Waiting
	// AlreadyWaiting means the player is already in a queue; nothing changed.
	AlreadyWaiting
)

type queueKey struct {
	Group string
	Type  game.Type
}

type waiter struct {
	Player     string
	EnqueuedAt time.Time
}

// Matchmaker pairs waiting players per (group, game type), strictly FIFO:
// the longest-waiting player is always matched first. Expired entries are
// purged lazily on the next access to their queue, never eagerly.
//
// A player can sit in at most one queue at a time, across all groups and
// game types.
type Matchmaker struct {
	mu       sync.Mutex
	queues   map[queueKey][]waiter
	byPlayer map[string]queueKey
}

// NewMatchmaker creates an empty matchmaker.
func NewMatchmaker() *Matchmaker {
	return &Matchmaker{
		queues:   make(map[queueKey][]waiter),
		byPlayer: make(map[string]queueKey),
	}
}

// TryMatchOrWait pairs the player with the oldest waiting opponent in the
// (group, type) queue, or enqueues them if the queue is empty. Entries older
// than timeout are purged first.
func (m *Matchmaker) TryMatchOrWait(playerID, groupID string, t game.Type, timeout time.Duration) (opponent string, status MatchStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := queueKey{Group: groupID, Type: t}
	m.purgeExpiredLocked(key, timeout)

	if _, queued := m.byPlayer[playerID]; queued {
		return "", AlreadyWaiting
	}

	queue := m.queues[key]
	if len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		if len(queue) == 0 {
			delete(m.queues, key)
		} else {
			m.queues[key] = queue
		}
		delete(m.byPlayer, head.Player)
		return head.Player, Matched
	}

	m.queues[key] = append(m.queues[key], waiter{Player: playerID, EnqueuedAt: time.Now()})
	m.byPlayer[playerID] = key
	return "", Waiting
}

// Requeue puts a matched player back at the head of the (group, type) queue
// so they keep their priority. Used when the game could not be created after
// a match was handed out. Reports false if the player is already queued.
func (m *Matchmaker) Requeue(playerID, groupID string, t game.Type) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, queued := m.byPlayer[playerID]; queued {
		return false
	}
	key := queueKey{Group: groupID, Type: t}
	m.queues[key] = append([]waiter{{Player: playerID, EnqueuedAt: time.Now()}}, m.queues[key]...)
	m.byPlayer[playerID] = key
	return true
}

// RemoveWaiting withdraws the player from the (group, type) queue.
// Idempotent; reports whether an entry was removed.
func (m *Matchmaker) RemoveWaiting(playerID, groupID string, t game.Type) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := queueKey{Group: groupID, Type: t}
	queue := m.queues[key]
	for i, w := range queue {
		if w.Player == playerID {
			queue = append(queue[:i], queue[i+1:]...)
			if len(queue) == 0 {
				delete(m.queues, key)
			} else {
				m.queues[key] = queue
			}
			delete(m.byPlayer, playerID)
			return true
		}
	}
	return false
}

// WaitingTime returns how long the player has been queued, or false if they
// are not in the (group, type) queue.
func (m *Matchmaker) WaitingTime(playerID, groupID string, t game.Type) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.queues[queueKey{Group: groupID, Type: t}] {
		if w.Player == playerID {
			return time.Since(w.EnqueuedAt), true
		}
	}
	return 0, false
}

// WaitingPlayers returns the queued players in FIFO order, purging expired
// entries first.
func (m *Matchmaker) WaitingPlayers(groupID string, t game.Type, timeout time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := queueKey{Group: groupID, Type: t}
	m.purgeExpiredLocked(key, timeout)
	queue := m.queues[key]
	players := make([]string, 0, len(queue))
	for _, w := range queue {
		players = append(players, w.Player)
	}
	return players
}

func (m *Matchmaker) purgeExpiredLocked(key queueKey, timeout time.Duration) {
	queue, ok := m.queues[key]
	if !ok {
		return
	}
	kept := queue[:0]
	for _, w := range queue {
		if time.Since(w.EnqueuedAt) < timeout {
			kept = append(kept, w)
		} else {
			delete(m.byPlayer, w.Player)
		}
	}
	if len(kept) == 0 {
		delete(m.queues, key)
		return
	}
	m.queues[key] = kept
}
