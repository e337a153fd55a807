package game

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownGameType is returned when no factory is registered for a type.
var ErrUnknownGameType = errors.New("unknown game type")

// Factory constructs and restores boards for one game type.
type Factory struct {
	// New creates a fresh board with player1 moving first.
	New func(player1, player2 string) Board
	// Restore rebuilds a board from its snapshot, validating it first.
	Restore func(snap *Snapshot) (Board, error)
}

// Registry maps game types to their board factories. It is thread-safe and
// constructed once at startup; games register themselves from main.
type Registry struct {
	mu        sync.RWMutex
	factories map[Type]Factory
}

// NewRegistry creates an empty board factory registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Type]Factory)}
}

// Register adds a factory for the given game type.
func (r *Registry) Register(t Type, f Factory) error {
	if f.New == nil || f.Restore == nil {
		return fmt.Errorf("factory for %q is incomplete", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = f
	return nil
}

// New creates a fresh board of the given type.
func (r *Registry) New(t Type, player1, player2 string) (Board, error) {
	r.mu.RLock()
	f, ok := r.factories[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, t)
	}
	return f.New(player1, player2), nil
}

// Restore rebuilds a board from a snapshot using the factory matching the
// snapshot's type tag.
func (r *Registry) Restore(snap *Snapshot) (Board, error) {
	r.mu.RLock()
	f, ok := r.factories[snap.GameType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, snap.GameType)
	}
	return f.Restore(snap)
}

// Types returns the registered game types.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}
