package coordinator

import (
	"sync"

	"github.com/lukev/elpres/internal/config"
	"github.com/lukev/elpres/internal/liveness"
	"github.com/lukev/elpres/internal/persistence"
)

// Registry is the in-memory set of live rooms, keyed by room name. Rooms
// are created lazily on first access and loaded from their persisted
// blob, if any.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	store  *persistence.Store
	timing config.Timing
	timers *liveness.Timers
}

// NewRegistry returns an empty registry backed by store.
func NewRegistry(store *persistence.Store, timing config.Timing) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		store:  store,
		timing: timing,
		timers: liveness.NewTimers(),
	}
}

// Room returns the named room, creating and loading it on first use.
func (reg *Registry) Room(name string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if r, ok := reg.rooms[name]; ok {
		return r
	}
	r := newRoom(name, reg.store, reg.timing, reg.timers)
	reg.rooms[name] = r
	return r
}
