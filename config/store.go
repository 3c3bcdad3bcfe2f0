package config

import (
	"sync"
)

// Snapshot is an immutable, versioned config. Consumers compare Version to
// decide whether to rebuild the units that copied the previous value.
type Snapshot struct {
	Version int
	Config  Config
}

// Store hands out the current snapshot. It is written by the watcher
// goroutine and read by the control loop once per tick.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
}

func NewStore(cfg Config) *Store {
	return &Store{current: Snapshot{Version: 1, Config: cfg}}
}

func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Publish installs cfg as the next version and returns the new snapshot.
func (s *Store) Publish(cfg Config) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{Version: s.current.Version + 1, Config: cfg}
	return s.current
}
