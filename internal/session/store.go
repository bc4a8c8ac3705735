// Package session keeps per-player progression state in memory.
//
// Policy: a session is created the first time its id is seen and lives until
// the process exits or Evict removes it. Nothing is written to disk. Each
// session carries its own lock; work on different sessions never contends.
package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/arc"
)

// State is the mutable progression state of one session.
type State struct {
	Arcs         *arc.Catalog
	KnownUnlocks arc.TokenSet
}

func newState() *State {
	c := arc.Bootstrap()
	return &State{
		Arcs:         c,
		KnownUnlocks: arc.NewTokenSet(c.Tokens()),
	}
}

func (s *State) clone() *State {
	known := make(arc.TokenSet, len(s.KnownUnlocks))
	for tok := range s.KnownUnlocks {
		known[tok] = struct{}{}
	}
	return &State{Arcs: s.Arcs.Clone(), KnownUnlocks: known}
}

// Session guards one player's State.
type Session struct {
	id string

	mu       sync.Mutex
	state    *State
	lastUsed time.Time
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Do runs fn while holding the session lock. fn may mutate the state but
// must not retain it after returning.
func (s *Session) Do(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	fn(s.state)
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastUsed
}

// Store holds sessions keyed by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	onCreate func(id string)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// OnCreate registers a callback invoked after a session is created.
func (st *Store) OnCreate(fn func(id string)) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.onCreate = fn
}

// Get returns the session for id, creating it from the starter catalog on
// first access. Callers reject empty ids before calling Get.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	if s, ok = st.sessions[id]; ok {
		st.mu.Unlock()
		return s
	}
	s = &Session{id: id, state: newState(), lastUsed: time.Now()}
	st.sessions[id] = s
	onCreate := st.onCreate
	st.mu.Unlock()

	log.Debug().Str("session", id).Msg("Session created")
	if onCreate != nil {
		onCreate(id)
	}
	return s
}

// Lookup returns the session for id without creating it.
func (st *Store) Lookup(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}

// Evict removes sessions idle for longer than idle and returns how many were removed.
// A session removed here starts over from the starter catalog on its next access.
func (st *Store) Evict(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Int("remaining", len(st.sessions)).Msg("Evicted idle sessions")
	}
	return removed
}
