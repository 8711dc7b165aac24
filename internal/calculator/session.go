package calculator

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-chi-calculator/internal/calc"
)

// ErrSessionNotFound is returned for unknown or evicted session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Session is one calculator. Key presses on a session are serialised so
// each one reads, reduces and commits the state before the next.
type Session struct {
	ID string

	mu       sync.Mutex
	machine  *calc.Machine
	presses  int
	lastUsed time.Time
	now      func() time.Time
}

func newSession(id string, now func() time.Time) *Session {
	s := &Session{
		ID:       id,
		machine:  calc.NewMachine(),
		lastUsed: now(),
		now:      now,
	}
	s.machine.Subscribe(func(calc.View) { s.presses++ })
	return s
}

// Press applies events in order and returns the resulting view.
func (s *Session) Press(events ...calc.Event) calc.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		s.machine.Dispatch(e)
	}
	s.lastUsed = s.now()
	return s.machine.View()
}

// Snapshot returns the current view and the number of keys pressed so far.
func (s *Session) Snapshot() (calc.View, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.machine.View(), s.presses
}

func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastUsed.Before(t)
}

// Store keeps sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create starts a new session in the initial state.
func (st *Store) Create() *Session {
	sess := newSession(uuid.NewString(), st.now)

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	return sess
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}

// Evict removes sessions unused for longer than ttl and returns how many
// were removed.
func (st *Store) Evict(ttl time.Duration) int {
	cutoff := st.now().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if sess.idleSince(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
