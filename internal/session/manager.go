package session

import (
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Manager keeps the live sessions of a server, keyed by ID.
type Manager struct {
	runner Runner
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager. Sessions idle longer than ttl are removed
// by Prune; a zero ttl keeps them forever.
func NewManager(runner Runner, ttl time.Duration) *Manager {
	return &Manager{
		runner:   runner,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	s := New(m.runner)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	zap.L().Info("session: created", zap.String("session_id", s.ID))
	return s
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "session: %s", id)
	}
	return s, nil
}

// Delete removes the session with id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return eris.Wrapf(ErrNotFound, "session: %s", id)
	}
	delete(m.sessions, id)
	return nil
}

// List returns snapshots of all sessions, newest first.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(all))
	for _, s := range all {
		out = append(out, s.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune removes sessions not updated since now minus the ttl, skipping
// busy ones, and returns how many were removed.
func (m *Manager) Prune(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		snap := s.Snapshot()
		if snap.Busy || snap.UpdatedAt.After(cutoff) {
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	if removed > 0 {
		zap.L().Info("session: pruned idle sessions", zap.Int("removed", removed))
	}
	return removed
}
