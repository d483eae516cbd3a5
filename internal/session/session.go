// Package session keeps ephemeral per-client dashboard state in memory.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/echolon/internal/model"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session: not found")

// State is everything a dashboard session remembers between requests.
type State struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time

	Notes    string
	Table    *model.Table // nil means the demo table
	Warnings []string
	Scenario model.ScenarioInput
	Goals    []model.GoalTarget
	Industry string
}

// clone copies the state so callers never share mutable fields.
func (s *State) clone() *State {
	cp := *s
	cp.Warnings = append([]string(nil), s.Warnings...)
	cp.Goals = append([]model.GoalTarget(nil), s.Goals...)
	return &cp
}

// Manager owns all live sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*State
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a manager that evicts sessions idle longer than ttl.
// A non-positive ttl uses DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: make(map[string]*State),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the idle timeout.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create starts a new session seeded with goals and returns a copy of it.
func (m *Manager) Create(goals []model.GoalTarget) *State {
	now := m.now()
	s := &State{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
		Goals:     append([]model.GoalTarget(nil), goals...),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s.clone()
}

// Get returns a copy of the session and refreshes its idle timer.
func (m *Manager) Get(id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if now.Sub(s.LastSeen) > m.ttl {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	s.LastSeen = now
	return s.clone(), nil
}

// Update applies fn to the session under the write lock. The table pointer
// is shared; fn must replace rather than mutate it.
func (m *Manager) Update(id string, fn func(*State)) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if now.Sub(s.LastSeen) > m.ttl {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	fn(s)
	s.ID = id
	s.LastSeen = now
	return s.clone(), nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep evicts every session idle longer than the TTL as of now and
// returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen) > m.ttl {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns live session ids, oldest first.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	list := make([]*State, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}
