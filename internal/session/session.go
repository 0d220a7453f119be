// Package session implements the in-memory knowledge-base session
// manager (§4.J): session records keyed by a random 128-bit id, a
// background sweeper evicting idle sessions, and per-session mutation
// serialization.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/logging"
	"folengine/internal/normalize"
)

// Record is one session's state: its ordered premise list (as both source
// text, for retract-by-exact-string-match, and parsed formula), a
// SkolemEnv handed out by Formulas, and lifecycle timestamps.
type Record struct {
	ID             string
	mu             sync.Mutex
	Premises       []string
	parsed         []*ast.Node
	SkolemEnv      *normalize.SkolemEnv
	CreatedAt      time.Time
	LastAccessedAt time.Time
	TTL            time.Duration
}

// Info is the read-only view getInfo returns, without refreshing
// LastAccessedAt.
type Info struct {
	ID             string
	Premises       []string
	CreatedAt      time.Time
	LastAccessedAt time.Time
	TTL            time.Duration
}

// Manager owns the session map and the eviction sweeper.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Record
	maxSessions int
	defaultTTL  time.Duration
	sweepEvery  time.Duration

	stop chan struct{}
	once sync.Once
}

// NewManager constructs a Manager and starts its background sweeper.
// MAX_SESSIONS defaults to 1000 and ttl to 30 minutes per §4.J.
func NewManager(maxSessions int, defaultTTL, sweepEvery time.Duration) *Manager {
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	if sweepEvery <= 0 {
		sweepEvery = 60 * time.Second
	}
	m := &Manager{
		sessions:    make(map[string]*Record),
		maxSessions: maxSessions,
		defaultTTL:  defaultTTL,
		sweepEvery:  sweepEvery,
		stop:        make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Close stops the sweeper. Safe to call more than once.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

// sweep evicts every session whose lastAccessedAt+ttl has elapsed. It
// takes a brief snapshot of ids+deadlines under the map lock, then
// deletes the expired ones under a second short lock acquisition, so it
// never holds a long-lived reference to an individual session record.
func (m *Manager) sweep() {
	now := time.Now()
	m.mu.RLock()
	var expired []string
	for id, rec := range m.sessions {
		rec.mu.Lock()
		deadline := rec.LastAccessedAt.Add(rec.TTL)
		rec.mu.Unlock()
		if now.After(deadline) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	if len(expired) == 0 {
		return
	}
	m.mu.Lock()
	for _, id := range expired {
		delete(m.sessions, id)
		logging.Session("session_evict id=%s", id)
	}
	m.mu.Unlock()
}

// Create allocates a new session with a random 128-bit id, failing
// SESSION_LIMIT once the manager is at capacity.
func (m *Manager) Create(ttl time.Duration) (*Record, *backend.Error) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.maxSessions {
		return nil, backend.NewError(backend.ErrSessionLimit, "maximum concurrent sessions reached")
	}
	now := time.Now()
	rec := &Record{
		ID:             uuid.NewString(),
		SkolemEnv:      normalize.NewSkolemEnv(),
		CreatedAt:      now,
		LastAccessedAt: now,
		TTL:            ttl,
	}
	m.sessions[rec.ID] = rec
	logging.Session("session_event action=create id=%s", rec.ID)
	return rec, nil
}

func (m *Manager) lookup(id string) (*Record, *backend.Error) {
	m.mu.RLock()
	rec, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, backend.NewError(backend.ErrSessionNotFound, "no such session: "+id)
	}
	return rec, nil
}

// Get returns the session and refreshes LastAccessedAt.
func (m *Manager) Get(id string) (*Record, *backend.Error) {
	rec, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	rec.LastAccessedAt = time.Now()
	rec.mu.Unlock()
	return rec, nil
}

// GetInfo returns a snapshot without refreshing LastAccessedAt.
func (m *Manager) GetInfo(id string) (Info, *backend.Error) {
	rec, err := m.lookup(id)
	if err != nil {
		return Info{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	premises := make([]string, len(rec.Premises))
	copy(premises, rec.Premises)
	return Info{
		ID:             rec.ID,
		Premises:       premises,
		CreatedAt:      rec.CreatedAt,
		LastAccessedAt: rec.LastAccessedAt,
		TTL:            rec.TTL,
	}, nil
}

// Delete removes a session outright, failing SESSION_NOT_FOUND if absent.
func (m *Manager) Delete(id string) *backend.Error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return backend.NewError(backend.ErrSessionNotFound, "no such session: "+id)
	}
	delete(m.sessions, id)
	logging.Session("session_event action=delete id=%s", id)
	return nil
}

// List returns the ids of every live session, for the supplemented
// list-sessions tool.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Assert parses and appends formula to the session's premise list. It
// does not Skolemize the formula and does not consult the session's
// SkolemEnv.
func (m *Manager) Assert(id, formula string) *backend.Error {
	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	n, perr := ast.Parse(formula)
	if perr != nil {
		return backend.NewError(backend.ErrParse, perr.Error())
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.Premises = append(rec.Premises, formula)
	rec.parsed = append(rec.parsed, n)
	rec.LastAccessedAt = time.Now()
	return nil
}

// Retract removes the first exact string match of formula, returning
// whether anything was removed.
func (m *Manager) Retract(id, formula string) (bool, *backend.Error) {
	rec, err := m.lookup(id)
	if err != nil {
		return false, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	for i, p := range rec.Premises {
		if p == formula {
			rec.Premises = append(rec.Premises[:i], rec.Premises[i+1:]...)
			rec.parsed = append(rec.parsed[:i], rec.parsed[i+1:]...)
			rec.LastAccessedAt = time.Now()
			return true, nil
		}
	}
	rec.LastAccessedAt = time.Now()
	return false, nil
}

// ListPremises returns a copy of the session's current premise strings.
func (m *Manager) ListPremises(id string) ([]string, *backend.Error) {
	rec, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]string, len(rec.Premises))
	copy(out, rec.Premises)
	return out, nil
}

// Clear empties the premise list but keeps the session (and its
// SkolemEnv) alive.
func (m *Manager) Clear(id string) *backend.Error {
	rec, err := m.lookup(id)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	rec.Premises = nil
	rec.parsed = nil
	rec.LastAccessedAt = time.Now()
	rec.mu.Unlock()
	logging.Session("session_event action=clear id=%s", id)
	return nil
}

// Formulas returns the session's parsed premise ASTs and its SkolemEnv,
// for a query-session tool to hand to the dispatcher.
func (m *Manager) Formulas(id string) ([]*ast.Node, *normalize.SkolemEnv, *backend.Error) {
	rec, err := m.Get(id)
	if err != nil {
		return nil, nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]*ast.Node, len(rec.parsed))
	copy(out, rec.parsed)
	return out, rec.SkolemEnv, nil
}
