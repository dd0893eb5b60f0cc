package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for lookups on unknown match tokens.
var ErrSessionNotFound = errors.New("session not found")

// Manager is the registry of live sessions, keyed by match token. Pairing
// happens upstream; the manager only materializes a session the first time
// either ticket holder arrives and tears it down afterwards.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	sched      Scheduler
	newEmitter func(token string) Emitter
	onGameOver func(Outcome)
}

type sessionEntry struct {
	session    *Session
	createdAt  time.Time
	finishedAt time.Time
}

// NewManager wires the registry. newEmitter builds the broadcast fan-out for
// a match token (the ws room); onGameOver is the results sink, invoked once
// per finished session.
func NewManager(sched Scheduler, newEmitter func(token string) Emitter, onGameOver func(Outcome)) *Manager {
	return &Manager{
		sessions:   make(map[string]*sessionEntry),
		sched:      sched,
		newEmitter: newEmitter,
		onGameOver: onGameOver,
	}
}

// generateSessionID generates a unique session ID.
func generateSessionID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "match_" + hex.EncodeToString(bytes)
}

// GetOrCreate returns the session for a match token, creating and starting
// it on first arrival. The mode is fixed by the first creator's ticket.
func (m *Manager) GetOrCreate(token string, mode Mode) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[token]; ok {
		return e.session
	}

	s := NewSession(generateSessionID(), token, mode, m.sched, m.newEmitter(token), m.gameOverHook(token))
	m.sessions[token] = &sessionEntry{session: s, createdAt: time.Now()}
	go s.Run()

	log.Printf("[MANAGER] created session %s for token %s (%s)", s.ID, token, mode)
	return s
}

// Get looks up a live session by match token.
func (m *Manager) Get(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// End disposes a session and removes it from the registry.
func (m *Manager) End(token string) {
	m.mu.Lock()
	e, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	m.mu.Unlock()

	if ok {
		e.session.Close()
		log.Printf("[MANAGER] removed session %s", e.session.ID)
	}
}

// ActiveCount returns the number of registered sessions.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List summarizes every registered session for the admin surface.
func (m *Manager) List() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		sessions = append(sessions, e.session)
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// gameOverHook stamps the finish time for the janitor and forwards the
// outcome to the sink.
func (m *Manager) gameOverHook(token string) func(Outcome) {
	return func(o Outcome) {
		m.mu.Lock()
		if e, ok := m.sessions[token]; ok {
			e.finishedAt = time.Now()
		}
		m.mu.Unlock()
		if m.onGameOver != nil {
			m.onGameOver(o)
		}
	}
}

// How long sessions linger before the janitor reaps them.
const (
	finishedSessionTTL = 2 * time.Minute
	waitingSessionTTL  = 10 * time.Minute
	janitorInterval    = 30 * time.Second
)

// StartExpiryChecker runs a background job reaping finished sessions and
// matches that never filled. Runs until the process exits.
func (m *Manager) StartExpiryChecker() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for range ticker.C {
		m.reapExpired()
	}
}

func (m *Manager) reapExpired() {
	now := time.Now()

	m.mu.Lock()
	var expired []*sessionEntry
	for token, e := range m.sessions {
		reap := false
		if !e.finishedAt.IsZero() {
			reap = now.Sub(e.finishedAt) > finishedSessionTTL
		} else if now.Sub(e.createdAt) > waitingSessionTTL {
			// Only reap stale sessions that never left the lobby.
			reap = e.session.Status() == StatusWaiting
		}
		if reap {
			expired = append(expired, e)
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()

	for _, e := range expired {
		log.Printf("[MANAGER] expiring session %s", e.session.ID)
		e.session.Close()
	}
}
