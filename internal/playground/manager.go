package playground

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/shsh-lessons/internal/domain"
)

// Manager holds the open lesson session of every learner tab.
type Manager struct {
	mu       sync.RWMutex
	active   map[string]map[string]*LessonSession
	observer Observer
}

// NewManager creates an empty manager. obs may be nil.
func NewManager(obs Observer) *Manager {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Manager{
		active:   make(map[string]map[string]*LessonSession),
		observer: obs,
	}
}

// Open starts a lesson session for a user tab, replacing any session the
// tab already had. The first exercise is active.
func (m *Manager) Open(userID, tabID string, lesson *domain.Lesson) *LessonSession {
	s := newLessonSession(userID, tabID, lesson, m.observer)

	m.mu.Lock()
	if _, exists := m.active[userID]; !exists {
		m.active[userID] = make(map[string]*LessonSession)
	}
	if prev, exists := m.active[userID][tabID]; exists {
		slog.Info("Lesson session replaced", "user_id", userID, "session_id", tabID, "previous_lesson", prev.Lesson.ID)
	}
	m.active[userID][tabID] = s
	n := m.countLocked()
	m.mu.Unlock()

	m.observer.ActiveSessions(n)
	slog.Info("Lesson session opened", "user_id", userID, "session_id", tabID, "lesson_id", lesson.ID, "lesson_session", s.ID)
	return s
}

// Get returns the open lesson session for a user tab.
func (m *Manager) Get(userID, tabID string) (*LessonSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sessions, ok := m.active[userID]; ok {
		if s, ok := sessions[tabID]; ok {
			return s, nil
		}
	}
	return nil, ErrNoSession
}

// Close discards the lesson session of a user tab.
func (m *Manager) Close(userID, tabID string) bool {
	m.mu.Lock()
	closed := m.removeLocked(userID, tabID)
	n := m.countLocked()
	m.mu.Unlock()

	if closed {
		m.observer.ActiveSessions(n)
		slog.Info("Lesson session closed", "user_id", userID, "session_id", tabID)
	}
	return closed
}

// CloseUser discards every lesson session of a user.
func (m *Manager) CloseUser(userID string) int {
	m.mu.Lock()
	closed := len(m.active[userID])
	delete(m.active, userID)
	n := m.countLocked()
	m.mu.Unlock()

	if closed > 0 {
		m.observer.ActiveSessions(n)
		slog.Info("Lesson sessions closed", "user_id", userID, "count", closed)
	}
	return closed
}

// SessionKey identifies a learner tab.
type SessionKey struct {
	UserID string
	TabID  string
}

// Sweep discards sessions with no activity since now-idle and returns
// their keys.
func (m *Manager) Sweep(now time.Time, idle time.Duration) []SessionKey {
	threshold := now.Add(-idle)

	m.mu.Lock()
	var expired []SessionKey
	for userID, sessions := range m.active {
		for tabID, s := range sessions {
			if s.LastActive().Before(threshold) {
				expired = append(expired, SessionKey{UserID: userID, TabID: tabID})
			}
		}
	}
	for _, k := range expired {
		m.removeLocked(k.UserID, k.TabID)
	}
	n := m.countLocked()
	m.mu.Unlock()

	if len(expired) > 0 {
		m.observer.ActiveSessions(n)
	}
	return expired
}

// Count returns the number of open lesson sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLocked()
}

func (m *Manager) removeLocked(userID, tabID string) bool {
	sessions, ok := m.active[userID]
	if !ok {
		return false
	}
	if _, exists := sessions[tabID]; !exists {
		return false
	}
	delete(sessions, tabID)
	if len(sessions) == 0 {
		delete(m.active, userID)
	}
	return true
}

func (m *Manager) countLocked() int {
	n := 0
	for _, sessions := range m.active {
		n += len(sessions)
	}
	return n
}
