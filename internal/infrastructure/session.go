package infrastructure

import (
	"sync"
	"time"

	"project_healthbot/internal/entities"
)

// languageSession is the only per-sender state the bot keeps.
type languageSession struct {
	lang      entities.Language
	updatedAt time.Time
}

// SessionManager holds each sender's preferred language in memory.
// Entries older than ttl are treated as absent; ttl <= 0 keeps them forever.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*languageSession
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*languageSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (sm *SessionManager) Language(sender string) (entities.Language, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[sender]
	if !ok || sm.expired(session) {
		return "", false
	}
	return session.lang, true
}

func (sm *SessionManager) SetLanguage(sender string, lang entities.Language) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[sender] = &languageSession{lang: lang, updatedAt: sm.now()}
}

// Prune drops expired sessions and reports how many were removed.
func (sm *SessionManager) Prune() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for sender, session := range sm.sessions {
		if sm.expired(session) {
			delete(sm.sessions, sender)
			removed++
		}
	}
	return removed
}

func (sm *SessionManager) expired(s *languageSession) bool {
	return sm.ttl > 0 && sm.now().Sub(s.updatedAt) > sm.ttl
}
