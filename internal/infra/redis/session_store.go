package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"quiz-runner/internal/app"
	"quiz-runner/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Controllers own live timers, so they stay in a local map.
//   - Redis only carries a liveness marker per open session with a TTL, which
//     lets operators count open sessions across instances. Every session
//     transition pushes the expiry out again, so only idle sessions lapse.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Controller
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Controller),
	}
}

func (s *SessionStore) Put(session *app.Controller) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	// best-effort liveness marker
	if err := s.client.Set(context.Background(), s.key(session.ID()), "1", s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID()).Msg("mark session live")
	}

	updates, _ := session.Subscribe()
	<-updates // current state, just marked above
	go s.keepAlive(session.ID(), updates)
}

// keepAlive refreshes the marker on each transition until the session closes.
// EXPIRE never recreates a key removed by Delete.
func (s *SessionStore) keepAlive(sessionID string, updates <-chan domain.Snapshot) {
	for range updates {
		if err := s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err(); err != nil {
			log.Debug().Err(err).Str("session_id", sessionID).Msg("refresh session marker")
		}
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.client.Del(context.Background(), s.key(sessionID)).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("clear session marker")
	}
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
