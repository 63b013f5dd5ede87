package session

import (
	"context"
	"sync"
	"time"

	"skillverify_backend/internal/model"
)

// MemoryStore is a mutex-guarded in-process store, used when no Redis is
// configured and throughout the test suites. Expiry is enforced lazily on
// every read and proactively by the Reaper.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, userID uint, skill, difficulty string, kind model.AssessmentKind, content Content) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:         model.GenerateUUID(),
		UserID:     userID,
		Skill:      skill,
		Difficulty: difficulty,
		Kind:       kind,
		Content:    content,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(id, false)
}

func (s *MemoryStore) Consume(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(id, true)
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// DeleteExpired removes every session past its expiry and reports how many
// were reaped.
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	reaped := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			reaped++
		}
	}
	return reaped, nil
}

func (s *MemoryStore) lookupLocked(id string, consume bool) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	if consume {
		delete(s.sessions, id)
	}
	return sess, nil
}
