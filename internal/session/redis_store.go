package session

import (
	"context"
	"encoding/json"
	"time"

	"skillverify_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "assessment:session:"

// RedisStore keeps sessions in Redis. TTL expiry is enforced by Redis
// itself; Consume relies on GETDEL so that two concurrent grading calls
// against one id cannot both succeed.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, userID uint, skill, difficulty string, kind model.AssessmentKind, content Content) (*Session, error) {
	now := time.Now()
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

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}

	if err := s.rdb.Set(ctx, keyPrefix+sess.ID, payload, s.ttl).Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.decode(ctx, id, payload)
}

func (s *RedisStore) Consume(ctx context.Context, id string) (*Session, error) {
	payload, err := s.rdb.GetDel(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.decode(ctx, id, payload)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}

// decode also re-checks the recorded expiry: a submission racing the Redis
// reaper must still lose.
func (s *RedisStore) decode(ctx context.Context, id string, payload []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		s.rdb.Del(ctx, keyPrefix+id)
		return nil, ErrNotFound
	}
	return &sess, nil
}
