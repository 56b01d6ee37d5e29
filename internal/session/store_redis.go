package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gatehouse/pkg/domain"
	"gatehouse/pkg/sentinel"
)

const (
	sessionKeyPrefix = "gh:session:"
	activeIndexKey   = "gh:sessions:active"
)

// RedisStore is the production store for multi-instance deployments where
// session state must be shared. Keys expire with the session.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id domain.SessionID) string {
	return sessionKeyPrefix + id.String()
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), payload, ttl)
	if sess.Status == StatusActive {
		pipe.SAdd(ctx, activeIndexKey, sess.ID.String())
	} else {
		pipe.SRem(ctx, activeIndexKey, sess.ID.String())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id domain.SessionID) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) ListActive(ctx context.Context) ([]*Session, error) {
	ids, err := s.client.SMembers(ctx, activeIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	var out []*Session
	for _, raw := range ids {
		id, err := domain.ParseSessionID(raw)
		if err != nil {
			continue
		}
		sess, err := s.FindByID(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			// Expired body; drop the dangling index entry.
			s.client.SRem(ctx, activeIndexKey, raw)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id domain.SessionID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, activeIndexKey, id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
