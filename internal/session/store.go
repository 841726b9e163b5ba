package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps per-session key/value data.
type Store interface {
	Get(ctx context.Context, sid, key string) (string, bool, error)
	Set(ctx context.Context, sid, key, value string) error
	Delete(ctx context.Context, sid string, keys ...string) error
	Destroy(ctx context.Context, sid string) error
	// Rename moves every value of from to to and removes from.
	Rename(ctx context.Context, from, to string) error
}

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "session:", ttl: ttl}
}

func (s *RedisStore) key(sid string) string {
	return s.prefix + sid
}

func (s *RedisStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	val, err := s.client.HGet(ctx, s.key(sid), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(sid), key, value)
	pipe.Expire(ctx, s.key(sid), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.HDel(ctx, s.key(sid), keys...).Err()
}

func (s *RedisStore) Destroy(ctx context.Context, sid string) error {
	return s.client.Del(ctx, s.key(sid)).Err()
}

func (s *RedisStore) Rename(ctx context.Context, from, to string) error {
	vals, err := s.client.HGetAll(ctx, s.key(from)).Result()
	if err != nil {
		return fmt.Errorf("session read %s: %w", from, err)
	}

	pipe := s.client.TxPipeline()
	if len(vals) > 0 {
		args := make([]interface{}, 0, len(vals)*2)
		for k, v := range vals {
			args = append(args, k, v)
		}
		pipe.HSet(ctx, s.key(to), args...)
		pipe.Expire(ctx, s.key(to), s.ttl)
	}
	pipe.Del(ctx, s.key(from))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session rename: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store for tests and single-node development.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, sid, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[sid][key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[sid] == nil {
		s.data[sid] = make(map[string]string)
	}
	s.data[sid][key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data[sid], k)
	}
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sid)
	return nil
}

func (s *MemoryStore) Rename(_ context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vals, ok := s.data[from]; ok {
		s.data[to] = vals
		delete(s.data, from)
	}
	return nil
}
