package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedSession is a hub identity verified earlier in the TTL window.
type CachedSession struct {
	Name   string   `json:"name"`
	Admin  bool     `json:"admin"`
	Groups []string `json:"groups"`
	Source string   `json:"source"`
}

type SessionCache interface {
	Get(ctx context.Context, credentialHash string) (*CachedSession, error)
	Set(ctx context.Context, credentialHash string, value *CachedSession, ttl time.Duration) error
}

type GroupCache interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, groups []string, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

func NewRedisClient(url string, poolSize int) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opt.PoolSize = poolSize

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

type sessionCache struct {
	client *redis.Client
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{client: client}
}

func (s *sessionCache) Get(ctx context.Context, credentialHash string) (*CachedSession, error) {
	key := fmt.Sprintf("session:hub:%s", credentialHash)
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var session CachedSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}

	return &session, nil
}

func (s *sessionCache) Set(ctx context.Context, credentialHash string, value *CachedSession, ttl time.Duration) error {
	key := fmt.Sprintf("session:hub:%s", credentialHash)
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached session: %w", err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set redis cache: %w", err)
	}

	return nil
}

type groupCache struct {
	client *redis.Client
}

func NewGroupCache(client *redis.Client) GroupCache {
	return &groupCache{client: client}
}

func (g *groupCache) Get(ctx context.Context, key string) ([]string, error) {
	val, err := g.client.Get(ctx, fmt.Sprintf("groups:%s", key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var groups []string
	if err := json.Unmarshal([]byte(val), &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached groups: %w", err)
	}

	return groups, nil
}

func (g *groupCache) Set(ctx context.Context, key string, groups []string, ttl time.Duration) error {
	data, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to marshal cached groups: %w", err)
	}

	if err := g.client.Set(ctx, fmt.Sprintf("groups:%s", key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set redis cache: %w", err)
	}

	return nil
}

func (g *groupCache) Invalidate(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, fmt.Sprintf("groups:%s", key)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}
