package form

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by FormCache.Get when nothing is cached.
var ErrCacheMiss = errors.New("cache miss")

type FormCache interface {
	Set(ctx context.Context, f Form) error
	Get(ctx context.Context, id string) (Form, error)
	Delete(ctx context.Context, id string) error
}

type redisFormCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFormCache(client *redis.Client, ttl time.Duration) FormCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisFormCache{client: client, ttl: ttl}
}

func formKey(id string) string { return "form:" + id }

func (c *redisFormCache) Set(ctx context.Context, f Form) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, formKey(f.ID), data, c.ttl).Err()
}

func (c *redisFormCache) Get(ctx context.Context, id string) (Form, error) {
	data, err := c.client.Get(ctx, formKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Form{}, ErrCacheMiss
	}
	if err != nil {
		return Form{}, err
	}
	var f Form
	err = json.Unmarshal(data, &f)
	return f, err
}

func (c *redisFormCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, formKey(id)).Err()
}

// CachedStore serves GetForm from a FormCache and invalidates on writes.
// Cache failures degrade to the underlying store.
type CachedStore struct {
	Store
	cache FormCache
	log   *slog.Logger
}

func NewCachedStore(s Store, c FormCache, log *slog.Logger) *CachedStore {
	if log == nil {
		log = slog.Default()
	}
	return &CachedStore{Store: s, cache: c, log: log}
}

func (s *CachedStore) GetForm(ctx context.Context, id string) (Form, error) {
	f, err := s.cache.Get(ctx, id)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.Warn("form cache read failed", "form_id", id, "error", err)
	}
	f, err = s.Store.GetForm(ctx, id)
	if err != nil {
		return Form{}, err
	}
	if err := s.cache.Set(ctx, f); err != nil {
		s.log.Warn("form cache write failed", "form_id", id, "error", err)
	}
	return f, nil
}

func (s *CachedStore) PutForm(ctx context.Context, f Form) (Form, error) {
	out, err := s.Store.PutForm(ctx, f)
	s.invalidate(ctx, out.ID)
	return out, err
}

func (s *CachedStore) UpdateForm(ctx context.Context, f Form) (Form, error) {
	out, err := s.Store.UpdateForm(ctx, f)
	s.invalidate(ctx, f.ID)
	return out, err
}

func (s *CachedStore) DeleteForm(ctx context.Context, id string) error {
	err := s.Store.DeleteForm(ctx, id)
	s.invalidate(ctx, id)
	return err
}

func (s *CachedStore) invalidate(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("form cache invalidation failed", "form_id", id, "error", err)
	}
}
