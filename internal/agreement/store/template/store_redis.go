package template

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
)

const (
	cacheKeyPrefix  = "nestly:tpl:"
	cacheKeyDefault = cacheKeyPrefix + "default"
)

// CachedStore decorates a TemplateStore with a Redis read-through cache.
// Templates change rarely and are read on every draft creation and preview,
// so a short TTL removes most database reads. The cache fails open: any
// Redis error falls through to the inner store.
type CachedStore struct {
	inner  agreement.TemplateStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(inner agreement.TemplateStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *CachedStore) FindByID(ctx context.Context, templateID id.TemplateID) (*agreement.Template, error) {
	return s.readThrough(ctx, cacheKeyPrefix+templateID.String(), func() (*agreement.Template, error) {
		return s.inner.FindByID(ctx, templateID)
	})
}

func (s *CachedStore) FindDefault(ctx context.Context) (*agreement.Template, error) {
	return s.readThrough(ctx, cacheKeyDefault, func() (*agreement.Template, error) {
		return s.inner.FindDefault(ctx)
	})
}

func (s *CachedStore) readThrough(ctx context.Context, key string, load func() (*agreement.Template, error)) (*agreement.Template, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var tpl agreement.Template
		if err := json.Unmarshal(raw, &tpl); err == nil {
			return &tpl, nil
		}
		// Corrupt entry. Drop it and reload.
		s.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.logger.WarnContext(ctx, "template cache read failed", "key", key, "error", err)
	}

	tpl, err := load()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(tpl); err == nil {
		if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "template cache write failed", "key", key, "error", err)
		}
	}
	return tpl, nil
}
