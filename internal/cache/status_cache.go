// Package cache keeps status catalog lookups in Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cardops/card-issuance-api/internal/metrics"
	"github.com/cardops/card-issuance-api/internal/models"
)

// ErrMiss is returned by a Backend when the key is absent
var ErrMiss = errors.New("cache miss")

// Backend is the key/value store the status cache writes to
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// StatusSource is the uncached catalog the cache reads through to
type StatusSource interface {
	GetStatusByCode(ctx context.Context, entity models.EntityType, code string) (*models.Status, error)
	GetStatusByID(ctx context.Context, id int64) (*models.Status, error)
	ListStatuses(ctx context.Context, entity models.EntityType) ([]models.Status, error)
	UpdateStatusDisplay(ctx context.Context, id int64, name string, sortOrder int) error
	Exists(ctx context.Context, kind models.ReferenceKind, id int64) (bool, error)
	LoadAll(ctx context.Context) (*models.ReferenceData, error)
	ListCatalog(ctx context.Context, kind models.ReferenceKind, activeOnly bool) ([]models.CatalogEntry, error)
	GetCatalogEntry(ctx context.Context, kind models.ReferenceKind, id int64) (models.CatalogEntry, error)
	CreateCatalogEntry(ctx context.Context, entry models.CatalogEntry) error
	UpdateCatalogEntry(ctx context.Context, entry models.CatalogEntry) error
}

// StatusCache wraps a StatusSource and caches single status lookups.
// Cache failures fall through to the source; they never fail the caller.
type StatusCache struct {
	StatusSource
	backend Backend
	prefix  string
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewStatusCache creates a read-through cache over source
func NewStatusCache(source StatusSource, backend Backend, prefix string, ttl time.Duration, m *metrics.Metrics, logger *logrus.Logger) *StatusCache {
	return &StatusCache{
		StatusSource: source,
		backend:      backend,
		prefix:       prefix,
		ttl:          ttl,
		metrics:      m,
		logger:       logger,
	}
}

func (c *StatusCache) codeKey(entity models.EntityType, code string) string {
	return c.prefix + "status:code:" + string(entity) + ":" + code
}

func (c *StatusCache) idKey(id int64) string {
	return c.prefix + "status:id:" + strconv.FormatInt(id, 10)
}

// GetStatusByCode returns a cached status or loads and caches it
func (c *StatusCache) GetStatusByCode(ctx context.Context, entity models.EntityType, code string) (*models.Status, error) {
	return c.readThrough(ctx, c.codeKey(entity, code), func() (*models.Status, error) {
		return c.StatusSource.GetStatusByCode(ctx, entity, code)
	})
}

// GetStatusByID returns a cached status or loads and caches it
func (c *StatusCache) GetStatusByID(ctx context.Context, id int64) (*models.Status, error) {
	return c.readThrough(ctx, c.idKey(id), func() (*models.Status, error) {
		return c.StatusSource.GetStatusByID(ctx, id)
	})
}

// UpdateStatusDisplay writes through to the source and drops both cached keys of the status
func (c *StatusCache) UpdateStatusDisplay(ctx context.Context, id int64, name string, sortOrder int) error {
	status, err := c.StatusSource.GetStatusByID(ctx, id)
	if err != nil {
		return err
	}
	if err := c.StatusSource.UpdateStatusDisplay(ctx, id, name, sortOrder); err != nil {
		return err
	}
	if err := c.backend.Delete(ctx, c.idKey(id), c.codeKey(status.EntityType, status.Code)); err != nil {
		c.logger.WithError(err).WithField("status_id", id).Warn("Failed to invalidate cached status")
	}
	return nil
}

func (c *StatusCache) readThrough(ctx context.Context, key string, load func() (*models.Status, error)) (*models.Status, error) {
	data, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		var status models.Status
		if err := json.Unmarshal(data, &status); err == nil {
			c.metrics.IncrementCacheLookup("hit")
			return &status, nil
		}
		c.metrics.IncrementCacheLookup("error")
	case errors.Is(err, ErrMiss):
		c.metrics.IncrementCacheLookup("miss")
	default:
		c.metrics.IncrementCacheLookup("error")
		c.logger.WithError(err).WithField("key", key).Warn("Status cache read failed")
	}

	status, err := load()
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(status)
	if err == nil {
		err = c.backend.Set(ctx, key, data, c.ttl)
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Status cache write failed")
	}
	return status, nil
}

// RedisBackend stores cache entries in Redis
type RedisBackend struct {
	client *redis.Client
}

// NewRedisClient parses url and builds a client
func NewRedisClient(url string, poolSize int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	return redis.NewClient(opts), nil
}

// NewRedisBackend wraps client
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
