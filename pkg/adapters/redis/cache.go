package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aretw0/vitrine/internal/logging"
	"github.com/aretw0/vitrine/pkg/resolve"
	backend "github.com/redis/go-redis/v9"
)

// Store hands out adapter caches kept in Redis hashes, one hash per adapter
// and input type. Values are stored as JSON, so a cached value comes back in
// its JSON-decoded form.
type Store struct {
	client  *backend.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Store)

// WithTTL sets the expiration of each cached hash.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTimeout bounds every Redis round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.timeout = d
	}
}

// WithLogger sets the logger used to report Redis failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a new Redis-backed cache store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:  client,
		prefix:  "vitrine:",
		ttl:     0, // No expiration by default
		timeout: 2 * time.Second,
		logger:  logging.NewNop(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Cache returns the cache of one adapter.
func (s *Store) Cache(adapter string) *Cache {
	return &Cache{store: s, adapter: adapter}
}

// Factory plugs the store into resolve.SetCacheFactory.
func (s *Store) Factory() resolve.CacheFactory {
	return func(adapter string) resolve.Cache {
		return s.Cache(adapter)
	}
}

// Cache implements resolve.Cache for one adapter. Redis failures are logged
// and treated as cache misses.
type Cache struct {
	store   *Store
	adapter string
}

func (c *Cache) key(typeName string) string {
	return c.store.prefix + "adapter:" + c.adapter + ":" + typeName
}

func (c *Cache) indexKey() string {
	return c.store.prefix + "adapter:" + c.adapter + ":index"
}

func (c *Cache) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.store.timeout)
}

// Get returns the cached value for field on typeName.
func (c *Cache) Get(typeName, field string) (any, bool) {
	ctx, cancel := c.context()
	defer cancel()

	raw, err := c.store.client.HGet(ctx, c.key(typeName), field).Bytes()
	if err != nil {
		if err != backend.Nil {
			c.store.logger.Warn("adapter cache read failed", "adapter", c.adapter, "err", err)
		}
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		c.store.logger.Warn("adapter cache entry corrupt", "adapter", c.adapter, "type", typeName, "err", err)
		return nil, false
	}
	return v, true
}

// Set stores value for field on typeName.
func (c *Cache) Set(typeName, field string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.store.logger.Warn("adapter cache value not encodable", "adapter", c.adapter, "err", err)
		return
	}
	ctx, cancel := c.context()
	defer cancel()

	key := c.key(typeName)
	pipe := c.store.client.Pipeline()
	pipe.HSet(ctx, key, field, data)
	pipe.SAdd(ctx, c.indexKey(), key)
	if c.store.ttl > 0 {
		pipe.Expire(ctx, key, c.store.ttl)
		pipe.Expire(ctx, c.indexKey(), c.store.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.store.logger.Warn("adapter cache write failed", "adapter", c.adapter, "err", err)
	}
}

// Reset drops every hash of the adapter.
func (c *Cache) Reset() {
	ctx, cancel := c.context()
	defer cancel()

	keys, err := c.store.client.SMembers(ctx, c.indexKey()).Result()
	if err != nil && err != backend.Nil {
		c.store.logger.Warn("adapter cache reset failed", "adapter", c.adapter, "err", err)
		return
	}
	keys = append(keys, c.indexKey())
	if err := c.store.client.Del(ctx, keys...).Err(); err != nil {
		c.store.logger.Warn("adapter cache reset failed", "adapter", c.adapter, "err", err)
	}
}
