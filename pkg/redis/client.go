package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	defaultNamespace = "ecofinds"
	statePrefix      = "state"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	MSet(context.Context, ...any) *redis.StatusCmd
}

// Client wraps the redis connection helpers needed by the marketplace.
type Client struct {
	store     cmdable
	raw       *redis.Client
	namespace string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, namespace string, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "addr", opts.Addr), "redis connection established")
	}
	return &Client{store: raw, raw: raw, namespace: namespace}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// GetBytes returns the raw value stored under the state key; ok is false when
// the key does not exist.
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if c.store == nil {
		return nil, false, errors.New("redis client not initialized")
	}
	value, err := c.store.Get(ctx, c.StateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

// SetBytes writes the state key without expiry.
func (c *Client) SetBytes(ctx context.Context, key string, value []byte) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	if err := c.store.Set(ctx, c.StateKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// SetManyBytes writes every state key with a single MSET, which Redis applies
// atomically.
func (c *Client) SetManyBytes(ctx context.Context, values map[string][]byte) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	if len(values) == 0 {
		return nil
	}
	pairs := make([]any, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, c.StateKey(key), value)
	}
	if err := c.store.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("redis mset %d keys: %w", len(values), err)
	}
	return nil
}

// StateKey returns the namespaced key for a marketplace collection.
func (c *Client) StateKey(name string) string {
	return c.buildKey(statePrefix, name)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	namespace := c.namespace
	if namespace == "" {
		namespace = defaultNamespace
	}
	clean := []string{namespace}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}

// StateStore adapts Client to the byte-oriented key-value contract of the
// marketplace store.
type StateStore struct {
	client *Client
}

// NewStateStore wraps client.
func NewStateStore(client *Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.client.GetBytes(ctx, key)
}

func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.SetBytes(ctx, key, value)
}

// SetMany writes several collections in one round trip.
func (s *StateStore) SetMany(ctx context.Context, values map[string][]byte) error {
	return s.client.SetManyBytes(ctx, values)
}
