// Package kv keeps the region table as a JSON document in redis.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"status-aggregator/internal/models"
	"status-aggregator/internal/regions"
)

// ErrNoTable is returned when the key holding the region table does not exist.
var ErrNoTable = errors.New("kv: region table not found")

type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Cache struct {
	Client *redis.Client
}

func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{Client: client}, nil
}

func (c *Cache) Close() error {
	return c.Client.Close()
}

// Regions returns a region source reading the given key.
func (c *Cache) Regions(key string) *RegionSource {
	return NewRegionSource(c.Client, key)
}

// RegionSource reads the region table from a single redis string key.
type RegionSource struct {
	store store
	key   string
}

func NewRegionSource(s store, key string) *RegionSource {
	return &RegionSource{store: s, key: key}
}

func (s *RegionSource) RegionTable(ctx context.Context) (models.RegionTable, error) {
	raw, err := s.store.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: key %q", ErrNoTable, s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", s.key, err)
	}
	return regions.ParseTable(raw)
}

// Put replaces the stored table. The key never expires.
func (s *RegionSource) Put(ctx context.Context, table models.RegionTable) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("marshal region table: %w", err)
	}
	if err := s.store.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", s.key, err)
	}
	return nil
}
