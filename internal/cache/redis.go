package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/spacevoyager/config"
	"github.com/Domenick1991/spacevoyager/internal/catalog"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		catalogTTL: catalogTTL,
	}
}

// GetCatalog returns nil without error on a cache miss.
func (c *RedisCache) GetCatalog(ctx context.Context) (*catalog.Catalog, error) {
	data, err := c.client.Get(ctx, catalogKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var snapshot catalog.Catalog
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisCache) SetCatalog(ctx context.Context, snapshot *catalog.Catalog) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey(), payload, c.catalogTTL).Err()
}

func catalogKey() string {
	return "cache:catalog"
}

var _ catalog.Cache = (*RedisCache)(nil)
