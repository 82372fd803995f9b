package storage

import (
	"context"
	"fmt"

	"github.com/Domenick1991/spacevoyager/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Open builds the backend named by cfg.Storage.Driver. The returned func
// releases its connections.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		return NewMemoryStore(), func() {}, nil
	case "file", "":
		s, err := NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		s := NewPostgresStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisStore(client, cfg.Storage.Prefix), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
