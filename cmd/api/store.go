package main

import (
	"context"
	"fmt"
	"io"

	"github.com/georgemunganga/accessories-admin/internal/config"
	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/georgemunganga/accessories-admin/internal/platform/docstore/cache"
	"github.com/georgemunganga/accessories-admin/internal/platform/docstore/sanity"
	"github.com/georgemunganga/accessories-admin/internal/platform/docstore/sqlstore"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// openStore builds the document store named by the config, wrapped in the
// Redis cache when one is configured. The returned closer releases every
// connection opened here.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (docstore.Client, io.Closer, error) {
	var (
		client  docstore.Client
		closers closeAll
	)

	switch cfg.Store.Driver {
	case "sanity":
		c, err := sanity.New(sanity.Config{
			ProjectID:  cfg.Store.Sanity.ProjectID,
			Dataset:    cfg.Store.Sanity.Dataset,
			APIVersion: cfg.Store.Sanity.APIVersion,
			Token:      cfg.Store.Sanity.Token,
			BaseURL:    cfg.Store.Sanity.BaseURL,
		}, nil)
		if err != nil {
			return nil, nil, err
		}
		client = c
		log.Info("using content platform store",
			zap.String("project", cfg.Store.Sanity.ProjectID), zap.String("dataset", cfg.Store.Sanity.Dataset))
	default:
		s, err := sqlstore.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
		}
		client = s
		closers = append(closers, s)
		log.Info("using SQL store", zap.String("driver", cfg.Store.Driver))
	}

	if cfg.Cache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			closers.Close()
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The cache is optional; reads fall through to the store.
			log.Warn("redis unreachable, cache will fall through", zap.Error(err))
		}
		closers = append(closers, rdb)
		client = cache.New(client, cache.NewRedisBackend(rdb), cfg.Cache.TTL, log.Named("cache"))
		log.Info("query cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	return client, closers, nil
}

type closeAll []io.Closer

func (c closeAll) Close() error {
	var first error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
