// Package cache puts a read-through Redis cache in front of a docstore.Client.
//
// Query results are cached per collection (document type). Each collection has
// a generation counter that is part of every cache key; any mutation touching a
// collection bumps its counter, which orphans the old entries until they expire.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "docstore:"

var errMiss = errors.New("cache miss")

// Backend is the subset of a key-value store the cache relies on.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisBackend adapts a go-redis client.
type RedisBackend struct{ rdb *redis.Client }

func NewRedisBackend(rdb *redis.Client) *RedisBackend { return &RedisBackend{rdb: rdb} }

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errMiss
	}
	return v, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

func (b *RedisBackend) Incr(ctx context.Context, key string) (int64, error) {
	return b.rdb.Incr(ctx, key).Result()
}

// Client wraps another client. Cache failures are logged and fall through to
// the wrapped client.
type Client struct {
	next    docstore.Client
	backend Backend
	ttl     time.Duration
	log     *zap.Logger
}

var _ docstore.Client = (*Client)(nil)

func New(next docstore.Client, backend Backend, ttl time.Duration, log *zap.Logger) *Client {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Client{next: next, backend: backend, ttl: ttl, log: log}
}

func (c *Client) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	key, err := c.queryKey(ctx, q)
	if err != nil {
		c.log.Warn("cache key unavailable", zap.String("type", q.Type), zap.Error(err))
		return c.next.Query(ctx, q)
	}

	if raw, err := c.backend.Get(ctx, key); err == nil {
		var docs []docstore.Document
		if err := json.Unmarshal(raw, &docs); err == nil {
			return docs, nil
		}
	} else if !errors.Is(err, errMiss) {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	docs, err := c.next.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(docs); err == nil {
		if err := c.backend.Set(ctx, key, raw, c.ttl); err != nil {
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return docs, nil
}

func (c *Client) Get(ctx context.Context, id string) (docstore.Document, error) {
	return c.next.Get(ctx, id)
}

func (c *Client) Create(ctx context.Context, doc docstore.Document) (docstore.Document, error) {
	created, err := c.next.Create(ctx, doc)
	if err != nil {
		return created, err
	}
	c.invalidate(ctx, created.Type)
	return created, nil
}

func (c *Client) Patch(ctx context.Context, id string, set map[string]any) (docstore.Document, error) {
	patched, err := c.next.Patch(ctx, id, set)
	if err != nil {
		return patched, err
	}
	c.invalidate(ctx, patched.Type)
	return patched, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	doc, err := c.next.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, doc.Type)
	return nil
}

func (c *Client) UploadAsset(ctx context.Context, kind docstore.AssetKind, filename string, r io.Reader) (docstore.Asset, error) {
	asset, err := c.next.UploadAsset(ctx, kind, filename, r)
	if err != nil {
		return asset, err
	}
	c.invalidate(ctx, docstore.ImageAssetType)
	return asset, nil
}

// OpenAsset forwards to the wrapped client when it keeps asset bytes.
func (c *Client) OpenAsset(ctx context.Context, id string) (docstore.Asset, io.ReadCloser, error) {
	ar, ok := c.next.(docstore.AssetReader)
	if !ok {
		return docstore.Asset{}, nil, fmt.Errorf("asset %s: %w", id, docstore.ErrNotFound)
	}
	return ar.OpenAsset(ctx, id)
}

func (c *Client) invalidate(ctx context.Context, docType string) {
	if docType == "" {
		return
	}
	if _, err := c.backend.Incr(ctx, generationKey(docType)); err != nil {
		c.log.Warn("cache invalidation failed", zap.String("type", docType), zap.Error(err))
	}
}

func (c *Client) queryKey(ctx context.Context, q docstore.Query) (string, error) {
	gen := "0"
	raw, err := c.backend.Get(ctx, generationKey(q.Type))
	switch {
	case err == nil:
		gen = string(raw)
	case !errors.Is(err, errMiss):
		return "", err
	}

	ids := append([]string(nil), q.IDs...)
	sort.Strings(ids)
	matches := make([]string, 0, len(q.Match))
	for k, v := range q.Match {
		matches = append(matches, k+"="+v)
	}
	sort.Strings(matches)

	h := sha1.New()
	fmt.Fprintf(h, "%d|%s|%s", q.Order, strings.Join(ids, ","), strings.Join(matches, "&"))
	return fmt.Sprintf("%sq:%s:%s:%s", keyPrefix, q.Type, gen, hex.EncodeToString(h.Sum(nil))), nil
}

func generationKey(docType string) string {
	return keyPrefix + "gen:" + docType
}
