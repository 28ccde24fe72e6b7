// Package llmcache is a redis/go-redis-backed implementation of
// llm.Cache (§5 "a redis-backed cache for hosts that run more than one
// engine process"), grounded on the teacher's common/mredis.RedisConnection
// connect-once-and-reuse pattern.
package llmcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lerian-kg/kgarbiter/internal/llm"
	"github.com/lerian-kg/kgarbiter/pkg/mlog"
)

// Connection holds a single shared client, connected lazily on first use.
type Connection struct {
	ConnectionStringSource string
	Client                 *redis.Client
	Logger                 mlog.Logger
}

// Connect dials redis and pings it once, mirroring the teacher's
// RedisConnection.Connect.
func (c *Connection) Connect(ctx context.Context) error {
	if c.Logger == nil {
		c.Logger = mlog.NopLogger{}
	}

	c.Logger.Info("connecting to redis for llm response cache")

	opts, err := redis.ParseURL(c.ConnectionStringSource)
	if err != nil {
		return err
	}

	client := redis.NewClient(opts)

	if _, err := client.Ping(ctx).Result(); err != nil {
		c.Logger.Errorf("redis ping failed: %v", err)
		return err
	}

	c.Client = client

	return nil
}

func (c *Connection) getDB(ctx context.Context) (*redis.Client, error) {
	if c.Client == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.Client, nil
}

const keyPrefix = "kgarbiter:llm:"

// Cache adapts Connection to llm.Cache.
type Cache struct {
	conn *Connection
}

// NewCache wraps conn as an llm.Cache.
func NewCache(conn *Connection) *Cache {
	return &Cache{conn: conn}
}

var _ llm.Cache = (*Cache)(nil)

func (c *Cache) Get(ctx context.Context, key string) (llm.Response, bool) {
	client, err := c.conn.getDB(ctx)
	if err != nil {
		return llm.Response{}, false
	}

	raw, err := client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		return llm.Response{}, false
	}

	var resp llm.Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return llm.Response{}, false
	}

	resp.Cached = true

	return resp, true
}

func (c *Cache) Set(ctx context.Context, key string, resp llm.Response, ttl time.Duration) {
	client, err := c.conn.getDB(ctx)
	if err != nil {
		return
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return
	}

	client.Set(ctx, keyPrefix+key, b, ttl)
}
