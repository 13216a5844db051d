// Package statecache is an optional Redis-backed cache for collected raw
// command output, generalizing per-table operational-state caches
// (PORT_TABLE, FDB_TABLE, NEIGH_TABLE) into one cache keyed by device host
// and command text. A collector call that hits within the configured TTL
// skips the SSH round-trip entirely; a miss collects live and populates the
// cache for the next call.
package statecache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client wraps a Redis connection used to cache raw command output. The
// zero value is not usable; construct with New. A nil *Client is valid and
// behaves as "caching disabled" everywhere it is used, so callers can wire
// an optional Cache field without a nil check at every call site.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// Options configures a Client.
type Options struct {
	Addr     string
	Password string
	DB       int
	// TTL is how long a cached command's output stays valid. Defaults to
	// 30s when unset, matching the short-lived nature of collected
	// operational state.
	TTL time.Duration
}

func (o Options) ttlOrDefault() time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return 30 * time.Second
}

// New builds a Client from Options. It does not eagerly connect; the first
// Get/Set call establishes the connection.
func New(opts Options) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ttl: opts.ttlOrDefault(),
	}
}

func cacheKey(host, command string) string {
	return fmt.Sprintf("fleetsync:cmdcache:%s:%s", host, command)
}

// Get returns the cached output for host/command. ok is false on a cache
// miss or any Redis error — a cache failure degrades to a live collect, it
// is never surfaced as an error the caller must handle.
func (c *Client) Get(ctx context.Context, host, command string) (output string, ok bool) {
	if c == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, cacheKey(host, command)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores output for host/command under the client's configured TTL.
// Errors are not returned: a failed write just means the next call misses
// and collects live, same as a disabled cache.
func (c *Client) Set(ctx context.Context, host, command, output string) {
	if c == nil {
		return
	}
	c.rdb.Set(ctx, cacheKey(host, command), output, c.ttl)
}

// Invalidate drops the cached entry for host/command, forcing the next
// collector call to query the device live.
func (c *Client) Invalidate(ctx context.Context, host, command string) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, cacheKey(host, command))
}

// Close releases the underlying Redis connection. Safe to call on a nil
// Client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
