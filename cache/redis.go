package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phillip/event-registration-go/payments"
)

const (
	keyPrefix  = "payment-progress:"
	defaultTTL = 5 * time.Minute
)

// Connect opens a Redis client from a redis:// URL and checks it answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// storeIfNotOlder writes ARGV[1] to every key unless the entry already there
// carries a higher version than ARGV[2].
var storeIfNotOlder = redis.NewScript(`
local written = 0
for _, key in ipairs(KEYS) do
	local current = redis.call("GET", key)
	local newer = false
	if current then
		local ok, decoded = pcall(cjson.decode, current)
		if ok and type(decoded) == "table" and tonumber(decoded.version) and tonumber(decoded.version) > tonumber(ARGV[2]) then
			newer = true
		end
	end
	if not newer then
		redis.call("SET", key, ARGV[1], "PX", ARGV[3])
		written = written + 1
	end
end
return written
`)

// entry is the stored value. An entry without progress is an invalidation
// marker and reads as a miss.
type entry struct {
	Version  int64                     `json:"version"`
	Progress *payments.PaymentProgress `json:"progress,omitempty"`
}

// ProgressCache keeps verification results in Redis as JSON. Redis errors
// are logged and treated as misses.
type ProgressCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewProgressCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ProgressCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProgressCache{client: client, ttl: ttl, logger: logger}
}

func (c *ProgressCache) Get(ctx context.Context, key string) (*payments.PaymentProgress, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "progress cache read failed", "key", key, "error", err.Error())
		}
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.WarnContext(ctx, "progress cache entry unreadable", "key", key, "error", err.Error())
		return nil, false
	}
	if e.Progress == nil {
		return nil, false
	}
	return e.Progress, true
}

// Set stores progress unless a newer entry or marker is already cached.
func (c *ProgressCache) Set(ctx context.Context, key string, progress *payments.PaymentProgress) {
	if err := c.store(ctx, entry{Version: progress.Version, Progress: progress}, key); err != nil {
		c.logger.WarnContext(ctx, "progress cache write failed", "key", key, "error", err.Error())
	}
}

// Invalidate replaces the keys with markers at version.
func (c *ProgressCache) Invalidate(ctx context.Context, version int64, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.store(ctx, entry{Version: version}, keys...); err != nil {
		c.logger.WarnContext(ctx, "progress cache invalidation failed", "keys", len(keys), "error", err.Error())
	}
}

func (c *ProgressCache) store(ctx context.Context, e entry, keys ...string) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal progress entry: %w", err)
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	return storeIfNotOlder.Run(ctx, c.client, prefixed, raw, e.Version, c.ttl.Milliseconds()).Err()
}
