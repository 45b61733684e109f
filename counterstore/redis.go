package counterstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementAndFlagScript makes the increment-then-threshold-check sequence a
// single atomic operation. Without it the flag could be set one attempt
// later than the ideal crossing under concurrent callers.
const incrementAndFlagScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if count > tonumber(ARGV[2]) then
  redis.call("SET", KEYS[2], "1", "PX", ARGV[3])
  return {count, 1}
end
return {count, 0}
`

var incrementAndFlagLua = redis.NewScript(incrementAndFlagScript)

// Redis is the production [Store], shared by every process instance that
// talks to the same Redis deployment.
type Redis struct {
	redis redis.UniversalClient
}

// NewRedis creates a Redis-backed [Store] on the given client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{redis: client}
}

// Increment bumps the counter, arming the TTL only on the first hit in the
// window (fixed-window semantics).
func (s *Redis) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count == 1 {
		if err := s.redis.PExpire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	return count, nil
}

// IncrementAndFlag runs the compound increment/threshold/flag sequence as
// one server-side script.
func (s *Redis) IncrementAndFlag(ctx context.Context, key string, ttl time.Duration, threshold int64, flagKey string, flagTTL time.Duration) (int64, bool, error) {
	res, err := incrementAndFlagLua.Run(ctx, s.redis,
		[]string{key, flagKey},
		ttl.Milliseconds(),
		threshold,
		flagTTL.Milliseconds(),
	).Result()
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, false, fmt.Errorf("%w: unexpected script reply %T", ErrUnavailable, res)
	}

	count, err := toInt64(vals[0])
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	flagged, err := toInt64(vals[1])
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return count, flagged == 1, nil
}

// SetFlag sets the block flag with its own TTL.
func (s *Redis) SetFlag(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// FlagExists reports flag presence without touching its TTL.
func (s *Redis) FlagExists(ctx context.Context, key string) (bool, error) {
	n, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// Delete removes counters and flags; missing keys are a no-op.
func (s *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, errors.New("non-integer script reply")
	}
}
