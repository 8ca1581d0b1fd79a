package dedup

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps visitor cursors durable across page reloads. Forward-only
// advancement is enforced server-side with a small Lua script so two
// concurrently open visitor tabs cannot rewind each other.
type RedisStore struct {
	rdb *redis.Client
}

var advanceScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local seq = tonumber(ARGV[1])
if seq > cur then
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Last(ctx context.Context, sessionId uuid.UUID, viewer string) (int64, error) {
	val, err := s.rdb.Get(ctx, cursorKey(sessionId, viewer)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (s *RedisStore) Advance(ctx context.Context, sessionId uuid.UUID, viewer string, seq int64) error {
	return advanceScript.Run(ctx, s.rdb, []string{cursorKey(sessionId, viewer)}, seq).Err()
}
