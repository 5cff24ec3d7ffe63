package redis

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tunecrate/tunecrate/internal/api/store"
)

const sessionKeyPrefix = "sessions:"

// sessionsRepo keeps one sorted set per principal: member = jti, score =
// expiry unix seconds. Because rotation preserves the absolute expiry and
// fresh logins always expire later, expiry order doubles as creation order,
// so "lowest score" is "oldest session".
type sessionsRepo struct {
	rdb   *goredis.Client
	limit int
}

func sessionKey(userID string) string { return sessionKeyPrefix + userID }

// createScript inserts the new record and trims the set down to the cap in
// the same atomic step, evicting lowest-score (oldest) members first.
var createScript = goredis.NewScript(`
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
local n = redis.call('ZCARD', KEYS[1])
local limit = tonumber(ARGV[3])
if n > limit then
    redis.call('ZREMRANGEBYRANK', KEYS[1], 0, n - limit - 1)
end
return n
`)

// replaceScript is the consume-once rotation step: the new jti is only
// registered if removing the old one actually removed something. Two
// concurrent rotations of the same token race on the ZREM and exactly one
// wins.
var replaceScript = goredis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[2]) == 0 then
    return 0
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[3])
return 1
`)

func (r *sessionsRepo) Create(ctx context.Context, userID, jti string, expiresAt time.Time) error {
	err := createScript.Run(ctx, r.rdb,
		[]string{sessionKey(userID)},
		expiresAt.Unix(), jti, r.limit,
	).Err()
	return mapErr(err)
}

func (r *sessionsRepo) Exists(ctx context.Context, userID, jti string) (bool, error) {
	score, err := r.rdb.ZScore(ctx, sessionKey(userID), jti).Result()
	if err != nil {
		if err == goredis.Nil {
			return false, nil
		}
		return false, mapErr(err)
	}
	// A registered but already-expired record counts as absent; the pruner
	// will physically remove it later.
	return time.Now().Unix() <= int64(score), nil
}

func (r *sessionsRepo) Replace(ctx context.Context, userID, oldJTI, newJTI string, expiresAt time.Time) error {
	swapped, err := replaceScript.Run(ctx, r.rdb,
		[]string{sessionKey(userID)},
		expiresAt.Unix(), oldJTI, newJTI,
	).Int()
	if err != nil {
		return mapErr(err)
	}
	if swapped == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) Delete(ctx context.Context, userID, jti string) error {
	return mapErr(r.rdb.ZRem(ctx, sessionKey(userID), jti).Err())
}

func (r *sessionsRepo) DeleteAll(ctx context.Context, userID string) error {
	return mapErr(r.rdb.Del(ctx, sessionKey(userID)).Err())
}

func (r *sessionsRepo) PruneExpired(ctx context.Context, userID string) error {
	return mapErr(r.pruneKey(ctx, sessionKey(userID)))
}

func (r *sessionsRepo) PruneAllExpired(ctx context.Context) (int, error) {
	var pruned int
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return pruned, mapErr(err)
		}
		for _, key := range keys {
			removed, err := r.rdb.ZRemRangeByScore(ctx, key,
				"-inf", strconv.FormatInt(time.Now().Unix()-1, 10),
			).Result()
			if err != nil {
				return pruned, mapErr(err)
			}
			pruned += int(removed)
		}
		cursor = next
		if cursor == 0 {
			return pruned, nil
		}
	}
}

func (r *sessionsRepo) pruneKey(ctx context.Context, key string) error {
	return r.rdb.ZRemRangeByScore(ctx, key,
		"-inf", strconv.FormatInt(time.Now().Unix()-1, 10),
	).Err()
}
