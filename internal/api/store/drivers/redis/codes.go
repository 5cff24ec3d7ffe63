package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "verify:"

type codesRepo struct {
	rdb *goredis.Client
}

func codeKey(email string) string { return codeKeyPrefix + email }

func (r *codesRepo) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	return mapErr(r.rdb.Set(ctx, codeKey(email), code, ttl).Err())
}

func (r *codesRepo) Get(ctx context.Context, email string) (string, error) {
	code, err := r.rdb.Get(ctx, codeKey(email)).Result()
	if err != nil {
		return "", mapErr(err)
	}
	return code, nil
}

func (r *codesRepo) Delete(ctx context.Context, email string) error {
	return mapErr(r.rdb.Del(ctx, codeKey(email)).Err())
}
