package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tunecrate/tunecrate/internal/api/domain"
	"github.com/tunecrate/tunecrate/internal/api/store"
)

const opKeyPrefix = "op:"

type operationsRepo struct {
	rdb *goredis.Client
}

func opKey(id string) string { return opKeyPrefix + id }

func (r *operationsRepo) Create(ctx context.Context, id string, ttl time.Duration) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, opKey(id), "status", string(domain.OperationPending))
	pipe.Expire(ctx, opKey(id), ttl)
	_, err := pipe.Exec(ctx)
	return mapErr(err)
}

func (r *operationsRepo) Complete(ctx context.Context, id, title, filename, link string) error {
	// HSet on a vanished key would resurrect it without a TTL, so guard on
	// existence first. The worker finishing after expiry is not an error;
	// the client already saw the operation disappear.
	n, err := r.rdb.Exists(ctx, opKey(id)).Result()
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return mapErr(r.rdb.HSet(ctx, opKey(id),
		"status", string(domain.OperationReady),
		"title", title,
		"filename", filename,
		"link", link,
	).Err())
}

func (r *operationsRepo) Fail(ctx context.Context, id string, status domain.OperationStatus) error {
	n, err := r.rdb.Exists(ctx, opKey(id)).Result()
	if err != nil {
		return mapErr(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return mapErr(r.rdb.HSet(ctx, opKey(id), "status", string(status)).Err())
}

func (r *operationsRepo) Get(ctx context.Context, id string) (domain.DownloadOperation, error) {
	fields, err := r.rdb.HGetAll(ctx, opKey(id)).Result()
	if err != nil {
		return domain.DownloadOperation{}, mapErr(err)
	}
	if len(fields) == 0 {
		// HGetAll returns an empty map, not redis.Nil, for missing keys.
		return domain.DownloadOperation{}, store.ErrNotFound
	}
	return domain.DownloadOperation{
		ID:       id,
		Status:   domain.OperationStatus(fields["status"]),
		Title:    fields["title"],
		Filename: fields["filename"],
		Link:     fields["link"],
	}, nil
}

var (
	_ store.Sessions   = (*sessionsRepo)(nil)
	_ store.Codes      = (*codesRepo)(nil)
	_ store.Operations = (*operationsRepo)(nil)
)
