package repository

import (
	"context"
	"errors"

	goredis "github.com/go-redis/redis/v8"
)

type RedisMedium struct {
	rdb goredis.Cmdable
}

func NewRedisMedium(rdb goredis.Cmdable) *RedisMedium { return &RedisMedium{rdb: rdb} }

func (r *RedisMedium) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *RedisMedium) Put(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, key, value, 0).Err()
}
