package session

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"
)

// RedisStore keeps the session under one Redis key, optionally with a TTL.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *errors.Logger
	now    func() time.Time
}

// NewRedisStore connects to cfg.Addr and pings it.
func NewRedisStore(ctx context.Context, key string, cfg config.RedisSessionConfig, logger *errors.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewNetworkError(errors.ErrCodeSessionStoreFailed,
			"Cannot reach Redis session store", err).WithContext("addr", cfg.Addr)
	}
	logger.Debug("Redis session store ready", "addr", cfg.Addr, "db", cfg.DB, "ttl", cfg.TTL)
	return newRedisStore(client, key, cfg.TTL, logger), nil
}

func newRedisStore(client *redis.Client, key string, ttl time.Duration, logger *errors.Logger) *RedisStore {
	return &RedisStore{client: client, key: key, ttl: ttl, logger: logger, now: time.Now}
}

func (r *RedisStore) Load(ctx context.Context) (*types.AnalysisSession, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeError("load", err)
	}
	s, err := decode(data)
	if err != nil {
		r.logger.Warn("Discarding unreadable session payload", "key", r.key, "bytes", len(data))
	}
	return s, err
}

// Save overwrites the key. A zero TTL keeps it until the next write.
func (r *RedisStore) Save(ctx context.Context, s types.AnalysisSession) error {
	data, err := encode(s, r.now)
	if err != nil {
		return storeError("save", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return storeError("save", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return storeError("clear", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
