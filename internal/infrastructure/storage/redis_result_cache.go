package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/domain/port"
)

const redisKeyPrefix = "holds:"

// RedisResultCache кэш результатов детекции в Redis (JSON)
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisOptions параметры подключения
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisResultCache(opts RedisOptions, logger *zap.Logger) *RedisResultCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return &RedisResultCache{
		client: client,
		ttl:    opts.TTL,
		logger: logger,
	}
}

func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get промах кэша не считается ошибкой
func (c *RedisResultCache) Get(ctx context.Context, key string) (entity.DetectionResult, bool, error) {
	data, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.DetectionResult{}, false, nil
		}
		return entity.DetectionResult{}, false, fmt.Errorf("redis get: %w", err)
	}

	var result entity.DetectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("failed to unmarshal detection result",
			zap.String("key", key), zap.Error(err))
		return entity.DetectionResult{}, false, err
	}
	return result, true, nil
}

func (c *RedisResultCache) Set(ctx context.Context, key string, result entity.DetectionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKey(key), data, c.ttl).Err()
}

func (c *RedisResultCache) Close() error {
	return c.client.Close()
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

// Проверка реализации интерфейса
var _ port.ResultCache = (*RedisResultCache)(nil)
