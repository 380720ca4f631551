package common

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Laisky/zap"
	"github.com/go-redis/redis/v8"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/common/logger"
)

var RDB redis.Cmdable

var redisEnabled atomic.Bool

func IsRedisEnabled() bool {
	return redisEnabled.Load()
}

// InitRedisClient connects the shared Redis client. Without REDIS_CONN_STRING
// the relay falls back to the in-process entitlement store.
func InitRedisClient() error {
	if config.RedisConnString == "" {
		redisEnabled.Store(false)
		logger.Logger.Info("REDIS_CONN_STRING not set, Redis is not enabled")
		return nil
	}

	opt, err := redis.ParseURL(config.RedisConnString)
	if err != nil {
		logger.Logger.Fatal("failed to parse Redis connection string", zap.Error(err))
	}
	RDB = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err = RDB.Ping(ctx).Result(); err != nil {
		logger.Logger.Fatal("Redis ping test failed", zap.Error(err))
	}
	redisEnabled.Store(true)
	logger.Logger.Info("Redis is enabled")
	return nil
}
