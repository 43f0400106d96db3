package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"auth_backend/internal/platform/config"
)

// New connects to Redis and verifies the connection with a ping. Sessions
// and rate limits live here, so the caller should treat a failure as fatal.
func New(cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	addr := cfg.RedisHost + ":" + cfg.RedisPort

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	// 接続確認
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Error().Err(err).Str("address", addr).Msg("Redis connection failed")
		return nil, err
	}

	log.Info().Str("address", addr).Msg("Redis connection successful")
	return rdb, nil
}
