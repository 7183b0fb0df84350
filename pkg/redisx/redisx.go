package redisx

import (
	"github.com/redis/go-redis/v9"

	"github.com/olyadmengistu/quicktalk/configs"
)

// Open builds a client from config. Connection errors surface on first use.
func Open(cfg *configs.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
}
