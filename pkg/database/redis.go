package database

import (
	"context"
	"time"

	"github.com/goconsole/pkg/config"
	"github.com/redis/go-redis/v9"
)

// OpenRedis 打开Redis连接并测试连通性
func OpenRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
