package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// 键前缀，避免与其他使用者冲突
const redisKeyPrefix = "console:kv:"

// Redis Redis键值存储
type Redis struct {
	client *redis.Client
}

// NewRedis 创建Redis存储
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) key(key string) string {
	return fmt.Sprintf("%s%s", redisKeyPrefix, key)
}

// Get 读取键值
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set 写入键值
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Remove 删除键值
func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	return r.client.Close()
}
