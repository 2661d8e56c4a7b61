package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/goconsole/pkg/config"
	"github.com/goconsole/pkg/database"
)

// Backend 持久化键值存储
// 客户端重启后数据仍然可读
type Backend interface {
	// Get 读取键值，不存在时ok为false
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set 写入键值
	Set(ctx context.Context, key string, value []byte) error
	// Remove 删除键值，键不存在不报错
	Remove(ctx context.Context, key string) error
	// Close 释放底层资源
	Close() error
}

// Open 根据配置创建存储后端
func Open(cfg *config.StorageConfig, redisCfg *config.RedisConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "redis":
		client, err := database.OpenRedis(redisCfg)
		if err != nil {
			return nil, err
		}
		return NewRedis(client), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// SetJSON 序列化后写入
func SetJSON(ctx context.Context, b Backend, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return b.Set(ctx, key, data)
}

// GetJSON 读取并反序列化，键不存在时ok为false且不修改dest
func GetJSON(ctx context.Context, b Backend, key string, dest interface{}) (bool, error) {
	data, ok, err := b.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal value: %w", err)
	}
	return true, nil
}

// Memory 内存存储（非持久化，用于测试和临时运行）
type Memory struct {
	items map[string][]byte
	mu    sync.RWMutex
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

// Get 读取键值
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// Set 写入键值
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.mu.Lock()
	m.items[key] = cp
	m.mu.Unlock()
	return nil
}

// Remove 删除键值
func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Close 释放资源
func (m *Memory) Close() error {
	return nil
}
