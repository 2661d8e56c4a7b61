package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Item 缓存项
type Item struct {
	Value      []byte
	Expiration int64 // Unix时间戳，0表示永不过期
}

// Expired 检查是否过期
func (item *Item) Expired() bool {
	if item.Expiration == 0 {
		return false
	}
	return time.Now().UnixNano() > item.Expiration
}

// Cache 内存缓存
type Cache struct {
	items map[string]*Item
	mu    sync.RWMutex

	// 清理相关
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// New 创建新的缓存实例
func New() *Cache {
	return NewWithCleanup(5 * time.Minute)
}

// NewWithCleanup 创建带定期清理的缓存
func NewWithCleanup(cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items:           make(map[string]*Item),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.cleanupLoop()
	}

	return c
}

// cleanupLoop 定期清理过期项
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.DeleteExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

// Set 设置缓存（永不过期）
func (c *Cache) Set(key string, value interface{}) error {
	return c.SetWithExpiration(key, value, 0)
}

// SetWithExpiration 设置带过期时间的缓存
func (c *Cache) SetWithExpiration(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	var exp int64
	if expiration > 0 {
		exp = time.Now().Add(expiration).UnixNano()
	}

	c.mu.Lock()
	c.items[key] = &Item{
		Value:      data,
		Expiration: exp,
	}
	c.mu.Unlock()

	return nil
}

// Get 获取缓存并反序列化
func (c *Cache) Get(key string, dest interface{}) error {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return fmt.Errorf("key not found: %s", key)
	}

	if item.Expired() {
		c.Delete(key)
		return fmt.Errorf("key expired: %s", key)
	}

	return json.Unmarshal(item.Value, dest)
}

// Delete 删除缓存
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// DeleteExpired 删除所有过期项
func (c *Cache) DeleteExpired() {
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, item := range c.items {
		if item.Expiration > 0 && now > item.Expiration {
			delete(c.items, key)
		}
	}
}

// Exists 检查key是否存在
func (c *Cache) Exists(key string) bool {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return false
	}

	if item.Expired() {
		c.Delete(key)
		return false
	}

	return true
}

// Clear 清空所有缓存
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*Item)
	c.mu.Unlock()
}

// Close 关闭缓存（停止清理协程）
func (c *Cache) Close() {
	if c.cleanupInterval > 0 {
		close(c.stopCleanup)
	}
}
