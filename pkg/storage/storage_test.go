package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goconsole/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend 各后端的通用行为
func testBackend(t *testing.T, backend Backend) {
	ctx := context.Background()

	// 不存在的键
	_, ok, err := backend.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	// 写入读取
	require.NoError(t, backend.Set(ctx, "token", []byte("tok-1")))
	value, ok, err := backend.Get(ctx, "token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("tok-1"), value)

	// 覆盖写入
	require.NoError(t, backend.Set(ctx, "token", []byte("tok-2")))
	value, _, err = backend.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-2"), value)

	// 删除
	require.NoError(t, backend.Remove(ctx, "token"))
	_, ok, err = backend.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	// 删除不存在的键不报错
	require.NoError(t, backend.Remove(ctx, "missing"))
}

func TestMemoryBackend(t *testing.T) {
	backend := NewMemory()
	defer backend.Close()

	testBackend(t, backend)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	backend := NewMemory()
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("abc")))
	value, _, err := backend.Get(ctx, "k")
	require.NoError(t, err)

	value[0] = 'x'
	again, _, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestSQLiteBackend(t *testing.T) {
	backend, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer backend.Close()

	testBackend(t, backend)
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedis(client)
	defer backend.Close()

	testBackend(t, backend)
}

func TestRedisBackendKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	backend := NewRedis(client)
	defer backend.Close()

	require.NoError(t, backend.Set(context.Background(), "token", []byte("tok-1")))
	assert.True(t, mr.Exists("console:kv:token"))
}

func TestOpenFactory(t *testing.T) {
	backend, err := Open(&config.StorageConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, backend)

	backend, err = Open(&config.StorageConfig{Backend: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, backend)
	backend.Close()

	_, err = Open(&config.StorageConfig{Backend: "cassandra"}, nil)
	require.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	backend := NewMemory()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, backend, "p", &payload{Name: "a", Count: 3}))

	var out payload
	ok, err := GetJSON(ctx, backend, "p", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "a", Count: 3}, out)

	// 键不存在时不修改dest
	out = payload{Name: "keep"}
	ok, err = GetJSON(ctx, backend, "missing", &out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "keep", out.Name)
}
