package permission

import (
	"context"
	"sync"
	"time"

	"github.com/goconsole/internal/api"
	"github.com/goconsole/internal/routes"
	"github.com/goconsole/pkg/cache"
	"github.com/goconsole/pkg/logger"
	"go.uber.org/zap"
)

// 权限目录缓存键和有效期
const (
	catalogueCacheKey = "permission:tree"
	catalogueCacheTTL = 5 * time.Minute
)

// Store 权限存储
// 缓存本次会话计算出的可访问路由树和服务端权限目录；
// 两者生命周期独立：目录拉取失败不影响已计算的路由树
type Store struct {
	mu         sync.RWMutex
	accessible []*routes.Node
	computed   bool

	perms     api.PermissionAPI
	catalogue *cache.Cache
}

// NewStore 创建权限存储
func NewStore(perms api.PermissionAPI) *Store {
	return &Store{
		perms:     perms,
		catalogue: cache.NewWithCleanup(0),
	}
}

// ComputeAccessibleRoutes 按角色计算可访问路由树
// 每个会话只计算一次，重复调用返回已缓存结果；
// 需要重新计算时先调用Reset
func (s *Store) ComputeAccessibleRoutes(static []*routes.Node, roles []string) []*routes.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.computed {
		return routes.CloneTree(s.accessible)
	}

	accessible := routes.Filter(static, roles)
	s.accessible = accessible
	s.computed = true

	logger.Debug("accessible routes computed",
		zap.Strings("roles", roles),
		zap.Int("count", len(accessible)),
	)
	return routes.CloneTree(accessible)
}

// SetAccessibleRoutes 直接写入可访问路由树
func (s *Store) SetAccessibleRoutes(tree []*routes.Node) {
	s.mu.Lock()
	s.accessible = routes.CloneTree(tree)
	s.computed = true
	s.mu.Unlock()
}

// AccessibleRoutes 获取可访问路由树，未计算时ok为false
func (s *Store) AccessibleRoutes() ([]*routes.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.computed {
		return nil, false
	}
	return routes.CloneTree(s.accessible), true
}

// FetchCatalogue 拉取服务端权限目录
// 结果短暂缓存；拉取失败只影响目录展示，不影响路由树
func (s *Store) FetchCatalogue(ctx context.Context) ([]*api.PermissionNode, error) {
	var cached []*api.PermissionNode
	if err := s.catalogue.Get(catalogueCacheKey, &cached); err == nil {
		return cached, nil
	}

	tree, err := s.perms.Tree(ctx)
	if err != nil {
		logger.Warn("fetch permission catalogue failed", zap.Error(err))
		return nil, err
	}

	if err := s.catalogue.SetWithExpiration(catalogueCacheKey, tree, catalogueCacheTTL); err != nil {
		logger.Warn("cache permission catalogue failed", zap.Error(err))
	}
	return tree, nil
}

// Reset 清空权限状态
// 会话重置时必须调用，保证派生的授权数据不超过会话存活
func (s *Store) Reset() {
	s.mu.Lock()
	s.accessible = nil
	s.computed = false
	s.mu.Unlock()

	s.catalogue.Clear()
}
