package session

import (
	"context"
	"sync"

	"github.com/goconsole/internal/api"
	"github.com/goconsole/pkg/errors"
	"github.com/goconsole/pkg/logger"
	"github.com/goconsole/pkg/storage"
	"go.uber.org/zap"
)

// 持久化键
const (
	storageKeyToken = "token"
	storageKeyUser  = "userInfo"
)

// Resetter 会话重置时需要联动清理的组件
type Resetter interface {
	Reset()
}

// ResetFunc 函数形式的Resetter
type ResetFunc func()

// Reset 执行清理
func (f ResetFunc) Reset() {
	f()
}

// Store 会话存储
// 持有凭证和当前用户信息，每次变更同步写入持久化存储；
// 任何失败路径都会回落到空会话状态，不会留下半套状态
type Store struct {
	mu       sync.RWMutex
	token    string
	userInfo *api.UserInfo

	auth     api.AuthAPI
	backend  storage.Backend
	cascades []Resetter
}

// NewStore 创建会话存储
func NewStore(auth api.AuthAPI, backend storage.Backend) *Store {
	return &Store{
		auth:    auth,
		backend: backend,
	}
}

// OnReset 注册会话重置时的联动清理
func (s *Store) OnReset(r Resetter) {
	s.mu.Lock()
	s.cascades = append(s.cascades, r)
	s.mu.Unlock()
}

// Hydrate 从持久化存储恢复会话
// 凭证缺失时丢弃已持久化的用户信息，保证两者一致
func (s *Store) Hydrate(ctx context.Context) error {
	data, ok, err := s.backend.Get(ctx, storageKeyToken)
	if err != nil {
		return err
	}
	if !ok || len(data) == 0 {
		// 无凭证时清掉可能残留的用户信息
		return s.backend.Remove(ctx, storageKeyUser)
	}

	var userInfo api.UserInfo
	hasUser, err := storage.GetJSON(ctx, s.backend, storageKeyUser, &userInfo)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = string(data)
	if hasUser {
		s.userInfo = &userInfo
	}
	s.mu.Unlock()

	return nil
}

// Token 当前凭证，空字符串表示未登录
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserInfo 当前用户信息，未获取时为nil
func (s *Store) UserInfo() *api.UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userInfo
}

// Login 登录
// 成功时原子地写入凭证和用户信息并持久化；失败时回到空会话状态
func (s *Store) Login(ctx context.Context, params *api.LoginParams) (*api.UserInfo, error) {
	result, err := s.auth.Login(ctx, params)
	if err != nil {
		s.Reset()
		return nil, err
	}
	if result.Token == "" || result.User == nil {
		s.Reset()
		return nil, errors.BadRequest("登录返回数据格式错误")
	}

	if err := s.persist(ctx, result.Token, result.User); err != nil {
		s.Reset()
		return nil, err
	}

	s.mu.Lock()
	s.token = result.Token
	s.userInfo = result.User
	s.mu.Unlock()

	logger.Info("login success", zap.String("username", result.User.Username))
	return result.User, nil
}

// FetchProfile 获取当前用户信息
// 无凭证时直接报错不发请求；服务端拒绝时重置会话后抛出
func (s *Store) FetchProfile(ctx context.Context) (*api.UserInfo, error) {
	if s.Token() == "" {
		return nil, errors.ErrNotAuthenticated
	}

	userInfo, err := s.auth.Profile(ctx)
	if err != nil {
		// 会话已不可用，不保留过期状态
		s.Reset()
		return nil, err
	}

	s.mu.Lock()
	token := s.token
	s.userInfo = userInfo
	s.mu.Unlock()

	if err := s.persist(ctx, token, userInfo); err != nil {
		s.Reset()
		return nil, err
	}

	return userInfo, nil
}

// Logout 登出
// 通知后端尽力而为，本地状态无条件重置
func (s *Store) Logout(ctx context.Context) {
	if s.Token() != "" {
		if err := s.auth.Logout(ctx); err != nil {
			logger.Warn("logout notify failed", zap.Error(err))
		}
	}
	s.Reset()
}

// Reset 清空会话
// 同时清除持久化数据，并联动清理注册的组件
func (s *Store) Reset() {
	s.mu.Lock()
	s.token = ""
	s.userInfo = nil
	cascades := s.cascades
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.backend.Remove(ctx, storageKeyToken); err != nil {
		logger.Warn("remove persisted token failed", zap.Error(err))
	}
	if err := s.backend.Remove(ctx, storageKeyUser); err != nil {
		logger.Warn("remove persisted user failed", zap.Error(err))
	}

	for _, r := range cascades {
		r.Reset()
	}
}

// persist 同步持久化凭证和用户信息
func (s *Store) persist(ctx context.Context, token string, userInfo *api.UserInfo) error {
	if err := s.backend.Set(ctx, storageKeyToken, []byte(token)); err != nil {
		return err
	}
	return storage.SetJSON(ctx, s.backend, storageKeyUser, userInfo)
}
