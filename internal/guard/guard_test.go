package guard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goconsole/internal/api"
	"github.com/goconsole/internal/permission"
	"github.com/goconsole/internal/routes"
	"github.com/goconsole/internal/session"
	"github.com/goconsole/pkg/errors"
	"github.com/goconsole/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackendAPI 同时充当认证和权限目录接口的桩
type fakeBackendAPI struct {
	mu           sync.Mutex
	profile      *api.UserInfo
	profileErr   error
	profileCalls int

	// 非nil时Profile阻塞直到该通道关闭
	profileGate chan struct{}
	// 每次Profile进入时收到通知
	profileStarted chan struct{}
}

func (f *fakeBackendAPI) Login(ctx context.Context, params *api.LoginParams) (*api.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &api.LoginResult{Token: "tok-1", User: f.profile}, nil
}

func (f *fakeBackendAPI) Profile(ctx context.Context) (*api.UserInfo, error) {
	f.mu.Lock()
	f.profileCalls++
	gate := f.profileGate
	started := f.profileStarted
	profile, err := f.profile, f.profileErr
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return profile, err
}

func (f *fakeBackendAPI) Logout(ctx context.Context) error {
	return nil
}

func (f *fakeBackendAPI) Tree(ctx context.Context) ([]*api.PermissionNode, error) {
	return nil, nil
}

func (f *fakeBackendAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileCalls
}

func adminUser() *api.UserInfo {
	return &api.UserInfo{
		ID:       1,
		Username: "admin",
		Nickname: "管理员",
		Status:   1,
		Roles: []api.RoleInfo{
			{ID: 1, RoleName: "超级管理员", RoleCode: "admin", Status: 1},
		},
		Permissions: []string{"*:*:*"},
	}
}

// fixture 守卫测试环境
type fixture struct {
	backend  *storage.Memory
	auth     *fakeBackendAPI
	session  *session.Store
	perms    *permission.Store
	registry *routes.Registry
	guard    *Guard
}

func newFixture(t *testing.T, auth *fakeBackendAPI) *fixture {
	backend := storage.NewMemory()
	sess := session.NewStore(auth, backend)
	perms := permission.NewStore(auth)

	registry, err := routes.NewRegistry(routes.PublicTree())
	require.NoError(t, err)

	sess.OnReset(perms)
	sess.OnReset(session.ResetFunc(registry.ResetDynamic))

	return &fixture{
		backend:  backend,
		auth:     auth,
		session:  sess,
		perms:    perms,
		registry: registry,
		guard:    New(sess, perms, registry, routes.AppTree(), WithProgress(NoopProgress{})),
	}
}

// withToken 预置持久化凭证并恢复会话，模拟重启后仅有凭证的状态
func (f *fixture) withToken(t *testing.T) {
	require.NoError(t, f.backend.Set(context.Background(), "token", []byte("tok-1")))
	require.NoError(t, f.session.Hydrate(context.Background()))
	require.Equal(t, "tok-1", f.session.Token())
}

func TestResolveAnonymousRedirectsToLogin(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{})

	d := f.guard.Resolve(context.Background(), "/system/user")

	assert.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/login?redirect=/system/user", d.Target)
}

func TestResolveAllowListWithoutToken(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{})

	for _, path := range []string{"/login", "/404", "/403"} {
		d := f.guard.Resolve(context.Background(), path)
		assert.Equal(t, KindAllow, d.Kind, path)
	}

	// 白名单路径不触发任何网络请求
	assert.Zero(t, f.auth.calls())
}

func TestResolveAuthenticatedErrorPages(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{profile: adminUser()})
	f.withToken(t)

	// 已登录时错误页走路由表解析，仍然可达
	for _, path := range []string{"/404", "/403"} {
		d := f.guard.Resolve(context.Background(), path)
		assert.Equal(t, KindAllow, d.Kind, path)
	}
}

func TestResolveAuthenticatedLoginPage(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{profile: adminUser()})
	f.withToken(t)

	d := f.guard.Resolve(context.Background(), "/login")

	assert.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/", d.Target)
}

func TestResolveFirstNavigationMaterializes(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{profile: adminUser()})
	f.withToken(t)

	d := f.guard.Resolve(context.Background(), "/dashboard")

	assert.Equal(t, KindAllow, d.Kind)
	assert.Equal(t, 1, f.auth.calls())
	assert.True(t, f.registry.HasDynamic())
	require.NotNil(t, f.session.UserInfo())

	// 后续导航直接走路由表，不再拉取用户信息
	d = f.guard.Resolve(context.Background(), "/system/user")
	assert.Equal(t, KindAllow, d.Kind)
	assert.Equal(t, 1, f.auth.calls())
}

func TestResolveExpiredSessionResetsAndRedirects(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{profileErr: errors.ErrSessionExpired})
	f.withToken(t)

	d := f.guard.Resolve(context.Background(), "/dashboard")

	assert.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/login?redirect=/dashboard", d.Target)

	// 会话和动态路由都已清理
	assert.Empty(t, f.session.Token())
	assert.False(t, f.registry.HasDynamic())
}

func TestResolveUnknownRoute(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{profile: adminUser()})
	f.withToken(t)

	d := f.guard.Resolve(context.Background(), "/no/such/page")

	assert.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/404", d.Target)
}

func TestResolveRouteRedirect(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{profile: adminUser()})
	f.withToken(t)

	d := f.guard.Resolve(context.Background(), "/")

	assert.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/dashboard", d.Target)
}

func TestResolveStripsQuery(t *testing.T) {
	f := newFixture(t, &fakeBackendAPI{profile: adminUser()})
	f.withToken(t)

	d := f.guard.Resolve(context.Background(), "/system/user?tab=2")
	assert.Equal(t, KindAllow, d.Kind)
}

func TestResolveRoleFilteredRoutes(t *testing.T) {
	// 测试管理员没有标注给其他角色的路由
	user := adminUser()
	user.Username = "test_admin"
	user.Roles = []api.RoleInfo{{ID: 2, RoleCode: "test_admin", Status: 1}}

	static := []*routes.Node{
		{Path: "/dashboard", Name: "Dashboard"},
		{Path: "/admin-only", Name: "AdminOnly", Meta: routes.Meta{Roles: []string{"admin"}}},
	}

	backend := storage.NewMemory()
	auth := &fakeBackendAPI{profile: user}
	sess := session.NewStore(auth, backend)
	perms := permission.NewStore(auth)
	registry, err := routes.NewRegistry(routes.PublicTree())
	require.NoError(t, err)
	g := New(sess, perms, registry, static, WithProgress(NoopProgress{}))

	require.NoError(t, backend.Set(context.Background(), "token", []byte("tok-1")))
	require.NoError(t, sess.Hydrate(context.Background()))

	d := g.Resolve(context.Background(), "/dashboard")
	assert.Equal(t, KindAllow, d.Kind)

	d = g.Resolve(context.Background(), "/admin-only")
	assert.Equal(t, KindRedirect, d.Kind)
	assert.Equal(t, "/404", d.Target)
}

func TestResolveConcurrentSingleFetch(t *testing.T) {
	auth := &fakeBackendAPI{
		profile:     adminUser(),
		profileGate: make(chan struct{}),
	}
	f := newFixture(t, auth)
	f.withToken(t)

	const n = 8
	decisions := make([]Decision, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			decisions[i] = f.guard.Resolve(context.Background(), "/dashboard")
		}(i)
	}

	// 等全部导航进入后再放行唯一一次拉取
	time.Sleep(100 * time.Millisecond)
	close(auth.profileGate)
	wg.Wait()

	assert.Equal(t, 1, f.auth.calls())
	assert.True(t, f.registry.HasDynamic())

	allows, defers := 0, 0
	for _, d := range decisions {
		switch d.Kind {
		case KindAllow:
			allows++
		case KindDefer:
			defers++
		default:
			t.Fatalf("unexpected decision: %+v", d)
		}
	}
	// 等待期间的导航被搁置，只有最新的生效
	assert.GreaterOrEqual(t, allows, 1)
	assert.Equal(t, n, allows+defers)
}

func TestResolveSupersededNavigationDeferred(t *testing.T) {
	auth := &fakeBackendAPI{
		profile:        adminUser(),
		profileGate:    make(chan struct{}),
		profileStarted: make(chan struct{}, 1),
	}
	f := newFixture(t, auth)
	f.withToken(t)

	first := make(chan Decision, 1)
	go func() {
		first <- f.guard.Resolve(context.Background(), "/dashboard")
	}()

	// 等第一次导航开始拉取后，发起更新的导航
	<-auth.profileStarted
	second := make(chan Decision, 1)
	go func() {
		second <- f.guard.Resolve(context.Background(), "/system/user")
	}()

	time.Sleep(50 * time.Millisecond)
	close(auth.profileGate)

	d1 := <-first
	d2 := <-second

	assert.Equal(t, KindDefer, d1.Kind)
	assert.Equal(t, KindAllow, d2.Kind)
	assert.Equal(t, 1, f.auth.calls())
}

func TestResolveContextCanceledWhileWaiting(t *testing.T) {
	auth := &fakeBackendAPI{
		profile:        adminUser(),
		profileGate:    make(chan struct{}),
		profileStarted: make(chan struct{}, 1),
	}
	f := newFixture(t, auth)
	f.withToken(t)

	first := make(chan Decision, 1)
	go func() {
		first <- f.guard.Resolve(context.Background(), "/dashboard")
	}()
	<-auth.profileStarted

	// 第二次导航在等待期间取消
	ctx, cancel := context.WithCancel(context.Background())
	second := make(chan Decision, 1)
	go func() {
		second <- f.guard.Resolve(ctx, "/system/user")
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	// 被取消的导航决策作废，不产生登录重定向
	d2 := <-second
	assert.Equal(t, KindDefer, d2.Kind)

	close(auth.profileGate)
	<-first

	// 会话未被取消的导航破坏
	assert.Equal(t, "tok-1", f.session.Token())
}
