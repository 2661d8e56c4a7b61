package guard

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goconsole/internal/permission"
	"github.com/goconsole/internal/routes"
	"github.com/goconsole/internal/session"
	"github.com/goconsole/pkg/logger"
	"go.uber.org/zap"
)

// 公共路径白名单，未登录也可访问
var defaultAllowList = []string{"/login", "/404", "/403"}

// Kind 导航决策类型
type Kind int

const (
	// KindAllow 放行
	KindAllow Kind = iota
	// KindRedirect 重定向到Target
	KindRedirect
	// KindDefer 本次导航已失效（被更新的导航取代或被调用方取消），决策作废
	KindDefer
)

// Decision 导航决策
// 宿主导航机制负责执行：放行、跳转或丢弃
type Decision struct {
	Kind   Kind
	Target string // 重定向目标
	Reason string // 搁置原因
}

// Allow 放行决策
func Allow() Decision {
	return Decision{Kind: KindAllow}
}

// Redirect 重定向决策
func Redirect(target string) Decision {
	return Decision{Kind: KindRedirect, Target: target}
}

// Defer 搁置决策
func Defer(reason string) Decision {
	return Decision{Kind: KindDefer, Reason: reason}
}

// Guard 导航守卫
// 每次导航前调用Resolve：读取会话状态，首次已登录导航时
// 拉取用户信息并注册可访问路由，之后的导航直接走路由表
type Guard struct {
	session  *session.Store
	perms    *permission.Store
	registry *routes.Registry
	static   []*routes.Node
	allow    map[string]struct{}
	progress ProgressHook

	// 导航序号，用于判定过期导航
	nav uint64

	// 单飞标记：同一时刻只允许一次用户信息拉取和路由注册
	mu       sync.Mutex
	inflight *flight
}

// flight 一次进行中的用户信息拉取和路由注册
type flight struct {
	done chan struct{}
	err  error
}

// Option 守卫选项
type Option func(*Guard)

// WithAllowList 覆盖白名单
func WithAllowList(paths []string) Option {
	return func(g *Guard) {
		g.allow = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			g.allow[p] = struct{}{}
		}
	}
}

// WithProgress 设置进度钩子
func WithProgress(hook ProgressHook) Option {
	return func(g *Guard) {
		g.progress = hook
	}
}

// New 创建导航守卫
// static为登录后待过滤注册的应用路由树
func New(sess *session.Store, perms *permission.Store, registry *routes.Registry, static []*routes.Node, opts ...Option) *Guard {
	g := &Guard{
		session:  sess,
		perms:    perms,
		registry: registry,
		static:   routes.CloneTree(static),
		progress: NewLogProgress(),
	}
	g.allow = make(map[string]struct{}, len(defaultAllowList))
	for _, p := range defaultAllowList {
		g.allow[p] = struct{}{}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve 解析一次导航
func (g *Guard) Resolve(ctx context.Context, target string) Decision {
	g.progress.Start(target)
	d := g.resolve(ctx, target)
	g.progress.Done(target, d)
	return d
}

func (g *Guard) resolve(ctx context.Context, target string) Decision {
	seq := atomic.AddUint64(&g.nav, 1)
	path := pathOnly(target)

	// 未登录：白名单路径放行，其余回登录页并带上原始目标
	if g.session.Token() == "" {
		if _, ok := g.allow[path]; ok {
			return Allow()
		}
		return loginRedirect(path)
	}

	// 已登录访问登录页，回应用根
	if path == "/login" {
		return Redirect("/")
	}

	// 首次已登录导航：拉取用户信息并注册可访问路由
	if g.session.UserInfo() == nil || !g.registry.HasDynamic() {
		err := g.materialize(ctx)

		// 等待期间有更新的导航进来，本次决策作废
		if atomic.LoadUint64(&g.nav) != seq {
			return Defer("superseded by newer navigation")
		}
		if err != nil {
			// 调用方自己取消的导航不再有执行者，决策作废
			if ctx.Err() != nil {
				return Defer("navigation canceled")
			}
			// 会话已在失败路径中重置
			return loginRedirect(path)
		}
	}

	// 按已注册路由解析
	match, ok := g.registry.Resolve(path)
	if !ok {
		return Redirect("/404")
	}
	if match.Node.Redirect != "" {
		return Redirect(match.Node.Redirect)
	}
	return Allow()
}

// materialize 拉取用户信息、计算并注册可访问路由
// 并发进入时只有一次真正执行，其余等待其结果；
// 失败时重置会话并清除已注册的动态路由
func (g *Guard) materialize(ctx context.Context) error {
	g.mu.Lock()
	if f := g.inflight; f != nil {
		g.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	g.inflight = f
	g.mu.Unlock()

	f.err = g.doMaterialize(ctx)

	g.mu.Lock()
	g.inflight = nil
	g.mu.Unlock()
	close(f.done)

	return f.err
}

func (g *Guard) doMaterialize(ctx context.Context) error {
	// 已有其他导航完成过注册
	if g.session.UserInfo() != nil && g.registry.HasDynamic() {
		return nil
	}

	userInfo := g.session.UserInfo()
	if userInfo == nil {
		var err error
		userInfo, err = g.session.FetchProfile(ctx)
		if err != nil {
			g.registry.ResetDynamic()
			return err
		}
	}

	roles := userInfo.RoleCodes()
	accessible := g.perms.ComputeAccessibleRoutes(g.static, roles)

	if !g.registry.HasDynamic() {
		if err := g.registry.Register(accessible); err != nil {
			logger.Error("register accessible routes failed", zap.Error(err))
			g.session.Reset()
			g.registry.ResetDynamic()
			return err
		}
	}

	logger.Info("accessible routes registered",
		zap.String("username", userInfo.Username),
		zap.Strings("roles", roles),
	)
	return nil
}

// loginRedirect 构造登录页重定向，携带原始目标
func loginRedirect(path string) Decision {
	return Redirect("/login?redirect=" + path)
}

// pathOnly 去除查询串
func pathOnly(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i]
	}
	return target
}
