package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goconsole/internal/api"
	"github.com/goconsole/internal/guard"
	"github.com/goconsole/internal/permission"
	"github.com/goconsole/internal/routes"
	"github.com/goconsole/internal/session"
	"github.com/goconsole/pkg/config"
	"github.com/goconsole/pkg/logger"
	"github.com/goconsole/pkg/storage"
	"github.com/goconsole/pkg/transport"
	"go.uber.org/zap"
)

// 单次导航重定向上限，防止循环跳转
const maxRedirects = 8

// console 控制台交互入口
type console struct {
	session  *session.Store
	perms    *permission.Store
	registry *routes.Registry
	guard    *guard.Guard
	current  string
}

func main() {
	// 加载配置
	if err := config.Init(""); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 本地持久化
	backend, err := storage.Open(&cfg.Storage, &cfg.Redis)
	if err != nil {
		logger.Fatal("打开持久化存储失败", zap.Error(err))
	}
	defer backend.Close()

	// 会话存储为HTTP客户端提供凭证，两者互相依赖，先声明后赋值
	var sess *session.Store
	client := transport.New(&cfg.Server, transport.TokenFunc(func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	}))
	apiClient := api.NewClient(client)

	sess = session.NewStore(apiClient, backend)
	perms := permission.NewStore(apiClient)

	registry, err := routes.NewRegistry(routes.PublicTree())
	if err != nil {
		logger.Fatal("初始化路由表失败", zap.Error(err))
	}

	// 会话重置时联动清理权限状态和动态路由
	sess.OnReset(perms)
	sess.OnReset(session.ResetFunc(registry.ResetDynamic))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := sess.Hydrate(ctx); err != nil {
		logger.Warn("恢复会话失败", zap.Error(err))
	}
	cancel()

	c := &console{
		session:  sess,
		perms:    perms,
		registry: registry,
		guard:    guard.New(sess, perms, registry, routes.AppTree()),
		current:  "/login",
	}

	fmt.Printf("%s %s\n", cfg.App.Name, cfg.App.Version)
	fmt.Println("输入 help 查看可用命令")
	c.run()
}

// run 命令循环
func (c *console) run() {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", c.current)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "login":
			c.cmdLogin(args)
		case "logout":
			c.cmdLogout()
		case "goto":
			c.cmdGoto(args)
		case "routes":
			c.cmdRoutes()
		case "whoami":
			c.cmdWhoami()
		case "perms":
			c.cmdPerms()
		case "help":
			c.cmdHelp()
		case "exit", "quit":
			return
		default:
			fmt.Printf("未知命令: %s，输入 help 查看可用命令\n", cmd)
		}
	}
}

// cmdLogin 登录并跳转到登录前的目标
func (c *console) cmdLogin(args []string) {
	if len(args) != 2 {
		fmt.Println("用法: login <用户名> <密码>")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := c.session.Login(ctx, &api.LoginParams{
		Username: args[0],
		Password: args[1],
	})
	if err != nil {
		fmt.Printf("登录失败: %v\n", err)
		return
	}
	fmt.Printf("欢迎，%s\n", user.Nickname)

	// 优先回到登录前想去的页面
	target := "/"
	if i := strings.Index(c.current, "?redirect="); i >= 0 {
		target = c.current[i+len("?redirect="):]
	}
	c.navigate(target)
}

// cmdLogout 登出并回登录页
func (c *console) cmdLogout() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c.session.Logout(ctx)
	fmt.Println("已登出")
	c.navigate("/login")
}

// cmdGoto 导航到指定路径
func (c *console) cmdGoto(args []string) {
	if len(args) != 1 {
		fmt.Println("用法: goto <路径>")
		return
	}
	c.navigate(args[0])
}

// cmdRoutes 列出当前已注册的路由
func (c *console) cmdRoutes() {
	tree := c.registry.Routes()
	if len(tree) == 0 {
		fmt.Println("  (无)")
		return
	}
	printRouteTree(tree, "")
}

// printRouteTree 按完整路径打印路由树
func printRouteTree(tree []*routes.Node, base string) {
	for _, node := range tree {
		fullPath := node.Path
		if !strings.HasPrefix(fullPath, "/") {
			fullPath = strings.TrimSuffix(base, "/") + "/" + fullPath
		}
		fmt.Printf("  %-32s %-16s %s\n", fullPath, node.Name, node.Meta.Title)
		printRouteTree(node.Children, fullPath)
	}
}

// cmdWhoami 显示当前用户
func (c *console) cmdWhoami() {
	userInfo := c.session.UserInfo()
	if userInfo == nil {
		fmt.Println("未登录")
		return
	}
	fmt.Printf("用户: %s (%s)\n", userInfo.Username, userInfo.Nickname)
	for _, role := range userInfo.Roles {
		fmt.Printf("角色: %s (%s)\n", role.RoleName, role.RoleCode)
	}
	if len(userInfo.Permissions) > 0 {
		fmt.Printf("权限: %s\n", strings.Join(userInfo.Permissions, ", "))
	}
}

// cmdPerms 显示权限目录树
func (c *console) cmdPerms() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tree, err := c.perms.FetchCatalogue(ctx)
	if err != nil {
		fmt.Printf("获取权限目录失败: %v\n", err)
		return
	}
	printPermissionTree(tree, 0)
}

// cmdHelp 帮助
func (c *console) cmdHelp() {
	fmt.Println("可用命令:")
	fmt.Println("  login <用户名> <密码>  登录")
	fmt.Println("  logout                登出")
	fmt.Println("  goto <路径>           导航到指定路径")
	fmt.Println("  routes                列出已注册路由")
	fmt.Println("  whoami                显示当前用户")
	fmt.Println("  perms                 显示权限目录树")
	fmt.Println("  exit                  退出")
}

// navigate 执行一次导航，跟随重定向直到放行
func (c *console) navigate(target string) {
	for i := 0; i < maxRedirects; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		decision := c.guard.Resolve(ctx, target)
		cancel()

		switch decision.Kind {
		case guard.KindAllow:
			c.current = target
			fmt.Printf("当前位置: %s\n", target)
			return
		case guard.KindRedirect:
			fmt.Printf("跳转: %s -> %s\n", target, decision.Target)
			target = decision.Target
		case guard.KindDefer:
			fmt.Printf("导航已被取代: %s\n", decision.Reason)
			return
		}
	}
	fmt.Println("重定向次数过多，导航中止")
}

// printPermissionTree 缩进打印权限树
func printPermissionTree(nodes []*api.PermissionNode, depth int) {
	indent := strings.Repeat("  ", depth+1)
	for _, node := range nodes {
		fmt.Printf("%s%-10s %-24s %s\n", indent, node.Type, node.PermissionCode, node.PermissionName)
		printPermissionTree(node.Children, depth+1)
	}
}
