package mockapi

import (
	"github.com/goconsole/pkg/auth"
	"github.com/goconsole/pkg/cache"
	"github.com/goconsole/pkg/config"
	"github.com/goconsole/pkg/database"
	"github.com/goconsole/pkg/middleware"
	"github.com/goconsole/pkg/router"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Server 模拟后端
// 提供认证和权限目录接口，数据存放在SQLite中
type Server struct {
	app     *fiber.App
	db      *gorm.DB
	jwt     *auth.JWTManager
	repo    *Repository
	revoked *cache.Cache // 已登出凭证的jti
}

// New 创建模拟后端
// 自动迁移并填充演示数据
func New(cfg *config.MockConfig, jwtCfg *config.JWTConfig) (*Server, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&User{}, &Role{}, &Permission{}, &RolePermission{}); err != nil {
		return nil, err
	}
	if err := Seed(db); err != nil {
		return nil, err
	}

	jwtManager := auth.NewJWTManager(jwtCfg)

	app := fiber.New(fiber.Config{
		AppName:               "goconsole-mockapi",
		DisableStartupMessage: true,
	})
	app.Use(middleware.RequestLog())

	s := &Server{
		app:     app,
		db:      db,
		jwt:     jwtManager,
		repo:    NewRepository(db),
		revoked: cache.New(),
	}

	middlewares := map[string]fiber.Handler{
		"auth": middleware.JWTAuth(jwtManager),
	}
	router.Register(app, middlewares,
		&authController{server: s},
		&permissionController{server: s},
	)

	return s, nil
}

// App 返回Fiber应用（测试用）
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen 启动监听
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown 关闭服务
func (s *Server) Shutdown() error {
	s.revoked.Close()
	if err := s.app.Shutdown(); err != nil {
		return err
	}
	return database.Close(s.db)
}
