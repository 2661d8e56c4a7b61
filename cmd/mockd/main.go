package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goconsole/internal/mockapi"
	"github.com/goconsole/pkg/config"
	"github.com/goconsole/pkg/logger"
	"go.uber.org/zap"
)

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

	// 创建模拟后端
	server, err := mockapi.New(&cfg.Mock, &cfg.JWT)
	if err != nil {
		logger.Fatal("创建模拟后端失败", zap.Error(err))
	}

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("收到退出信号，正在关闭")
		if err := server.Shutdown(); err != nil {
			logger.Error("关闭失败", zap.Error(err))
		}
	}()

	logger.Info("模拟后端启动", zap.String("addr", cfg.Mock.Addr()))
	if err := server.Listen(cfg.Mock.Addr()); err != nil {
		logger.Fatal("启动失败", zap.Error(err))
	}
}
