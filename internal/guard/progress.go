package guard

import (
	"github.com/goconsole/pkg/logger"
	"go.uber.org/zap"
)

// ProgressHook 导航进度钩子
// 在守卫入口和出口各回调一次，用于进度条、埋点等
type ProgressHook interface {
	Start(target string)
	Done(target string, d Decision)
}

// NoopProgress 空实现
type NoopProgress struct{}

// Start 无操作
func (NoopProgress) Start(string) {}

// Done 无操作
func (NoopProgress) Done(string, Decision) {}

// LogProgress 日志进度钩子，默认实现
type LogProgress struct{}

// NewLogProgress 创建日志进度钩子
func NewLogProgress() *LogProgress {
	return &LogProgress{}
}

// Start 记录导航开始
func (*LogProgress) Start(target string) {
	logger.Debug("navigation start", zap.String("target", target))
}

// Done 记录导航结束和决策
func (*LogProgress) Done(target string, d Decision) {
	fields := []zap.Field{
		zap.String("target", target),
		zap.Int("kind", int(d.Kind)),
	}
	if d.Target != "" {
		fields = append(fields, zap.String("redirect", d.Target))
	}
	if d.Reason != "" {
		fields = append(fields, zap.String("reason", d.Reason))
	}
	logger.Debug("navigation done", fields...)
}
