package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/goconsole/pkg/auth"
	"github.com/goconsole/pkg/logger"
	"github.com/goconsole/pkg/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// JWTAuth JWT认证中间件
func JWTAuth(jwtManager *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 从Header获取token
		token := c.Get("Authorization")
		if token == "" {
			return response.Unauthorized(c, "")
		}

		// 去除Bearer前缀
		token = strings.TrimPrefix(token, "Bearer ")

		// 验证token
		claims, err := jwtManager.ParseToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return response.Unauthorized(c, "token已过期")
			}
			return response.Unauthorized(c, "")
		}

		// 将用户信息存入上下文
		c.Locals("userId", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// RequestLog 请求日志中间件
func RequestLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)

		return err
	}
}
