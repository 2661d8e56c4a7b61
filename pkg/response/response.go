package response

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Response 统一响应结构
// 与前端约定：code为200表示成功
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 响应码定义
const (
	CodeSuccess           = 200
	CodeBadRequest        = 400
	CodeUnauthorized      = 401
	CodeForbidden         = 403
	CodeNotFound          = 404
	CodeServerError       = 500
	CodeInvalidCredential = 1001
	CodeAccountDisabled   = 1002
	CodeAccountLocked     = 1003
)

// 响应消息定义
const (
	MsgSuccess      = "success"
	MsgUnauthorized = "未认证"
	MsgNotFound     = "not found"
	MsgServerError  = "server error"
)

// Success 成功响应
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(http.StatusOK).JSON(Response{
		Code:    CodeSuccess,
		Message: MsgSuccess,
		Data:    data,
	})
}

// Error 错误响应
// 业务错误统一返回HTTP 200，错误信息在响应体内
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(http.StatusOK).JSON(Response{
		Code:    code,
		Message: message,
	})
}

// Unauthorized 未认证响应
func Unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = MsgUnauthorized
	}
	return c.Status(http.StatusOK).JSON(Response{
		Code:    CodeUnauthorized,
		Message: message,
	})
}

// ServerError 服务器错误响应
func ServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = MsgServerError
	}
	return c.Status(http.StatusOK).JSON(Response{
		Code:    CodeServerError,
		Message: message,
	})
}
