package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goconsole/pkg/config"
	"github.com/goconsole/pkg/errors"
	"github.com/goconsole/pkg/logger"
	"github.com/goconsole/pkg/response"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// TokenSource 当前凭证提供方
// 返回空字符串表示未登录
type TokenSource interface {
	Token() string
}

// TokenFunc 函数形式的TokenSource
type TokenFunc func() string

// Token 返回当前凭证
func (f TokenFunc) Token() string {
	return f()
}

// envelope 后端统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client HTTP客户端
// 每次请求自动携带Bearer凭证，并将业务错误码映射为应用错误
type Client struct {
	baseURL string
	timeout time.Duration
	tokens  TokenSource
	http    *fasthttp.Client
}

// New 创建HTTP客户端
func New(cfg *config.ServerConfig, tokens TokenSource) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		timeout: timeout,
		tokens:  tokens,
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

// Get GET请求
func (c *Client) Get(ctx context.Context, path string, query map[string]string, dest interface{}) error {
	return c.Send(ctx, fasthttp.MethodGet, path, nil, query, dest)
}

// Post POST请求
func (c *Client) Post(ctx context.Context, path string, body interface{}, dest interface{}) error {
	return c.Send(ctx, fasthttp.MethodPost, path, body, nil, dest)
}

// Send 发送请求并解析响应
// dest为nil时忽略响应数据
func (c *Client) Send(ctx context.Context, method, path string, body interface{}, query map[string]string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapAs(errors.ErrTransport, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	for k, v := range query {
		req.URI().QueryArgs().Set(k, v)
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.SetContentType("application/json")

	// 携带Bearer凭证
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.WrapAs(errors.ErrTransport, fmt.Errorf("marshal request body: %w", err))
		}
		req.SetBody(data)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	logger.Debug("http request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("requestId", requestID),
	)

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return errors.WrapAs(errors.ErrTransport, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return errors.WrapAs(errors.ErrTransport, fmt.Errorf("decode response: %w", err))
	}

	logger.Debug("http response",
		zap.String("path", path),
		zap.String("requestId", requestID),
		zap.Int("code", env.Code),
	)

	if err := mapBusinessError(env.Code, env.Message); err != nil {
		return err
	}

	if dest != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return errors.WrapAs(errors.ErrTransport, fmt.Errorf("decode response data: %w", err))
		}
	}

	return nil
}

// mapBusinessError 业务错误码映射
func mapBusinessError(code int, message string) error {
	switch code {
	case response.CodeSuccess:
		return nil
	case response.CodeUnauthorized:
		// 服务端认定凭证无效或已过期
		return errors.ErrSessionExpired
	case response.CodeInvalidCredential:
		return errors.ErrInvalidCredential
	case response.CodeAccountDisabled:
		return errors.ErrAccountDisabled
	case response.CodeAccountLocked:
		return errors.ErrAccountLocked
	default:
		if message == "" {
			message = "请求失败"
		}
		return errors.New(code, message)
	}
}
