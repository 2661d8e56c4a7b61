package api

import (
	"context"

	"github.com/goconsole/pkg/transport"
)

// AuthAPI 认证接口
type AuthAPI interface {
	// Login 登录，返回凭证和用户信息
	Login(ctx context.Context, params *LoginParams) (*LoginResult, error)
	// Profile 获取当前用户信息，凭证由Transport自动携带
	Profile(ctx context.Context) (*UserInfo, error)
	// Logout 登出
	Logout(ctx context.Context) error
}

// PermissionAPI 权限目录接口
type PermissionAPI interface {
	// Tree 获取完整权限目录树
	Tree(ctx context.Context) ([]*PermissionNode, error)
}

// Client 后端API绑定
type Client struct {
	transport *transport.Client
}

// NewClient 创建API绑定
func NewClient(t *transport.Client) *Client {
	return &Client{transport: t}
}

// Login 登录
func (c *Client) Login(ctx context.Context, params *LoginParams) (*LoginResult, error) {
	var result LoginResult
	if err := c.transport.Post(ctx, "/api/auth/login", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Profile 获取当前用户信息
func (c *Client) Profile(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.transport.Get(ctx, "/api/auth/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Logout 登出
func (c *Client) Logout(ctx context.Context) error {
	return c.transport.Post(ctx, "/api/auth/logout", nil, nil)
}

// Tree 获取完整权限目录树
func (c *Client) Tree(ctx context.Context) ([]*PermissionNode, error) {
	var tree []*PermissionNode
	if err := c.transport.Get(ctx, "/api/permission/tree", nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
