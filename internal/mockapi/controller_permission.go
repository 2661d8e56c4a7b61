package mockapi

import (
	"github.com/goconsole/internal/api"
	"github.com/goconsole/pkg/response"
	"github.com/goconsole/pkg/router"
	"github.com/gofiber/fiber/v2"
)

// permissionController 权限目录接口
type permissionController struct {
	server *Server
}

// Prefix 路由前缀
func (c *permissionController) Prefix() string {
	return "/api/permission"
}

// Routes 路由配置
func (c *permissionController) Routes(middlewares map[string]fiber.Handler) []router.Route {
	authMW := []fiber.Handler{middlewares["auth"]}
	return []router.Route{
		{Method: fiber.MethodGet, Path: "tree", Handler: c.tree, Middlewares: &authMW},
	}
}

// tree 完整权限目录树
func (c *permissionController) tree(ctx *fiber.Ctx) error {
	permissions, err := c.server.repo.AllPermissions(ctx.Context())
	if err != nil {
		return response.ServerError(ctx, err.Error())
	}
	return response.Success(ctx, buildPermissionTree(permissions))
}

// buildPermissionTree 按父子关系组装权限树，保持排序
func buildPermissionTree(permissions []*Permission) []*api.PermissionNode {
	nodes := make(map[int64]*api.PermissionNode, len(permissions))
	for _, p := range permissions {
		nodes[p.ID] = &api.PermissionNode{
			ID:             p.ID,
			PermissionName: p.Name,
			PermissionCode: p.Code,
			Type:           permissionTypeName(p.Type),
			Path:           p.Path,
			SortOrder:      p.Sort,
			Status:         p.Status,
		}
	}

	var roots []*api.PermissionNode
	for _, p := range permissions {
		node := nodes[p.ID]
		if parent, ok := nodes[p.Pid]; ok && p.Pid != 0 {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots
}

// permissionTypeName 权限类型名称
func permissionTypeName(t int8) string {
	switch t {
	case 2:
		return "button"
	default:
		return "menu"
	}
}
