package mockapi

import (
	"time"

	"github.com/goconsole/internal/api"
	pkgAuth "github.com/goconsole/pkg/auth"
	"github.com/goconsole/pkg/response"
	"github.com/goconsole/pkg/router"
	"github.com/gofiber/fiber/v2"
)

// authController 认证接口
type authController struct {
	server *Server
}

// Prefix 路由前缀
func (c *authController) Prefix() string {
	return "/api/auth"
}

// Routes 路由配置
func (c *authController) Routes(middlewares map[string]fiber.Handler) []router.Route {
	authMW := []fiber.Handler{middlewares["auth"]}
	return []router.Route{
		{Method: fiber.MethodPost, Path: "login", Handler: c.login},
		{Method: fiber.MethodGet, Path: "info", Handler: c.info, Middlewares: &authMW},
		{Method: fiber.MethodPost, Path: "logout", Handler: c.logout, Middlewares: &authMW},
	}
}

// login 登录
func (c *authController) login(ctx *fiber.Ctx) error {
	var params api.LoginParams
	if err := ctx.BodyParser(&params); err != nil {
		return response.Error(ctx, response.CodeBadRequest, err.Error())
	}
	if params.Username == "" || params.Password == "" {
		return response.Error(ctx, response.CodeBadRequest, "用户名和密码不能为空")
	}

	user, err := c.server.repo.FindUserByUsername(ctx.Context(), params.Username)
	if err != nil {
		return response.ServerError(ctx, err.Error())
	}
	if user == nil || !pkgAuth.CheckPassword(params.Password, user.Password) {
		return response.Error(ctx, response.CodeInvalidCredential, "用户名或密码错误")
	}
	if user.Status != 1 {
		return response.Error(ctx, response.CodeAccountDisabled, "用户已被禁用")
	}
	if user.Locked() {
		return response.Error(ctx, response.CodeAccountLocked, "用户已被锁定")
	}

	token, err := c.server.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		return response.ServerError(ctx, "生成令牌失败: "+err.Error())
	}

	if err := c.server.repo.TouchLastLogin(ctx.Context(), user.ID); err != nil {
		return response.ServerError(ctx, err.Error())
	}

	userInfo, err := c.toUserInfo(ctx, user)
	if err != nil {
		return response.ServerError(ctx, err.Error())
	}

	return response.Success(ctx, &api.LoginResult{
		Token: token,
		User:  userInfo,
	})
}

// info 当前用户信息
func (c *authController) info(ctx *fiber.Ctx) error {
	claims := ctx.Locals("claims").(*pkgAuth.Claims)

	// 已登出的凭证视为未认证
	if c.server.revoked.Exists(claims.ID) {
		return response.Unauthorized(ctx, "")
	}

	user, err := c.server.repo.FindUserByID(ctx.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(ctx, err.Error())
	}
	if user == nil || user.Status != 1 {
		return response.Unauthorized(ctx, "用户已被禁用")
	}

	userInfo, err := c.toUserInfo(ctx, user)
	if err != nil {
		return response.ServerError(ctx, err.Error())
	}
	return response.Success(ctx, userInfo)
}

// logout 登出
// 将凭证jti标记为已吊销直到自然过期
func (c *authController) logout(ctx *fiber.Ctx) error {
	claims := ctx.Locals("claims").(*pkgAuth.Claims)
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > 0 {
		_ = c.server.revoked.SetWithExpiration(claims.ID, true, ttl)
	}
	return response.Success(ctx, nil)
}

// toUserInfo 模型转响应结构
func (c *authController) toUserInfo(ctx *fiber.Ctx, user *User) (*api.UserInfo, error) {
	codes, err := c.server.repo.PermissionCodesByUser(ctx.Context(), user)
	if err != nil {
		return nil, err
	}

	roles := make([]api.RoleInfo, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, api.RoleInfo{
			ID:          role.ID,
			RoleName:    role.Name,
			RoleCode:    role.Code,
			Description: role.Description,
			Status:      role.Status,
		})
	}

	info := &api.UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Nickname:    user.Nickname,
		Email:       user.Email,
		Phone:       user.Phone,
		Avatar:      user.Avatar,
		Status:      user.Status,
		Roles:       roles,
		Permissions: codes,
	}
	if user.LastLoginTime != nil {
		info.LastLoginTime = user.LastLoginTime.Format(time.RFC3339)
	}
	return info, nil
}
