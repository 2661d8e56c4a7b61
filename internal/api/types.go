package api

// UserInfo 用户信息
type UserInfo struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Nickname      string     `json:"nickname"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Avatar        string     `json:"avatar"`
	Status        int8       `json:"status"` // 0:禁用 1:启用
	LastLoginTime string     `json:"lastLoginTime,omitempty"`
	Roles         []RoleInfo `json:"roles,omitempty"`
	Permissions   []string   `json:"permissions,omitempty"` // 权限码列表
}

// RoleCodes 返回用户的角色编码列表，保持角色顺序
func (u *UserInfo) RoleCodes() []string {
	codes := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		codes = append(codes, role.RoleCode)
	}
	return codes
}

// HasPermission 检查用户是否拥有指定权限码（精确匹配）
func (u *UserInfo) HasPermission(code string) bool {
	for _, p := range u.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// RoleInfo 角色信息
type RoleInfo struct {
	ID          int64  `json:"id"`
	RoleName    string `json:"roleName"`
	RoleCode    string `json:"roleCode"`
	Description string `json:"description,omitempty"`
	Status      int8   `json:"status"`
}

// LoginParams 登录参数
type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"` // 验证码
	UUID     string `json:"uuid,omitempty"` // 验证码标识
}

// LoginResult 登录响应
type LoginResult struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// PermissionNode 服务端权限目录节点
// 仅用于权限管理界面展示，与路由树是两套独立的数据
type PermissionNode struct {
	ID             int64             `json:"id"`
	PermissionName string            `json:"permissionName"`
	PermissionCode string            `json:"permissionCode"`
	Type           string            `json:"type"` // "menu" 或 "button"
	Path           string            `json:"path,omitempty"`
	SortOrder      int               `json:"sortOrder"`
	Status         int8              `json:"status"`
	Children       []*PermissionNode `json:"children,omitempty"`
}
