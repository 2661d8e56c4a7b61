package routes

// AdminRole 管理员哨兵角色，拥有该角色的用户跳过路由过滤
const AdminRole = "admin"

// Meta 路由元信息
type Meta struct {
	Title     string   `json:"title,omitempty"`
	Icon      string   `json:"icon,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
	KeepAlive bool     `json:"keepAlive,omitempty"`
	// Roles 可访问角色，任一匹配即放行；为空表示不限制
	Roles []string `json:"roles,omitempty"`
	// Permissions 页面内细粒度权限码，不参与路由过滤
	Permissions []string `json:"permissions,omitempty"`
}

// Node 路由节点
// Name在整棵路由树内唯一，按名称解析路由依赖这一点
type Node struct {
	Path     string  `json:"path"`
	Name     string  `json:"name,omitempty"`
	Redirect string  `json:"redirect,omitempty"`
	Meta     Meta    `json:"meta"`
	Children []*Node `json:"children,omitempty"`
}

// Clone 深拷贝节点及其子树
func (n *Node) Clone() *Node {
	cp := *n
	cp.Meta.Roles = append([]string(nil), n.Meta.Roles...)
	cp.Meta.Permissions = append([]string(nil), n.Meta.Permissions...)
	if n.Children != nil {
		cp.Children = CloneTree(n.Children)
	}
	return &cp
}

// CloneTree 深拷贝路由树
func CloneTree(tree []*Node) []*Node {
	if tree == nil {
		return nil
	}
	res := make([]*Node, 0, len(tree))
	for _, node := range tree {
		res = append(res, node.Clone())
	}
	return res
}

// Walk 深度优先遍历路由树
// fn返回false时终止遍历
func Walk(tree []*Node, fn func(node *Node) bool) bool {
	for _, node := range tree {
		if !fn(node) {
			return false
		}
		if !Walk(node.Children, fn) {
			return false
		}
	}
	return true
}

// PublicTree 公共路由树，无需登录即可访问
func PublicTree() []*Node {
	return []*Node{
		{
			Path: "/login",
			Name: "Login",
			Meta: Meta{Title: "登录", Hidden: true},
		},
		{
			Path: "/404",
			Name: "404",
			Meta: Meta{Title: "404", Hidden: true},
		},
		{
			Path: "/403",
			Name: "403",
			Meta: Meta{Title: "403", Hidden: true},
		},
	}
}

// AppTree 应用路由树，登录后按角色过滤注册
func AppTree() []*Node {
	return []*Node{
		{
			Path:     "/",
			Name:     "Layout",
			Redirect: "/dashboard",
			Children: []*Node{
				{
					Path: "dashboard",
					Name: "Dashboard",
					Meta: Meta{Title: "首页", Icon: "dashboard", KeepAlive: true},
				},
			},
		},
		{
			Path: "/system",
			Name: "System",
			Meta: Meta{Title: "系统管理", Icon: "setting"},
			Children: []*Node{
				{
					Path: "user",
					Name: "User",
					Meta: Meta{Title: "用户管理", Icon: "user", KeepAlive: true},
				},
				{
					Path: "user/detail/:id",
					Name: "UserDetail",
					Meta: Meta{Title: "用户详情", Hidden: true},
				},
				{
					Path: "user/edit/:id",
					Name: "UserEdit",
					Meta: Meta{Title: "编辑用户", Hidden: true},
				},
				{
					Path: "role",
					Name: "Role",
					Meta: Meta{Title: "角色管理", Icon: "peoples", KeepAlive: true},
				},
				{
					Path: "role/detail/:id",
					Name: "RoleDetail",
					Meta: Meta{Title: "角色详情", Hidden: true},
				},
				{
					Path: "role/edit/:id",
					Name: "RoleEdit",
					Meta: Meta{Title: "编辑角色", Hidden: true},
				},
				{
					Path: "menu",
					Name: "Menu",
					Meta: Meta{Title: "菜单管理", Icon: "tree-table", KeepAlive: true},
				},
				{
					Path: "permission",
					Name: "Permission",
					Meta: Meta{Title: "权限管理", Icon: "lock", KeepAlive: true},
				},
			},
		},
	}
}
