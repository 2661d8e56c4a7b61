package routes

// Filter 按角色过滤路由树
// 未标注Roles的节点默认放行；标注了Roles的节点需任一角色匹配；
// 父节点被排除时整棵子树被丢弃。返回结构拷贝，不修改输入
func Filter(tree []*Node, roles []string) []*Node {
	// 管理员直接返回完整路由树
	for _, role := range roles {
		if role == AdminRole {
			return CloneTree(tree)
		}
	}
	return filterTree(tree, roles)
}

// filterTree 递归过滤
func filterTree(tree []*Node, roles []string) []*Node {
	res := make([]*Node, 0, len(tree))
	for _, node := range tree {
		if !hasRouteAccess(roles, node) {
			continue
		}
		cp := *node
		cp.Children = filterTree(node.Children, roles)
		res = append(res, &cp)
	}
	return res
}

// hasRouteAccess 判断角色是否可访问节点
func hasRouteAccess(roles []string, node *Node) bool {
	if len(node.Meta.Roles) == 0 {
		return true
	}
	for _, role := range roles {
		for _, required := range node.Meta.Roles {
			if role == required {
				return true
			}
		}
	}
	return false
}
