package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTree 构造测试路由树
func testTree() []*Node {
	return []*Node{
		{
			Path: "/dashboard",
			Name: "Dashboard",
			Meta: Meta{Title: "首页"},
		},
		{
			Path: "/system",
			Name: "System",
			Meta: Meta{Title: "系统管理", Roles: []string{"admin", "test_admin"}},
			Children: []*Node{
				{
					Path: "user",
					Name: "User",
					Meta: Meta{Title: "用户管理", Roles: []string{"admin"}},
				},
				{
					Path: "test",
					Name: "Test",
					Meta: Meta{Title: "测试功能"},
				},
			},
		},
		{
			Path: "/audit",
			Name: "Audit",
			Meta: Meta{Title: "审计", Roles: []string{"auditor"}},
		},
	}
}

func TestFilterUnannotatedNodesAllowed(t *testing.T) {
	result := Filter(testTree(), []string{"viewer"})

	require.Len(t, result, 1)
	assert.Equal(t, "Dashboard", result[0].Name)
}

func TestFilterAnyRoleMatches(t *testing.T) {
	result := Filter(testTree(), []string{"viewer", "test_admin"})

	require.Len(t, result, 2)
	assert.Equal(t, "Dashboard", result[0].Name)
	assert.Equal(t, "System", result[1].Name)

	// System下只剩未标注角色的子节点
	require.Len(t, result[1].Children, 1)
	assert.Equal(t, "Test", result[1].Children[0].Name)
}

func TestFilterAncestorExclusionDominates(t *testing.T) {
	// auditor能访问Audit，但System被排除时其未标注的子节点也一并丢弃
	result := Filter(testTree(), []string{"auditor"})

	require.Len(t, result, 2)
	assert.Equal(t, "Dashboard", result[0].Name)
	assert.Equal(t, "Audit", result[1].Name)
	for _, node := range result {
		assert.NotEqual(t, "Test", node.Name)
	}
}

func TestFilterAdminBypass(t *testing.T) {
	tree := testTree()
	result := Filter(tree, []string{"viewer", "admin"})

	// 管理员拿到完整路由树
	require.Len(t, result, len(tree))
	require.Len(t, result[1].Children, 2)
	assert.Equal(t, "Audit", result[2].Name)
}

func TestFilterAdminBypassReturnsCopy(t *testing.T) {
	tree := testTree()
	result := Filter(tree, []string{"admin"})

	result[0].Name = "Mutated"
	result[1].Children[0].Meta.Roles[0] = "mutated"

	assert.Equal(t, "Dashboard", tree[0].Name)
	assert.Equal(t, "admin", tree[1].Children[0].Meta.Roles[0])
}

func TestFilterEmptyRoles(t *testing.T) {
	result := Filter(testTree(), nil)

	// 只剩未标注角色的节点
	require.Len(t, result, 1)
	assert.Equal(t, "Dashboard", result[0].Name)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	tree := testTree()
	_ = Filter(tree, []string{"test_admin"})

	require.Len(t, tree[1].Children, 2)
	assert.Equal(t, "User", tree[1].Children[0].Name)
}

func TestFilterIdempotent(t *testing.T) {
	roles := []string{"test_admin"}
	once := Filter(testTree(), roles)
	twice := Filter(once, roles)

	assert.Equal(t, once, twice)
}

func TestFilterPreservesOrder(t *testing.T) {
	tree := []*Node{
		{Path: "/a", Name: "A"},
		{Path: "/b", Name: "B", Meta: Meta{Roles: []string{"x"}}},
		{Path: "/c", Name: "C"},
		{Path: "/d", Name: "D"},
	}
	result := Filter(tree, []string{"other"})

	require.Len(t, result, 3)
	assert.Equal(t, "A", result[0].Name)
	assert.Equal(t, "C", result[1].Name)
	assert.Equal(t, "D", result[2].Name)
}
