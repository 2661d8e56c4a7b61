package mockapi

import (
	"time"

	"github.com/goconsole/pkg/auth"
	"gorm.io/gorm"
)

// 演示账号，密码均为123456
const seedPassword = "123456"

// Seed 填充演示数据
// 已有数据时跳过，保证重复启动幂等
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		adminRole := &Role{Name: "超级管理员", Code: "admin", Status: 1, Sort: 1, Description: "系统超级管理员"}
		testRole := &Role{Name: "测试管理员", Code: "test_admin", Status: 1, Sort: 2, Description: "测试管理员角色"}
		viewerRole := &Role{Name: "访客", Code: "viewer", Status: 1, Sort: 3, Description: "只读访客"}
		if err := tx.Create([]*Role{adminRole, testRole, viewerRole}).Error; err != nil {
			return err
		}

		lockTime := time.Now().Add(24 * time.Hour)
		users := []*User{
			{Username: "admin", Password: hash, Nickname: "管理员", Email: "admin@example.com", Phone: "13800138000", Status: 1, Roles: []*Role{adminRole}},
			{Username: "test_admin", Password: hash, Nickname: "测试管理员", Status: 1, Roles: []*Role{testRole}},
			{Username: "viewer", Password: hash, Nickname: "访客", Status: 1, Roles: []*Role{viewerRole}},
			{Username: "disabled_user", Password: hash, Nickname: "禁用用户", Status: 0},
			{Username: "locked_user", Password: hash, Nickname: "锁定用户", Status: 1, LockTime: &lockTime},
		}
		if err := tx.Create(users).Error; err != nil {
			return err
		}
		// Create会忽略带默认值标签的零值字段，禁用状态需单独写入
		if err := tx.Model(&User{}).
			Where("username = ?", "disabled_user").
			Update("status", int8(0)).Error; err != nil {
			return err
		}

		system := &Permission{Name: "系统管理", Code: "system", Type: 1, Path: "/system", Sort: 1, Status: 1}
		if err := tx.Create(system).Error; err != nil {
			return err
		}

		menus := []*Permission{
			{Pid: system.ID, Name: "用户管理", Code: "system:user", Type: 1, Path: "/system/user", Sort: 1, Status: 1},
			{Pid: system.ID, Name: "角色管理", Code: "system:role", Type: 1, Path: "/system/role", Sort: 2, Status: 1},
			{Pid: system.ID, Name: "菜单管理", Code: "system:menu", Type: 1, Path: "/system/menu", Sort: 3, Status: 1},
			{Pid: system.ID, Name: "权限管理", Code: "system:permission", Type: 1, Path: "/system/permission", Sort: 4, Status: 1},
		}
		if err := tx.Create(menus).Error; err != nil {
			return err
		}

		userMenu := menus[0]
		buttons := []*Permission{
			{Pid: userMenu.ID, Name: "用户查询", Code: "system:user:view", Type: 2, Sort: 1, Status: 1},
			{Pid: userMenu.ID, Name: "用户新增", Code: "system:user:add", Type: 2, Sort: 2, Status: 1},
			{Pid: userMenu.ID, Name: "用户编辑", Code: "system:user:edit", Type: 2, Sort: 3, Status: 1},
			{Pid: userMenu.ID, Name: "用户删除", Code: "system:user:delete", Type: 2, Sort: 4, Status: 1},
			{Pid: system.ID, Name: "测试功能", Code: "sys:test:*", Type: 2, Sort: 9, Status: 1},
		}
		if err := tx.Create(buttons).Error; err != nil {
			return err
		}

		// 测试管理员只授予测试权限，访客授予用户查询
		grants := []*RolePermission{
			{RoleID: testRole.ID, PermissionID: buttons[4].ID},
			{RoleID: viewerRole.ID, PermissionID: buttons[0].ID},
		}
		return tx.Create(grants).Error
	})
}
