package mockapi

import (
	"time"

	"github.com/goconsole/pkg/dal"
)

// User 用户模型
type User struct {
	dal.Model
	Username      string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password      string     `gorm:"size:255;not null" json:"-"`
	Nickname      string     `gorm:"size:50" json:"nickname"`
	Email         string     `gorm:"size:100" json:"email"`
	Phone         string     `gorm:"size:20" json:"phone"`
	Avatar        string     `gorm:"size:255" json:"avatar"`
	Status        int8       `gorm:"default:1" json:"status"` // 1:正常 0:禁用
	LockTime      *time.Time `json:"lockTime,omitempty"`
	LastLoginTime *time.Time `json:"lastLoginTime,omitempty"`
	Roles         []*Role    `gorm:"many2many:sys_user_role;" json:"roles,omitempty"`
}

// TableName 表名
func (User) TableName() string {
	return "sys_user"
}

// Locked 是否处于锁定状态
func (u *User) Locked() bool {
	return u.LockTime != nil && u.LockTime.After(time.Now())
}

// Role 角色模型
type Role struct {
	dal.Model
	Name        string `gorm:"size:50;not null" json:"name"`
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Status      int8   `gorm:"default:1" json:"status"`
	Sort        int    `gorm:"default:0" json:"sort"`
	Description string `gorm:"size:255" json:"description"`
}

// TableName 表名
func (Role) TableName() string {
	return "sys_role"
}

// Permission 权限模型
type Permission struct {
	dal.Model
	Pid    int64  `gorm:"default:0;index" json:"pid"`
	Name   string `gorm:"size:50;not null" json:"name"`
	Code   string `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Type   int8   `gorm:"default:1" json:"type"` // 1:菜单 2:按钮
	Path   string `gorm:"size:255" json:"path"`
	Sort   int    `gorm:"default:0" json:"sort"`
	Status int8   `gorm:"default:1" json:"status"`
}

// TableName 表名
func (Permission) TableName() string {
	return "sys_permission"
}

// RolePermission 角色权限关联
type RolePermission struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID       int64 `gorm:"index:idx_role_perm;not null" json:"roleId"`
	PermissionID int64 `gorm:"index:idx_role_perm;not null" json:"permissionId"`
}

// TableName 表名
func (RolePermission) TableName() string {
	return "sys_role_permission"
}
