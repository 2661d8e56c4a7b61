package mockapi

import (
	"context"
	"errors"
	"time"

	"github.com/goconsole/internal/routes"
	"gorm.io/gorm"
)

// Repository 模拟后端仓储
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建仓储
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindUserByUsername 根据用户名查找用户，不存在返回nil
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID 根据ID查找用户，不存在返回nil
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// PermissionCodesByUser 查询用户的权限码
// 管理员角色拥有全量通配权限码
func (r *Repository) PermissionCodesByUser(ctx context.Context, user *User) ([]string, error) {
	roleIDs := make([]int64, 0, len(user.Roles))
	for _, role := range user.Roles {
		if role.Code == routes.AdminRole {
			return []string{"*:*:*"}, nil
		}
		roleIDs = append(roleIDs, role.ID)
	}
	if len(roleIDs) == 0 {
		return nil, nil
	}

	var codes []string
	err := r.db.WithContext(ctx).
		Model(&Permission{}).
		Joins("JOIN sys_role_permission ON sys_role_permission.permission_id = sys_permission.id").
		Where("sys_role_permission.role_id IN ?", roleIDs).
		Where("sys_permission.status = ?", int8(1)).
		Distinct("sys_permission.code").
		Pluck("sys_permission.code", &codes).Error
	return codes, err
}

// AllPermissions 查询全部启用的权限，按排序返回
func (r *Repository) AllPermissions(ctx context.Context) ([]*Permission, error) {
	var permissions []*Permission
	err := r.db.WithContext(ctx).
		Where("status = ?", int8(1)).
		Order("sort").
		Find(&permissions).Error
	return permissions, err
}

// TouchLastLogin 更新最后登录时间
func (r *Repository) TouchLastLogin(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("last_login_time", time.Now()).Error
}
