package storage

import (
	"context"
	"errors"
	"time"

	"github.com/goconsole/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KvItem 键值存储项
type KvItem struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     []byte    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 表名
func (KvItem) TableName() string {
	return "kv_item"
}

// SQLite SQLite键值存储
type SQLite struct {
	db *gorm.DB
}

// NewSQLite 创建SQLite存储
func NewSQLite(path string) (*SQLite, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&KvItem{}); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// NewSQLiteWithDB 基于已有连接创建SQLite存储
func NewSQLiteWithDB(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&KvItem{}); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Get 读取键值
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var item KvItem
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return item.Value, true, nil
}

// Set 写入键值
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	item := KvItem{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&item).Error
}

// Remove 删除键值
func (s *SQLite) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&KvItem{}).Error
}

// Close 关闭数据库连接
func (s *SQLite) Close() error {
	return database.Close(s.db)
}
