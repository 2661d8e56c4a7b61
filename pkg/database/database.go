package database

import (
	"github.com/glebarez/sqlite"
	"github.com/goconsole/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Open 打开SQLite数据库
// path为空或":memory:"时使用内存库
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}

	gormConfig := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true, // 使用单数表名
		},
		Logger:                                   logger.NewGormLogger("warn"),
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
