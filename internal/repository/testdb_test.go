package repository

import (
	"testing"

	"social-app/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB 打开独立的内存sqlite库并迁移全部表
// 配置与生产保持一致：单数表名、唯一键冲突翻译为 gorm.ErrDuplicatedKey
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取数据库实例失败: %v", err)
	}
	// 内存库随连接销毁，限制为单连接
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.FriendRequest{},
		&model.FriendEdge{},
		&model.Message{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}
