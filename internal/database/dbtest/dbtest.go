// Package dbtest 为测试提供一次性的 sqlite 数据库。
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"jobtrack/internal/config"
	"jobtrack/internal/database"
)

// Config 返回位于测试临时目录、启用外键约束的 sqlite 配置。
func Config(t testing.TB) config.DatabaseConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobtrack.db")
	return config.DatabaseConfig{
		Driver:      "sqlite",
		URL:         "file:" + path + "?_foreign_keys=on&_busy_timeout=5000",
		PoolSize:    1,
		MaxOverflow: 0,
		PoolTimeout: time.Second,
		PoolRecycle: time.Hour,
	}
}

// Open 返回已迁移的数据库，测试结束时自动关闭。
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.InitDatabase(Config(t))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
