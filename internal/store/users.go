// Package store 在 UnitOfWork 事务上执行类型化查询。求职记录按所有者限定，备注按父记录限定。
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"jobtrack/internal/database"
)

// CreateUser 插入启用状态的用户。同一邮箱的并发注册由唯一索引裁决，失败方得到 ErrEmailTaken。
func CreateUser(ctx context.Context, tx *gorm.DB, email, hashedPassword string) (*database.User, error) {
	user := database.User{
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

func GetUserByEmail(ctx context.Context, tx *gorm.DB, email string) (*database.User, error) {
	var user database.User
	if err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &user, nil
}

func GetUserByID(ctx context.Context, tx *gorm.DB, id uint) (*database.User, error) {
	var user database.User
	if err := tx.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &user, nil
}

// GetUserWithJobs 加载用户及其全部求职记录与备注，按创建时间倒序。
func GetUserWithJobs(ctx context.Context, tx *gorm.DB, id uint) (*database.User, error) {
	var user database.User
	err := tx.WithContext(ctx).
		Preload("Jobs", newestFirst).
		Preload("Jobs.Notes", newestFirst).
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user with jobs: %w", err)
	}
	return &user, nil
}

// SetUserActive 切换启用状态。认证中间件每次都会重新读取该标记，已签发的令牌随即失效。
func SetUserActive(ctx context.Context, tx *gorm.DB, email string, active bool) error {
	result := tx.WithContext(ctx).
		Model(&database.User{}).
		Where("email = ?", email).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("update user active flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
