package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"jobtrack/internal/database"
	"jobtrack/internal/database/dbtest"
)

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&database.User{}).Count(&n).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	return n
}

func TestUnitOfWork_CommitsOnSuccess(t *testing.T) {
	db := dbtest.Open(t)
	uow := database.NewUnitOfWork(db, time.Second)

	err := uow.Do(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&database.User{Email: "a@x.com", HashedPassword: "h", IsActive: true}).Error
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	if got := countUsers(t, db); got != 1 {
		t.Fatalf("expected 1 user, got %d", got)
	}
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	uow := database.NewUnitOfWork(db, time.Second)
	boom := errors.New("boom")

	err := uow.Do(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&database.User{Email: "a@x.com", HashedPassword: "h"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if got := countUsers(t, db); got != 0 {
		t.Fatalf("expected rollback, found %d users", got)
	}
}

func TestUnitOfWork_RollsBackAndRepanics(t *testing.T) {
	db := dbtest.Open(t)
	uow := database.NewUnitOfWork(db, time.Second)

	func() {
		defer func() {
			if r := recover(); r != "kaboom" {
				t.Fatalf("expected panic to propagate, got %v", r)
			}
		}()
		_ = uow.Do(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&database.User{Email: "a@x.com", HashedPassword: "h"}).Error; err != nil {
				return err
			}
			panic("kaboom")
		})
	}()

	if got := countUsers(t, db); got != 0 {
		t.Fatalf("expected rollback after panic, found %d users", got)
	}

	// 连接必须已归还连接池
	if err := uow.Do(context.Background(), func(tx *gorm.DB) error { return nil }); err != nil {
		t.Fatalf("pool not released: %v", err)
	}
}

func TestUnitOfWork_PoolTimeout(t *testing.T) {
	db := dbtest.Open(t)
	uow := database.NewUnitOfWork(db, 50*time.Millisecond)

	err := uow.Do(context.Background(), func(tx *gorm.DB) error {
		// 连接池只有一个连接，已被外层占用
		return uow.Do(context.Background(), func(tx *gorm.DB) error { return nil })
	})
	if !errors.Is(err, database.ErrPoolTimeout) {
		t.Fatalf("expected ErrPoolTimeout, got %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := dbtest.Open(t)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUniqueEmailConstraint(t *testing.T) {
	db := dbtest.Open(t)

	if err := db.Create(&database.User{Email: "dup@x.com", HashedPassword: "h"}).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := db.Create(&database.User{Email: "dup@x.com", HashedPassword: "h"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
}
