package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrPoolTimeout 表示在等待时限内没有拿到空闲连接。
var ErrPoolTimeout = errors.New("database pool exhausted")

// UnitOfWork 每次调用独占一个池化连接并开启一个事务，不存在跨请求的会话。
type UnitOfWork struct {
	db          *gorm.DB
	poolTimeout time.Duration
}

// NewUnitOfWork 构造 UnitOfWork。poolTimeout 为等待连接的上限，<=0 表示不限。
func NewUnitOfWork(db *gorm.DB, poolTimeout time.Duration) *UnitOfWork {
	return &UnitOfWork{db: db, poolTimeout: poolTimeout}
}

// Do 在事务中执行 fn：返回 nil 时提交，返回错误或 panic 时回滚（panic 在回滚后重新抛出）。
// 无论哪条路径，连接都会归还连接池。
func (u *UnitOfWork) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	acquireCtx := ctx
	if u.poolTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, u.poolTimeout)
		defer cancel()
	}

	sqlDB, err := u.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap db: %w", err)
	}

	conn, err := sqlDB.Conn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: waited %s", ErrPoolTimeout, u.poolTimeout)
		}
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	session := u.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	session.Statement.ConnPool = conn

	return session.Transaction(fn)
}

// Ping 检查能否获取连接且数据库可响应。
func (u *UnitOfWork) Ping(ctx context.Context) error {
	sqlDB, err := u.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
