package database

import (
	"time"
)

// User 表示系统中的账号信息，Email 作为登录名。
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;size:255;not null"`
	HashedPassword string `gorm:"size:255;not null"`
	IsActive       bool   `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Jobs           []Job `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}

// Job 表示用户记录的一条求职申请。
type Job struct {
	ID              uint    `gorm:"primaryKey"`
	Title           string  `gorm:"size:255;not null"`
	Company         string  `gorm:"size:255;not null"`
	Location        *string `gorm:"size:255"`
	Description     *string `gorm:"type:text"`
	Status          string  `gorm:"size:50;not null;index"`
	ApplicationDate *time.Time
	OwnerID         uint      `gorm:"not null;index"`
	Notes           []JobNote `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// JobNote 是附加在某条申请上的自由文本备注。
type JobNote struct {
	ID        uint      `gorm:"primaryKey"`
	Content   string    `gorm:"type:text;not null"`
	JobID     uint      `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// Models 列出 Migrate 管理的全部表，父表在前。
func Models() []any {
	return []any{&User{}, &Job{}, &JobNote{}}
}
