package model

import (
	"time"
)

// User 用户目录模型
// 该表与外部认证/资料服务共享：凭证与资料由它们写入，
// 本服务只读取展示字段（Name/Email/Avatar/Bio）

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"type:varchar(64);not null;index;comment:显示名"`
	Email        string    `gorm:"type:varchar(128);uniqueIndex;comment:邮箱"`
	PasswordHash string    `gorm:"type:varchar(255);comment:密码哈希(认证服务拥有)"`
	Avatar       string    `gorm:"type:varchar(255);comment:头像URL"`
	Bio          string    `gorm:"type:varchar(255);comment:个人简介"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名（全局配置使用单数表名）
func (User) TableName() string { return "user" }
