package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// RoleAdmin 管理员：可管理用户、菜单、类别等
	RoleAdmin = "admin"
	// RoleUser 普通用户
	RoleUser = "user"
)

// User 用户模型
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Username    string         `json:"username" gorm:"uniqueIndex;size:50;not null"`
	FullName    string         `json:"full_name" gorm:"uniqueIndex;size:150;not null"`
	Email       string         `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password    string         `json:"-" gorm:"size:255;not null"` // bcrypt 散列，永不明文存储
	Role        string         `json:"role" gorm:"size:20;default:user;index"` // admin/user
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
