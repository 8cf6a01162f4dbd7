package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
)

// PasswordReset 密码重置验证码
type PasswordReset struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Email     string         `json:"email" gorm:"size:100;not null;index"`
	Token     string         `json:"-" gorm:"size:64;not null;index"`
	Used      bool           `json:"used" gorm:"default:false"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (PasswordReset) TableName() string {
	return "password_resets"
}

// IsValid 验证码未使用且未过期
func (p *PasswordReset) IsValid() bool {
	return !p.Used && time.Now().Before(p.ExpiresAt)
}

// GenerateVerificationCode 生成6位数字验证码
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
