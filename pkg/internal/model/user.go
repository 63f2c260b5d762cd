// Package model 定义数据库模型，DB 为真源，部分结构化字段以 JSON 文本存储.
package model

import (
	"time"

	"gorm.io/gorm"
)

// Role 用户角色.
type Role string

const (
	RoleUser     Role = "user"
	RoleVerifier Role = "verifier"
	RoleAdmin    Role = "admin"
)

// ValidRole 校验角色名是否合法.
func ValidRole(r string) bool {
	switch Role(r) {
	case RoleUser, RoleVerifier, RoleAdmin:
		return true
	default:
		return false
	}
}

// User 用户模型。Email 大小写敏感，作为唯一登录键.
type User struct {
	ID           string `gorm:"primaryKey;size:36"      json:"id"`
	Email        string `gorm:"size:255;uniqueIndex"    json:"email"`
	Name         string `gorm:"size:255"                json:"name"`
	PasswordHash string `gorm:"size:128"                json:"-"`
	Role         Role   `gorm:"size:16;index"           json:"role"`
	Banned       bool   `gorm:"index"                   json:"banned"`
	// PasswordChangedAt 改密时间戳，令牌内嵌该值的快照；不一致的令牌一律拒绝
	PasswordChangedAt *time.Time     `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// PasswordMarker 返回凭证里内嵌的改密标记值，从未改密时为 0.
func (u *User) PasswordMarker() int64 {
	if u.PasswordChangedAt == nil {
		return 0
	}

	return u.PasswordChangedAt.Unix()
}
