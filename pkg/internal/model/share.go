package model

import (
	"time"

	"gorm.io/gorm"
)

// Share 分享链接模型。ShareID 是对外暴露的短 ID，不泄露内部文档 ID.
type Share struct {
	ShareID       string     `gorm:"primaryKey;size:64" json:"share_id"`
	DocumentID    string     `gorm:"size:36;index"      json:"-"`
	Owner         string     `gorm:"size:36;index"      json:"-"`
	AllowDownload bool       `json:"allow_download"`
	PasswordHash  string     `gorm:"size:128"           json:"-"`
	ViewCount     int        `json:"view_count"`
	DownloadCount int        `json:"download_count"`
	Revoked       bool       `gorm:"index"              json:"-"`
	ExpireAt      *time.Time `gorm:"index"              json:"expire_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Expired 判断分享是否已过期。ExpireAt 为空表示永不过期.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpireAt != nil && now.After(*s.ExpireAt)
}

// Protected 判断分享是否设有访问密码.
func (s *Share) Protected() bool {
	return s.PasswordHash != ""
}
