package model

import (
	"time"
)

// NotificationPreferences 每用户一条的通知偏好记录，首次读取时按默认值创建.
type NotificationPreferences struct {
	UserID              string    `gorm:"primaryKey;size:36" json:"user_id"`
	EmailEnabled        bool      `json:"email_enabled"`
	ReviewUpdates       bool      `json:"review_updates"`
	ShareActivity       bool      `json:"share_activity"`
	CertificateIssued   bool      `json:"certificate_issued"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultNotificationPreferences 默认偏好：全部开启.
func DefaultNotificationPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:            userID,
		EmailEnabled:      true,
		ReviewUpdates:     true,
		ShareActivity:     true,
		CertificateIssued: true,
	}
}

// Notification 已投递的通知记录，供用户拉取.
type Notification struct {
	ID         uint      `gorm:"primaryKey"    json:"id"`
	UserID     string    `gorm:"size:36;index" json:"user_id"`
	Topic      string    `gorm:"size:128"      json:"topic"`
	DocumentID string    `gorm:"size:36"       json:"document_id,omitempty"`
	Message    string    `gorm:"type:text"     json:"message"`
	Read       bool      `gorm:"index"         json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
