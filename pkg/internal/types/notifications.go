package types

import "time"

// NotificationPreferencesBody 通知偏好的读写结构体.
type NotificationPreferencesBody struct {
	EmailEnabled      bool `json:"email_enabled"`
	ReviewUpdates     bool `json:"review_updates"`
	ShareActivity     bool `json:"share_activity"`
	CertificateIssued bool `json:"certificate_issued"`
}

// NotificationInfo 单条通知.
type NotificationInfo struct {
	ID         uint      `json:"id"`
	Topic      string    `json:"topic"`
	DocumentID string    `json:"document_id,omitempty"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListNotificationsResponse 通知列表响应体.
type ListNotificationsResponse struct {
	Notifications []NotificationInfo `json:"notifications"`
	Unread        int64              `json:"unread"`
}
