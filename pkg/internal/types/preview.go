package types

import "time"

// PreviewTokenResponse 预览令牌响应体。令牌短时有效，过期后需重新申请.
type PreviewTokenResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
