package types

import "time"

// CreateShareRequest 创建分享参数.
type CreateShareRequest struct {
	// ExpiresIn 有效期：1h、24h、7d 或 never
	ExpiresIn string `form:"expires_in" json:"expires_in" rule:"required,oneof=1h 24h 7d never"`
	// Password 可选访问密码，服务端仅存 bcrypt 哈希
	Password string `form:"password" json:"password" rule:"max=72"`
	// AllowDownload 是否允许匿名下载原始文件
	AllowDownload bool `form:"allow_download" json:"allow_download"`
}

// ShareInfo 分享的属主视图.
type ShareInfo struct {
	// ShareID 对外暴露的短 ID（sh_ 前缀），不泄露内部文档 ID
	ShareID       string     `json:"share_id"`
	DocumentID    string     `json:"document_id"`
	URL           string     `json:"url"`
	AllowDownload bool       `json:"allow_download"`
	Protected     bool       `json:"protected"`
	ViewCount     int        `json:"view_count"`
	DownloadCount int        `json:"download_count"`
	Revoked       bool       `json:"revoked"`
	ExpireAt      *time.Time `json:"expire_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateShareResponse 创建分享响应体.
type CreateShareResponse struct {
	Share ShareInfo `json:"share"`
}

// ListSharesResponse 当前用户的分享列表.
type ListSharesResponse struct {
	Shares []ShareInfo `json:"shares"`
}

// ShareAccessRequest 访问受密码保护的分享时携带的参数.
type ShareAccessRequest struct {
	Password string `form:"password" json:"password"`
}

// PublicShareMeta 分享的匿名可见元信息，不含文档内容.
type PublicShareMeta struct {
	ShareID       string     `json:"share_id"`
	FileName      string     `json:"file_name"`
	Size          int64      `json:"size"`
	ContentType   string     `json:"content_type"`
	Protected     bool       `json:"protected"`
	AllowDownload bool       `json:"allow_download"`
	ExpireAt      *time.Time `json:"expire_at,omitempty"`
}

// PublicShareView 密码校验通过后的分享详情.
type PublicShareView struct {
	Meta PublicShareMeta `json:"meta"`
	// VerificationStatus 文档当前验证状态，供查看方参考
	VerificationStatus string        `json:"verification_status"`
	Analysis           *AnalysisInfo `json:"analysis,omitempty"`
}
