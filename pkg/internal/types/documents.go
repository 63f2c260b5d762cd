package types

import "time"

// DocumentInfo 文档的对外视图，不暴露对象键与提取文本.
type DocumentInfo struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Category    string `json:"category,omitempty"`
	// FileHash 内容 SHA-256（hex）
	FileHash string `json:"file_hash"`
	// Signature 服务端对 FileHash 的 RSA-PSS 签名（hex）
	Signature          string         `json:"signature,omitempty"`
	VerificationStatus string         `json:"verification_status"`
	VerificationCount  int            `json:"verification_count"`
	DownloadCount      int            `json:"download_count"`
	AssignedVerifier   string         `json:"assigned_verifier,omitempty"`
	Analysis           *AnalysisInfo  `json:"analysis,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          *time.Time     `json:"deleted_at,omitempty"`
}

// AnalysisInfo AI 分析结果的对外视图.
type AnalysisInfo struct {
	AuthenticityScore float64   `json:"authenticity_score"`
	RiskLevel         string    `json:"risk_level"`
	Flags             []string  `json:"flags"`
	Summary           string    `json:"summary"`
	Confidence        float64   `json:"confidence"`
	ProcessingTimeMS  int64     `json:"processing_time_ms"`
	AnalyzedAt        time.Time `json:"analyzed_at"`
}

// UploadDocumentResponse 上传成功的响应体.
type UploadDocumentResponse struct {
	Document DocumentInfo `json:"document"`
}

// ListDocumentsRequest 文档列表查询参数.
type ListDocumentsRequest struct {
	// Page 页码，从 1 开始
	Page int `form:"page" json:"page"`
	// PageSize 每页条数，默认 20，上限 100
	PageSize int `form:"page_size" json:"page_size"`
	// Category 按分类过滤
	Category string `form:"category" json:"category"`
	// Status 按验证状态过滤
	Status string `form:"status" json:"status"`
	// Search 按文件名模糊匹配
	Search string `form:"search" json:"search"`
	// Deleted 为 true 时列出回收站（软删除）中的文档
	Deleted bool `form:"deleted" json:"deleted"`
}

// ListDocumentsResponse 文档列表响应体.
type ListDocumentsResponse struct {
	Documents []DocumentInfo `json:"documents"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
}

// UpdateDocumentRequest 文档元信息更新参数，零值字段不更新.
type UpdateDocumentRequest struct {
	FileName string `form:"file_name" json:"file_name" rule:"omitempty,max=512"`
	Category string `form:"category" json:"category" rule:"omitempty,max=128"`
}

// CategoryCount 单个分类的文档计数.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ListCategoriesResponse 分类统计响应体.
type ListCategoriesResponse struct {
	Categories []CategoryCount `json:"categories"`
}
