package types

// AnalyzeResponse 真实性分析响应体.
type AnalyzeResponse struct {
	DocumentID string       `json:"document_id"`
	Analysis   AnalysisInfo `json:"analysis"`
	// Cached 命中既有分析结果而非重新计算
	Cached bool `json:"cached"`
	// Status 分析后的文档验证状态
	Status string `json:"status"`
}

// RequestVerificationResponse 发起验证的响应体.
type RequestVerificationResponse struct {
	DocumentID string `json:"document_id"`
	// Status 验证结论：verified（自动通过）或 pending_review（进入人工队列）
	Status            string  `json:"status"`
	AuthenticityScore float64 `json:"authenticity_score"`
	// AutoVerified 得分严格大于阈值时自动通过，不产生审核记录
	AutoVerified      bool `json:"auto_verified"`
	VerificationCount int  `json:"verification_count"`
}

// BatchAnalyzeRequest 批量分析参数.
type BatchAnalyzeRequest struct {
	// DocumentIDs 待分析文档 ID 列表，单次最多 50 个
	DocumentIDs []string `form:"document_ids" json:"document_ids" rule:"required,min=1,max=50"`
}

// BatchAnalyzeItem 批量分析中单个文档的结果.
type BatchAnalyzeItem struct {
	DocumentID string `json:"document_id"`
	OK         bool   `json:"ok"`
	// Error 失败原因，成功时为空
	Error    string        `json:"error,omitempty"`
	Analysis *AnalysisInfo `json:"analysis,omitempty"`
	Cached   bool          `json:"cached,omitempty"`
}

// BatchAnalyzeResponse 批量分析响应体，逐文档给出结果.
type BatchAnalyzeResponse struct {
	Results   []BatchAnalyzeItem `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}
