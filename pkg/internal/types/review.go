package types

import "time"

// ManualReviewRequest 人工审核参数.
type ManualReviewRequest struct {
	// Decision 审核结论：approved、rejected 或 flagged
	Decision string `form:"decision" json:"decision" rule:"required,oneof=approved rejected flagged"`
	// Notes 审核备注，随审核记录不可变保存
	Notes string `form:"notes" json:"notes" rule:"max=2000"`
}

// QuickReviewRequest 快速审核参数，备注可省略.
type QuickReviewRequest struct {
	Decision string `form:"decision" json:"decision" rule:"required,oneof=approved rejected flagged"`
	Notes    string `form:"notes" json:"notes" rule:"max=2000"`
}

// AssignVerifierRequest 指派审核员参数.
type AssignVerifierRequest struct {
	// VerifierID 目标审核员的用户 ID，角色必须为 verifier
	VerifierID string `form:"verifier_id" json:"verifier_id" rule:"required"`
}

// ReviewEntryInfo 单条审核记录的对外视图.
type ReviewEntryInfo struct {
	ID           uint      `json:"id"`
	DocumentID   string    `json:"document_id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Decision     string    `json:"decision"`
	Notes        string    `json:"notes"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// ReviewResponse 审核动作的响应体.
type ReviewResponse struct {
	DocumentID string          `json:"document_id"`
	Status     string          `json:"status"`
	Entry      ReviewEntryInfo `json:"entry"`
}

// ReviewHistoryResponse 文档的审核历史，按写入顺序返回.
type ReviewHistoryResponse struct {
	DocumentID string            `json:"document_id"`
	Entries    []ReviewEntryInfo `json:"entries"`
}

// ReviewQueueResponse 待审核队列响应体.
type ReviewQueueResponse struct {
	Documents []DocumentInfo `json:"documents"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
}

// VerifierStatsResponse 审核员工作台统计.
type VerifierStatsResponse struct {
	// Pending 队列中等待处理的文档数（pending_review 与 flagged）
	Pending int64 `json:"pending"`
	// Assigned 指派给当前审核员且尚未处理的文档数
	Assigned int64 `json:"assigned"`
	// Reviewed 当前审核员累计产生的审核记录数
	Reviewed int64 `json:"reviewed"`
	// Approved/Rejected/Flagged 按结论细分的累计数
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Flagged  int64 `json:"flagged"`
}
