package model

import (
	"time"
)

// ReviewDecision 人工审核结论.
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "approved"
	DecisionRejected ReviewDecision = "rejected"
	DecisionFlagged  ReviewDecision = "flagged"
)

// ValidDecision 校验结论是否为三个规范值之一.
func ValidDecision(d string) bool {
	switch ReviewDecision(d) {
	case DecisionApproved, DecisionRejected, DecisionFlagged:
		return true
	default:
		return false
	}
}

// StatusFor 结论到文档状态的映射.
func (d ReviewDecision) StatusFor() VerificationStatus {
	switch d {
	case DecisionApproved:
		return StatusVerified
	case DecisionRejected:
		return StatusRejected
	default:
		return StatusFlagged
	}
}

// ReviewEntry 审核记录，追加后不可变。自增主键保证 as-inserted 顺序，
// “最近一次结论”取最大 ID 的记录，而不是按时间戳排序（跨审核方时钟可能漂移）.
type ReviewEntry struct {
	ID         uint   `gorm:"primaryKey"    json:"id"`
	DocumentID string `gorm:"size:36;index" json:"document_id"`
	ReviewerID string `gorm:"size:36;index" json:"reviewer_id"`
	// ReviewerName 审核时点的名字快照，审核人后续改名不影响历史记录
	ReviewerName string         `gorm:"size:255" json:"reviewer_name"`
	Decision     ReviewDecision `gorm:"size:16"  json:"decision"`
	Notes        string         `gorm:"type:text" json:"notes"`
	ReviewedAt   time.Time      `json:"reviewed_at"`
}
