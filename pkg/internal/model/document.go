package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// VerificationStatus 文档验证状态.
type VerificationStatus string

const (
	StatusPending       VerificationStatus = "pending"
	StatusAnalyzed      VerificationStatus = "analyzed"
	StatusPendingReview VerificationStatus = "pending_review"
	StatusAssigned      VerificationStatus = "assigned"
	StatusVerified      VerificationStatus = "verified"
	StatusRejected      VerificationStatus = "rejected"
	StatusFlagged       VerificationStatus = "flagged"
)

// RiskLevel 分析器给出的风险等级.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
	RiskUnknown  RiskLevel = "unknown"
)

// Analysis AI 真实性分析结果。整体写入 AnalysisJSON，要么完整写入要么完全不写.
type Analysis struct {
	AuthenticityScore float64   `json:"authenticity_score"` // [0,100]
	RiskLevel         RiskLevel `json:"risk_level"`
	Flags             []string  `json:"flags"`
	Summary           string    `json:"summary"`
	Confidence        float64   `json:"confidence"` // [0,1]
	ProcessingTimeMS  int64     `json:"processing_time_ms"`
	AnalyzedAt        time.Time `json:"analyzed_at"`
}

// Document 文档模型.
type Document struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:36;index"      json:"user_id"`
	// 对象键（S3 key）
	ObjectKey   string `gorm:"size:1024"      json:"object_key"`
	FileName    string `gorm:"size:512;index" json:"file_name"`
	Size        int64  `json:"size"`
	ContentType string `gorm:"size:255"       json:"content_type"`
	Category    string `gorm:"size:128;index" json:"category"`
	// FileHash 内容 SHA-256，同一用户下重复上传据此检出
	FileHash string `gorm:"size:64;index" json:"file_hash"`
	// Signature 对 FileHash 的 RSA-PSS 签名（hex）
	Signature     string `gorm:"type:text" json:"signature"`
	ExtractedText string `gorm:"type:text" json:"-"`
	// AnalysisJSON 分析结果的 JSON 文本，存在即视为已分析（幂等短路）
	AnalysisJSON       string             `gorm:"type:text"            json:"-"`
	VerificationStatus VerificationStatus `gorm:"size:32;index"        json:"verification_status"`
	VerificationCount  int                `json:"verification_count"`
	DownloadCount      int                `json:"download_count"`
	AssignedVerifier   string             `gorm:"size:36;index"        json:"assigned_verifier,omitempty"`
	AssignedAt         *time.Time         `json:"assigned_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	DeletedAt          gorm.DeletedAt     `gorm:"index" json:"-"`
}

// Analyzed 判断文档是否已有分析结果.
func (d *Document) Analyzed() bool {
	return d.AnalysisJSON != ""
}

// GetAnalysis 反序列化分析结果，未分析返回 nil.
func (d *Document) GetAnalysis() (*Analysis, error) {
	if d.AnalysisJSON == "" {
		return nil, nil
	}

	var a Analysis
	if err := json.Unmarshal([]byte(d.AnalysisJSON), &a); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}

	return &a, nil
}

// EncodeAnalysis 序列化分析结果为 JSON 文本.
func EncodeAnalysis(a *Analysis) (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}

	return string(b), nil
}
