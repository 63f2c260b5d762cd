// Package service 实现业务逻辑层。每个 Service 在请求时构造，
// 从 context 中取出已初始化的存储客户端，便于测试时注入替身.
package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/types"
)

const (
	// DefaultPageSize 列表接口默认分页大小.
	DefaultPageSize = 20
	// MaxPageSize 列表接口分页上限.
	MaxPageSize = 100
)

// clampPage 规范化分页参数.
func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}

	if size < 1 {
		size = DefaultPageSize
	}

	if size > MaxPageSize {
		size = MaxPageSize
	}

	return page, size
}

// findDocument 按 ID 加载文档；unscoped 为 true 时包含软删除记录.
// 不存在一律返回 NotFound，不区分"从未存在"与"已删除".
func findDocument(dbc *db.Client, id string, unscoped bool) (*model.Document, error) {
	if dbc == nil || dbc.GetDB() == nil {
		return nil, errors.New("db not initialized")
	}

	tx := dbc.GetDB()
	if unscoped {
		tx = tx.Unscoped()
	}

	var doc model.Document
	if err := tx.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("document not found")
		}

		return nil, err
	}

	return &doc, nil
}

// findUser 按 ID 加载用户.
func findUser(dbc *db.Client, id string) (*model.User, error) {
	if dbc == nil || dbc.GetDB() == nil {
		return nil, errors.New("db not initialized")
	}

	var u model.User
	if err := dbc.GetDB().First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}

		return nil, err
	}

	return &u, nil
}

// toUserInfo 转换用户模型为对外视图.
func toUserInfo(u *model.User) types.UserInfo {
	return types.UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Banned:    u.Banned,
		CreatedAt: u.CreatedAt,
	}
}

// toAnalysisInfo 转换分析结果为对外视图.
func toAnalysisInfo(a *model.Analysis) *types.AnalysisInfo {
	if a == nil {
		return nil
	}

	return &types.AnalysisInfo{
		AuthenticityScore: a.AuthenticityScore,
		RiskLevel:         string(a.RiskLevel),
		Flags:             a.Flags,
		Summary:           a.Summary,
		Confidence:        a.Confidence,
		ProcessingTimeMS:  a.ProcessingTimeMS,
		AnalyzedAt:        a.AnalyzedAt,
	}
}

// toDocumentInfo 转换文档模型为对外视图。分析 JSON 解析失败不阻断响应，
// 仅丢弃 analysis 字段.
func toDocumentInfo(d *model.Document) types.DocumentInfo {
	info := types.DocumentInfo{
		ID:                 d.ID,
		FileName:           d.FileName,
		Size:               d.Size,
		ContentType:        d.ContentType,
		Category:           d.Category,
		FileHash:           d.FileHash,
		Signature:          d.Signature,
		VerificationStatus: string(d.VerificationStatus),
		VerificationCount:  d.VerificationCount,
		DownloadCount:      d.DownloadCount,
		AssignedVerifier:   d.AssignedVerifier,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}

	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		info.DeletedAt = &t
	}

	if a, err := d.GetAnalysis(); err == nil {
		info.Analysis = toAnalysisInfo(a)
	}

	return info
}

// toReviewEntryInfo 转换审核记录为对外视图.
func toReviewEntryInfo(e *model.ReviewEntry) types.ReviewEntryInfo {
	return types.ReviewEntryInfo{
		ID:           e.ID,
		DocumentID:   e.DocumentID,
		ReviewerID:   e.ReviewerID,
		ReviewerName: e.ReviewerName,
		Decision:     string(e.Decision),
		Notes:        e.Notes,
		ReviewedAt:   e.ReviewedAt,
	}
}

// nowUTC 统一取 UTC 时间，落库与对外时间戳保持一致.
func nowUTC() time.Time {
	return time.Now().UTC()
}

// eventEnabled 事件总开关与分主题开关同时为真才发布.
func eventEnabled(topicFlag bool) bool {
	return configs.GetConfig().Events.Enabled && topicFlag
}
