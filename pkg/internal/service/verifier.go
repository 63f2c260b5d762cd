package service

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/types"
	nlog "github.com/docshield/docshield/pkg/log"
)

// queueStatuses 进入审核队列的状态集合.
var queueStatuses = []model.VerificationStatus{
	model.StatusPendingReview, model.StatusPending, model.StatusFlagged,
}

// VerifierService 审核员工作台：队列、统计与个人历史.
type VerifierService struct {
	dbc *db.Client
}

// NewVerifierService 创建 VerifierService 实例.
func NewVerifierService(c context.Context) *VerifierService {
	svc := &VerifierService{dbc: ctxPkg.GetDBClient(c)}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, VerifierService features limited")
	}

	return svc
}

// Queue 返回待审核队列。指派给当前审核员的文档排在前面，
// 其余按等待时间（创建时间）从早到晚.
func (s *VerifierService) Queue(ctx context.Context, actor *model.User, page, pageSize int) (*types.ReviewQueueResponse, error) {
	if err := requireRole(actor, model.RoleVerifier, model.RoleAdmin); err != nil {
		return nil, err
	}

	page, size := clampPage(page, pageSize)

	// 每次重新构建条件，避免同一链式查询被 Count 与 Find 复用
	queued := func() *gorm.DB {
		return s.dbc.GetDB().WithContext(ctx).Model(&model.Document{}).
			Where("verification_status IN ? OR (verification_status = ? AND assigned_verifier = ?)",
				queueStatuses, model.StatusAssigned, actor.ID)
	}

	var total int64
	if err := queued().Count(&total).Error; err != nil {
		return nil, err
	}

	var docs []model.Document

	// 指派给自己的排在前面，其余按等待时间从早到晚
	err := queued().
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN assigned_verifier = ? THEN 0 ELSE 1 END, created_at ASC",
			Vars:               []any{actor.ID},
			WithoutParentheses: true,
		}}).
		Offset((page - 1) * size).Limit(size).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}

	resp := &types.ReviewQueueResponse{
		Documents: make([]types.DocumentInfo, 0, len(docs)),
		Total:     total,
		Page:      page,
		PageSize:  size,
	}

	for i := range docs {
		resp.Documents = append(resp.Documents, toDocumentInfo(&docs[i]))
	}

	return resp, nil
}

// Stats 审核员个人统计.
func (s *VerifierService) Stats(ctx context.Context, actor *model.User) (*types.VerifierStatsResponse, error) {
	if err := requireRole(actor, model.RoleVerifier, model.RoleAdmin); err != nil {
		return nil, err
	}

	gdb := s.dbc.GetDB().WithContext(ctx)
	resp := &types.VerifierStatsResponse{}

	err := gdb.Model(&model.Document{}).
		Where("verification_status IN ?", queueStatuses).
		Count(&resp.Pending).Error
	if err != nil {
		return nil, err
	}

	err = gdb.Model(&model.Document{}).
		Where("verification_status = ? AND assigned_verifier = ?", model.StatusAssigned, actor.ID).
		Count(&resp.Assigned).Error
	if err != nil {
		return nil, err
	}

	type decisionCount struct {
		Decision model.ReviewDecision
		Count    int64
	}

	var rows []decisionCount

	err = gdb.Model(&model.ReviewEntry{}).
		Select("decision, COUNT(*) AS count").
		Where("reviewer_id = ?", actor.ID).
		Group("decision").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		resp.Reviewed += r.Count

		switch r.Decision {
		case model.DecisionApproved:
			resp.Approved = r.Count
		case model.DecisionRejected:
			resp.Rejected = r.Count
		case model.DecisionFlagged:
			resp.Flagged = r.Count
		}
	}

	return resp, nil
}

// History 当前审核员最近的审核记录，新的在前.
func (s *VerifierService) History(ctx context.Context, actor *model.User, limit int) (*types.ReviewHistoryResponse, error) {
	if err := requireRole(actor, model.RoleVerifier, model.RoleAdmin); err != nil {
		return nil, err
	}

	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	var entries []model.ReviewEntry

	err := s.dbc.GetDB().WithContext(ctx).
		Where("reviewer_id = ?", actor.ID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	resp := &types.ReviewHistoryResponse{
		Entries: make([]types.ReviewEntryInfo, 0, len(entries)),
	}

	for i := range entries {
		resp.Entries = append(resp.Entries, toReviewEntryInfo(&entries[i]))
	}

	return resp, nil
}

// WaitingSince 文档在队列中的等待时长，监控与排序用.
func WaitingSince(d *model.Document, now time.Time) time.Duration {
	return now.Sub(d.CreatedAt)
}
