package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/storage/mq"
	"github.com/docshield/docshield/pkg/internal/types"
	nlog "github.com/docshield/docshield/pkg/log"
	"github.com/docshield/docshield/pkg/metrics"
	"github.com/docshield/docshield/pkg/queue"
)

// ReviewService 处理人工审核与审核员指派.
type ReviewService struct {
	dbc *db.Client
	mqc *mq.Client
}

// NewReviewService 创建 ReviewService 实例.
func NewReviewService(c context.Context) *ReviewService {
	svc := &ReviewService{
		dbc: ctxPkg.GetDBClient(c),
		mqc: ctxPkg.GetMQClient(c),
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, ReviewService features limited")
	}

	return svc
}

// applyDecision 在单个事务内追加审核记录、更新状态并累加验证计数。
// 三个写要么全部生效要么全部回滚，并发审核时两条记录都会保留.
func (s *ReviewService) applyDecision(ctx context.Context, reviewer *model.User,
	doc *model.Document, decision model.ReviewDecision, notes string,
) (*model.ReviewEntry, error) {
	entry := &model.ReviewEntry{
		DocumentID:   doc.ID,
		ReviewerID:   reviewer.ID,
		ReviewerName: reviewer.Name,
		Decision:     decision,
		Notes:        notes,
		ReviewedAt:   nowUTC(),
	}

	status := decision.StatusFor()

	err := s.dbc.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("append review entry: %w", err)
		}

		return tx.Model(doc).Updates(map[string]any{
			"verification_status": status,
			"verification_count":  gorm.Expr("verification_count + 1"),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	doc.VerificationStatus = status
	doc.VerificationCount++

	return entry, nil
}

// ManualReview 人工审核。任何当前状态都允许复审，结论映射：
// approved → verified，rejected → rejected，flagged → flagged.
func (s *ReviewService) ManualReview(ctx context.Context, reviewer *model.User, docID string,
	req *types.ManualReviewRequest,
) (*types.ReviewResponse, error) {
	if err := requireRole(reviewer, model.RoleVerifier, model.RoleAdmin); err != nil {
		return nil, err
	}

	if !model.ValidDecision(req.Decision) {
		return nil, apperr.Clientf("invalid decision %q", req.Decision)
	}

	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	entry, err := s.applyDecision(ctx, reviewer, doc, model.ReviewDecision(req.Decision), req.Notes)
	if err != nil {
		return nil, err
	}

	metrics.ReviewCounter.WithLabelValues(req.Decision, "manual").Inc()
	s.publishReviewed(doc, entry, false)

	nlog.Logger().Info().Str("doc", doc.ID).Str("reviewer", reviewer.ID).
		Str("decision", req.Decision).Msg("manual review applied")

	return &types.ReviewResponse{
		DocumentID: doc.ID,
		Status:     string(doc.VerificationStatus),
		Entry:      toReviewEntryInfo(entry),
	}, nil
}

// QuickReview 快速审核，仅接受 pending 或 flagged 状态的文档，
// 其余状态返回冲突。未填备注时生成 "Quick {decision}".
func (s *ReviewService) QuickReview(ctx context.Context, reviewer *model.User, docID string,
	req *types.QuickReviewRequest,
) (*types.ReviewResponse, error) {
	if err := requireRole(reviewer, model.RoleVerifier, model.RoleAdmin); err != nil {
		return nil, err
	}

	if !model.ValidDecision(req.Decision) {
		return nil, apperr.Clientf("invalid decision %q", req.Decision)
	}

	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	if doc.VerificationStatus != model.StatusPending && doc.VerificationStatus != model.StatusFlagged {
		return nil, apperr.Conflict(
			fmt.Sprintf("document in status %q not eligible for quick review", doc.VerificationStatus),
			doc.ID)
	}

	notes := req.Notes
	if notes == "" {
		notes = "Quick " + req.Decision
	}

	entry, err := s.applyDecision(ctx, reviewer, doc, model.ReviewDecision(req.Decision), notes)
	if err != nil {
		return nil, err
	}

	metrics.ReviewCounter.WithLabelValues(req.Decision, "quick").Inc()
	s.publishReviewed(doc, entry, false)

	return &types.ReviewResponse{
		DocumentID: doc.ID,
		Status:     string(doc.VerificationStatus),
		Entry:      toReviewEntryInfo(entry),
	}, nil
}

// AssignVerifier 管理员将文档指派给审核员。指派是管理动作，
// 不产生审核记录，状态置为 assigned.
func (s *ReviewService) AssignVerifier(ctx context.Context, admin *model.User, docID string,
	req *types.AssignVerifierRequest,
) (*types.DocumentInfo, error) {
	if err := requireRole(admin, model.RoleAdmin); err != nil {
		return nil, err
	}

	verifier, err := findUser(s.dbc, req.VerifierID)
	if err != nil {
		return nil, err
	}

	if verifier.Role != model.RoleVerifier {
		return nil, apperr.Clientf("user %s is not a verifier", verifier.ID)
	}

	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	now := nowUTC()

	err = s.dbc.GetDB().WithContext(ctx).Model(doc).Updates(map[string]any{
		"assigned_verifier":   verifier.ID,
		"assigned_at":         now,
		"verification_status": model.StatusAssigned,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("assign verifier: %w", err)
	}

	doc.AssignedVerifier = verifier.ID
	doc.AssignedAt = &now
	doc.VerificationStatus = model.StatusAssigned

	s.publishAssigned(doc, admin.ID)

	nlog.Logger().Info().Str("doc", doc.ID).Str("verifier", verifier.ID).
		Str("by", admin.ID).Msg("verifier assigned")

	info := toDocumentInfo(doc)

	return &info, nil
}

// History 返回文档的审核历史，按写入顺序（自增主键）排列，
// 不按时间戳排序，跨审核方的时钟漂移不影响顺序.
func (s *ReviewService) History(ctx context.Context, actor *model.User, docID string) (*types.ReviewHistoryResponse, error) {
	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionView); err != nil {
		return nil, err
	}

	var entries []model.ReviewEntry

	err = s.dbc.GetDB().WithContext(ctx).
		Where("document_id = ?", doc.ID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	resp := &types.ReviewHistoryResponse{
		DocumentID: doc.ID,
		Entries:    make([]types.ReviewEntryInfo, 0, len(entries)),
	}

	for i := range entries {
		resp.Entries = append(resp.Entries, toReviewEntryInfo(&entries[i]))
	}

	return resp, nil
}

func (s *ReviewService) publishReviewed(doc *model.Document, entry *model.ReviewEntry, automatic bool) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Reviewed) {
		return
	}

	err := queue.PublishDocumentReviewed(context.Background(), s.mqc, queue.DocumentReviewedPayload{
		Document:     queue.DocumentRef{ID: doc.ID, OwnerID: doc.UserID, FileName: doc.FileName},
		Decision:     string(entry.Decision),
		Status:       string(doc.VerificationStatus),
		ReviewerID:   entry.ReviewerID,
		ReviewerName: entry.ReviewerName,
		Automatic:    automatic,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("doc", doc.ID).Msg("publish reviewed event failed")
	}
}

func (s *ReviewService) publishAssigned(doc *model.Document, adminID string) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Assigned) {
		return
	}

	err := queue.PublishDocumentAssigned(context.Background(), s.mqc, queue.DocumentAssignedPayload{
		Document:   queue.DocumentRef{ID: doc.ID, OwnerID: doc.UserID, FileName: doc.FileName},
		VerifierID: doc.AssignedVerifier,
		AssignedBy: adminID,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("doc", doc.ID).Msg("publish assigned event failed")
	}
}
