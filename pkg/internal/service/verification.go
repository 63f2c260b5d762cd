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

// AutoVerifyThreshold 自动验证阈值。得分严格大于该值才自动通过，
// 恰好等于阈值的文档进入人工队列.
const AutoVerifyThreshold = 70.0

// MaxBatchAnalyze 批量分析单次上限.
const MaxBatchAnalyze = 50

// VerificationService 驱动文档验证状态机：分析、自动验证与批量路径.
type VerificationService struct {
	dbc *db.Client
	mqc *mq.Client
}

// NewVerificationService 创建 VerificationService 实例.
func NewVerificationService(c context.Context) *VerificationService {
	svc := &VerificationService{
		dbc: ctxPkg.GetDBClient(c),
		mqc: ctxPkg.GetMQClient(c),
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, VerificationService features limited")
	}

	return svc
}

// Analyze 对文档做真实性分析。已有结果直接返回（cached=true），不重新计算；
// 分析写入是全有或全无的：结果 JSON 与 analyzed 状态一次更新落库.
func (s *VerificationService) Analyze(ctx context.Context, actor *model.User, docID string) (*types.AnalyzeResponse, error) {
	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionView); err != nil {
		return nil, err
	}

	if doc.Analyzed() {
		cached, err := doc.GetAnalysis()
		if err != nil {
			return nil, fmt.Errorf("decode cached analysis: %w", err)
		}

		metrics.AnalysisCounter.WithLabelValues("cached").Inc()

		return &types.AnalyzeResponse{
			DocumentID: doc.ID,
			Analysis:   *toAnalysisInfo(cached),
			Cached:     true,
			Status:     string(doc.VerificationStatus),
		}, nil
	}

	res, err := GetAnalyzer().Analyze(ctx, doc)
	if err != nil {
		metrics.AnalysisCounter.WithLabelValues("failed").Inc()

		return nil, err
	}

	encoded, err := model.EncodeAnalysis(res)
	if err != nil {
		return nil, err
	}

	err = s.dbc.GetDB().WithContext(ctx).Model(doc).Updates(map[string]any{
		"analysis_json":       encoded,
		"verification_status": model.StatusAnalyzed,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}

	doc.AnalysisJSON = encoded
	doc.VerificationStatus = model.StatusAnalyzed

	metrics.AnalysisCounter.WithLabelValues("fresh").Inc()
	s.publishAnalyzed(doc, res, false)

	nlog.Logger().Info().Str("doc", doc.ID).
		Float64("score", res.AuthenticityScore).Str("risk", string(res.RiskLevel)).
		Msg("document analyzed")

	return &types.AnalyzeResponse{
		DocumentID: doc.ID,
		Analysis:   *toAnalysisInfo(res),
		Status:     string(doc.VerificationStatus),
	}, nil
}

// BatchAnalyze 批量分析，逐文档记录成败，单个失败不中断整批.
// 审核员与管理员可跨属主批量分析.
func (s *VerificationService) BatchAnalyze(ctx context.Context, actor *model.User,
	req *types.BatchAnalyzeRequest,
) (*types.BatchAnalyzeResponse, error) {
	if len(req.DocumentIDs) == 0 {
		return nil, apperr.Client("document_ids is required")
	}

	if len(req.DocumentIDs) > MaxBatchAnalyze {
		return nil, apperr.Clientf("at most %d documents per batch", MaxBatchAnalyze)
	}

	resp := &types.BatchAnalyzeResponse{
		Results: make([]types.BatchAnalyzeItem, 0, len(req.DocumentIDs)),
	}

	for _, id := range req.DocumentIDs {
		item := types.BatchAnalyzeItem{DocumentID: id}

		one, err := s.Analyze(ctx, actor, id)
		if err != nil {
			item.Error = err.Error()
			resp.Failed++
		} else {
			item.OK = true
			item.Analysis = &one.Analysis
			item.Cached = one.Cached
			resp.Succeeded++
		}

		resp.Results = append(resp.Results, item)
	}

	return resp, nil
}

// RequestVerification 发起验证。未分析的文档先走一次分析（同样的原子性规则），
// 然后应用自动策略：score > 70 直接 verified，否则进入 pending_review。
// 两条路径都累加 verificationCount，且都不产生审核历史记录，
// 自动通过与人工审核由审计轨迹中有无记录区分.
func (s *VerificationService) RequestVerification(ctx context.Context, actor *model.User, docID string) (*types.RequestVerificationResponse, error) {
	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionMutate); err != nil {
		return nil, err
	}

	if !doc.Analyzed() {
		if _, err := s.Analyze(ctx, actor, docID); err != nil {
			return nil, err
		}

		doc, err = findDocument(s.dbc, docID, false)
		if err != nil {
			return nil, err
		}
	}

	analysis, err := doc.GetAnalysis()
	if err != nil || analysis == nil {
		return nil, fmt.Errorf("analysis unavailable after analyze: %w", err)
	}

	status := model.StatusPendingReview
	auto := analysis.AuthenticityScore > AutoVerifyThreshold

	if auto {
		status = model.StatusVerified
	}

	err = s.dbc.GetDB().WithContext(ctx).Model(doc).Updates(map[string]any{
		"verification_status": status,
		"verification_count":  gorm.Expr("verification_count + 1"),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("apply verification policy: %w", err)
	}

	doc.VerificationStatus = status
	doc.VerificationCount++

	if auto {
		metrics.ReviewCounter.WithLabelValues(string(model.DecisionApproved), "auto").Inc()
		s.publishReviewed(doc, string(model.DecisionApproved), true)
	}

	nlog.Logger().Info().Str("doc", doc.ID).Str("status", string(status)).
		Bool("auto", auto).Msg("verification requested")

	return &types.RequestVerificationResponse{
		DocumentID:        doc.ID,
		Status:            string(status),
		AuthenticityScore: analysis.AuthenticityScore,
		AutoVerified:      auto,
		VerificationCount: doc.VerificationCount,
	}, nil
}

func (s *VerificationService) publishAnalyzed(doc *model.Document, res *model.Analysis, cached bool) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Analyzed) {
		return
	}

	err := queue.PublishDocumentAnalyzed(context.Background(), s.mqc, queue.DocumentAnalyzedPayload{
		Document:          queue.DocumentRef{ID: doc.ID, OwnerID: doc.UserID, FileName: doc.FileName},
		AuthenticityScore: res.AuthenticityScore,
		RiskLevel:         string(res.RiskLevel),
		Cached:            cached,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("doc", doc.ID).Msg("publish analyzed event failed")
	}
}

func (s *VerificationService) publishReviewed(doc *model.Document, decision string, automatic bool) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Reviewed) {
		return
	}

	err := queue.PublishDocumentReviewed(context.Background(), s.mqc, queue.DocumentReviewedPayload{
		Document:  queue.DocumentRef{ID: doc.ID, OwnerID: doc.UserID, FileName: doc.FileName},
		Decision:  decision,
		Status:    string(doc.VerificationStatus),
		Automatic: automatic,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("doc", doc.ID).Msg("publish reviewed event failed")
	}
}
