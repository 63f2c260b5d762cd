package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/types"
)

func TestAnalyzeStoresResultAtomically(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPending)

	svc := NewVerificationService(ctx)

	resp, err := svc.Analyze(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.False(t, resp.Cached)
	require.Equal(t, string(model.StatusAnalyzed), resp.Status)

	stored := reloadDocument(t, dbc, doc.ID)
	require.True(t, stored.Analyzed())
	require.Equal(t, model.StatusAnalyzed, stored.VerificationStatus)

	analysis, err := stored.GetAnalysis()
	require.NoError(t, err)
	require.Equal(t, resp.Analysis.AuthenticityScore, analysis.AuthenticityScore)
}

func TestAnalyzeReturnsCachedResult(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPending)

	svc := NewVerificationService(ctx)

	first, err := svc.Analyze(ctx, owner, doc.ID)
	require.NoError(t, err)

	second, err := svc.Analyze(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Analysis.AuthenticityScore, second.Analysis.AuthenticityScore)
}

func TestAnalyzeRejectsEmptyText(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPending)

	require.NoError(t, dbc.GetDB().Model(doc).Update("extracted_text", "").Error)

	_, err := NewVerificationService(ctx).Analyze(ctx, owner, doc.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))

	// 失败的分析不落库
	stored := reloadDocument(t, dbc, doc.ID)
	require.False(t, stored.Analyzed())
	require.Equal(t, model.StatusPending, stored.VerificationStatus)
}

func TestAnalyzeUnknownDocument(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)

	_, err := NewVerificationService(ctx).Analyze(ctx, owner, uuid.NewString())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRequestVerificationAutoThresholdIsStrict(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	svc := NewVerificationService(ctx)

	// 恰好等于阈值：进入人工队列
	atThreshold := seedDocument(t, dbc, owner, model.StatusPending)
	withAnalysis(t, dbc, atThreshold, AutoVerifyThreshold)

	resp, err := svc.RequestVerification(ctx, owner, atThreshold.ID)
	require.NoError(t, err)
	require.False(t, resp.AutoVerified)
	require.Equal(t, string(model.StatusPendingReview), resp.Status)
	require.Equal(t, 1, resp.VerificationCount)

	// 严格大于阈值：自动通过
	above := seedDocument(t, dbc, owner, model.StatusPending)
	withAnalysis(t, dbc, above, AutoVerifyThreshold+0.5)

	resp, err = svc.RequestVerification(ctx, owner, above.ID)
	require.NoError(t, err)
	require.True(t, resp.AutoVerified)
	require.Equal(t, string(model.StatusVerified), resp.Status)
}

func TestRequestVerificationAutoLeavesNoReviewEntry(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPending)
	withAnalysis(t, dbc, doc, 95)

	resp, err := NewVerificationService(ctx).RequestVerification(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.True(t, resp.AutoVerified)

	// 自动通过不产生审核记录，审计轨迹据此区分自动与人工
	var count int64
	require.NoError(t, dbc.GetDB().Model(&model.ReviewEntry{}).
		Where("document_id = ?", doc.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestRequestVerificationAnalyzesFirst(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPending)

	resp, err := NewVerificationService(ctx).RequestVerification(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.Positive(t, resp.AuthenticityScore)

	stored := reloadDocument(t, dbc, doc.ID)
	require.True(t, stored.Analyzed())
	require.Equal(t, 1, stored.VerificationCount)
}

func TestRequestVerificationIncrementsCount(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPending)
	withAnalysis(t, dbc, doc, 50)

	svc := NewVerificationService(ctx)

	for i := 1; i <= 3; i++ {
		resp, err := svc.RequestVerification(ctx, owner, doc.ID)
		require.NoError(t, err)
		require.Equal(t, i, resp.VerificationCount)
	}
}

func TestBatchAnalyzeMixedResults(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	good := seedDocument(t, dbc, owner, model.StatusPending)
	missing := uuid.NewString()

	resp, err := NewVerificationService(ctx).BatchAnalyze(ctx, owner, &types.BatchAnalyzeRequest{
		DocumentIDs: []string{good.ID, missing},
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Succeeded)
	require.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)

	require.True(t, resp.Results[0].OK)
	require.NotNil(t, resp.Results[0].Analysis)
	require.False(t, resp.Results[1].OK)
	require.NotEmpty(t, resp.Results[1].Error)
}

func TestBatchAnalyzeLimits(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	svc := NewVerificationService(ctx)

	_, err := svc.BatchAnalyze(ctx, owner, &types.BatchAnalyzeRequest{})
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))

	ids := make([]string, MaxBatchAnalyze+1)
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	_, err = svc.BatchAnalyze(ctx, owner, &types.BatchAnalyzeRequest{DocumentIDs: ids})
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))
}
