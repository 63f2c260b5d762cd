package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
)

func TestQueueAssignedToSelfComesFirst(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	me := seedUser(t, dbc, model.RoleVerifier)
	colleague := seedUser(t, dbc, model.RoleVerifier)

	// 最早创建的普通队列文档
	oldest := seedDocument(t, dbc, owner, model.StatusPendingReview)
	require.NoError(t, dbc.GetDB().Model(&model.Document{}).Where("id = ?", oldest.ID).
		Update("created_at", nowUTC().Add(-2*time.Hour)).Error)

	newer := seedDocument(t, dbc, owner, model.StatusPendingReview)

	// 指派给我的文档虽然最新，但排在最前
	mine := seedDocument(t, dbc, owner, model.StatusAssigned)
	require.NoError(t, dbc.GetDB().Model(&model.Document{}).Where("id = ?", mine.ID).
		Update("assigned_verifier", me.ID).Error)

	// 指派给同事的文档不在我的队列里
	theirs := seedDocument(t, dbc, owner, model.StatusAssigned)
	require.NoError(t, dbc.GetDB().Model(&model.Document{}).Where("id = ?", theirs.ID).
		Update("assigned_verifier", colleague.ID).Error)

	resp, err := NewVerifierService(ctx).Queue(ctx, me, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Documents, 3)

	require.Equal(t, mine.ID, resp.Documents[0].ID)
	require.Equal(t, oldest.ID, resp.Documents[1].ID)
	require.Equal(t, newer.ID, resp.Documents[2].ID)
}

func TestQueueIncludesPendingAndFlagged(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)

	seedDocument(t, dbc, owner, model.StatusPending)
	seedDocument(t, dbc, owner, model.StatusFlagged)
	seedDocument(t, dbc, owner, model.StatusPendingReview)

	// 终态不进队列
	seedDocument(t, dbc, owner, model.StatusVerified)
	seedDocument(t, dbc, owner, model.StatusRejected)
	seedDocument(t, dbc, owner, model.StatusAnalyzed)

	resp, err := NewVerifierService(ctx).Queue(ctx, verifier, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(3), resp.Total)
}

func TestQueueRequiresReviewerRole(t *testing.T) {
	ctx, dbc := newTestContext(t)
	u := seedUser(t, dbc, model.RoleUser)

	_, err := NewVerifierService(ctx).Queue(ctx, u, 1, 10)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestVerifierStatsCountsByDecision(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	me := seedUser(t, dbc, model.RoleVerifier)
	colleague := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	entries := []model.ReviewEntry{
		{DocumentID: doc.ID, ReviewerID: me.ID, Decision: model.DecisionApproved, ReviewedAt: nowUTC()},
		{DocumentID: doc.ID, ReviewerID: me.ID, Decision: model.DecisionApproved, ReviewedAt: nowUTC()},
		{DocumentID: doc.ID, ReviewerID: me.ID, Decision: model.DecisionRejected, ReviewedAt: nowUTC()},
		{DocumentID: doc.ID, ReviewerID: colleague.ID, Decision: model.DecisionFlagged, ReviewedAt: nowUTC()},
	}
	for i := range entries {
		require.NoError(t, dbc.GetDB().Create(&entries[i]).Error)
	}

	resp, err := NewVerifierService(ctx).Stats(ctx, me)
	require.NoError(t, err)
	require.Equal(t, int64(3), resp.Reviewed)
	require.Equal(t, int64(2), resp.Approved)
	require.Equal(t, int64(1), resp.Rejected)
	require.Zero(t, resp.Flagged)
	require.Equal(t, int64(1), resp.Pending)
}

func TestVerifierHistoryNewestFirst(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	me := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	for _, d := range []model.ReviewDecision{
		model.DecisionApproved, model.DecisionRejected, model.DecisionFlagged,
	} {
		require.NoError(t, dbc.GetDB().Create(&model.ReviewEntry{
			DocumentID: doc.ID, ReviewerID: me.ID, Decision: d, ReviewedAt: nowUTC(),
		}).Error)
	}

	resp, err := NewVerifierService(ctx).History(ctx, me, 2)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	require.Equal(t, string(model.DecisionFlagged), resp.Entries[0].Decision)
	require.Equal(t, string(model.DecisionRejected), resp.Entries[1].Decision)
}

func TestWaitingSince(t *testing.T) {
	created := nowUTC().Add(-90 * time.Minute)
	doc := &model.Document{CreatedAt: created}

	require.InDelta(t, (90 * time.Minute).Seconds(),
		WaitingSince(doc, nowUTC()).Seconds(), 1)
}
