package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/types"
)

func TestManualReviewAppendsEntryAndUpdatesStatus(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	resp, err := NewReviewService(ctx).ManualReview(ctx, verifier, doc.ID, &types.ManualReviewRequest{
		Decision: "approved",
		Notes:    "looks authentic",
	})
	require.NoError(t, err)
	require.Equal(t, string(model.StatusVerified), resp.Status)
	require.Equal(t, verifier.Name, resp.Entry.ReviewerName)
	require.Equal(t, "looks authentic", resp.Entry.Notes)

	stored := reloadDocument(t, dbc, doc.ID)
	require.Equal(t, model.StatusVerified, stored.VerificationStatus)
	require.Equal(t, 1, stored.VerificationCount)

	var entries []model.ReviewEntry
	require.NoError(t, dbc.GetDB().Where("document_id = ?", doc.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, verifier.ID, entries[0].ReviewerID)
}

func TestManualReviewDecisionMapping(t *testing.T) {
	cases := []struct {
		decision string
		want     model.VerificationStatus
	}{
		{"approved", model.StatusVerified},
		{"rejected", model.StatusRejected},
		{"flagged", model.StatusFlagged},
	}

	for _, c := range cases {
		t.Run(c.decision, func(t *testing.T) {
			ctx, dbc := newTestContext(t)
			owner := seedUser(t, dbc, model.RoleUser)
			verifier := seedUser(t, dbc, model.RoleVerifier)
			doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

			resp, err := NewReviewService(ctx).ManualReview(ctx, verifier, doc.ID,
				&types.ManualReviewRequest{Decision: c.decision})
			require.NoError(t, err)
			require.Equal(t, string(c.want), resp.Status)
		})
	}
}

func TestManualReviewAllowsAnyCurrentStatus(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)

	// 已验证的文档允许复审改判
	doc := seedDocument(t, dbc, owner, model.StatusVerified)

	resp, err := NewReviewService(ctx).ManualReview(ctx, verifier, doc.ID,
		&types.ManualReviewRequest{Decision: "rejected", Notes: "forged signature"})
	require.NoError(t, err)
	require.Equal(t, string(model.StatusRejected), resp.Status)
}

func TestManualReviewRejectsInvalidDecision(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	_, err := NewReviewService(ctx).ManualReview(ctx, verifier, doc.ID,
		&types.ManualReviewRequest{Decision: "maybe"})
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))
}

func TestManualReviewRequiresReviewerRole(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	_, err := NewReviewService(ctx).ManualReview(ctx, owner, doc.ID,
		&types.ManualReviewRequest{Decision: "approved"})
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestQuickReviewOnlyPendingOrFlagged(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)
	svc := NewReviewService(ctx)

	for _, status := range []model.VerificationStatus{
		model.StatusAnalyzed, model.StatusPendingReview, model.StatusVerified, model.StatusAssigned,
	} {
		doc := seedDocument(t, dbc, owner, status)

		_, err := svc.QuickReview(ctx, verifier, doc.ID, &types.QuickReviewRequest{Decision: "approved"})
		require.Equal(t, apperr.KindConflict, apperr.KindOf(err), "status %s", status)
		require.Equal(t, doc.ID, apperr.RefOf(err))
	}

	for _, status := range []model.VerificationStatus{model.StatusPending, model.StatusFlagged} {
		doc := seedDocument(t, dbc, owner, status)

		resp, err := svc.QuickReview(ctx, verifier, doc.ID, &types.QuickReviewRequest{Decision: "approved"})
		require.NoError(t, err, "status %s", status)
		require.Equal(t, string(model.StatusVerified), resp.Status)
	}
}

func TestQuickReviewDefaultNotes(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusPending)

	resp, err := NewReviewService(ctx).QuickReview(ctx, verifier, doc.ID,
		&types.QuickReviewRequest{Decision: "rejected"})
	require.NoError(t, err)
	require.Equal(t, "Quick rejected", resp.Entry.Notes)
}

func TestHistoryOrderedByInsertionNotTimestamp(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	// 时钟漂移场景：后写入的记录带着更早的时间戳
	now := nowUTC()
	entries := []model.ReviewEntry{
		{DocumentID: doc.ID, ReviewerID: verifier.ID, Decision: model.DecisionFlagged, ReviewedAt: now},
		{DocumentID: doc.ID, ReviewerID: verifier.ID, Decision: model.DecisionApproved, ReviewedAt: now.Add(-time.Hour)},
	}
	for i := range entries {
		require.NoError(t, dbc.GetDB().Create(&entries[i]).Error)
	}

	resp, err := NewReviewService(ctx).History(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	require.Equal(t, string(model.DecisionFlagged), resp.Entries[0].Decision)
	require.Equal(t, string(model.DecisionApproved), resp.Entries[1].Decision)
	require.Less(t, resp.Entries[0].ID, resp.Entries[1].ID)
}

func TestAssignVerifier(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	admin := seedUser(t, dbc, model.RoleAdmin)
	verifier := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	info, err := NewReviewService(ctx).AssignVerifier(ctx, admin, doc.ID,
		&types.AssignVerifierRequest{VerifierID: verifier.ID})
	require.NoError(t, err)
	require.Equal(t, string(model.StatusAssigned), info.VerificationStatus)
	require.Equal(t, verifier.ID, info.AssignedVerifier)

	// 指派是管理动作，不产生审核记录
	var count int64
	require.NoError(t, dbc.GetDB().Model(&model.ReviewEntry{}).
		Where("document_id = ?", doc.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestAssignVerifierTargetMustBeVerifier(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	admin := seedUser(t, dbc, model.RoleAdmin)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	_, err := NewReviewService(ctx).AssignVerifier(ctx, admin, doc.ID,
		&types.AssignVerifierRequest{VerifierID: owner.ID})
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))
}

func TestAssignVerifierAdminOnly(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusPendingReview)

	_, err := NewReviewService(ctx).AssignVerifier(ctx, verifier, doc.ID,
		&types.AssignVerifierRequest{VerifierID: verifier.ID})
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
