package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/internal/model"
)

func TestRetentionSweepRemovesOldTrash(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)

	old := seedDocument(t, dbc, owner, model.StatusRejected)
	recent := seedDocument(t, dbc, owner, model.StatusRejected)
	live := seedDocument(t, dbc, owner, model.StatusVerified)

	require.NoError(t, dbc.GetDB().Create(&model.ReviewEntry{
		DocumentID: old.ID, ReviewerID: verifier.ID,
		Decision: model.DecisionRejected, ReviewedAt: nowUTC(),
	}).Error)
	require.NoError(t, dbc.GetDB().Create(&model.Share{
		ShareID: newShareID(), DocumentID: old.ID, Owner: owner.ID,
	}).Error)
	require.NoError(t, dbc.GetDB().Create(&model.Certificate{
		CertificateID: "CERT-AAAAAA111111", DocumentID: old.ID,
		OwnerID: owner.ID, IssuedAt: nowUTC(),
	}).Error)

	// old 在保留期外，recent 刚进回收站
	longAgo := nowUTC().Add(-40 * 24 * time.Hour)
	require.NoError(t, dbc.GetDB().Unscoped().Model(&model.Document{}).
		Where("id = ?", old.ID).Update("deleted_at", longAgo).Error)
	require.NoError(t, dbc.GetDB().Delete(&model.Document{}, "id = ?", recent.ID).Error)

	cutoff := nowUTC().Add(-30 * 24 * time.Hour)

	removed, err := NewMaintenanceService(ctx).RetentionSweep(ctx, cutoff)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	var count int64

	require.NoError(t, dbc.GetDB().Unscoped().Model(&model.Document{}).
		Where("id = ?", old.ID).Count(&count).Error)
	require.Zero(t, count)

	// 派生数据一并清除
	require.NoError(t, dbc.GetDB().Model(&model.ReviewEntry{}).
		Where("document_id = ?", old.ID).Count(&count).Error)
	require.Zero(t, count)

	require.NoError(t, dbc.GetDB().Unscoped().Model(&model.Share{}).
		Where("document_id = ?", old.ID).Count(&count).Error)
	require.Zero(t, count)

	require.NoError(t, dbc.GetDB().Model(&model.Certificate{}).
		Where("document_id = ?", old.ID).Count(&count).Error)
	require.Zero(t, count)

	// 保留期内与未删除的文档不动
	require.NoError(t, dbc.GetDB().Unscoped().Model(&model.Document{}).
		Where("id = ?", recent.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	require.NoError(t, dbc.GetDB().Model(&model.Document{}).
		Where("id = ?", live.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRetentionSweepEmptyTrash(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	seedDocument(t, dbc, owner, model.StatusVerified)

	removed, err := NewMaintenanceService(ctx).RetentionSweep(ctx, nowUTC())
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestExpiredShareSweep(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)

	past := nowUTC().Add(-time.Hour)
	future := nowUTC().Add(time.Hour)

	expired := model.Share{ShareID: newShareID(), DocumentID: doc.ID, Owner: owner.ID, ExpireAt: &past}
	alive := model.Share{ShareID: newShareID(), DocumentID: doc.ID, Owner: owner.ID, ExpireAt: &future}
	forever := model.Share{ShareID: newShareID(), DocumentID: doc.ID, Owner: owner.ID}

	for _, s := range []*model.Share{&expired, &alive, &forever} {
		require.NoError(t, dbc.GetDB().Create(s).Error)
	}

	removed, err := NewMaintenanceService(ctx).ExpiredShareSweep(ctx, nowUTC())
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	// 行被真删而非软删
	var remaining []model.Share
	require.NoError(t, dbc.GetDB().Unscoped().Find(&remaining).Error)
	require.Len(t, remaining, 2)

	for _, s := range remaining {
		require.NotEqual(t, expired.ShareID, s.ShareID)
	}
}

func TestOrphanObjectSweepRequiresS3(t *testing.T) {
	ctx, _ := newTestContext(t)

	_, err := NewMaintenanceService(ctx).OrphanObjectSweep(ctx)
	require.Error(t, err)
}
