package service

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/types"
)

func TestListScopesToOwner(t *testing.T) {
	ctx, dbc := newTestContext(t)
	alice := seedUser(t, dbc, model.RoleUser)
	bob := seedUser(t, dbc, model.RoleUser)
	admin := seedUser(t, dbc, model.RoleAdmin)

	seedDocument(t, dbc, alice, model.StatusPending)
	seedDocument(t, dbc, alice, model.StatusVerified)
	seedDocument(t, dbc, bob, model.StatusPending)

	svc := NewDocumentService(ctx)

	mine, err := svc.List(ctx, alice, &types.ListDocumentsRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), mine.Total)

	all, err := svc.List(ctx, admin, &types.ListDocumentsRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(3), all.Total)
}

func TestListFilters(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)

	verified := seedDocument(t, dbc, owner, model.StatusVerified)
	seedDocument(t, dbc, owner, model.StatusPending)

	require.NoError(t, dbc.GetDB().Model(&model.Document{}).
		Where("id = ?", verified.ID).Updates(map[string]any{
		"category":  "invoices",
		"file_name": "invoice-march.pdf",
	}).Error)

	svc := NewDocumentService(ctx)

	byStatus, err := svc.List(ctx, owner, &types.ListDocumentsRequest{Status: "verified"})
	require.NoError(t, err)
	require.Equal(t, int64(1), byStatus.Total)

	byCategory, err := svc.List(ctx, owner, &types.ListDocumentsRequest{Category: "invoices"})
	require.NoError(t, err)
	require.Equal(t, int64(1), byCategory.Total)

	bySearch, err := svc.List(ctx, owner, &types.ListDocumentsRequest{Search: "march"})
	require.NoError(t, err)
	require.Equal(t, int64(1), bySearch.Total)
	require.Equal(t, "invoice-march.pdf", bySearch.Documents[0].FileName)
}

func TestGetEnforcesAccessGate(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	stranger := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPending)
	svc := NewDocumentService(ctx)

	info, err := svc.Get(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.ID, info.ID)

	_, err = svc.Get(ctx, stranger, doc.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateLeavesZeroFieldsUntouched(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusPending)
	svc := NewDocumentService(ctx)

	_, err := svc.Update(ctx, owner, doc.ID, &types.UpdateDocumentRequest{Category: "legal"})
	require.NoError(t, err)

	stored := reloadDocument(t, dbc, doc.ID)
	require.Equal(t, "legal", stored.Category)
	require.Equal(t, "contract.pdf", stored.FileName)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	svc := NewDocumentService(ctx)

	require.NoError(t, svc.SoftDelete(ctx, owner, doc.ID))

	// 软删除后常规查询按不存在处理
	_, err := svc.Get(ctx, owner, doc.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// 回收站列表可见
	trash, err := svc.List(ctx, owner, &types.ListDocumentsRequest{Deleted: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), trash.Total)
	require.NotNil(t, trash.Documents[0].DeletedAt)

	info, err := svc.Restore(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.Nil(t, info.DeletedAt)

	_, err = svc.Get(ctx, owner, doc.ID)
	require.NoError(t, err)
}

func TestRestoreRejectsLiveDocument(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)

	_, err := NewDocumentService(ctx).Restore(ctx, owner, doc.ID)
	require.Equal(t, apperr.KindClient, apperr.KindOf(err))
}

func TestCategoriesCountsPerOwner(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	other := seedUser(t, dbc, model.RoleUser)

	for _, category := range []string{"contracts", "contracts", "invoices", ""} {
		doc := seedDocument(t, dbc, owner, model.StatusPending)
		require.NoError(t, dbc.GetDB().Model(&model.Document{}).
			Where("id = ?", doc.ID).Update("category", category).Error)
	}

	seedDocument(t, dbc, other, model.StatusPending)

	resp, err := NewDocumentService(ctx).Categories(ctx, owner)
	require.NoError(t, err)
	require.Len(t, resp.Categories, 2)
	require.Equal(t, "contracts", resp.Categories[0].Category)
	require.Equal(t, int64(2), resp.Categories[0].Count)
}

func TestUploadDuplicateHashConflict(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)

	payload := []byte("This agreement is entered into by the undersigned parties.")
	sum := sha256.Sum256(payload)
	hashHex := hex.EncodeToString(sum[:])

	existing := seedDocument(t, dbc, owner, model.StatusVerified)
	require.NoError(t, dbc.GetDB().Model(&model.Document{}).
		Where("id = ?", existing.ID).Update("file_hash", hashHex).Error)

	// 冲突在任何对象存储调用之前判定，携带既有文档 ID
	_, err := NewDocumentService(ctx).Upload(ctx, owner, "again.txt", "text/plain", "contracts", payload)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.Equal(t, existing.ID, apperr.RefOf(err))
}

func TestHardDeleteRemovesDerivedRows(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	verifier := seedUser(t, dbc, model.RoleVerifier)
	doc := seedDocument(t, dbc, owner, model.StatusRejected)

	require.NoError(t, dbc.GetDB().Create(&model.ReviewEntry{
		DocumentID: doc.ID, ReviewerID: verifier.ID,
		Decision: model.DecisionRejected, ReviewedAt: nowUTC(),
	}).Error)
	require.NoError(t, dbc.GetDB().Create(&model.Share{
		ShareID: newShareID(), DocumentID: doc.ID, Owner: owner.ID,
	}).Error)
	require.NoError(t, dbc.GetDB().Create(&model.Certificate{
		CertificateID: "CERT-BBBBBB222222", DocumentID: doc.ID,
		OwnerID: owner.ID, IssuedAt: nowUTC(),
	}).Error)

	require.NoError(t, NewDocumentService(ctx).HardDelete(ctx, owner, doc.ID))

	var count int64

	require.NoError(t, dbc.GetDB().Unscoped().Model(&model.Document{}).
		Where("id = ?", doc.ID).Count(&count).Error)
	require.Zero(t, count)

	// 审核日志、分享、证书随父文档一并删除
	require.NoError(t, dbc.GetDB().Model(&model.ReviewEntry{}).
		Where("document_id = ?", doc.ID).Count(&count).Error)
	require.Zero(t, count)

	require.NoError(t, dbc.GetDB().Unscoped().Model(&model.Share{}).
		Where("document_id = ?", doc.ID).Count(&count).Error)
	require.Zero(t, count)

	require.NoError(t, dbc.GetDB().Model(&model.Certificate{}).
		Where("document_id = ?", doc.ID).Count(&count).Error)
	require.Zero(t, count)
}
