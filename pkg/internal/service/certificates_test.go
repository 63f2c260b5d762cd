package service

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
)

func TestNewCertificateIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^CERT-[0-9A-F]{12}$`)

	seen := map[string]bool{}

	for range 32 {
		id, err := newCertificateID()
		require.NoError(t, err)
		require.Regexp(t, pattern, id)
		require.False(t, seen[id])

		seen[id] = true
	}
}

func TestGenerateRequiresVerifiedStatus(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)

	for _, status := range []model.VerificationStatus{
		model.StatusPending, model.StatusAnalyzed, model.StatusPendingReview,
		model.StatusRejected, model.StatusFlagged,
	} {
		doc := seedDocument(t, dbc, owner, status)

		_, err := NewCertificateService(ctx).Generate(ctx, owner, doc.ID)
		require.Equal(t, apperr.KindClient, apperr.KindOf(err), "status %s", status)
	}
}

func TestGenerateReturnsExistingCertificate(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)

	cert := model.Certificate{
		CertificateID: "CERT-AABBCCDDEEFF",
		DocumentID:    doc.ID,
		OwnerID:       owner.ID,
		FileName:      doc.FileName,
		FileHash:      doc.FileHash,
		IssuedAt:      nowUTC(),
	}
	require.NoError(t, dbc.GetDB().Create(&cert).Error)

	resp, err := NewCertificateService(ctx).Generate(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.True(t, resp.Existing)
	require.Equal(t, cert.CertificateID, resp.Certificate.CertificateID)
}

func TestGetCertificateByDocument(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)
	svc := NewCertificateService(ctx)

	_, err := svc.Get(ctx, owner, doc.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	cert := model.Certificate{
		CertificateID: "CERT-001122334455",
		DocumentID:    doc.ID,
		OwnerID:       owner.ID,
		FileName:      doc.FileName,
		FileHash:      doc.FileHash,
		IssuedAt:      nowUTC(),
	}
	require.NoError(t, dbc.GetDB().Create(&cert).Error)

	info, err := svc.Get(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.Equal(t, cert.CertificateID, info.CertificateID)
	require.Equal(t, doc.FileHash, info.FileHash)
}

func TestPublicVerifyUnknownIsNegativeNotError(t *testing.T) {
	ctx, _ := newTestContext(t)

	// 校验方需要明确的否定答案，而不是 404
	resp, err := NewCertificateService(ctx).PublicVerify(ctx, "CERT-"+uuid.NewString())
	require.NoError(t, err)
	require.False(t, resp.Valid)
	require.Nil(t, resp.Certificate)
}

func TestPublicVerifyReflectsLiveDocumentStatus(t *testing.T) {
	ctx, dbc := newTestContext(t)
	owner := seedUser(t, dbc, model.RoleUser)
	doc := seedDocument(t, dbc, owner, model.StatusVerified)

	cert := model.Certificate{
		CertificateID: "CERT-FFEEDDCCBBAA",
		DocumentID:    doc.ID,
		OwnerID:       owner.ID,
		FileName:      doc.FileName,
		FileHash:      doc.FileHash,
		IssuedAt:      nowUTC(),
	}
	require.NoError(t, dbc.GetDB().Create(&cert).Error)

	svc := NewCertificateService(ctx)

	resp, err := svc.PublicVerify(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.Equal(t, string(model.StatusVerified), resp.Status)

	// 签发后复审改判，状态实时反映
	require.NoError(t, dbc.GetDB().Model(&model.Document{}).
		Where("id = ?", doc.ID).Update("verification_status", model.StatusRejected).Error)

	resp, err = svc.PublicVerify(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.Equal(t, string(model.StatusRejected), resp.Status)

	// 文档删除后证书仍有效，状态为空
	require.NoError(t, dbc.GetDB().Delete(&model.Document{}, "id = ?", doc.ID).Error)

	resp, err = svc.PublicVerify(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.True(t, resp.Valid)
	require.Empty(t, resp.Status)
}
