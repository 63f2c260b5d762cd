package service

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/storage/mq"
	"github.com/docshield/docshield/pkg/internal/storage/s3"
	"github.com/docshield/docshield/pkg/internal/types"
	nlog "github.com/docshield/docshield/pkg/log"
	"github.com/docshield/docshield/pkg/metrics"
	"github.com/docshield/docshield/pkg/queue"
)

// CertificateService 负责验证证书的签发、下载与匿名校验.
type CertificateService struct {
	dbc *db.Client
	s3c *s3.Client
	mqc *mq.Client
}

// NewCertificateService 创建 CertificateService 实例.
func NewCertificateService(c context.Context) *CertificateService {
	svc := &CertificateService{
		dbc: ctxPkg.GetDBClient(c),
		s3c: ctxPkg.GetS3Client(c),
		mqc: ctxPkg.GetMQClient(c),
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, CertificateService features limited")
	}

	return svc
}

// newCertificateID 生成证书编号：CERT- 加 12 位大写十六进制.
func newCertificateID() (string, error) {
	b := make([]byte, 6)
	if _, err := crand.Read(b); err != nil {
		return "", fmt.Errorf("random certificate id: %w", err)
	}

	return "CERT-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

// Generate 为已验证的文档签发证书。一份文档至多一张证书，
// 重复请求返回既有证书而不是新建.
func (s *CertificateService) Generate(ctx context.Context, actor *model.User, docID string) (*types.GenerateCertificateResponse, error) {
	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionMutate); err != nil {
		return nil, err
	}

	if doc.VerificationStatus != model.StatusVerified {
		return nil, apperr.Clientf("document in status %q is not verified", doc.VerificationStatus)
	}

	var existing model.Certificate

	err = s.dbc.GetDB().WithContext(ctx).First(&existing, "document_id = ?", doc.ID).Error

	switch {
	case err == nil:
		return &types.GenerateCertificateResponse{
			Certificate: toCertificateInfo(&existing),
			Existing:    true,
		}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	certID, err := newCertificateID()
	if err != nil {
		return nil, err
	}

	cfg := configs.GetConfig().Certificate

	cert := model.Certificate{
		CertificateID: certID,
		DocumentID:    doc.ID,
		OwnerID:       doc.UserID,
		FileName:      doc.FileName,
		FileHash:      doc.FileHash,
		Signature:     doc.Signature,
		ObjectKey:     fmt.Sprintf("%s/%s.pdf", strings.TrimSuffix(cfg.ObjectPrefix, "/"), certID),
		IssuedAt:      nowUTC(),
	}

	pdfBytes, err := renderCertificatePDF(&cert, cfg)
	if err != nil {
		return nil, apperr.Collaborator("certificate rendering failed", err)
	}

	if err := s.s3c.PutBytes(ctx, cert.ObjectKey, pdfBytes, "application/pdf"); err != nil {
		return nil, fmt.Errorf("store certificate pdf: %w", err)
	}

	if err := s.dbc.GetDB().WithContext(ctx).Create(&cert).Error; err != nil {
		// 唯一索引兜底：并发生成时输掉的一方返回既有证书
		var raced model.Certificate
		if s.dbc.GetDB().WithContext(ctx).First(&raced, "document_id = ?", doc.ID).Error == nil {
			return &types.GenerateCertificateResponse{
				Certificate: toCertificateInfo(&raced),
				Existing:    true,
			}, nil
		}

		return nil, fmt.Errorf("create certificate: %w", err)
	}

	metrics.CertificateCounter.Inc()
	s.publishIssued(doc, &cert)

	nlog.Logger().Info().Str("cert", cert.CertificateID).Str("doc", doc.ID).Msg("certificate issued")

	return &types.GenerateCertificateResponse{Certificate: toCertificateInfo(&cert)}, nil
}

func toCertificateInfo(c *model.Certificate) types.CertificateInfo {
	return types.CertificateInfo{
		CertificateID: c.CertificateID,
		DocumentID:    c.DocumentID,
		FileName:      c.FileName,
		FileHash:      c.FileHash,
		IssuedAt:      c.IssuedAt,
	}
}

// Get 按文档查证书.
func (s *CertificateService) Get(ctx context.Context, actor *model.User, docID string) (*types.CertificateInfo, error) {
	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionView); err != nil {
		return nil, err
	}

	var cert model.Certificate
	if err := s.dbc.GetDB().WithContext(ctx).First(&cert, "document_id = ?", doc.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("certificate not found")
		}

		return nil, err
	}

	info := toCertificateInfo(&cert)

	return &info, nil
}

// Download 下载证书 PDF.
func (s *CertificateService) Download(ctx context.Context, actor *model.User, certID string) ([]byte, *model.Certificate, error) {
	var cert model.Certificate

	err := s.dbc.GetDB().WithContext(ctx).First(&cert, "certificate_id = ?", certID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("certificate not found")
		}

		return nil, nil, err
	}

	if actor == nil || actor.Banned {
		return nil, nil, apperr.Unauthorized("authentication required")
	}

	if cert.OwnerID != actor.ID && actor.Role != model.RoleAdmin && actor.Role != model.RoleVerifier {
		return nil, nil, apperr.NotFound("certificate not found")
	}

	data, err := s.s3c.GetBytes(ctx, cert.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("read certificate pdf: %w", err)
	}

	return data, &cert, nil
}

// PublicVerify 匿名校验证书编号，返回证书信息与文档当前状态.
// 查无此证书时 valid=false 而不是 404，校验方需要明确的否定答案.
func (s *CertificateService) PublicVerify(ctx context.Context, certID string) (*types.VerifyCertificateResponse, error) {
	var cert model.Certificate

	err := s.dbc.GetDB().WithContext(ctx).First(&cert, "certificate_id = ?", certID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.VerifyCertificateResponse{Valid: false}, nil
		}

		return nil, err
	}

	resp := &types.VerifyCertificateResponse{
		Valid: true,
	}

	info := toCertificateInfo(&cert)
	resp.Certificate = &info

	// 文档可能在签发后被删除或复审，状态实时反映
	if doc, err := findDocument(s.dbc, cert.DocumentID, false); err == nil {
		resp.Status = string(doc.VerificationStatus)
	}

	return resp, nil
}

func (s *CertificateService) publishIssued(doc *model.Document, cert *model.Certificate) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Certificate) {
		return
	}

	err := queue.PublishCertificateIssued(context.Background(), s.mqc, queue.CertificateIssuedPayload{
		Document:      queue.DocumentRef{ID: doc.ID, OwnerID: doc.UserID, FileName: doc.FileName},
		CertificateID: cert.CertificateID,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("cert", cert.CertificateID).Msg("publish certificate issued failed")
	}
}
