package service

import (
	"context"
	crand "crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/configs"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/storage/kv"
	"github.com/docshield/docshield/pkg/internal/storage/s3"
	"github.com/docshield/docshield/pkg/internal/types"
	nlog "github.com/docshield/docshield/pkg/log"
)

const previewKeyPrefix = "preview:"

// PreviewGrant KV 中保存的预览授权，令牌过期即消失.
type PreviewGrant struct {
	DocumentID  string `json:"document_id"`
	ObjectKey   string `json:"object_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// PreviewService 签发短时预览令牌。令牌只存 KV，进程重启即失效，
// 几分钟的有效窗口不需要持久化保证.
type PreviewService struct {
	dbc *db.Client
	kvc *kv.Client
	s3c *s3.Client
}

// NewPreviewService 创建 PreviewService 实例.
func NewPreviewService(c context.Context) *PreviewService {
	svc := &PreviewService{
		dbc: ctxPkg.GetDBClient(c),
		kvc: ctxPkg.GetKVClient(c),
		s3c: ctxPkg.GetS3Client(c),
	}

	if svc.kvc == nil {
		nlog.Logger().Warn().Msg("KV client not initialized, preview tokens unavailable")
	}

	return svc
}

// Grant 为文档签发预览令牌，属主、审核员与管理员可申请.
func (s *PreviewService) Grant(ctx context.Context, actor *model.User, docID string) (*types.PreviewTokenResponse, error) {
	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionView); err != nil {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := crand.Read(raw); err != nil {
		return nil, fmt.Errorf("random preview token: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(raw)

	grant, err := sonic.Marshal(PreviewGrant{
		DocumentID:  doc.ID,
		ObjectKey:   doc.ObjectKey,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("encode preview grant: %w", err)
	}

	ttl := configs.GetConfig().Cleanup.PreviewTTL()

	if err := s.kvc.Set(ctx, previewKeyPrefix+token, grant, ttl); err != nil {
		return nil, fmt.Errorf("store preview token: %w", err)
	}

	return &types.PreviewTokenResponse{
		Token:     token,
		URL:       configs.GetConfig().Server.PublicURL + "/api/v1/public/preview/" + token,
		ExpiresAt: nowUTC().Add(ttl),
	}, nil
}

// Redeem 兑换预览令牌并返回内容流。令牌无效或过期一律 404.
func (s *PreviewService) Redeem(ctx context.Context, token string) (io.ReadCloser, *PreviewGrant, error) {
	data, err := s.kvc.Get(ctx, previewKeyPrefix+token)
	if err != nil || len(data) == 0 {
		return nil, nil, apperr.NotFound("preview token invalid or expired")
	}

	var grant PreviewGrant
	if err := sonic.Unmarshal(data, &grant); err != nil {
		return nil, nil, fmt.Errorf("decode preview grant: %w", err)
	}

	reader, err := s.s3c.Reader(ctx, grant.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open object: %w", err)
	}

	return reader, &grant, nil
}
