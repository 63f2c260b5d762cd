package service

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
	"golang.org/x/crypto/bcrypt"
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
	"github.com/docshield/docshield/pkg/queue"
)

// 全局单例的 ULID 熵源，使用单调递增策略，确保同一毫秒内生成的 ULID 具有排序稳定性。
// MonotonicEntropy 非并发安全，取号必须持锁.
var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(crand.Reader, 0)
)

// shareExpiry 预设有效期映射。never 不落过期时间.
var shareExpiry = map[string]time.Duration{
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
}

// ShareService 负责分享链接及其匿名访问路径.
type ShareService struct {
	dbc *db.Client
	s3c *s3.Client
	mqc *mq.Client
}

// NewShareService 创建 ShareService 实例.
func NewShareService(c context.Context) *ShareService {
	svc := &ShareService{
		dbc: ctxPkg.GetDBClient(c),
		s3c: ctxPkg.GetS3Client(c),
		mqc: ctxPkg.GetMQClient(c),
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, ShareService features limited")
	}

	return svc
}

// newShareID 生成对外短 ID：sh_ 前缀 + 小写 ULID.
func newShareID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	return "sh_" + strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String())
}

// Create 为自己的文档创建分享链接.
func (s *ShareService) Create(ctx context.Context, actor *model.User, docID string,
	req *types.CreateShareRequest,
) (*types.CreateShareResponse, error) {
	doc, err := findDocument(s.dbc, docID, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionMutate); err != nil {
		return nil, err
	}

	var expireAt *time.Time

	if req.ExpiresIn != "never" {
		d, ok := shareExpiry[req.ExpiresIn]
		if !ok {
			return nil, apperr.Clientf("invalid expires_in %q", req.ExpiresIn)
		}

		e := nowUTC().Add(d)
		expireAt = &e
	}

	share := model.Share{
		ShareID:       newShareID(),
		DocumentID:    doc.ID,
		Owner:         actor.ID,
		AllowDownload: req.AllowDownload,
		ExpireAt:      expireAt,
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), configs.GetConfig().Auth.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}

		share.PasswordHash = string(hash)
	}

	if err := s.dbc.GetDB().WithContext(ctx).Create(&share).Error; err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}

	s.publishCreated(doc, &share)

	nlog.Logger().Info().Str("share", share.ShareID).Str("doc", doc.ID).
		Str("owner", actor.ID).Msg("share created")

	return &types.CreateShareResponse{Share: s.toShareInfo(&share)}, nil
}

func (s *ShareService) toShareInfo(sh *model.Share) types.ShareInfo {
	return types.ShareInfo{
		ShareID:       sh.ShareID,
		DocumentID:    sh.DocumentID,
		URL:           configs.GetConfig().Server.PublicURL + "/api/v1/public/shares/" + sh.ShareID,
		AllowDownload: sh.AllowDownload,
		Protected:     sh.Protected(),
		ViewCount:     sh.ViewCount,
		DownloadCount: sh.DownloadCount,
		Revoked:       sh.Revoked,
		ExpireAt:      sh.ExpireAt,
		CreatedAt:     sh.CreatedAt,
	}
}

// List 当前用户创建的全部分享，含已过期与已撤销的.
func (s *ShareService) List(ctx context.Context, actor *model.User) (*types.ListSharesResponse, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}

	if actor.Banned {
		return nil, apperr.Forbidden("account banned")
	}

	var shares []model.Share

	err := s.dbc.GetDB().WithContext(ctx).
		Where("owner = ?", actor.ID).
		Order("created_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}

	resp := &types.ListSharesResponse{Shares: make([]types.ShareInfo, 0, len(shares))}

	for i := range shares {
		resp.Shares = append(resp.Shares, s.toShareInfo(&shares[i]))
	}

	return resp, nil
}

// Revoke 撤销分享。撤销后匿名访问与"不存在"不可区分.
func (s *ShareService) Revoke(ctx context.Context, actor *model.User, shareID string) error {
	var share model.Share

	err := s.dbc.GetDB().WithContext(ctx).First(&share, "share_id = ?", shareID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("share not found")
		}

		return err
	}

	// 封禁优先于所有权判断，与 gateDocument 的拒绝顺序一致
	if actor != nil && actor.Banned {
		return apperr.Forbidden("account banned")
	}

	if actor == nil || (share.Owner != actor.ID && actor.Role != model.RoleAdmin) {
		return apperr.NotFound("share not found")
	}

	if err := s.dbc.GetDB().WithContext(ctx).Model(&share).Update("revoked", true).Error; err != nil {
		return err
	}

	s.publishRevoked(&share)

	return nil
}

// resolvePublic 匿名路径的统一入口：撤销与不存在同形（404），过期返回 410.
func (s *ShareService) resolvePublic(ctx context.Context, shareID string) (*model.Share, *model.Document, error) {
	var share model.Share

	err := s.dbc.GetDB().WithContext(ctx).First(&share, "share_id = ?", shareID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("share not found")
		}

		return nil, nil, err
	}

	if share.Revoked {
		return nil, nil, apperr.NotFound("share not found")
	}

	if share.Expired(nowUTC()) {
		return nil, nil, apperr.Gone("share expired")
	}

	doc, err := findDocument(s.dbc, share.DocumentID, false)
	if err != nil {
		// 文档已删除的分享同样按不存在处理
		return nil, nil, apperr.NotFound("share not found")
	}

	return &share, doc, nil
}

// checkPassword 校验分享密码，未设密码的分享直接放行.
func checkPassword(share *model.Share, password string) error {
	if !share.Protected() {
		return nil
	}

	if password == "" {
		return apperr.Unauthorized("password required")
	}

	if bcrypt.CompareHashAndPassword([]byte(share.PasswordHash), []byte(password)) != nil {
		return apperr.Unauthorized("invalid password")
	}

	return nil
}

// PublicMeta 匿名可见的分享元信息，不要求密码.
func (s *ShareService) PublicMeta(ctx context.Context, shareID string) (*types.PublicShareMeta, error) {
	share, doc, err := s.resolvePublic(ctx, shareID)
	if err != nil {
		return nil, err
	}

	return &types.PublicShareMeta{
		ShareID:       share.ShareID,
		FileName:      doc.FileName,
		Size:          doc.Size,
		ContentType:   doc.ContentType,
		Protected:     share.Protected(),
		AllowDownload: share.AllowDownload,
		ExpireAt:      share.ExpireAt,
	}, nil
}

// PublicView 密码校验通过后的详情视图，累加浏览计数.
func (s *ShareService) PublicView(ctx context.Context, shareID, password string) (*types.PublicShareView, error) {
	share, doc, err := s.resolvePublic(ctx, shareID)
	if err != nil {
		return nil, err
	}

	if err := checkPassword(share, password); err != nil {
		return nil, err
	}

	if err := s.dbc.GetDB().WithContext(ctx).Model(share).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("share", share.ShareID).Msg("view count update failed")
	}

	view := &types.PublicShareView{
		Meta: types.PublicShareMeta{
			ShareID:       share.ShareID,
			FileName:      doc.FileName,
			Size:          doc.Size,
			ContentType:   doc.ContentType,
			Protected:     share.Protected(),
			AllowDownload: share.AllowDownload,
			ExpireAt:      share.ExpireAt,
		},
		VerificationStatus: string(doc.VerificationStatus),
	}

	if a, err := doc.GetAnalysis(); err == nil {
		view.Analysis = toAnalysisInfo(a)
	}

	return view, nil
}

// PublicDownload 匿名下载原始文件，需要分享开启下载并通过密码校验.
func (s *ShareService) PublicDownload(ctx context.Context, shareID, password string) (io.ReadCloser, *model.Document, error) {
	share, doc, err := s.resolvePublic(ctx, shareID)
	if err != nil {
		return nil, nil, err
	}

	if err := checkPassword(share, password); err != nil {
		return nil, nil, err
	}

	if !share.AllowDownload {
		return nil, nil, apperr.Forbidden("download disabled for this share")
	}

	reader, err := s.s3c.Reader(ctx, doc.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open object: %w", err)
	}

	if err := s.dbc.GetDB().WithContext(ctx).Model(share).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("share", share.ShareID).Msg("download count update failed")
	}

	return reader, doc, nil
}

func (s *ShareService) publishCreated(doc *model.Document, share *model.Share) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Shared) {
		return
	}

	err := queue.PublishShareCreated(context.Background(), s.mqc, queue.ShareCreatedPayload{
		Document: queue.DocumentRef{ID: doc.ID, OwnerID: doc.UserID, FileName: doc.FileName},
		ShareID:  share.ShareID,
		ExpireAt: share.ExpireAt,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("share", share.ShareID).Msg("publish share created failed")
	}
}

func (s *ShareService) publishRevoked(share *model.Share) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Shared) {
		return
	}

	err := queue.PublishShareRevoked(context.Background(), s.mqc, queue.ShareRevokedPayload{
		ShareID: share.ShareID,
		OwnerID: share.Owner,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("share", share.ShareID).Msg("publish share revoked failed")
	}
}
