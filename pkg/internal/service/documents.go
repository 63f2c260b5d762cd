package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
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

// DocumentService 负责文档的上传、查询、下载与删除.
type DocumentService struct {
	dbc *db.Client
	s3c *s3.Client
	mqc *mq.Client
}

// NewDocumentService 创建 DocumentService 实例.
func NewDocumentService(c context.Context) *DocumentService {
	svc := &DocumentService{
		dbc: ctxPkg.GetDBClient(c),
		s3c: ctxPkg.GetS3Client(c),
		mqc: ctxPkg.GetMQClient(c),
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, DocumentService features limited")
	}

	if svc.s3c == nil {
		nlog.Logger().Warn().Msg("S3 client not initialized, upload/download will fail")
	}

	return svc
}

// buildObjectKey 生成对象键：users/{uid}/{yyyy}/{mm}/{uuid}{ext}.
func buildObjectKey(userID, fileName string) string {
	now := nowUTC()
	ext := strings.ToLower(filepath.Ext(fileName))

	return fmt.Sprintf("users/%s/%04d/%02d/%s%s",
		userID, now.Year(), int(now.Month()), uuid.NewString(), ext)
}

// Upload 接收文件内容并入库。同一用户下内容哈希重复视为冲突，
// 响应携带既有文档 ID 便于客户端定位.
func (s *DocumentService) Upload(ctx context.Context, actor *model.User,
	fileName, contentType, category string, data []byte,
) (*types.UploadDocumentResponse, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}

	if actor.Banned {
		return nil, apperr.Forbidden("account banned")
	}

	cfg := configs.GetConfig().Upload

	if int64(len(data)) > cfg.MaxSizeBytes() {
		metrics.UploadCounter.WithLabelValues("rejected").Inc()

		return nil, apperr.Clientf("file exceeds %d MB limit", cfg.MaxSizeMB)
	}

	if len(data) == 0 {
		return nil, apperr.Client("empty file")
	}

	if !slices.Contains(cfg.AllowedTypes, contentType) {
		metrics.UploadCounter.WithLabelValues("rejected").Inc()

		return nil, apperr.Clientf("content type %q not allowed", contentType)
	}

	sum := sha256.Sum256(data)
	hashHex := hex.EncodeToString(sum[:])

	// 重复检测只看未删除的文档，回收站中的同内容文件不拦截恢复流程
	var dup model.Document

	err := s.dbc.GetDB().WithContext(ctx).
		Select("id").
		Where("user_id = ? AND file_hash = ?", actor.ID, hashHex).
		First(&dup).Error

	switch {
	case err == nil:
		metrics.UploadCounter.WithLabelValues("duplicate").Inc()

		return nil, apperr.Conflict("identical document already uploaded", dup.ID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	signer, err := GetSigner()
	if err != nil {
		return nil, apperr.Collaborator("signing service unavailable", err)
	}

	signature, err := signer.SignHex(hashHex)
	if err != nil {
		return nil, err
	}

	objectKey := buildObjectKey(actor.ID, fileName)

	if err := s.s3c.PutBytes(ctx, objectKey, data, contentType); err != nil {
		metrics.UploadCounter.WithLabelValues("failed").Inc()

		return nil, fmt.Errorf("store object: %w", err)
	}

	doc := model.Document{
		ID:                 uuid.NewString(),
		UserID:             actor.ID,
		ObjectKey:          objectKey,
		FileName:           fileName,
		Size:               int64(len(data)),
		ContentType:        contentType,
		Category:           category,
		FileHash:           hashHex,
		Signature:          signature,
		ExtractedText:      ExtractText(data, contentType),
		VerificationStatus: model.StatusPending,
	}

	if err := s.dbc.GetDB().WithContext(ctx).Create(&doc).Error; err != nil {
		// 记录落库失败时回收已写入的对象，避免孤儿
		if rmErr := s.s3c.Remove(ctx, objectKey); rmErr != nil {
			nlog.Logger().Error().Err(rmErr).Str("key", objectKey).Msg("orphan object cleanup failed")
		}

		return nil, fmt.Errorf("create document: %w", err)
	}

	metrics.UploadCounter.WithLabelValues("ok").Inc()
	s.publishUploaded(&doc)

	nlog.Logger().Info().Str("doc", doc.ID).Str("user", actor.ID).
		Int64("size", doc.Size).Msg("document uploaded")

	return &types.UploadDocumentResponse{Document: toDocumentInfo(&doc)}, nil
}

func (s *DocumentService) publishUploaded(doc *model.Document) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Uploaded) {
		return
	}

	err := queue.PublishDocumentUploaded(context.Background(), s.mqc, queue.DocumentUploadedPayload{
		Document: queue.DocumentRef{
			ID: doc.ID, OwnerID: doc.UserID,
			FileName: doc.FileName, FileHash: doc.FileHash,
		},
		Size:        doc.Size,
		ContentType: doc.ContentType,
		Category:    doc.Category,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("doc", doc.ID).Msg("publish uploaded event failed")
	}
}

// List 列出文档。普通用户只能看到自己的，管理员可看全部.
func (s *DocumentService) List(ctx context.Context, actor *model.User,
	req *types.ListDocumentsRequest,
) (*types.ListDocumentsResponse, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}

	if actor.Banned {
		return nil, apperr.Forbidden("account banned")
	}

	page, size := clampPage(req.Page, req.PageSize)

	tx := s.dbc.GetDB().WithContext(ctx).Model(&model.Document{})

	if req.Deleted {
		tx = tx.Unscoped().Where("deleted_at IS NOT NULL")
	}

	if actor.Role != model.RoleAdmin {
		tx = tx.Where("user_id = ?", actor.ID)
	}

	if req.Category != "" {
		tx = tx.Where("category = ?", req.Category)
	}

	if req.Status != "" {
		tx = tx.Where("verification_status = ?", req.Status)
	}

	if req.Search != "" {
		tx = tx.Where("file_name LIKE ?", "%"+req.Search+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var docs []model.Document

	err := tx.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}

	resp := &types.ListDocumentsResponse{
		Documents: make([]types.DocumentInfo, 0, len(docs)),
		Total:     total,
		Page:      page,
		PageSize:  size,
	}

	for i := range docs {
		resp.Documents = append(resp.Documents, toDocumentInfo(&docs[i]))
	}

	return resp, nil
}

// Get 获取单个文档详情.
func (s *DocumentService) Get(ctx context.Context, actor *model.User, id string) (*types.DocumentInfo, error) {
	doc, err := findDocument(s.dbc, id, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionView); err != nil {
		return nil, err
	}

	info := toDocumentInfo(doc)

	return &info, nil
}

// Download 返回文件内容流并累加下载计数.
func (s *DocumentService) Download(ctx context.Context, actor *model.User, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := findDocument(s.dbc, id, false)
	if err != nil {
		return nil, nil, err
	}

	if err := gateDocument(actor, doc, ActionView); err != nil {
		return nil, nil, err
	}

	reader, err := s.s3c.Reader(ctx, doc.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open object: %w", err)
	}

	if err := s.dbc.GetDB().WithContext(ctx).Model(doc).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("doc", doc.ID).Msg("download count update failed")
	}

	return reader, doc, nil
}

// Update 修改文档元信息（文件名、分类），零值字段不动.
func (s *DocumentService) Update(ctx context.Context, actor *model.User, id string,
	req *types.UpdateDocumentRequest,
) (*types.DocumentInfo, error) {
	doc, err := findDocument(s.dbc, id, false)
	if err != nil {
		return nil, err
	}

	if err := gateDocument(actor, doc, ActionMutate); err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if req.FileName != "" {
		updates["file_name"] = req.FileName
	}

	if req.Category != "" {
		updates["category"] = req.Category
	}

	if len(updates) > 0 {
		if err := s.dbc.GetDB().WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	info := toDocumentInfo(doc)

	return &info, nil
}

// SoftDelete 将文档移入回收站，保留期后由清理任务硬删除.
func (s *DocumentService) SoftDelete(ctx context.Context, actor *model.User, id string) error {
	doc, err := findDocument(s.dbc, id, false)
	if err != nil {
		return err
	}

	if err := gateDocument(actor, doc, ActionMutate); err != nil {
		return err
	}

	if err := s.dbc.GetDB().WithContext(ctx).Delete(doc).Error; err != nil {
		return err
	}

	s.publishDeleted(doc, false)

	return nil
}

// Restore 从回收站恢复文档.
func (s *DocumentService) Restore(ctx context.Context, actor *model.User, id string) (*types.DocumentInfo, error) {
	doc, err := findDocument(s.dbc, id, true)
	if err != nil {
		return nil, err
	}

	if !doc.DeletedAt.Valid {
		return nil, apperr.Client("document is not deleted")
	}

	if err := gateDocument(actor, doc, ActionMutate); err != nil {
		return nil, err
	}

	err = s.dbc.GetDB().WithContext(ctx).Unscoped().
		Model(doc).UpdateColumn("deleted_at", nil).Error
	if err != nil {
		return nil, err
	}

	doc.DeletedAt = gorm.DeletedAt{}
	info := toDocumentInfo(doc)

	return &info, nil
}

// HardDelete 永久删除记录与对象.
func (s *DocumentService) HardDelete(ctx context.Context, actor *model.User, id string) error {
	doc, err := findDocument(s.dbc, id, true)
	if err != nil {
		return err
	}

	if err := gateDocument(actor, doc, ActionMutate); err != nil {
		return err
	}

	// 审核日志、分享、证书随父文档一并清掉，同一事务内保证原子性
	err = s.dbc.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&model.ReviewEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("document_id = ?", doc.ID).Delete(&model.Share{}).Error; err != nil {
			return err
		}

		if err := tx.Where("document_id = ?", doc.ID).Delete(&model.Certificate{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(doc).Error
	})
	if err != nil {
		return err
	}

	if s.s3c != nil {
		if err := s.s3c.Remove(ctx, doc.ObjectKey); err != nil {
			// 记录已删，对象留给孤儿清理任务兜底
			nlog.Logger().Warn().Err(err).Str("key", doc.ObjectKey).Msg("object removal failed")
		}
	}

	s.publishDeleted(doc, true)

	return nil
}

func (s *DocumentService) publishDeleted(doc *model.Document, hard bool) {
	if s.mqc == nil || !eventEnabled(configs.GetConfig().Events.Document.Deleted) {
		return
	}

	err := queue.PublishDocumentDeleted(context.Background(), s.mqc, queue.DocumentDeletedPayload{
		Document: queue.DocumentRef{ID: doc.ID, OwnerID: doc.UserID, FileName: doc.FileName},
		Hard:     hard,
	})
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("doc", doc.ID).Msg("publish deleted event failed")
	}
}

// Categories 统计当前用户各分类的文档数量.
func (s *DocumentService) Categories(ctx context.Context, actor *model.User) (*types.ListCategoriesResponse, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}

	if actor.Banned {
		return nil, apperr.Forbidden("account banned")
	}

	var rows []types.CategoryCount

	err := s.dbc.GetDB().WithContext(ctx).Model(&model.Document{}).
		Select("category, COUNT(*) AS count").
		Where("user_id = ? AND category <> ''", actor.ID).
		Group("category").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return &types.ListCategoriesResponse{Categories: rows}, nil
}
