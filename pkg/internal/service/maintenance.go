package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/model"
	"github.com/docshield/docshield/pkg/internal/storage/db"
	"github.com/docshield/docshield/pkg/internal/storage/s3"
	nlog "github.com/docshield/docshield/pkg/log"
)

// MaintenanceService 承载后台清理任务的业务实现，由定时任务调用.
type MaintenanceService struct {
	dbc *db.Client
	s3c *s3.Client
}

// NewMaintenanceService 创建 MaintenanceService 实例.
func NewMaintenanceService(c context.Context) *MaintenanceService {
	svc := &MaintenanceService{
		dbc: ctxPkg.GetDBClient(c),
		s3c: ctxPkg.GetS3Client(c),
	}

	if svc.dbc == nil {
		nlog.Logger().Warn().Msg("DB client not initialized, maintenance jobs will no-op")
	}

	return svc
}

// RetentionSweep 硬删除回收站中早于 before 软删除的文档，连同派生数据与对象.
func (s *MaintenanceService) RetentionSweep(ctx context.Context, before time.Time) (int, error) {
	dbx := s.dbc.GetDB().WithContext(ctx)

	var docs []model.Document

	err := dbx.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
		Find(&docs).Error
	if err != nil {
		return 0, err
	}

	removed := 0

	for i := range docs {
		doc := &docs[i]

		err := dbx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("document_id = ?", doc.ID).Delete(&model.ReviewEntry{}).Error; err != nil {
				return err
			}

			// Share 带软删列，必须 Unscoped 才是真删
			if err := tx.Unscoped().Where("document_id = ?", doc.ID).Delete(&model.Share{}).Error; err != nil {
				return err
			}

			if err := tx.Where("document_id = ?", doc.ID).Delete(&model.Certificate{}).Error; err != nil {
				return err
			}

			return tx.Unscoped().Delete(doc).Error
		})
		if err != nil {
			nlog.Logger().Error().Err(err).Str("doc", doc.ID).Msg("retention sweep delete failed")

			continue
		}

		// 对象删不掉留给孤儿扫描兜底
		if s.s3c != nil {
			if err := s.s3c.Remove(ctx, doc.ObjectKey); err != nil {
				nlog.Logger().Warn().Err(err).Str("key", doc.ObjectKey).Msg("retention sweep object removal failed")
			}
		}

		removed++
	}

	return removed, nil
}

// ExpiredShareSweep 清除已过期的分享记录。过期分享对外早已返回 410，这里只是收尾.
func (s *MaintenanceService) ExpiredShareSweep(ctx context.Context, now time.Time) (int, error) {
	res := s.dbc.GetDB().WithContext(ctx).Unscoped().
		Where("expire_at IS NOT NULL AND expire_at < ?", now).
		Delete(&model.Share{})
	if res.Error != nil {
		return 0, res.Error
	}

	return int(res.RowsAffected), nil
}

// OrphanObjectSweep 扫描文档桶中没有任何数据库记录指向的对象并删除。
// 上传与硬删除的失败路径都可能留下孤儿，这里统一回收.
func (s *MaintenanceService) OrphanObjectSweep(ctx context.Context) (int, error) {
	if s.s3c == nil {
		return 0, errors.New("s3 client not initialized")
	}

	dbx := s.dbc.GetDB().WithContext(ctx)

	known := map[string]struct{}{}

	var docKeys []string
	if err := dbx.Unscoped().Model(&model.Document{}).Pluck("object_key", &docKeys).Error; err != nil {
		return 0, err
	}

	var certKeys []string
	if err := dbx.Model(&model.Certificate{}).Pluck("object_key", &certKeys).Error; err != nil {
		return 0, err
	}

	for _, k := range append(docKeys, certKeys...) {
		known[k] = struct{}{}
	}

	keys, err := s.s3c.ListKeys(ctx, "")
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, k := range keys {
		if _, ok := known[k]; ok {
			continue
		}

		if err := s.s3c.Remove(ctx, k); err != nil {
			nlog.Logger().Warn().Err(err).Str("key", k).Msg("orphan object removal failed")

			continue
		}

		removed++
	}

	return removed, nil
}
