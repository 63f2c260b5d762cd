// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/docshield/docshield/pkg/configs"
	ctxPkg "github.com/docshield/docshield/pkg/context"
	"github.com/docshield/docshield/pkg/internal/service"
	"github.com/docshield/docshield/pkg/internal/storage"
	"github.com/docshield/docshield/pkg/log"
	"github.com/docshield/docshield/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 每天 03:00 硬删除超过保留期的回收站文档（默认 30 天）
//   - 每 30 分钟清除已过期的分享记录
//   - 每周日 04:00 扫描并回收文档桶中的孤儿对象
//
// 各表达式均可通过 cleanup 配置段覆盖.
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	cfg := configs.GetConfig().Cleanup
	if !cfg.Enabled {
		log.Logger().Info().Msg("cleanup jobs disabled by config")

		return nil
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	_ = sched.AddCron(JobRetentionSweep, cfg.RetentionCron, func(ctx context.Context) {
		runRetentionSweep(ctx, cfg.RetentionWindow())
	}, baseCtx)

	_ = sched.AddCron(JobExpiredShares, cfg.ShareSweepCron, func(ctx context.Context) {
		runExpiredShareSweep(ctx)
	}, baseCtx)

	_ = sched.AddCron(JobOrphanObjects, cfg.OrphanCron, func(ctx context.Context) {
		runOrphanObjectSweep(ctx)
	}, baseCtx)

	return nil
}

// runRetentionSweep 硬删除保留期之前软删除的文档.
func runRetentionSweep(ctx context.Context, window time.Duration) {
	l := log.Logger().With().Str("job", JobRetentionSweep).Logger()

	before := time.Now().UTC().Add(-window)

	n, err := service.NewMaintenanceService(ctx).RetentionSweep(ctx, before)
	if err != nil {
		l.Error().Err(err).Msg("retention sweep failed")

		return
	}

	if n > 0 {
		l.Info().Int("removed", n).Time("before", before).Msg("retention sweep done")
	}
}

// runExpiredShareSweep 清除已过期的分享记录.
func runExpiredShareSweep(ctx context.Context) {
	l := log.Logger().With().Str("job", JobExpiredShares).Logger()

	n, err := service.NewMaintenanceService(ctx).ExpiredShareSweep(ctx, time.Now().UTC())
	if err != nil {
		l.Error().Err(err).Msg("expired share sweep failed")

		return
	}

	if n > 0 {
		l.Info().Int("removed", n).Msg("expired shares swept")
	}
}

// runOrphanObjectSweep 回收没有数据库记录指向的对象.
func runOrphanObjectSweep(ctx context.Context) {
	l := log.Logger().With().Str("job", JobOrphanObjects).Logger()

	n, err := service.NewMaintenanceService(ctx).OrphanObjectSweep(ctx)
	if err != nil {
		l.Error().Err(err).Msg("orphan object sweep failed")

		return
	}

	if n > 0 {
		l.Info().Int("removed", n).Msg("orphan objects swept")
	}
}
