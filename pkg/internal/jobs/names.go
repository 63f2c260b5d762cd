package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobRetentionSweep = "cleanup.retention_sweep"
	JobExpiredShares  = "cleanup.expired_shares"
	JobOrphanObjects  = "cleanup.orphan_objects"
)
