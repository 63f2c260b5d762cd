// Package scheduler 封装 gocron/v2，承载清理类定时任务并暴露运行状态.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docshield/docshield/pkg/log"
)

// JobStatus 任务状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusRunning   JobStatus = "running"
	StatusError     JobStatus = "error"
)

// JobInfo 任务运行信息，管理端点用它做巡检.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Scheduler 定时任务调度器。清理任务以 singleton 模式运行，
// 上一轮没跑完时顺延而不是并发执行.
type Scheduler struct {
	inner  gocron.Scheduler
	mu     sync.RWMutex
	jobs   map[string]gocron.Job
	infos  map[string]*JobInfo
	names  map[uuid.UUID]string
	logger *zerolog.Logger
}

// NewScheduler 创建调度器.
func NewScheduler() (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		inner:  inner,
		jobs:   make(map[string]gocron.Job),
		infos:  make(map[string]*JobInfo),
		names:  make(map[uuid.UUID]string),
		logger: log.Logger(),
	}, nil
}

// AddCron 按 cron 表达式注册任务。任务 panic 记为 error 状态，不拖垮调度器.
func (s *Scheduler) AddCron(name, cronExpr string, job func(ctx context.Context), ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	run := func(ctx context.Context) {
		s.setStatus(name, StatusRunning, "")

		defer func() {
			if r := recover(); r != nil {
				s.setStatus(name, StatusError, fmt.Sprintf("panic: %v", r))
				s.logger.Error().Str("job", name).Interface("panic", r).Msg("job panicked")
			}
		}()

		job(ctx)
		s.markSuccess(name)
	}

	j, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run, ctx),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(
			gocron.AfterJobRuns(func(_ uuid.UUID, jobName string) {
				s.mu.Lock()
				defer s.mu.Unlock()

				if info, ok := s.infos[jobName]; ok {
					info.LastRun = time.Now()
				}
			}),
		),
	)
	if err != nil {
		return err
	}

	nextRun, _ := j.NextRun()

	s.jobs[name] = j
	s.names[j.ID()] = name
	s.infos[name] = &JobInfo{
		ID:        j.ID().String(),
		Name:      name,
		CronExpr:  cronExpr,
		NextRun:   nextRun,
		Status:    StatusScheduled,
		CreatedAt: time.Now(),
	}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("cron job registered")

	return nil
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("starting scheduler")
	s.inner.Start()
}

// Shutdown 停止调度器并释放资源.
func (s *Scheduler) Shutdown() error {
	return s.inner.Shutdown()
}

// StopJobs 暂停所有任务的执行.
func (s *Scheduler) StopJobs() error {
	return s.inner.StopJobs()
}

// RemoveJob 按 ID 移除任务.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name, ok := s.names[id]; ok {
		delete(s.jobs, name)
		delete(s.infos, name)
		delete(s.names, id)
	}

	return s.inner.RemoveJob(id)
}

// JobsWaitingInQueue 排队等待执行的任务数.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.inner.JobsWaitingInQueue()
}

// GetJobInfos 返回全部任务的当前信息，next run 现取现算.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.infos))

	for name, info := range s.infos {
		if job, ok := s.jobs[name]; ok {
			if next, err := job.NextRun(); err == nil {
				info.NextRun = next
			}
		}

		out = append(out, *info)
	}

	return out
}

func (s *Scheduler) setStatus(name string, status JobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.infos[name]; ok {
		info.Status = status
		info.Error = errMsg
	}
}

func (s *Scheduler) markSuccess(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.infos[name]; ok {
		info.Status = StatusScheduled
		info.Error = ""
		info.LastSuccess = time.Now()
	}
}
