package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docshield/docshield/pkg/middleware"
	"github.com/docshield/docshield/pkg/scheduler"
)

// requireScheduler 取请求上下文里的调度器，未挂载时直接回 503.
func requireScheduler(c *gin.Context) *scheduler.Scheduler {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
	}

	return sched
}

// SchedulerJobs 返回清理任务的运行状态（上次运行、下次运行、最近错误）.
func SchedulerJobs(c *gin.Context) {
	sched := requireScheduler(c)
	if sched == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}

// SchedulerStopJobs 停止所有任务.
func SchedulerStopJobs(c *gin.Context) {
	sched := requireScheduler(c)
	if sched == nil {
		return
	}

	if err := sched.StopJobs(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "jobs stopped"})
}

// SchedulerRemoveJob 按 id 移除任务.
func SchedulerRemoveJob(c *gin.Context) {
	sched := requireScheduler(c)
	if sched == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := sched.RemoveJob(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

// SchedulerQueueWaiting 返回排队等待执行的任务数.
func SchedulerQueueWaiting(c *gin.Context) {
	sched := requireScheduler(c)
	if sched == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"waiting": sched.JobsWaitingInQueue()})
}
