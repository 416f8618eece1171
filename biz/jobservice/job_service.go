package jobservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adventure/biz/entity"
	"adventure/biz/repo"
	"adventure/biz/storyservice"
	"adventure/biz/types"
	"adventure/constant"
	"adventure/pkg/log/zlog"
	"adventure/pkg/metrics"

	"go.uber.org/zap"
)

var (
	JOB_ID_NOT_NULL     = errors.New("任务ID不能为空")
	JOB_NOT_EXIST       = errors.New("该任务不存在")
	JOB_STATUS_CONFLICT = errors.New("任务状态已变更")
	QUEUE_UNAVAILABLE   = errors.New("生成队列繁忙，请稍后再试")
)

const (
	defaultJobTimeout  = 5 * time.Minute
	statusWriteTimeout = 10 * time.Second
	staleJobReason     = "服务重启，任务中断"
)

// StoryGenerator 生成并保存一个故事
type StoryGenerator interface {
	GenerateStory(ctx context.Context, sessionID, theme string) (*entity.Story, error)
}

// TaskQueue 异步执行生成任务
type TaskQueue interface {
	EnqueueTask(task *entity.StoryTask) error
}

type JobService struct {
	jobRepo   repo.JobRepo
	generator StoryGenerator
	queue     TaskQueue
	timeout   time.Duration
}

var _ types.IJobService = (*JobService)(nil)

func NewJobService(jobRepo repo.JobRepo, generator StoryGenerator, timeout time.Duration) *JobService {
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &JobService{
		jobRepo:   jobRepo,
		generator: generator,
		timeout:   timeout,
	}
}

// BindQueue 队列的消费函数就是 ProcessTask，所以队列在 service 之后创建
func (s *JobService) BindQueue(q TaskQueue) {
	s.queue = q
}

// CreateStoryJob 创建 pending 任务并投递到队列；队列满时任务直接置为失败
func (s *JobService) CreateStoryJob(ctx context.Context, sessionID, theme string) (*entity.StoryJob, error) {
	if sessionID == "" {
		return nil, storyservice.SESSION_ID_NOT_NULL
	}
	job, err := entity.NewStoryJob(sessionID, strings.TrimSpace(theme))
	if err != nil {
		return nil, fmt.Errorf("生成任务ID失败: %w", err)
	}
	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	var enqueueErr error
	if s.queue == nil {
		enqueueErr = QUEUE_UNAVAILABLE
	} else {
		enqueueErr = s.queue.EnqueueTask(&entity.StoryTask{JobID: job.JobID, SessionID: sessionID, Theme: job.Theme})
	}
	if enqueueErr != nil {
		zlog.CtxErrorf(ctx, "任务入队失败: jobID=%s, err=%v", job.JobID, enqueueErr)
		reason := QUEUE_UNAVAILABLE.Error()
		if err := s.jobRepo.MarkFailed(ctx, job.JobID, reason); err != nil {
			return nil, err
		}
		metrics.RecordJob(string(entity.JobStatusFailed))
		now := time.Now()
		job.Status = entity.JobStatusFailed
		job.Error = &reason
		job.CompletedAt = &now
		return job, nil
	}

	zlog.CtxInfof(ctx, "故事任务已创建: jobID=%s, theme=%s", job.JobID, job.Theme)
	return job, nil
}

// ProcessTask 队列 worker 调用：pending → processing → completed|failed
func (s *JobService) ProcessTask(task *entity.StoryTask) {
	ctx := zlog.WithLogKey(context.Background(), zap.String(constant.LOGID, task.JobID))
	ctx = entity.WithSessionID(ctx, task.SessionID)

	if err := s.jobRepo.MarkProcessing(ctx, task.JobID); err != nil {
		zlog.CtxWarnf(ctx, "任务无法进入处理状态，跳过: %v", err)
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	story, err := s.generator.GenerateStory(genCtx, task.SessionID, task.Theme)
	cancel()

	// 生成用的 ctx 可能已超时，状态写入单独给一个超时
	writeCtx, writeCancel := context.WithTimeout(ctx, statusWriteTimeout)
	defer writeCancel()

	if err != nil {
		zlog.CtxErrorf(ctx, "故事任务失败: %v", err)
		if markErr := s.jobRepo.MarkFailed(writeCtx, task.JobID, err.Error()); markErr != nil {
			zlog.CtxErrorf(ctx, "更新任务失败状态出错: %v", markErr)
		}
		metrics.RecordJob(string(entity.JobStatusFailed))
		return
	}

	if markErr := s.jobRepo.MarkCompleted(writeCtx, task.JobID, story.ID); markErr != nil {
		zlog.CtxErrorf(ctx, "更新任务完成状态出错: %v", markErr)
		return
	}
	metrics.RecordJob(string(entity.JobStatusCompleted))
	zlog.CtxInfof(ctx, "故事任务完成: storyID=%d", story.ID)
}

// GetJob 按会话查询任务
func (s *JobService) GetJob(ctx context.Context, sessionID, jobID string) (*entity.StoryJob, error) {
	if jobID == "" {
		return nil, JOB_ID_NOT_NULL
	}
	if sessionID == "" {
		return nil, storyservice.SESSION_ID_NOT_NULL
	}
	return s.jobRepo.GetJob(ctx, jobID, sessionID)
}

// RecoverStaleJobs 启动时调用，上个进程留下的未完成任务不会再被执行
func (s *JobService) RecoverStaleJobs(ctx context.Context) (int64, error) {
	n, err := s.jobRepo.FailUnfinishedJobs(ctx, staleJobReason)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zlog.CtxWarnf(ctx, "已将%d个遗留任务置为失败", n)
	}
	return n, nil
}
