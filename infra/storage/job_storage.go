package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adventure/biz/entity"
	"adventure/biz/jobservice"
	"adventure/infra/storage/po"

	"gorm.io/gorm"
)

type jobPersistence struct {
	db *gorm.DB
}

func NewJobPersistence(db *gorm.DB) *jobPersistence {
	return &jobPersistence{db: db}
}

func (j *jobPersistence) CreateJob(ctx context.Context, job *entity.StoryJob) error {
	if job.JobID == "" {
		return jobservice.JOB_ID_NOT_NULL
	}
	jobPO := CastStoryJobDO2PO(job)
	if err := j.db.WithContext(ctx).Create(jobPO).Error; err != nil {
		return fmt.Errorf("保存任务时，数据库出错 %w", err)
	}
	job.CreatedAt = jobPO.CreatedAt
	return nil
}

// GetJob 任务只对创建它的会话可见
func (j *jobPersistence) GetJob(ctx context.Context, jobID, sessionID string) (*entity.StoryJob, error) {
	if jobID == "" {
		return nil, jobservice.JOB_ID_NOT_NULL
	}
	var jobPO po.StoryJobPO
	query := j.db.WithContext(ctx).Model(&po.StoryJobPO{}).Where("job_id = ?", jobID)
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}
	if err := query.First(&jobPO).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jobservice.JOB_NOT_EXIST
		}
		return nil, fmt.Errorf("数据库出错 :%w", err)
	}
	return CastStoryJobPO2DO(&jobPO), nil
}

func (j *jobPersistence) MarkProcessing(ctx context.Context, jobID string) error {
	return j.transition(ctx, jobID, []entity.JobStatus{entity.JobStatusPending}, map[string]any{
		"status": string(entity.JobStatusProcessing),
	})
}

func (j *jobPersistence) MarkCompleted(ctx context.Context, jobID string, storyID uint64) error {
	return j.transition(ctx, jobID, []entity.JobStatus{entity.JobStatusPending, entity.JobStatusProcessing}, map[string]any{
		"status":       string(entity.JobStatusCompleted),
		"story_id":     storyID,
		"completed_at": time.Now(),
	})
}

func (j *jobPersistence) MarkFailed(ctx context.Context, jobID string, reason string) error {
	return j.transition(ctx, jobID, []entity.JobStatus{entity.JobStatusPending, entity.JobStatusProcessing}, map[string]any{
		"status":       string(entity.JobStatusFailed),
		"error":        reason,
		"completed_at": time.Now(),
	})
}

// transition 只允许从 from 中的状态迁移，终态不可再改
func (j *jobPersistence) transition(ctx context.Context, jobID string, from []entity.JobStatus, updates map[string]any) error {
	if jobID == "" {
		return jobservice.JOB_ID_NOT_NULL
	}
	fromStr := make([]string, 0, len(from))
	for _, s := range from {
		fromStr = append(fromStr, string(s))
	}
	updates["updated_at"] = time.Now()

	res := j.db.WithContext(ctx).Model(&po.StoryJobPO{}).
		Where("job_id = ? AND status IN ?", jobID, fromStr).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("更新任务状态时 数据库出错 %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return jobservice.JOB_STATUS_CONFLICT
	}
	return nil
}

func (j *jobPersistence) FailUnfinishedJobs(ctx context.Context, reason string) (int64, error) {
	now := time.Now()
	res := j.db.WithContext(ctx).Model(&po.StoryJobPO{}).
		Where("status IN ?", []string{string(entity.JobStatusPending), string(entity.JobStatusProcessing)}).
		Updates(map[string]any{
			"status":       string(entity.JobStatusFailed),
			"error":        reason,
			"completed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("回收遗留任务时 数据库出错 %w", res.Error)
	}
	return res.RowsAffected, nil
}

func CastStoryJobDO2PO(job *entity.StoryJob) *po.StoryJobPO {
	return &po.StoryJobPO{
		JobID:       job.JobID,
		SessionID:   job.SessionID,
		Theme:       job.Theme,
		Status:      string(job.Status),
		StoryID:     job.StoryID,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
}

func CastStoryJobPO2DO(jobPO *po.StoryJobPO) *entity.StoryJob {
	return &entity.StoryJob{
		JobID:       jobPO.JobID,
		SessionID:   jobPO.SessionID,
		Theme:       jobPO.Theme,
		Status:      entity.JobStatus(jobPO.Status),
		StoryID:     jobPO.StoryID,
		Error:       jobPO.Error,
		CreatedAt:   jobPO.CreatedAt,
		CompletedAt: jobPO.CompletedAt,
	}
}
