package entity

import (
	"time"

	"adventure/util"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsFinished 终态不会再变化
func (s JobStatus) IsFinished() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type StoryJob struct {
	JobID       string
	SessionID   string
	Theme       string
	Status      JobStatus
	StoryID     *uint64
	Error       *string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func NewStoryJob(sessionID, theme string) (*StoryJob, error) {
	jobID, err := util.GenerateStringID()
	if err != nil {
		return nil, err
	}
	return &StoryJob{
		JobID:     jobID,
		SessionID: sessionID,
		Theme:     theme,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// StoryTask 投递到生成队列的任务
type StoryTask struct {
	JobID     string
	SessionID string
	Theme     string
}
