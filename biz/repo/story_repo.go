package repo

import (
	"context"

	"adventure/biz/entity"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// CompletionModel 文本补全模型，ark 与 openai 兼容实现都满足
type CompletionModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

type StoryRepo interface {
	// MaterializeStory 在一个事务里把整棵树落库，任何一步失败都整体回滚
	MaterializeStory(ctx context.Context, tree *entity.StoryTree, sessionID string) (*entity.Story, error)
	GetCompleteStory(ctx context.Context, storyID uint64) (*entity.CompleteStory, error)
}

type JobRepo interface {
	CreateJob(ctx context.Context, job *entity.StoryJob) error
	GetJob(ctx context.Context, jobID, sessionID string) (*entity.StoryJob, error)
	MarkProcessing(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string, storyID uint64) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	// FailUnfinishedJobs 进程重启后把遗留的 pending/processing 任务置为失败
	FailUnfinishedJobs(ctx context.Context, reason string) (int64, error)
}
