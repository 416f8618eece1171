package types

import (
	"context"

	"adventure/biz/entity"
)

type IStoryService interface {
	//生成故事并落库
	GenerateStory(ctx context.Context, sessionID, theme string) (*entity.Story, error)

	//获取完整故事
	GetCompleteStory(ctx context.Context, storyID uint64) (*entity.CompleteStory, error)
}

type IJobService interface {
	//创建故事生成任务
	CreateStoryJob(ctx context.Context, sessionID, theme string) (*entity.StoryJob, error)

	//查询任务状态
	GetJob(ctx context.Context, sessionID, jobID string) (*entity.StoryJob, error)
}
