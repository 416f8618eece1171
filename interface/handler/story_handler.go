package handler

import (
	"context"

	"adventure/constant"
	"adventure/interface/caster"
	"adventure/interface/def"
	"adventure/pkg/log/zlog"
	"adventure/pkg/loop"
)

// CreateStory 创建异步生成任务
func (h *Handler) CreateStory(ctx context.Context, sessionID string, req *def.CreateStoryRequest) (resp *def.JobResponse, err error) {
	ctx, sp := loop.GetNewSpan(ctx, "handler.create_story", constant.LoopSpanType_Handle)
	defer func() {
		zlog.CtxAllInOne(ctx, "handler.create_story", req, resp, err)
		loop.SetSpanAllInOne(ctx, sp, req, resp, err)
	}()

	job, err := h.JobService.CreateStoryJob(ctx, sessionID, req.Theme)
	if err != nil {
		return nil, err
	}
	return caster.CastStoryJobDO2Resp(job), nil
}

func (h *Handler) GetJob(ctx context.Context, sessionID string, req *def.GetJobRequest) (resp *def.JobResponse, err error) {
	ctx, sp := loop.GetNewSpan(ctx, "handler.get_job", constant.LoopSpanType_Handle)
	defer func() {
		zlog.CtxAllInOne(ctx, "handler.get_job", req, resp, err)
		loop.SetSpanAllInOne(ctx, sp, req, resp, err)
	}()

	job, err := h.JobService.GetJob(ctx, sessionID, req.JobID)
	if err != nil {
		return nil, err
	}
	return caster.CastStoryJobDO2Resp(job), nil
}

func (h *Handler) GetCompleteStory(ctx context.Context, req *def.GetCompleteStoryRequest) (resp *def.CompleteStoryResponse, err error) {
	ctx, sp := loop.GetNewSpan(ctx, "handler.get_complete_story", constant.LoopSpanType_Handle)
	defer func() {
		zlog.CtxAllInOne(ctx, "handler.get_complete_story", req, resp, err)
		loop.SetSpanAllInOne(ctx, sp, req, resp, err)
	}()

	story, err := h.StoryService.GetCompleteStory(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}
	return caster.CastCompleteStoryDO2Resp(story), nil
}
