package router

import (
	"errors"

	"adventure/biz/jobservice"
	"adventure/biz/storyservice"
	"adventure/interface/def"
	"adventure/interface/handler"
	"adventure/interface/middleware"
	"adventure/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

func storyServiceErrorToMsgCode(err error) response.MsgCode {
	if err == nil {
		return response.SUCCESS
	}

	if errors.Is(err, storyservice.SESSION_ID_NOT_NULL) {
		return response.SESSION_ID_NOT_NULL
	}
	if errors.Is(err, storyservice.STORY_ID_NOT_NULL) {
		return response.STORY_ID_NOT_NULL
	}
	if errors.Is(err, storyservice.STORY_NOT_EXIST) {
		return response.STORY_NOT_EXIST
	}
	if errors.Is(err, storyservice.STORY_GRAPH_BROKEN) {
		return response.STORY_GRAPH_BROKEN
	}
	var genErr *storyservice.GenerationFailedError
	if errors.As(err, &genErr) {
		return response.STORY_GENERATION_FAILED
	}
	var persistErr *storyservice.MaterializationError
	if errors.As(err, &persistErr) {
		return response.STORY_PERSIST_FAILED
	}
	if errors.Is(err, jobservice.JOB_ID_NOT_NULL) {
		return response.JOB_ID_NOT_NULL
	}
	if errors.Is(err, jobservice.JOB_NOT_EXIST) {
		return response.JOB_NOT_EXIST
	}
	if errors.Is(err, jobservice.QUEUE_UNAVAILABLE) {
		return response.QUEUE_UNAVAILABLE
	}

	return response.COMMON_FAIL
}

func writeError(gCtx *gin.Context, err error) {
	msgCode := storyServiceErrorToMsgCode(err)
	if msgCode == response.COMMON_FAIL {
		msgCode.Msg = err.Error()
	}
	response.NewResponse(gCtx).Error(msgCode)
}

// CreateStory 提交故事生成任务
func CreateStory() gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		var req def.CreateStoryRequest
		ctx := gCtx.Request.Context()

		// 允许空 body，使用默认主题
		if gCtx.Request.ContentLength != 0 {
			if err := gCtx.ShouldBindJSON(&req); err != nil {
				response.NewResponse(gCtx).Error(response.PARAM_NOT_VALID)
				return
			}
		}

		resp, err := handler.GetHandler().CreateStory(ctx, middleware.GetSessionID(gCtx), &req)
		if err != nil {
			writeError(gCtx, err)
			return
		}
		response.NewResponse(gCtx).Success(resp)
	}
}

// GetJob 查询任务状态
func GetJob() gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		req := def.GetJobRequest{JobID: gCtx.Param("job_id")}
		ctx := gCtx.Request.Context()

		resp, err := handler.GetHandler().GetJob(ctx, middleware.GetSessionID(gCtx), &req)
		if err != nil {
			writeError(gCtx, err)
			return
		}
		response.NewResponse(gCtx).Success(resp)
	}
}

// GetCompleteStory 获取完整故事
func GetCompleteStory() gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		ctx := gCtx.Request.Context()

		storyID, err := cast.ToUint64E(gCtx.Param("story_id"))
		if err != nil {
			response.NewResponse(gCtx).Error(response.PARAM_NOT_VALID)
			return
		}

		resp, err := handler.GetHandler().GetCompleteStory(ctx, &def.GetCompleteStoryRequest{StoryID: storyID})
		if err != nil {
			writeError(gCtx, err)
			return
		}
		response.NewResponse(gCtx).Success(resp)
	}
}
