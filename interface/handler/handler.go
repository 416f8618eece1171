package handler

import (
	"adventure/biz/types"
)

type Handler struct {
	StoryService types.IStoryService
	JobService   types.IJobService
}

var handler *Handler

func InitHandler(storyService types.IStoryService, jobService types.IJobService) {
	handler = &Handler{
		StoryService: storyService,
		JobService:   jobService,
	}
}

func GetHandler() *Handler {
	return handler
}
