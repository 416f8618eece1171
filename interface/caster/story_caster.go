package caster

import (
	"adventure/biz/entity"
	"adventure/interface/def"

	"github.com/bytedance/gg/gslice"
)

func CastStoryJobDO2Resp(job *entity.StoryJob) *def.JobResponse {
	if job == nil {
		return nil
	}
	return &def.JobResponse{
		JobID:       job.JobID,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		StoryID:     job.StoryID,
		CompletedAt: job.CompletedAt,
		Error:       job.Error,
	}
}

func CastStoryNodeDO2Resp(node *entity.StoryNode) *def.NodeResponse {
	if node == nil {
		return nil
	}
	// 结局节点也返回空数组而不是 null
	options := make([]def.OptionResponse, 0, len(node.Options))
	options = append(options, gslice.Map(node.Options, func(o entity.NodeOption) def.OptionResponse {
		return def.OptionResponse{Text: o.Text, NodeID: o.NodeID}
	})...)
	return &def.NodeResponse{
		ID:              node.ID,
		Content:         node.Content,
		IsRoot:          node.IsRoot,
		IsEnding:        node.IsEnding,
		IsWinningEnding: node.IsWinningEnding,
		Options:         options,
	}
}

func CastCompleteStoryDO2Resp(story *entity.CompleteStory) *def.CompleteStoryResponse {
	if story == nil {
		return nil
	}
	allNodes := make(map[uint64]*def.NodeResponse, len(story.AllNodes))
	for id, node := range story.AllNodes {
		allNodes[id] = CastStoryNodeDO2Resp(node)
	}
	var root *def.NodeResponse
	if story.RootNode != nil {
		root = allNodes[story.RootNode.ID]
	}
	return &def.CompleteStoryResponse{
		ID:        story.ID,
		Title:     story.Title,
		SessionID: story.SessionID,
		CreatedAt: story.CreatedAt,
		RootNode:  root,
		AllNodes:  allNodes,
	}
}
