package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"adventure/biz/entity"
	"adventure/biz/storyservice"
	"adventure/infra/storage/po"
)

func CastStoryNodePO2DO(nodePO *po.StoryNodePO) *entity.StoryNode {
	return &entity.StoryNode{
		ID:              nodePO.ID,
		StoryID:         nodePO.StoryID,
		Content:         nodePO.Content,
		IsRoot:          nodePO.IsRoot,
		IsEnding:        nodePO.IsEnding,
		IsWinningEnding: nodePO.IsWinningEnding,
	}
}

// decodeOptions 把 {"0": {...}, "1": {...}} 还原成按下标排序的列表
func decodeOptions(raw []byte) ([]entity.NodeOption, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m map[string]po.OptionPO
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("解析节点选项失败: %w", err)
	}

	type indexed struct {
		idx int
		opt po.OptionPO
	}
	list := make([]indexed, 0, len(m))
	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("非法的选项下标: %q", k)
		}
		list = append(list, indexed{idx: idx, opt: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].idx < list[j].idx })

	options := make([]entity.NodeOption, 0, len(list))
	for _, item := range list {
		options = append(options, entity.NodeOption{Text: item.opt.Text, NodeID: item.opt.NodeID})
	}
	return options, nil
}

func CastStoryPO2CompleteDO(storyPO *po.StoryPO, nodePOs []po.StoryNodePO) (*entity.CompleteStory, error) {
	complete := &entity.CompleteStory{
		ID:        storyPO.ID,
		Title:     storyPO.Title,
		SessionID: storyPO.SessionID,
		CreatedAt: storyPO.CreatedAt,
		AllNodes:  make(map[uint64]*entity.StoryNode, len(nodePOs)),
	}

	for i := range nodePOs {
		node := CastStoryNodePO2DO(&nodePOs[i])
		options, err := decodeOptions(nodePOs[i].Options)
		if err != nil {
			return nil, fmt.Errorf("节点%d: %w", node.ID, err)
		}
		node.Options = options
		complete.AllNodes[node.ID] = node
		if node.IsRoot {
			if complete.RootNode != nil {
				return nil, fmt.Errorf("%w: 故事%d存在多个根节点", storyservice.STORY_GRAPH_BROKEN, storyPO.ID)
			}
			complete.RootNode = node
		}
	}
	if complete.RootNode == nil {
		return nil, fmt.Errorf("%w: 故事%d没有根节点", storyservice.STORY_GRAPH_BROKEN, storyPO.ID)
	}

	for _, node := range complete.AllNodes {
		for _, opt := range node.Options {
			if _, ok := complete.AllNodes[opt.NodeID]; !ok {
				return nil, fmt.Errorf("%w: 节点%d指向不存在的节点%d", storyservice.STORY_GRAPH_BROKEN, node.ID, opt.NodeID)
			}
		}
	}
	return complete, nil
}
