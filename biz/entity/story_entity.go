package entity

import "time"

// StoryTree 模型输出解析后的整棵故事树，只在一次生成尝试内存在
type StoryTree struct {
	Title    string
	RootNode *StoryNodeTree
}

// StoryNodeTree 要么是结局（没有选项），要么是分支（至少一个选项）
type StoryNodeTree struct {
	Content         string
	IsEnding        bool
	IsWinningEnding bool
	Options         []StoryOptionTree
}

type StoryOptionTree struct {
	Text     string
	NextNode *StoryNodeTree
}

// TreeStats 故事树统计，打日志用
type TreeStats struct {
	Depth          int
	NodeCount      int
	EndingCount    int
	WinningEndings int
}

// Stats 遍历整棵树做统计
func (t *StoryTree) Stats() TreeStats {
	var s TreeStats
	if t == nil || t.RootNode == nil {
		return s
	}
	var walk func(n *StoryNodeTree, depth int)
	walk = func(n *StoryNodeTree, depth int) {
		s.NodeCount++
		if depth > s.Depth {
			s.Depth = depth
		}
		if n.IsEnding {
			s.EndingCount++
			if n.IsWinningEnding {
				s.WinningEndings++
			}
			return
		}
		for _, opt := range n.Options {
			walk(opt.NextNode, depth+1)
		}
	}
	walk(t.RootNode, 1)
	return s
}

// NodeOption 持久化后节点上的一个选项
type NodeOption struct {
	Text   string `json:"text"`
	NodeID uint64 `json:"node_id"`
}

type StoryNode struct {
	ID              uint64
	StoryID         uint64
	Content         string
	IsRoot          bool
	IsEnding        bool
	IsWinningEnding bool
	// 按选项下标排序
	Options []NodeOption
}

type Story struct {
	ID         uint64
	Title      string
	SessionID  string
	CreatedAt  time.Time
	RootNodeID uint64
	Nodes      []*StoryNode
}

// CompleteStory 一次性返回整个故事图，前端按 node_id 自行遍历
type CompleteStory struct {
	ID        uint64
	Title     string
	SessionID string
	CreatedAt time.Time
	RootNode  *StoryNode
	AllNodes  map[uint64]*StoryNode
}
